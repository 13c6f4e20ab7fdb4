package service

import (
	"context"
	"errors"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/markup"
	"github.com/ValeenMar/tovaltech-sub001/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrProductoNoEncontrado is returned by ObtenerPorSKU for unknown skus.
var ErrProductoNoEncontrado = errors.New("producto no encontrado")

// MarkupCache is satisfied by *markup.Cache.
type MarkupCache interface {
	Get(ctx context.Context, now time.Time) (markup.Settings, error)
	Invalidate()
}

// CatalogoService serves stored products with sale pricing applied.
type CatalogoService interface {
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	ObtenerPorSKU(ctx context.Context, sku string) (*dto.ProductoResponse, error)
	InvalidarMarkup(ctx context.Context) error
}

type catalogoService struct {
	repo      repository.ProductoRepository
	cache     MarkupCache
	broadcast func(ctx context.Context) error
	now       func() time.Time
}

// NewCatalogoService builds the service. broadcast, when non-nil, tells other
// processes to drop their markup snapshot.
func NewCatalogoService(repo repository.ProductoRepository, cache MarkupCache, broadcast func(ctx context.Context) error) CatalogoService {
	return &catalogoService{repo: repo, cache: cache, broadcast: broadcast, now: time.Now}
}

func mapProducto(p markup.Priced) dto.ProductoResponse {
	return dto.ProductoResponse{
		SKU:            p.SKU,
		Nombre:         p.Nombre,
		Categoria:      p.Categoria,
		Marca:          p.Marca,
		Descripcion:    p.Descripcion,
		ImagenURL:      p.ImagenURL,
		Garantia:       p.Garantia,
		Proveedor:      p.Proveedor,
		Stock:          p.Stock,
		PrecioCostoUSD: p.PrecioUSD,
		PrecioCostoARS: p.PrecioARS,
		PrecioVentaUSD: p.PrecioVentaUSD,
		PrecioVentaARS: p.PrecioVentaARS,
		MarkupPct:      p.MarkupPct,
		MarkupOrigen:   string(p.MarkupSource),
		DolarRate:      p.DolarRate,
		Destacado:      p.Destacado,
		Activo:         p.Activo,
	}
}

func (s *catalogoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	settings, err := s.cache.Get(ctx, s.now())
	if err != nil {
		return nil, err
	}

	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.ProductoResponse, 0, len(productos))
	for _, p := range productos {
		data = append(data, mapProducto(markup.ApplySalePricing(p, settings)))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *catalogoService) ObtenerPorSKU(ctx context.Context, sku string) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductoNoEncontrado
		}
		return nil, err
	}
	settings, err := s.cache.Get(ctx, s.now())
	if err != nil {
		return nil, err
	}
	resp := mapProducto(markup.ApplySalePricing(*p, settings))
	return &resp, nil
}

func (s *catalogoService) InvalidarMarkup(ctx context.Context) error {
	s.cache.Invalidate()
	if s.broadcast == nil {
		return nil
	}
	if err := s.broadcast(ctx); err != nil {
		log.Warn().Err(err).Msg("catalogo: markup invalidation broadcast failed")
		return err
	}
	return nil
}
