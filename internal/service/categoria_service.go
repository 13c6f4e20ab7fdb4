package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/markup"
	"github.com/ValeenMar/tovaltech-sub001/internal/model"
	"github.com/ValeenMar/tovaltech-sub001/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCategoriaNoEncontrada = errors.New("categoría no encontrada")
	ErrPadreInvalido         = errors.New("una categoría no puede ser su propio padre")
)

// CategoriaService manages the admin-owned side of the category dimension:
// markup overrides, parent links and the global markup.
type CategoriaService interface {
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, nombre string, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)
	MarkupGlobal(ctx context.Context) (dto.MarkupGlobalResponse, error)
	ActualizarMarkupGlobal(ctx context.Context, pct decimal.Decimal) error
}

type categoriaService struct {
	cats       repository.CategoriaRepository
	settings   repository.SettingRepository
	defaultPct decimal.Decimal
	invalidate func(ctx context.Context) error
}

// NewCategoriaService builds the service. invalidate runs after every write
// so pricing never serves a markup older than the change.
func NewCategoriaService(
	cats repository.CategoriaRepository,
	settings repository.SettingRepository,
	defaultPct decimal.Decimal,
	invalidate func(ctx context.Context) error,
) CategoriaService {
	return &categoriaService{cats: cats, settings: settings, defaultPct: defaultPct, invalidate: invalidate}
}

func mapCategoria(c model.Categoria, byID map[int64]model.Categoria, s markup.Settings) dto.CategoriaResponse {
	resp := dto.CategoriaResponse{ID: c.ID, Nombre: c.Nombre, MarkupPct: c.MarkupPct}
	if c.ParentID != nil {
		if p, ok := byID[*c.ParentID]; ok {
			name := p.Nombre
			resp.Padre = &name
		}
	}

	cat := c.Nombre
	r := markup.Resolve(model.Producto{Categoria: &cat}, s)
	resp.MarkupEfectivo = r.Markup.Mul(decimal.NewFromInt(100)).Round(2)
	resp.MarkupOrigen = string(r.Source)
	return resp
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	list, err := s.cats.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	global, err := s.settings.GlobalMarkupPct(ctx)
	if err != nil {
		return nil, err
	}
	settings := markup.BuildSettings(global, s.defaultPct, list)

	byID := make(map[int64]model.Categoria, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c, byID, settings))
	}
	return result, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, nombre string, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.cats.FindByNombre(ctx, strings.TrimSpace(nombre))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CategoriaResponse{}, ErrCategoriaNoEncontrada
		}
		return dto.CategoriaResponse{}, err
	}

	if req.Padre != nil {
		var parentID *int64
		if name := strings.TrimSpace(*req.Padre); name != "" {
			parent, err := s.cats.FindByNombre(ctx, name)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dto.CategoriaResponse{}, ErrCategoriaNoEncontrada
				}
				return dto.CategoriaResponse{}, err
			}
			if parent.ID == c.ID {
				return dto.CategoriaResponse{}, ErrPadreInvalido
			}
			parentID = &parent.ID
		}
		if err := s.cats.SetParent(ctx, c.Nombre, parentID); err != nil {
			return dto.CategoriaResponse{}, err
		}
	}

	if err := s.cats.SetMarkup(ctx, c.Nombre, req.MarkupPct); err != nil {
		return dto.CategoriaResponse{}, err
	}
	s.afterWrite(ctx)

	list, err := s.Listar(ctx)
	if err != nil {
		return dto.CategoriaResponse{}, err
	}
	for _, r := range list {
		if r.ID == c.ID {
			return r, nil
		}
	}
	return dto.CategoriaResponse{}, ErrCategoriaNoEncontrada
}

func (s *categoriaService) MarkupGlobal(ctx context.Context) (dto.MarkupGlobalResponse, error) {
	pct, err := s.settings.GlobalMarkupPct(ctx)
	if err != nil {
		return dto.MarkupGlobalResponse{}, err
	}
	if pct == nil {
		return dto.MarkupGlobalResponse{MarkupPct: s.defaultPct, Default: true}, nil
	}
	return dto.MarkupGlobalResponse{MarkupPct: *pct}, nil
}

func (s *categoriaService) ActualizarMarkupGlobal(ctx context.Context, pct decimal.Decimal) error {
	if err := s.settings.SetGlobalMarkupPct(ctx, pct); err != nil {
		return err
	}
	s.afterWrite(ctx)
	return nil
}

func (s *categoriaService) afterWrite(ctx context.Context) {
	if s.invalidate == nil {
		return
	}
	if err := s.invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("categorias: markup invalidation broadcast failed")
	}
}
