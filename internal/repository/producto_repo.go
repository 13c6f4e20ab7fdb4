package repository

import (
	"context"

	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"gorm.io/gorm"
)

// ProductoRepository is the read side of the catalog. Writes go through the
// merge engine.
type ProductoRepository interface {
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	FindBySKU(ctx context.Context, sku string) (*model.Producto, error)
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}

	if filter.Nombre != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Nombre+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("category = ?", filter.Categoria)
	}
	if filter.Marca != "" {
		q = q.Where("brand ILIKE ?", filter.Marca)
	}
	if filter.Proveedor != "" {
		q = q.Where("provider = ?", filter.Proveedor)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("featured DESC, name ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) FindBySKU(ctx context.Context, sku string) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
