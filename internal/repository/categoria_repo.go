package repository

import (
	"context"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoriaRepository reads the category dimension and lets administrators
// set per-category markups.
type CategoriaRepository interface {
	ListAll(ctx context.Context) ([]model.Categoria, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Categoria, error)
	SetMarkup(ctx context.Context, nombre string, pct *decimal.Decimal) error
	SetParent(ctx context.Context, nombre string, parentID *int64) error
}

type categoriaRepository struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) ListAll(ctx context.Context) ([]model.Categoria, error) {
	var list []model.Categoria
	err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error
	return list, err
}

func (r *categoriaRepository) FindByNombre(ctx context.Context, nombre string) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", nombre).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepository) SetMarkup(ctx context.Context, nombre string, pct *decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.Categoria{}).Where("name = ?", nombre).Update("markup_pct", pct)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *categoriaRepository) SetParent(ctx context.Context, nombre string, parentID *int64) error {
	res := r.db.WithContext(ctx).Model(&model.Categoria{}).Where("name = ?", nombre).Update("parent_id", parentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
