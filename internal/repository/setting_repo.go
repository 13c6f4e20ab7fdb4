package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository stores global key/value settings.
type SettingRepository interface {
	// GlobalMarkupPct returns nil when the setting has never been written.
	GlobalMarkupPct(ctx context.Context) (*decimal.Decimal, error)
	SetGlobalMarkupPct(ctx context.Context, pct decimal.Decimal) error
}

type settingRepo struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) SettingRepository { return &settingRepo{db: db} }

func (r *settingRepo) GlobalMarkupPct(ctx context.Context) (*decimal.Decimal, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).Where("key = ?", model.SettingGlobalMarkup).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pct, err := decimal.NewFromString(s.Value)
	if err != nil {
		return nil, fmt.Errorf("setting %s: %w", model.SettingGlobalMarkup, err)
	}
	return &pct, nil
}

func (r *settingRepo) SetGlobalMarkupPct(ctx context.Context, pct decimal.Decimal) error {
	s := model.Setting{Key: model.SettingGlobalMarkup, Value: pct.String(), UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}

// SettingsSource combines categories and settings into the store the markup
// cache loads from.
type SettingsSource struct {
	Categorias CategoriaRepository
	Settings   SettingRepository
}

func (s SettingsSource) GlobalMarkupPct(ctx context.Context) (*decimal.Decimal, error) {
	return s.Settings.GlobalMarkupPct(ctx)
}

func (s SettingsSource) ListCategorias(ctx context.Context) ([]model.Categoria, error) {
	return s.Categorias.ListAll(ctx)
}
