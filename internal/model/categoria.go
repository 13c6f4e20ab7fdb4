package model

import (
	"github.com/shopspring/decimal"
)

// Categoria is the category dimension. The sync only ever inserts names;
// MarkupPct and ParentID are set by administrators.
type Categoria struct {
	ID        int64            `gorm:"primaryKey;autoIncrement"`
	Nombre    string           `gorm:"column:name;uniqueIndex;not null"`
	MarkupPct *decimal.Decimal `gorm:"column:markup_pct;type:decimal(6,2)"`
	ParentID  *int64           `gorm:"column:parent_id;index"`
}

// TableName overrides GORM's default pluralization.
func (Categoria) TableName() string { return "categories" }
