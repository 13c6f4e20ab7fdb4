package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a row of the destination catalog.
// Description belongs to the enrichment job and MarkupPct, Active and Featured
// to administrators; the supplier sync never writes them on update.
type Producto struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU         string           `gorm:"column:sku;uniqueIndex;not null"`
	Nombre      string           `gorm:"column:name;not null"`
	Categoria   *string          `gorm:"column:category;index"`
	Marca       *string          `gorm:"column:brand"`
	PrecioUSD   decimal.Decimal  `gorm:"column:price_usd;type:decimal(14,2);not null"`
	PrecioARS   int64            `gorm:"column:price_ars;not null;default:0"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	ImagenURL   *string          `gorm:"column:image_url"`
	Proveedor   string           `gorm:"column:provider;index;not null"`
	Garantia    *string          `gorm:"column:warranty"`
	DolarRate   decimal.Decimal  `gorm:"column:dolar_rate;type:decimal(14,2);not null;default:0"`
	MarkupPct   *decimal.Decimal `gorm:"column:markup_pct;type:decimal(6,2)"`
	Activo      bool             `gorm:"column:active;not null;default:false"`
	Destacado   bool             `gorm:"column:featured;not null;default:false"`
	Descripcion *string          `gorm:"column:description"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Producto) TableName() string { return "products" }
