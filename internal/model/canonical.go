package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CanonicalProduct is the provider-agnostic row every adapter produces and the
// merge engine stages. Optional supplier fields are nil when unknown.
type CanonicalProduct struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  *string         `json:"category"`
	Brand     *string         `json:"brand"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	PriceARS  int64           `json:"price_ars"`
	Stock     int             `json:"stock"`
	ImageURL  *string         `json:"image_url"`
	Provider  string          `json:"provider"`
	Warranty  *string         `json:"warranty"`
	DolarRate decimal.Decimal `json:"dolar_rate"`
}

// Valid reports whether the row can reach the staging table: it needs a SKU,
// a name and a positive USD price.
func (p CanonicalProduct) Valid() bool {
	return strings.TrimSpace(p.SKU) != "" &&
		strings.TrimSpace(p.Name) != "" &&
		p.PriceUSD.IsPositive()
}
