package dto

import "github.com/shopspring/decimal"

// ── Request DTOs ──────────────────────────────────────────────────────────────

// ActualizarCategoriaRequest sets a category's own markup and parent. A nil
// MarkupPct clears the override; an empty Padre detaches the category.
type ActualizarCategoriaRequest struct {
	MarkupPct *decimal.Decimal `json:"markup_pct" validate:"omitempty,min=0,max=1000"`
	Padre     *string          `json:"padre"      validate:"omitempty,max=120"`
}

type MarkupGlobalRequest struct {
	MarkupPct decimal.Decimal `json:"markup_pct" validate:"min=0,max=1000"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoriaResponse struct {
	ID        int64            `json:"id"`
	Nombre    string           `json:"nombre"`
	MarkupPct *decimal.Decimal `json:"markup_pct"`
	Padre     *string          `json:"padre,omitempty"`
	// MarkupEfectivo is the percentage pricing applies to products in this
	// category, after parent inheritance and the global fallback.
	MarkupEfectivo decimal.Decimal `json:"markup_efectivo"`
	MarkupOrigen   string          `json:"markup_origen"`
}

type MarkupGlobalResponse struct {
	MarkupPct decimal.Decimal `json:"markup_pct"`
	Default   bool            `json:"default"`
}
