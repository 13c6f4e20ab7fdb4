package dto

import "github.com/shopspring/decimal"

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre    string `form:"nombre"    validate:"omitempty,max=120"`
	Categoria string `form:"categoria" validate:"omitempty,max=120"`
	Marca     string `form:"marca"     validate:"omitempty,max=80"`
	Proveedor string `form:"proveedor" validate:"omitempty,oneof=elit newbytes invid"`
	// Activo: "true" (default) | "false" | "all"
	Activo string `form:"activo" validate:"omitempty,oneof=true false all"`
	Page   int    `form:"page,default=1"  validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	SKU            string          `json:"sku"`
	Nombre         string          `json:"nombre"`
	Categoria      *string         `json:"categoria"`
	Marca          *string         `json:"marca"`
	Descripcion    *string         `json:"descripcion"`
	ImagenURL      *string         `json:"imagen_url"`
	Garantia       *string         `json:"garantia"`
	Proveedor      string          `json:"proveedor"`
	Stock          int             `json:"stock"`
	PrecioCostoUSD decimal.Decimal `json:"precio_costo_usd"`
	PrecioCostoARS int64           `json:"precio_costo_ars"`
	PrecioVentaUSD decimal.Decimal `json:"precio_venta_usd"`
	PrecioVentaARS int64           `json:"precio_venta_ars"`
	MarkupPct      decimal.Decimal `json:"markup_pct"`
	MarkupOrigen   string          `json:"markup_origen"`
	DolarRate      decimal.Decimal `json:"dolar_rate"`
	Destacado      bool            `json:"destacado"`
	Activo         bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
