// Package markup resolves the sale markup of a catalog product with the
// product → category → global precedence and prices it for display.
package markup

import (
	"strings"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// Source names the tier a markup came from.
type Source string

const (
	SourceProduct  Source = "product"
	SourceCategory Source = "category"
	SourceGlobal   Source = "global"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Settings is an immutable snapshot of the category and global markups, as
// fractions (0.25 = 25%). CategoryMarkup is keyed by trimmed category name.
type Settings struct {
	GlobalMarkup   decimal.Decimal
	CategoryMarkup map[string]decimal.Decimal
}

// Resolution is the markup chosen for one product.
type Resolution struct {
	Markup decimal.Decimal
	Source Source
}

// Resolve applies the precedence: the product's own percentage, then its
// category, then the global markup. Magnitude plays no part.
func Resolve(p model.Producto, s Settings) Resolution {
	if p.MarkupPct != nil {
		return Resolution{Markup: p.MarkupPct.Div(hundred), Source: SourceProduct}
	}
	if p.Categoria != nil {
		if m, ok := s.CategoryMarkup[strings.TrimSpace(*p.Categoria)]; ok {
			return Resolution{Markup: m, Source: SourceCategory}
		}
	}
	return Resolution{Markup: s.GlobalMarkup, Source: SourceGlobal}
}

// Priced is a catalog product with its sale prices.
type Priced struct {
	model.Producto
	PrecioVentaARS int64
	PrecioVentaUSD decimal.Decimal
	MarkupPct      decimal.Decimal
	MarkupSource   Source
	Activo         bool
}

// ApplySalePricing is pure: the same product and settings always give the
// same output.
func ApplySalePricing(p model.Producto, s Settings) Priced {
	r := Resolve(p, s)
	factor := one.Add(r.Markup)

	return Priced{
		Producto:       p,
		PrecioVentaARS: decimal.NewFromInt(p.PrecioARS).Mul(factor).Round(0).IntPart(),
		PrecioVentaUSD: p.PrecioUSD.Mul(factor).Round(2),
		MarkupPct:      r.Markup.Mul(hundred).Round(1),
		MarkupSource:   r.Source,
		Activo:         p.Activo,
	}
}

// BuildSettings derives the snapshot from the stored rows. A category without
// its own percentage inherits its direct parent's; the lookup stops there.
// Categories with neither fall through to the global markup. globalPct nil
// means the setting is missing and defaultPct applies.
func BuildSettings(globalPct *decimal.Decimal, defaultPct decimal.Decimal, cats []model.Categoria) Settings {
	global := defaultPct
	if globalPct != nil {
		global = *globalPct
	}

	byID := make(map[int64]model.Categoria, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	catMarkup := make(map[string]decimal.Decimal, len(cats))
	for _, c := range cats {
		pct := c.MarkupPct
		if pct == nil && c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				pct = parent.MarkupPct
			}
		}
		if pct == nil {
			continue
		}
		catMarkup[strings.TrimSpace(c.Nombre)] = pct.Div(hundred)
	}

	return Settings{
		GlobalMarkup:   global.Div(hundred),
		CategoryMarkup: catMarkup,
	}
}
