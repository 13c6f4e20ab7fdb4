package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ValeenMar/tovaltech-sub001/internal/delimited"
	"github.com/ValeenMar/tovaltech-sub001/internal/model"
	"github.com/ValeenMar/tovaltech-sub001/internal/normalize"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CSVSource locates a delimited price list.
type CSVSource struct {
	URL      string
	Encoding string // "" or "utf-8" | "latin1"
}

// rowMapper converts one record; false means the row is dropped.
type rowMapper func(rec delimited.Record, rate decimal.Decimal) (model.CanonicalProduct, bool)

// csvFeed is the shared download → tokenize → map loop of the CSV suppliers.
type csvFeed struct {
	name    string
	source  CSVSource
	delim   rune
	mapRow  rowMapper
	client  *http.Client
	dropped DropObserver
}

func (f *csvFeed) Name() string { return f.name }

func (f *csvFeed) Fetch(ctx context.Context, rate decimal.Decimal) ([]model.CanonicalProduct, error) {
	_, body, err := get(ctx, f.client, f.name, f.source.URL, nil)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(f.source.Encoding, "latin1") {
		if body, err = normalize.DecodeLatin1(body); err != nil {
			return nil, fmt.Errorf("%s: decode latin1: %w", f.name, err)
		}
	}

	records := delimited.Parse(string(body), f.delim)
	products := mapRecords(records, rate, f.mapRow)
	if f.dropped != nil {
		f.dropped.ObserveDropped(f.name, len(records)-len(products))
	}

	log.Info().
		Str("provider", f.name).
		Int("rows", len(records)).
		Int("products", len(products)).
		Int("dropped", len(records)-len(products)).
		Msg("provider: feed parsed")
	return products, nil
}

func mapRecords(records []delimited.Record, rate decimal.Decimal, fn rowMapper) []model.CanonicalProduct {
	out := make([]model.CanonicalProduct, 0, len(records))
	for _, rec := range records {
		p, ok := fn(rec, rate)
		if !ok || !p.Valid() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// NewElit builds the Elit adapter (comma separated feed).
func NewElit(src CSVSource, client *http.Client) Provider {
	return &csvFeed{name: NameElit, source: src, delim: ',', mapRow: MapElitRow, client: client}
}

// NewNewBytes builds the NewBytes adapter (semicolon separated feed).
func NewNewBytes(src CSVSource, client *http.Client) Provider {
	return &csvFeed{name: NameNewBytes, source: src, delim: ';', mapRow: MapNewBytesRow, client: client}
}

// MapElitRow maps one Elit record. Elit publishes its own ARS retail price
// (pvp_ars), which wins over the converted USD price.
func MapElitRow(rec delimited.Record, rate decimal.Decimal) (model.CanonicalProduct, bool) {
	sku := rec.Get("codigo_producto", "codigo_alfa")
	name := rec.Get("nombre")
	usd, ok := normalize.ParseLocaleNumber(rec.Get("precio"))
	if sku == "" || name == "" || !ok || !usd.IsPositive() {
		return model.CanonicalProduct{}, false
	}
	usd = normalize.RoundToCents(usd)

	var native *decimal.Decimal
	if ars, ok := normalize.ParseLocaleNumber(rec.Get("pvp_ars")); ok {
		native = &ars
	}

	return model.CanonicalProduct{
		SKU:       sku,
		Name:      name,
		Category:  normalize.NormalizeString(rec.Get("categoria")),
		Brand:     normalize.NormalizeString(rec.Get("marca")),
		PriceUSD:  usd,
		PriceARS:  priceARS(usd, rate, native),
		Stock:     max(0, normalize.ParseIntOrDefault(rec.Get("stock_total"), 0)),
		ImageURL:  normalize.NormalizeString(rec.Get("imagen")),
		Provider:  NameElit,
		Warranty:  normalize.NormalizeString(rec.Get("garantia")),
		DolarRate: auditRate(rate),
	}, true
}

// MapNewBytesRow maps one NewBytes record. The price comes from the column
// with the reseller margin already applied, falling back to the final price.
func MapNewBytesRow(rec delimited.Record, rate decimal.Decimal) (model.CanonicalProduct, bool) {
	sku := rec.Get("CODIGO")
	name := rec.Get("DETALLE")
	usd, ok := normalize.ParseLocaleNumber(rec.Get("PRECIO USD CON UTILIDAD", "PRECIO FINAL USD"))
	if sku == "" || name == "" || !ok || !usd.IsPositive() {
		return model.CanonicalProduct{}, false
	}
	usd = normalize.RoundToCents(usd)

	return model.CanonicalProduct{
		SKU:       sku,
		Name:      name,
		Category:  normalize.NormalizeString(rec.Get("CATEGORIA")),
		Brand:     normalize.NormalizeString(rec.Get("MARCA")),
		PriceUSD:  usd,
		PriceARS:  priceARS(usd, rate, nil),
		Stock:     max(0, normalize.ParseIntOrDefault(rec.Get("STOCK"), 0)),
		ImageURL:  normalize.NormalizeString(rec.Get("IMAGEN")),
		Provider:  NameNewBytes,
		Warranty:  normalize.NormalizeString(rec.Get("GARANTIA")),
		DolarRate: auditRate(rate),
	}, true
}
