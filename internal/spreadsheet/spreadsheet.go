// Package spreadsheet reads the Invid price list workbook and rebuilds its
// category grouping. The workbook has no category column: categories appear
// as section header rows above the products they group.
package spreadsheet

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ValeenMar/tovaltech-sub001/internal/normalize"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var (
	reNumericCode = regexp.MustCompile(`^\d+$`)
	reCodeSuffix  = regexp.MustCompile(`\s*\(\d{4,}\)\s*$`)
	reInnerSpaces = regexp.MustCompile(`\s+`)
)

// Grid is a sheet as rows of cells; nil marks an empty cell.
type Grid [][]*string

// Layout locates the columns of interest. Price is the designated pricing
// column used both for products and to tell category rows apart.
type Layout struct {
	HeaderMarker string
	Code         int
	Name         int
	Warranty     int
	Stock        int
	Price        int
}

// DefaultLayout matches the "Lista de precios" export.
func DefaultLayout() Layout {
	return Layout{
		HeaderMarker: "Código",
		Code:         0,
		Name:         1,
		Warranty:     2,
		Stock:        3,
		Price:        4,
	}
}

// ProductRow is one product extracted from the grid, already cleaned.
type ProductRow struct {
	Code     string
	Name     string
	PriceUSD decimal.Decimal
	Stock    int
	Warranty *string
	Category *string
}

// Result holds the extracted products and the categories seen, in order.
// Rejected counts product rows (numeric code after the header) dropped for a
// missing name or a missing or non-positive price.
type Result struct {
	Rows       []ProductRow
	Categories []string
	Rejected   int
}

// State of the forward scan.
type State int

const (
	StateBeforeData State = iota // front matter, waiting for the header row
	StateInData                  // past the header, tracking the current category
)

func (s State) String() string {
	switch s {
	case StateBeforeData:
		return "before_data"
	case StateInData:
		return "in_data"
	default:
		return "unknown"
	}
}

// Extractor is the scan state machine. CurrentCategory is nil until the first
// category header row is seen and applies to every product row after it.
type Extractor struct {
	layout          Layout
	marker          string
	State           State
	CurrentCategory *string
	// Rejected counts product rows dropped so far.
	Rejected int
}

func NewExtractor(layout Layout) *Extractor {
	return &Extractor{
		layout: layout,
		marker: normalize.FoldAccents(layout.HeaderMarker),
		State:  StateBeforeData,
	}
}

// Step consumes one row. It returns a product when row is a usable product
// row; header, category, separator and invalid rows return false.
func (e *Extractor) Step(row []*string) (ProductRow, bool) {
	if e.State == StateBeforeData {
		if first := cell(row, 0); first != nil && normalize.FoldAccents(*first) == e.marker {
			e.State = StateInData
		}
		return ProductRow{}, false
	}

	code := cell(row, e.layout.Code)
	name := cell(row, e.layout.Name)
	price := cell(row, e.layout.Price)

	if code == nil && name != nil && price == nil {
		label := CategoryLabel(*name)
		if label != "" {
			e.CurrentCategory = &label
		}
		return ProductRow{}, false
	}

	if code == nil || !reNumericCode.MatchString(*code) {
		return ProductRow{}, false
	}
	if name == nil || price == nil {
		e.Rejected++
		return ProductRow{}, false
	}

	cleanName := strings.TrimSpace(reCodeSuffix.ReplaceAllString(*name, ""))
	if cleanName == "" {
		e.Rejected++
		return ProductRow{}, false
	}
	usd, ok := normalize.ParseLocaleNumber(*price)
	if !ok || !usd.IsPositive() {
		e.Rejected++
		return ProductRow{}, false
	}

	p := ProductRow{
		Code:     *code,
		Name:     cleanName,
		PriceUSD: normalize.RoundToCents(usd),
		Category: e.CurrentCategory,
	}
	if s := cell(row, e.layout.Stock); s != nil {
		p.Stock = max(0, normalize.ParseIntOrDefault(*s, 0))
	}
	if w := cell(row, e.layout.Warranty); w != nil {
		p.Warranty = normalize.NormalizeString(*w)
	}
	return p, true
}

// Extract scans grid from top to bottom.
func Extract(grid Grid, layout Layout) Result {
	e := NewExtractor(layout)
	var res Result
	seen := make(map[string]bool)

	for _, row := range grid {
		p, ok := e.Step(row)
		if e.CurrentCategory != nil && !seen[*e.CurrentCategory] {
			seen[*e.CurrentCategory] = true
			res.Categories = append(res.Categories, *e.CurrentCategory)
		}
		if ok {
			res.Rows = append(res.Rows, p)
		}
	}
	res.Rejected = e.Rejected
	return res
}

// CategoryLabel normalizes whitespace in a section header, including around
// the "/" separating hierarchy levels: "Notebooks  /Gamer" → "Notebooks / Gamer".
func CategoryLabel(raw string) string {
	parts := strings.Split(raw, "/")
	out := parts[:0]
	for _, p := range parts {
		p = reInnerSpaces.ReplaceAllString(strings.TrimSpace(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " / ")
}

// ReadGrid loads the first sheet of an xlsx workbook. Cells are read raw:
// number formats such as "#,##0.00" would otherwise render thousands
// separators that the locale parser takes for a decimal comma.
func ReadGrid(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: read sheet %q: %w", sheets[0], err)
	}

	grid := make(Grid, len(rows))
	for i, r := range rows {
		cells := make([]*string, len(r))
		for j, v := range r {
			cells[j] = normalize.NormalizeString(v)
		}
		grid[i] = cells
	}
	return grid, nil
}

func cell(row []*string, idx int) *string {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	c := row[idx]
	if c == nil || strings.TrimSpace(*c) == "" {
		return nil
	}
	return c
}
