package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"
	"github.com/ValeenMar/tovaltech-sub001/internal/spreadsheet"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// InvidSKUPrefix namespaces Invid's bare numeric codes in the catalog.
const InvidSKUPrefix = "INV-"

// InvidSource holds the login form and export endpoints plus credentials.
type InvidSource struct {
	LoginURL  string
	ExportURL string
	User      string
	Password  string
	Layout    spreadsheet.Layout
}

// Invid logs in with a form POST, keeps the session cookies and downloads the
// price list workbook with them.
type Invid struct {
	source  InvidSource
	login   *http.Client
	export  *http.Client
	dropped DropObserver
}

// NewInvid builds the adapter. The login client does not follow redirects so
// the session cookies set on the login redirect stay visible; the export
// client does, so an expired session lands on the HTML login page.
func NewInvid(src InvidSource, client *http.Client) *Invid {
	export := *client
	export.Jar = nil

	login := export
	login.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if src.Layout.HeaderMarker == "" {
		src.Layout = spreadsheet.DefaultLayout()
	}
	return &Invid{source: src, login: &login, export: &export}
}

func (p *Invid) Name() string { return NameInvid }

func (p *Invid) Fetch(ctx context.Context, rate decimal.Decimal) ([]model.CanonicalProduct, error) {
	cookies, err := p.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	body, err := p.download(ctx, cookies)
	if err != nil {
		return nil, err
	}

	grid, err := spreadsheet.ReadGrid(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", NameInvid, err)
	}
	res := spreadsheet.Extract(grid, p.source.Layout)

	products := make([]model.CanonicalProduct, 0, len(res.Rows))
	for _, row := range res.Rows {
		if cp, ok := MapInvidRow(row, rate); ok {
			products = append(products, cp)
		}
	}
	if p.dropped != nil {
		p.dropped.ObserveDropped(NameInvid, res.Rejected+len(res.Rows)-len(products))
	}

	log.Info().
		Str("provider", NameInvid).
		Int("rows", len(grid)).
		Int("products", len(products)).
		Int("categories", len(res.Categories)).
		Msg("provider: workbook parsed")
	return products, nil
}

// download fetches the workbook with the session cookies. A session the
// portal no longer accepts shows up as a redirect or auth status that was
// not followed to a workbook, or as an HTML page.
func (p *Invid) download(ctx context.Context, cookies []*http.Cookie) ([]byte, error) {
	src := p.source.ExportURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", NameInvid, err)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := p.export.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: NameInvid, Source: src, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Provider: NameInvid, Reason: ReasonInvalidSession, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &FetchError{Provider: NameInvid, Source: src, Status: resp.StatusCode}
	case strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "text/html"):
		return nil, &AuthError{Provider: NameInvid, Reason: ReasonInvalidSession, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Provider: NameInvid, Source: src, Err: err}
	}
	return body, nil
}

// authenticate posts the credentials and returns the session cookies.
func (p *Invid) authenticate(ctx context.Context) ([]*http.Cookie, error) {
	if p.source.User == "" || p.source.Password == "" {
		return nil, &AuthError{Provider: NameInvid, Reason: ReasonMissingCredentials}
	}

	form := url.Values{}
	form.Set("usuario", p.source.User)
	form.Set("clave", p.source.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.source.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: build login request: %w", NameInvid, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.login.Do(req)
	if err != nil {
		return nil, &FetchError{Provider: NameInvid, Source: p.source.LoginURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{Provider: NameInvid, Source: p.source.LoginURL, Status: resp.StatusCode}
	}

	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return nil, &AuthError{Provider: NameInvid, Reason: ReasonNoSessionCookie, Status: resp.StatusCode}
	}
	return cookies, nil
}

// MapInvidRow converts an extracted spreadsheet row. Invid has no brand,
// image nor native ARS price.
func MapInvidRow(row spreadsheet.ProductRow, rate decimal.Decimal) (model.CanonicalProduct, bool) {
	cp := model.CanonicalProduct{
		SKU:       InvidSKUPrefix + row.Code,
		Name:      row.Name,
		Category:  row.Category,
		PriceUSD:  row.PriceUSD,
		PriceARS:  priceARS(row.PriceUSD, rate, nil),
		Stock:     row.Stock,
		Provider:  NameInvid,
		Warranty:  row.Warranty,
		DolarRate: auditRate(rate),
	}
	if row.Code == "" || !cp.Valid() {
		return model.CanonicalProduct{}, false
	}
	return cp, true
}
