// Package provider holds one adapter per supplier. Every adapter downloads its
// feed, maps each row independently onto model.CanonicalProduct and drops the
// rows that cannot be priced or identified.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// Provider is a supplier feed that can be fetched and normalized.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, rate decimal.Decimal) ([]model.CanonicalProduct, error)
}

// Provider identifiers, also written to the provider column.
const (
	NameElit     = "elit"
	NameNewBytes = "newbytes"
	NameInvid    = "invid"
)

// priceARS prefers the supplier's own local price and otherwise converts the
// USD price with the run's reference rate. Never negative.
func priceARS(usd, rate decimal.Decimal, native *decimal.Decimal) int64 {
	v := usd.Mul(rate)
	if native != nil {
		v = *native
	}
	return max(0, v.Round(0).IntPart())
}

// auditRate is the rate recorded on every row.
func auditRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Round(2)
}

// get downloads url and fails with a *FetchError on any non-2xx status.
func get(ctx context.Context, client *http.Client, provider, url string, cookies []*http.Cookie) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: build request: %w", provider, err)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, &FetchError{Provider: provider, Source: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &FetchError{Provider: provider, Source: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &FetchError{Provider: provider, Source: url, Err: err}
	}
	return resp, body, nil
}
