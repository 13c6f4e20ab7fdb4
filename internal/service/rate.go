package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNoRate means neither a fixed rate nor a rate URL is configured.
var ErrNoRate = errors.New("no hay cotización configurada (DOLAR_RATE o DOLAR_RATE_URL)")

// RateSource resolves the reference USD→ARS rate, once per run.
type RateSource interface {
	Rate(ctx context.Context) (decimal.Decimal, error)
}

// FixedRate always returns the same rate.
type FixedRate decimal.Decimal

func (f FixedRate) Rate(context.Context) (decimal.Decimal, error) {
	return decimal.Decimal(f), nil
}

// HTTPRate reads {"venta": n} from URL.
type HTTPRate struct {
	URL    string
	Client *http.Client
}

func (h HTTPRate) Rate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate: build request: %w", err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate: %s: %w", h.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return decimal.Zero, fmt.Errorf("rate: %s returned status %d", h.URL, resp.StatusCode)
	}

	var body struct {
		Venta decimal.Decimal `json:"venta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("rate: decode response: %w", err)
	}
	if !body.Venta.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate: %s returned non-positive venta %s", h.URL, body.Venta)
	}
	return body.Venta, nil
}

type missingRate struct{}

func (missingRate) Rate(context.Context) (decimal.Decimal, error) { return decimal.Zero, ErrNoRate }

// NewRateSource prefers a fixed rate, then the URL. With neither, every run
// fails at the rate step.
func NewRateSource(fixed decimal.Decimal, url string, client *http.Client) RateSource {
	switch {
	case fixed.IsPositive():
		return FixedRate(fixed)
	case url != "":
		return HTTPRate{URL: url, Client: client}
	default:
		return missingRate{}
	}
}
