package provider

import (
	"context"
	"net/http"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/shopspring/decimal"
)

// Settings configures which suppliers are enabled. A supplier without a URL
// is left out of the registry.
type Settings struct {
	Elit     CSVSource
	NewBytes CSVSource
	Invid    InvidSource

	// Dropped, when set, is told how many rows each fetch discarded.
	Dropped DropObserver
}

// DropObserver counts rows rejected during mapping.
type DropObserver interface {
	ObserveDropped(provider string, n int)
}

// Registry keeps providers in registration order. That order is the fetch
// order and decides which row wins when two suppliers share a SKU: the later
// one.
type Registry struct {
	providers []Provider
	byName    map[string]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{byName: make(map[string]Provider)}
	for _, p := range ps {
		r.Register(p)
	}
	return r
}

// Register appends p, replacing any provider already registered under its name.
func (r *Registry) Register(p Provider) {
	if _, exists := r.byName[p.Name()]; exists {
		for i, q := range r.providers {
			if q.Name() == p.Name() {
				r.providers[i] = p
			}
		}
	} else {
		r.providers = append(r.providers, p)
	}
	r.byName[p.Name()] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// All returns the providers in fetch order.
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

func (r *Registry) Len() int { return len(r.providers) }

// Build registers the enabled suppliers in the fixed order Elit, NewBytes, Invid.
func Build(s Settings, client *http.Client) *Registry {
	r := NewRegistry()
	if s.Elit.URL != "" {
		f := NewElit(s.Elit, client).(*csvFeed)
		f.dropped = s.Dropped
		r.Register(f)
	}
	if s.NewBytes.URL != "" {
		f := NewNewBytes(s.NewBytes, client).(*csvFeed)
		f.dropped = s.Dropped
		r.Register(f)
	}
	if s.Invid.ExportURL != "" {
		inv := NewInvid(s.Invid, client)
		inv.dropped = s.Dropped
		r.Register(inv)
	}
	return r
}

// Breaker runs fn unless it has tripped.
type Breaker interface {
	Execute(fn func() error) error
}

type guarded struct {
	Provider
	breaker Breaker
}

// WithBreaker routes every Fetch of p through b.
func WithBreaker(p Provider, b Breaker) Provider {
	return &guarded{Provider: p, breaker: b}
}

func (g *guarded) Fetch(ctx context.Context, rate decimal.Decimal) ([]model.CanonicalProduct, error) {
	var out []model.CanonicalProduct
	err := g.breaker.Execute(func() error {
		var err error
		out, err = g.Provider.Fetch(ctx, rate)
		return err
	})
	return out, err
}
