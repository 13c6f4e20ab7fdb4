package markup

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a loaded snapshot is served before reloading.
const DefaultTTL = 2 * time.Minute

// Loader builds a fresh Settings snapshot.
type Loader interface {
	LoadSettings(ctx context.Context) (Settings, error)
}

// Store is the persistence the StoreLoader reads in one pass.
type Store interface {
	GlobalMarkupPct(ctx context.Context) (*decimal.Decimal, error)
	ListCategorias(ctx context.Context) ([]model.Categoria, error)
}

// StoreLoader loads settings from a Store, using DefaultPct when the global
// setting has never been written.
type StoreLoader struct {
	Store      Store
	DefaultPct decimal.Decimal
}

func (l StoreLoader) LoadSettings(ctx context.Context) (Settings, error) {
	global, err := l.Store.GlobalMarkupPct(ctx)
	if err != nil {
		return Settings{}, err
	}
	cats, err := l.Store.ListCategorias(ctx)
	if err != nil {
		return Settings{}, err
	}
	return BuildSettings(global, l.DefaultPct, cats), nil
}

type snapshot struct {
	settings Settings
	loadedAt time.Time
	gen      uint64
}

// Cache serves Settings snapshots for ttl. Readers load an immutable pointer
// and never wait on each other; concurrent reloads collapse into one loader
// call.
type Cache struct {
	loader  Loader
	ttl     time.Duration
	current atomic.Pointer[snapshot]
	gen     atomic.Uint64
	group   singleflight.Group
}

func NewCache(loader Loader, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{loader: loader, ttl: ttl}
}

// Get returns the cached snapshot if it was loaded less than ttl before now,
// and reloads otherwise. When a reload fails and an older snapshot exists,
// the older snapshot is served and the error only logged.
func (c *Cache) Get(ctx context.Context, now time.Time) (Settings, error) {
	cur := c.current.Load()
	if cur != nil && cur.gen == c.gen.Load() && now.Sub(cur.loadedAt) < c.ttl {
		return cur.settings, nil
	}

	v, err, _ := c.group.Do("settings", func() (interface{}, error) {
		gen := c.gen.Load()
		s, err := c.loader.LoadSettings(ctx)
		if err != nil {
			return nil, err
		}
		snap := &snapshot{settings: s, loadedAt: now, gen: gen}
		if c.gen.Load() == gen {
			c.current.Store(snap)
		}
		return s, nil
	})
	if err != nil {
		if cur != nil {
			log.Warn().Err(err).Msg("markup: reload failed, serving previous snapshot")
			return cur.settings, nil
		}
		return Settings{}, err
	}
	return v.(Settings), nil
}

// Invalidate forces the next Get to reload regardless of age.
func (c *Cache) Invalidate() {
	c.gen.Add(1)
	c.current.Store(nil)
}
