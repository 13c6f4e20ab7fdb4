package markup_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValeenMar/tovaltech-sub001/internal/markup"
	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
func strPtr(s string) *string { return &s }
func idPtr(i int64) *int64    { return &i }

func settings() markup.Settings {
	return markup.Settings{
		GlobalMarkup:   dec("0.25"),
		CategoryMarkup: map[string]decimal.Decimal{"Monitores": dec("0.10")},
	}
}

func TestResolve_Precedence(t *testing.T) {
	s := settings()

	r := markup.Resolve(model.Producto{MarkupPct: decPtr("0"), Categoria: strPtr("Monitores")}, s)
	assert.Equal(t, markup.SourceProduct, r.Source)
	assert.True(t, r.Markup.IsZero(), "zero own markup still wins")

	r = markup.Resolve(model.Producto{Categoria: strPtr("  Monitores ")}, s)
	assert.Equal(t, markup.SourceCategory, r.Source)
	assert.True(t, r.Markup.Equal(dec("0.10")))

	r = markup.Resolve(model.Producto{Categoria: strPtr("Teclados")}, s)
	assert.Equal(t, markup.SourceGlobal, r.Source)
	assert.True(t, r.Markup.Equal(dec("0.25")))

	r = markup.Resolve(model.Producto{}, s)
	assert.Equal(t, markup.SourceGlobal, r.Source)
}

func TestApplySalePricing(t *testing.T) {
	p := model.Producto{
		SKU:       "A1",
		PrecioUSD: dec("10.005"),
		PrecioARS: 10001,
		Categoria: strPtr("Monitores"),
		Activo:    true,
	}

	out := markup.ApplySalePricing(p, settings())

	assert.Equal(t, int64(11001), out.PrecioVentaARS)
	assert.True(t, out.PrecioVentaUSD.Equal(dec("11.01")), out.PrecioVentaUSD.String())
	assert.True(t, out.MarkupPct.Equal(dec("10")))
	assert.Equal(t, markup.SourceCategory, out.MarkupSource)
	assert.True(t, out.Activo)
	assert.Equal(t, "A1", out.SKU)

	again := markup.ApplySalePricing(p, settings())
	assert.Equal(t, out.PrecioVentaARS, again.PrecioVentaARS)
	assert.True(t, out.PrecioVentaUSD.Equal(again.PrecioVentaUSD))
}

func TestApplySalePricing_InactiveAndOwnMarkup(t *testing.T) {
	p := model.Producto{PrecioARS: 1000, PrecioUSD: dec("1"), MarkupPct: decPtr("12.34")}

	out := markup.ApplySalePricing(p, settings())

	assert.False(t, out.Activo)
	assert.Equal(t, markup.SourceProduct, out.MarkupSource)
	assert.True(t, out.MarkupPct.Equal(dec("12.3")), out.MarkupPct.String())
	assert.Equal(t, int64(1123), out.PrecioVentaARS)
}

func TestBuildSettings_InheritsOneLevel(t *testing.T) {
	cats := []model.Categoria{
		{ID: 1, Nombre: "Hardware", MarkupPct: decPtr("30")},
		{ID: 2, Nombre: "Discos", ParentID: idPtr(1)},
		{ID: 3, Nombre: "SSD NVMe", ParentID: idPtr(2)},
		{ID: 4, Nombre: "Audio", MarkupPct: decPtr("15"), ParentID: idPtr(1)},
		{ID: 5, Nombre: "Huérfana", ParentID: idPtr(99)},
	}

	s := markup.BuildSettings(decPtr("20"), dec("25"), cats)

	assert.True(t, s.GlobalMarkup.Equal(dec("0.2")))
	assert.True(t, s.CategoryMarkup["Hardware"].Equal(dec("0.3")))
	assert.True(t, s.CategoryMarkup["Discos"].Equal(dec("0.3")))
	assert.True(t, s.CategoryMarkup["Audio"].Equal(dec("0.15")))
	_, ok := s.CategoryMarkup["SSD NVMe"]
	assert.False(t, ok, "grandparent markup is not inherited")
	_, ok = s.CategoryMarkup["Huérfana"]
	assert.False(t, ok)
}

func TestBuildSettings_DefaultGlobal(t *testing.T) {
	s := markup.BuildSettings(nil, dec("25"), nil)
	assert.True(t, s.GlobalMarkup.Equal(dec("0.25")))
	assert.Empty(t, s.CategoryMarkup)
}

// ── Cache ────────────────────────────────────────────────────────────────────

type countingLoader struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (l *countingLoader) LoadSettings(ctx context.Context) (markup.Settings, error) {
	n := l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.err != nil {
		return markup.Settings{}, l.err
	}
	return markup.Settings{GlobalMarkup: decimal.NewFromInt(int64(n))}, nil
}

func TestCache_ServesWithinTTL(t *testing.T) {
	l := &countingLoader{}
	c := markup.NewCache(l, 2*time.Minute)
	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	s, err := c.Get(context.Background(), t0)
	require.NoError(t, err)
	assert.True(t, s.GlobalMarkup.Equal(dec("1")))

	s, err = c.Get(context.Background(), t0.Add(119*time.Second))
	require.NoError(t, err)
	assert.True(t, s.GlobalMarkup.Equal(dec("1")))
	assert.Equal(t, int32(1), l.calls.Load())

	s, err = c.Get(context.Background(), t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, s.GlobalMarkup.Equal(dec("2")))
	assert.Equal(t, int32(2), l.calls.Load())
}

func TestCache_Invalidate(t *testing.T) {
	l := &countingLoader{}
	c := markup.NewCache(l, time.Hour)
	now := time.Now()

	_, err := c.Get(context.Background(), now)
	require.NoError(t, err)
	c.Invalidate()
	s, err := c.Get(context.Background(), now)
	require.NoError(t, err)

	assert.True(t, s.GlobalMarkup.Equal(dec("2")))
}

func TestCache_ConcurrentReadersLoadOnce(t *testing.T) {
	l := &countingLoader{delay: 50 * time.Millisecond}
	c := markup.NewCache(l, time.Hour)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background(), now)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), l.calls.Load())
}

func TestCache_ErrorWithoutSnapshot(t *testing.T) {
	l := &countingLoader{err: errors.New("db down")}
	c := markup.NewCache(l, time.Minute)

	_, err := c.Get(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestCache_ServesStaleOnReloadError(t *testing.T) {
	l := &countingLoader{}
	c := markup.NewCache(l, time.Minute)
	t0 := time.Now()

	_, err := c.Get(context.Background(), t0)
	require.NoError(t, err)

	l.err = errors.New("db down")
	s, err := c.Get(context.Background(), t0.Add(5*time.Minute))
	require.NoError(t, err)
	assert.True(t, s.GlobalMarkup.Equal(dec("1")))
}

type fakeStore struct {
	global *decimal.Decimal
	cats   []model.Categoria
}

func (f fakeStore) GlobalMarkupPct(context.Context) (*decimal.Decimal, error) { return f.global, nil }
func (f fakeStore) ListCategorias(context.Context) ([]model.Categoria, error) { return f.cats, nil }

func TestStoreLoader(t *testing.T) {
	l := markup.StoreLoader{
		Store:      fakeStore{cats: []model.Categoria{{ID: 1, Nombre: "Monitores", MarkupPct: decPtr("10")}}},
		DefaultPct: dec("25"),
	}

	s, err := l.LoadSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, s.GlobalMarkup.Equal(dec("0.25")))
	assert.True(t, s.CategoryMarkup["Monitores"].Equal(dec("0.1")))
}
