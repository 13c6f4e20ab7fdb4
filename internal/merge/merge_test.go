package merge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ValeenMar/tovaltech-sub001/internal/merge"
	"github.com/ValeenMar/tovaltech-sub001/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDB struct {
	begins int
	err    error
}

func (s *stubDB) Begin(context.Context) (pgx.Tx, error) {
	s.begins++
	return nil, s.err
}

func product(sku, provider string, category *string) model.CanonicalProduct {
	return model.CanonicalProduct{
		SKU:      sku,
		Name:     "Producto " + sku,
		Category: category,
		PriceUSD: decimal.NewFromInt(10),
		Provider: provider,
	}
}

func strPtr(s string) *string { return &s }

func TestMerge_EmptyBatchIsNoop(t *testing.T) {
	db := &stubDB{}
	e := merge.NewEngine(db)

	out, err := e.Merge(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, merge.Outcome{}, out)
	assert.Zero(t, db.begins, "no transaction for an empty batch")
}

func TestMerge_BeginFailureWrapsErrMerge(t *testing.T) {
	cause := errors.New("connection refused")
	e := merge.NewEngine(&stubDB{err: cause})

	_, err := e.Merge(context.Background(), []model.CanonicalProduct{product("A", "elit", nil)})

	require.Error(t, err)
	assert.ErrorIs(t, err, merge.ErrMerge)
	assert.ErrorIs(t, err, cause)
}

func TestMerge_InvalidOnlyBatchIsNoop(t *testing.T) {
	db := &stubDB{}
	e := merge.NewEngine(db)

	noName := product("A", "custom", nil)
	noName.Name = "  "
	zeroPrice := product("B", "custom", nil)
	zeroPrice.PriceUSD = decimal.Zero

	out, err := e.Merge(context.Background(), []model.CanonicalProduct{noName, zeroPrice, product("", "custom", nil)})

	require.NoError(t, err)
	assert.Equal(t, merge.Outcome{}, out)
	assert.Zero(t, db.begins, "invalid products never reach staging")
}

func TestMerge_ValidProductsStillMerged(t *testing.T) {
	db := &stubDB{err: errors.New("refused")}
	e := merge.NewEngine(db)

	bad := product("B", "custom", nil)
	bad.PriceUSD = decimal.NewFromInt(-1)

	_, err := e.Merge(context.Background(), []model.CanonicalProduct{bad, product("A", "elit", nil)})

	assert.ErrorIs(t, err, merge.ErrMerge)
	assert.Equal(t, 1, db.begins, "the valid product opens a transaction")
}

func TestValidOnly(t *testing.T) {
	bad := product("B", "elit", nil)
	bad.PriceUSD = decimal.Zero

	out := merge.ValidOnly([]model.CanonicalProduct{product("A", "elit", nil), bad, product("C", "elit", nil)})

	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].SKU)
	assert.Equal(t, "C", out[1].SKU)
}

func TestLastBySKU(t *testing.T) {
	in := []model.CanonicalProduct{
		product("A", "elit", nil),
		product("B", "elit", nil),
		product("A", "invid", nil),
	}

	out := merge.LastBySKU(in)

	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].SKU)
	assert.Equal(t, "invid", out[0].Provider)
	assert.Equal(t, "B", out[1].SKU)
}

func TestCategoryLabels(t *testing.T) {
	in := []model.CanonicalProduct{
		product("A", "elit", strPtr(" Monitores ")),
		product("B", "elit", strPtr("Monitores")),
		product("C", "elit", strPtr("   ")),
		product("D", "elit", nil),
		product("E", "elit", strPtr("Almacenamiento / SSD")),
	}

	assert.Equal(t, []string{"Almacenamiento / SSD", "Monitores"}, merge.CategoryLabels(in))
}
