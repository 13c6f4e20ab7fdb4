package normalize_test

import (
	"testing"

	"github.com/ValeenMar/tovaltech-sub001/internal/normalize"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocaleNumber_BothConventions(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"  12,5 ", "12.5"},
		{"USD 99.90", "99.9"},
		{"$ 1.000.000,00", "1000000"},
		{"0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := normalize.ParseLocaleNumber(tc.raw)
			require.True(t, ok)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseLocaleNumber_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "-", "abc", "1.2.3", "consultar"} {
		_, ok := normalize.ParseLocaleNumber(raw)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestParseIntOrDefault(t *testing.T) {
	assert.Equal(t, 15, normalize.ParseIntOrDefault("15 u.", 0))
	assert.Equal(t, -3, normalize.ParseIntOrDefault("-3", 0))
	assert.Equal(t, 7, normalize.ParseIntOrDefault("sin stock", 7))
	assert.Equal(t, 0, normalize.ParseIntOrDefault("", 0))
}

func TestNormalizeString(t *testing.T) {
	assert.Nil(t, normalize.NormalizeString("   "))
	got := normalize.NormalizeString("  Logitech ")
	require.NotNil(t, got)
	assert.Equal(t, "Logitech", *got)
}

func TestRoundToCents(t *testing.T) {
	assert.Equal(t, "10.13", normalize.RoundToCents(decimal.RequireFromString("10.125")).StringFixed(2))
	assert.Equal(t, "10.12", normalize.RoundToCents(decimal.RequireFromString("10.1249")).StringFixed(2))
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "codigo", normalize.FoldAccents(" Código "))
	assert.Equal(t, normalize.FoldAccents("CODIGO"), normalize.FoldAccents("código"))
}

func TestDecodeLatin1(t *testing.T) {
	out, err := normalize.DecodeLatin1([]byte{'C', 0xF3, 'd', 'i', 'g', 'o'})
	require.NoError(t, err)
	assert.Equal(t, "Código", string(out))
}
