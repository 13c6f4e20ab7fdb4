// Package normalize holds the value cleanup helpers shared by every supplier
// adapter: locale-aware number parsing, integer coercion, string nullification
// and cent rounding.
package normalize

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reNotDigitOrDot   = regexp.MustCompile(`[^0-9.]`)
	reNotNumeric      = regexp.MustCompile(`[^0-9.\-]`)
	reNotDigitOrMinus = regexp.MustCompile(`[^0-9\-]`)
)

// ParseLocaleNumber parses a supplier price.
//
// When the value contains a comma it is read with the es-AR convention
// ("1.234,56"): dots are thousands separators and the comma is the decimal
// mark; currency symbols and spaces are dropped. Otherwise every character that is not a digit or a dot is dropped and
// the remainder parsed as-is ("USD 1234.56"). Empty, "-" and unparsable values
// report ok=false.
func ParseLocaleNumber(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return decimal.Zero, false
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
		s = reNotNumeric.ReplaceAllString(s, "")
	} else {
		s = reNotDigitOrDot.ReplaceAllString(s, "")
	}
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseIntOrDefault keeps only digits and minus signs and parses the result,
// falling back when nothing usable remains.
func ParseIntOrDefault(raw string, fallback int) int {
	s := reNotDigitOrMinus.ReplaceAllString(raw, "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// NormalizeString trims raw and returns nil when nothing is left.
func NormalizeString(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// RoundToCents rounds half-up to two decimal places.
func RoundToCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FoldAccents lower-cases s and strips combining marks, so "Código" and
// "CODIGO" compare equal.
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}

// DecodeLatin1 converts a Windows-1252 payload to UTF-8.
func DecodeLatin1(b []byte) ([]byte, error) {
	r := transform.NewReader(bytes.NewReader(b), charmap.Windows1252.NewDecoder())
	return io.ReadAll(r)
}
