package delimited_test

import (
	"testing"

	"github.com/ValeenMar/tovaltech-sub001/internal/delimited"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_QuotedFieldWithDelimiter(t *testing.T) {
	rows := delimited.Tokenize(`a,"b,c",d`, ',')
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "b,c", "d"}, rows[0])
}

func TestTokenize_EscapedDoubleQuote(t *testing.T) {
	rows := delimited.Tokenize(`"Monitor 24"" IPS";10`, ';')
	require.Len(t, rows, 1)
	assert.Equal(t, []string{`Monitor 24" IPS`, "10"}, rows[0])
}

func TestTokenize_EmbeddedNewline(t *testing.T) {
	rows := delimited.Tokenize("sku,nombre\r\n1,\"linea 1\r\nlinea 2\"\r\n", ',')
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"sku", "nombre"}, rows[0])
	assert.Equal(t, []string{"1", "linea 1\nlinea 2"}, rows[1])
}

func TestTokenize_TrailingEmptyRowDropped(t *testing.T) {
	rows := delimited.Tokenize("a;b\n1;2\n", ';')
	assert.Len(t, rows, 2)
}

func TestTokenize_MiddleRowsKept(t *testing.T) {
	rows := delimited.Tokenize("a\n\nsolo", ',')
	require.Len(t, rows, 3)
	assert.Equal(t, []string{""}, rows[1])
	assert.Equal(t, []string{"solo"}, rows[2])
}

func TestTokenize_EmptyText(t *testing.T) {
	assert.Empty(t, delimited.Tokenize("", ','))
}

func TestRecords_PadsMissingFields(t *testing.T) {
	recs := delimited.Parse("codigo, nombre ,stock\nA1,Mouse\nB2,Teclado,5,extra\n", ',')
	require.Len(t, recs, 2)

	assert.Equal(t, "A1", recs[0]["codigo"])
	assert.Equal(t, "Mouse", recs[0]["nombre"])
	v, ok := recs[0]["stock"]
	assert.True(t, ok)
	assert.Equal(t, "", v)

	assert.Equal(t, "5", recs[1]["stock"])
	assert.Len(t, recs[1], 3)
}

func TestRecord_GetFirstNonEmpty(t *testing.T) {
	rec := delimited.Record{"PRECIO USD CON UTILIDAD": " ", "PRECIO FINAL USD": "12,5"}
	assert.Equal(t, "12,5", rec.Get("PRECIO USD CON UTILIDAD", "PRECIO FINAL USD"))
	assert.Equal(t, "", rec.Get("NO EXISTE"))
}
