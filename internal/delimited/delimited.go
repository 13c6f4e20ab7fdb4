// Package delimited tokenizes the comma and semicolon separated price lists
// published by suppliers and projects them onto header-keyed records.
//
// encoding/csv is not used: it skips blank lines, rejects bare quotes and keeps
// carriage returns inside quoted fields, and supplier feeds depend on the
// opposite behaviour for all three.
package delimited

import "strings"

// Record is one data row keyed by the (trimmed) header labels.
type Record map[string]string

// Get returns the first non-empty value among keys, trimmed.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Tokenize splits text into rows of fields. Quoted fields may contain the
// delimiter and newlines, and "" inside quotes decodes to a single quote.
// Carriage returns are ignored. A final row made of one empty field (the
// artifact of a trailing newline) is dropped.
func Tokenize(text string, delim rune) [][]string {
	var (
		rows    [][]string
		row     []string
		field   strings.Builder
		inQuote bool
	)

	src := []rune(text)
	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inQuote {
			switch {
			case ch == '"' && i+1 < len(src) && src[i+1] == '"':
				field.WriteRune('"')
				i++
			case ch == '"':
				inQuote = false
			case ch == '\r':
			default:
				field.WriteRune(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inQuote = true
		case delim:
			row = append(row, field.String())
			field.Reset()
		case '\r':
		case '\n':
			row = append(row, field.String())
			field.Reset()
			rows = append(rows, row)
			row = nil
		default:
			field.WriteRune(ch)
		}
	}

	row = append(row, field.String())
	rows = append(rows, row)

	if last := rows[len(rows)-1]; len(last) == 1 && last[0] == "" {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// Records turns the first row into header keys and maps every following row
// onto them. Rows shorter than the header get "" for the missing trailing
// fields; fields beyond the header are ignored.
func Records(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := make([]Record, 0, len(rows)-1)
	for _, r := range rows[1:] {
		rec := make(Record, len(header))
		for i, key := range header {
			if i < len(r) {
				rec[key] = r[i]
			} else {
				rec[key] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// Parse is Tokenize followed by Records.
func Parse(text string, delim rune) []Record {
	return Records(Tokenize(text, delim))
}
