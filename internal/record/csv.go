package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CanonicalizeHeader normalizes a CSV column name: trimmed, lowercased,
// inner spaces replaced with underscores. "Order Date" and "order_date"
// address the same field.
func CanonicalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return strings.ReplaceAll(h, " ", "_")
}

// ReadCSV reads an entire CSV document into loosely typed rows keyed by
// canonicalized header name. Cell values are trimmed but otherwise untouched;
// type coercion happens at normalization.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = CanonicalizeHeader(h)
	}

	var rows []RawRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}
		row := make(RawRow, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[c] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
