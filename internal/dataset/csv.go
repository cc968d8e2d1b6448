package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"campaigniq-backend/internal/catalog"
)

// MaxHeaderSearchRows is the maximum number of leading rows scanned for the
// header (exported tooling sometimes prefixes title rows).
var MaxHeaderSearchRows = 20

// DecodeCSV parses an uploaded CSV file into raw rows keyed by the dataset's
// column names. The header is matched case-insensitively and may appear
// after preamble rows; empty rows are skipped; cells for columns the schema
// does not know are ignored.
func DecodeCSV(ds *catalog.Dataset, data []byte) ([]RawRow, error) {
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headerIdx := findHeader(records, ds)
	if headerIdx < 0 {
		return nil, fmt.Errorf("header not found (expected columns: %s)",
			strings.Join(ds.FieldNames(), ", "))
	}

	// Map column position -> schema field name.
	colNames := make(map[int]string)
	for pos, cell := range records[headerIdx] {
		name := strings.ToLower(cleanCell(cell))
		if ds.HasField(name) {
			colNames[pos] = name
		}
	}

	var rows []RawRow
	for _, record := range records[headerIdx+1:] {
		if isEmptyRow(record) {
			continue
		}
		row := make(RawRow, len(colNames))
		for pos, name := range colNames {
			if pos >= len(record) {
				continue
			}
			row[name] = cleanCell(record[pos])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findHeader returns the index of the first leading row containing every
// required column name, or -1.
func findHeader(records [][]string, ds *catalog.Dataset) int {
	maxRows := MaxHeaderSearchRows
	if len(records) < maxRows {
		maxRows = len(records)
	}

	required := ds.RequiredFields()
	for i := 0; i < maxRows; i++ {
		seen := make(map[string]bool, len(records[i]))
		for _, cell := range records[i] {
			seen[strings.ToLower(cleanCell(cell))] = true
		}
		found := true
		for _, f := range required {
			if !seen[f.Name] {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\uFEFF"))
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences so the csv reader never
// chokes on exports from spreadsheet tools.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}
