package biomart

import "strings"

// Row is one tab-separated BioMart result line, keyed by attribute name.
// Responses carry no header row; names are assigned positionally from the
// attribute order of the query that produced them.
type Row map[string]string

// Get returns the value for a field, or "" when the field was absent
// (short rows leave trailing attributes unmapped).
func (r Row) Get(field string) string {
	return r[field]
}

// Has reports whether the field is present with a non-empty value.
func (r Row) Has(field string) bool {
	return r[field] != ""
}

// Rows splits raw BioMart TSV output into rows, zipping each line's
// tab-separated values with the given field names. Blank lines produce no
// row. The zip truncates to the shorter of the two sequences, so lines with
// fewer fields than names simply lack the trailing keys.
func Rows(data string, fields []string) []Row {
	var rows []Row
	for _, line := range strings.Split(data, "\n") {
		if line == "" {
			continue
		}
		values := strings.Split(line, "\t")
		row := make(Row, len(fields))
		for i, field := range fields {
			if i >= len(values) {
				break
			}
			row[field] = values[i]
		}
		rows = append(rows, row)
	}
	return rows
}
