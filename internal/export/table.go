// Package export parses provider CSV exports whose column names and order are
// not fixed in advance. Columns are resolved through synonym tables on every
// call, and bad rows are skipped rather than failing the parse.
package export

import (
	"encoding/csv"
	"strings"
)

// table is a tokenized export: a header plus the rows that tokenized cleanly
type table struct {
	header  []string
	rows    [][]string
	skipped int
}

// readTable splits text into lines, detects the delimiter from the header and
// tokenizes each line on its own so one malformed line cannot affect the rest.
// Returns nil when there is no header plus at least one data line.
func readTable(text string) *table {
	text = strings.TrimPrefix(text, "\ufeff")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil
	}

	delimiter := detectDelimiter(lines[0])

	header, err := splitLine(lines[0], delimiter)
	if err != nil {
		return nil
	}

	t := &table{header: header}
	for _, line := range lines[1:] {
		fields, err := splitLine(line, delimiter)
		if err != nil {
			t.skipped++
			continue
		}
		t.rows = append(t.rows, fields)
	}
	return t
}

// detectDelimiter picks ';' only when it outnumbers ',' in the header line
func detectDelimiter(header string) rune {
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// splitLine is a quote-aware split of one line: a delimiter inside a quoted
// field does not split it, and doubled quotes unescape.
func splitLine(line string, delimiter rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(f), `"'`))
	}
	return fields, nil
}

// cell returns the value at index, or "" when the row is short or the column is absent
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return row[index]
}
