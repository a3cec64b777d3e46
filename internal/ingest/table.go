package ingest

import (
	"encoding/csv"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const defaultDelimiter = ','

// fallbackDelimiters are tried, in order, when a comma parse collapses the
// header into a single unknown column.
var fallbackDelimiters = []rune{';', '\t', '|'}

// Table is a parsed upload: normalized header plus records in input order.
type Table struct {
	Columns          []string
	IdentifierColumn string
	Delimiter        rune
	records          []InputRecord
}

// Records returns the rows in input order.
func (t *Table) Records() []InputRecord {
	return t.records
}

func (t *Table) Len() int {
	return len(t.records)
}

// Parse decodes raw bytes and reads them as delimited text with a header row.
func Parse(raw []byte) (*Table, error) {
	rows, delimiter, err := readRows(Decode(raw))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &SchemaError{Missing: ColumnRegNo, Accepted: IdentifierAliases, Found: []string{}}
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = NormalizeHeader(cell)
	}

	idIdx, idCol := findIdentifierColumn(header)
	if idIdx < 0 {
		return nil, &SchemaError{Missing: ColumnRegNo, Accepted: IdentifierAliases, Found: header}
	}

	table := &Table{
		Columns:          header,
		IdentifierColumn: idCol,
		Delimiter:        delimiter,
		records:          make([]InputRecord, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if _, seen := fields[col]; seen {
				continue
			}
			fields[col] = cellAt(row, i)
		}
		table.records = append(table.records, InputRecord{
			identifier: NormalizeIdentifier(cellAt(row, idIdx)),
			fields:     fields,
		})
	}
	return table, nil
}

// readRows parses with a comma first and falls back to explicit delimiters
// when the result looks like the wrong separator was used.
func readRows(text string) ([][]string, rune, error) {
	rows, err := readDelimited(text, defaultDelimiter)
	if err == nil && !needsDelimiterRetry(rows) {
		return rows, defaultDelimiter, nil
	}
	for _, d := range fallbackDelimiters {
		alt, altErr := readDelimited(text, d)
		if altErr == nil && len(alt) > 0 && len(alt[0]) > 1 {
			return alt, d, nil
		}
	}
	if err != nil {
		return nil, 0, &ParseError{Err: err}
	}
	return rows, defaultDelimiter, nil
}

func readDelimited(text string, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func needsDelimiterRetry(rows [][]string) bool {
	if len(rows) == 0 || len(rows[0]) != 1 {
		return false
	}
	return !slices.Contains(IdentifierAliases, NormalizeHeader(rows[0][0]))
}

func findIdentifierColumn(header []string) (int, string) {
	for _, alias := range IdentifierAliases {
		if idx := slices.Index(header, alias); idx >= 0 {
			return idx, alias
		}
	}
	return -1, ""
}

// NormalizeHeader folds a header cell to its canonical column name:
// "  Reg No " becomes "reg_no".
func NormalizeHeader(cell string) string {
	cell = strings.TrimPrefix(cell, "\ufeff")
	cell = norm.NFKC.String(cell)
	return strings.Join(strings.Fields(strings.ToLower(cell)), "_")
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
