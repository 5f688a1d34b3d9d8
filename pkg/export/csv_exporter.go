package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Columns are rendered in Headers
// order; a row missing a header renders an empty cell.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     []map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct {
	// Separator defaults to a comma; spreadsheet users in id-ID locales often want ';'.
	Separator rune
}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{Separator: ','}
}

// ContentType reports the MIME type of rendered output.
func (e *CSVExporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if e.Separator != 0 {
		writer.Comma = e.Separator
	}
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = neutralizeFormula(row[header])
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// neutralizeFormula quotes cells a spreadsheet would evaluate. PPDB rows come
// from the public form, so a name like "=HYPERLINK(..)" must stay text. Signed
// numbers such as "+62812" are left alone.
func neutralizeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '@', '\t', '\r':
		return "'" + cell
	case '+', '-':
		if len(cell) > 1 && (cell[1] < '0' || cell[1] > '9') {
			return "'" + cell
		}
	}
	return cell
}
