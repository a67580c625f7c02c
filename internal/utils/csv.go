package utils

import (
	"bytes"
	"encoding/csv"
)

// utf8BOM makes spreadsheet apps detect UTF-8 so Arabic headers render intact.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV renders a header row plus data rows as a UTF-8 CSV document with a
// byte-order mark. Header labels and column order are the export contract.
func WriteCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
