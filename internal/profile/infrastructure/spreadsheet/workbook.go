// Package spreadsheet adapts XLSX meter exports onto the text pipeline:
// the first sheet of a workbook is flattened into comma-separated lines so
// Excel uploads go through the identical detection path as CSV.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned for a workbook without a readable sheet.
var ErrNoSheets = errors.New("spreadsheet: workbook has no sheets")

// ReadWorkbook renders the first sheet of an XLSX workbook as CSV text.
func ReadWorkbook(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return "", ErrNoSheets
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("render sheet %q: %w", sheet, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("render sheet %q: %w", sheet, err)
	}
	return b.String(), nil
}

// IsWorkbook sniffs the XLSX zip signature.
func IsWorkbook(head []byte) bool {
	return len(head) >= 4 && head[0] == 'P' && head[1] == 'K' && head[2] == 0x03 && head[3] == 0x04
}
