package pipeline

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// unionHeader is the column universe of a batch: every key seen across the
// rows, ordered by first appearance.
func unionHeader(rows []*Row) []string {
	seen := map[string]struct{}{}
	header := []string{}
	for _, row := range rows {
		for _, key := range row.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			header = append(header, key)
		}
	}
	return header
}

// EncodeCSV renders rows as comma-separated text. A cell is quoted only when
// it contains a comma, quote or newline; embedded quotes are doubled. Rows
// missing a column render an empty cell.
func EncodeCSV(rows []*Row) string {
	header := unionHeader(rows)
	var sb strings.Builder

	writeLine := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(csvCell(cell))
		}
		sb.WriteByte('\n')
	}

	writeLine(header)
	for _, row := range rows {
		cells := make([]string, len(header))
		for i, key := range header {
			cells[i] = row.Get(key)
		}
		writeLine(cells)
	}
	return sb.String()
}

func csvCell(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// EncodeXLSX renders rows as a binary workbook with the same header and cell
// semantics as EncodeCSV.
func EncodeXLSX(rows []*Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := unionHeader(rows)
	for i, key := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, key); err != nil {
			return nil, err
		}
	}

	for r, row := range rows {
		for c, key := range header {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, row.Get(key)); err != nil {
				return nil, err
			}
		}
	}

	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
