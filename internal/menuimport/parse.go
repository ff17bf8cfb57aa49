package menuimport

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Sheet is the first worksheet of an uploaded menu: a header row and the data rows,
// each padded to the header width. Fully empty rows are dropped.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Parse reads data as a spreadsheet of the given extension ("xlsx" or "xls").
func Parse(ext string, data []byte) (*Sheet, error) {
	var rows [][]string
	var err error
	switch ext {
	case "xlsx":
		rows, err = readXLSX(data)
	case "xls":
		rows, err = readXLS(data)
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return newSheet(rows), nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(data []byte) (rows [][]string, err error) {
	// The xls reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for c := 0; c <= row.LastCol(); c++ {
			cells = append(cells, row.Col(c))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func newSheet(rows [][]string) *Sheet {
	s := &Sheet{}
	for i, row := range rows {
		if blank(row) {
			continue
		}
		if s.Header == nil {
			s.Header = trimAll(row)
			// Trailing empty header cells are not columns.
			for len(s.Header) > 0 && s.Header[len(s.Header)-1] == "" {
				s.Header = s.Header[:len(s.Header)-1]
			}
			rows = rows[i+1:]
			break
		}
	}

	for _, row := range rows {
		if blank(row) {
			continue
		}
		cells := make([]string, len(s.Header))
		copy(cells, trimAll(row))
		s.Rows = append(s.Rows, cells)
	}
	return s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// Column returns the values of the named column, or nil if the header lacks it.
func (s *Sheet) Column(name string) []string {
	idx := -1
	for i, h := range s.Header {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	col := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		col[i] = row[idx]
	}
	return col
}
