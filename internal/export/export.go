// Package export writes the weekly order spreadsheet sent to the kitchen.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/smakolyk/internal/models"
)

const sheetName = "Orders"

// Header is the first row of the export: the orderer's name ("names"), the selections in
// category order, then the date.
func Header() []string {
	h := []string{"names"}
	for _, c := range models.Categories {
		h = append(h, c.String(), c.QuantityField())
	}
	return append(h, "date")
}

// Build renders orders as a workbook with one row per order below the header.
func Build(orders []*models.AggregatedOrder) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := Header()
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, o := range orders {
		row := []any{o.Name}
		for _, c := range models.Categories {
			row = append(row, o.Selections[c].Dish, o.Selections[c].Quantity)
		}
		row = append(row, o.Date.Format(models.DateLayout))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

// WriteOrders builds the workbook and saves it to path, creating parent directories.
func WriteOrders(path string, orders []*models.AggregatedOrder) error {
	f, err := Build(orders)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save export: %w", err)
	}
	return nil
}

// Write streams the workbook to w.
func Write(w io.Writer, orders []*models.AggregatedOrder) error {
	f, err := Build(orders)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
