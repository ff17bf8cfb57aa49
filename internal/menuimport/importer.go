// Package menuimport validates menu spreadsheets and replaces the current menu with them.
//
// Validation runs in a fixed order and stops at the first failure: file extension,
// file size, column set, dish names, dish prices. Nothing is written until the whole
// file is valid, and the replacement itself is a single transaction.
package menuimport

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/smakolyk/internal/config"
	"github.com/mmynk/smakolyk/internal/metrics"
	"github.com/mmynk/smakolyk/internal/models"
	"github.com/mmynk/smakolyk/internal/validation"
)

const megabyte = 1 << 20

// MenuStore is where a validated menu is written.
type MenuStore interface {
	ReplaceMenu(ctx context.Context, items []models.MenuItem) error
}

// Importer validates and imports menu spreadsheets.
type Importer struct {
	store   MenuStore
	cfg     config.MenuConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewImporter creates an importer with the limits of cfg.
func NewImporter(store MenuStore, cfg config.MenuConfig, m *metrics.Metrics, logger *slog.Logger) *Importer {
	return &Importer{store: store, cfg: cfg, metrics: m, logger: logger}
}

// Columns returns the required spreadsheet header: each category followed by its price column.
func Columns() []string {
	cols := make([]string, 0, 2*models.NumCategories)
	for _, c := range models.Categories {
		cols = append(cols, c.String(), c.PriceColumn())
	}
	return cols
}

// Validate checks an uploaded file and returns its menu items in upload order
// (row by row, categories in menu order). The returned error is a *validation.Error.
func (im *Importer) Validate(filename string, data []byte) ([]models.MenuItem, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !im.allowed(ext) {
		return nil, validation.New(validation.FileExtension, "file", validation.Params{
			"valid": strings.Join(im.cfg.Extensions, ", "),
		})
	}

	if int64(len(data)) > im.cfg.MaxFileSize {
		return nil, validation.New(validation.FileTooLarge, "file", validation.Params{
			"max_mb": im.cfg.MaxFileSize / megabyte,
		})
	}

	sheet, err := Parse(ext, data)
	if err != nil {
		return nil, validation.New(validation.FileUnreadable, "file", validation.Params{"reason": err.Error()})
	}

	if err := checkColumns(sheet.Header); err != nil {
		return nil, err
	}

	for _, c := range models.Categories {
		if err := im.checkNames(c, sheet.Column(c.String())); err != nil {
			return nil, err
		}
	}

	prices := make([][]int64, models.NumCategories)
	for _, c := range models.Categories {
		p, err := im.checkPrices(c, sheet.Column(c.PriceColumn()))
		if err != nil {
			return nil, err
		}
		prices[c] = p
	}

	items := make([]models.MenuItem, 0, len(sheet.Rows)*models.NumCategories)
	for r := range sheet.Rows {
		for _, c := range models.Categories {
			items = append(items, models.MenuItem{
				Category: c,
				Name:     sheet.Column(c.String())[r],
				Price:    prices[c][r],
			})
		}
	}
	return items, nil
}

// Import replaces the current menu with items.
func (im *Importer) Import(ctx context.Context, items []models.MenuItem) error {
	if err := im.store.ReplaceMenu(ctx, items); err != nil {
		im.metrics.MenuImport(metrics.ResultError)
		return fmt.Errorf("failed to replace menu: %w", err)
	}
	im.metrics.MenuImport(metrics.ResultOK)
	im.logger.Info("Menu imported", "count", len(items))
	return nil
}

// ImportFile validates and imports an uploaded file synchronously.
func (im *Importer) ImportFile(ctx context.Context, filename string, data []byte) ([]models.MenuItem, error) {
	items, err := im.Validate(filename, data)
	if err != nil {
		im.metrics.MenuImport(metrics.ResultRejected)
		return nil, err
	}
	if err := im.Import(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (im *Importer) allowed(ext string) bool {
	for _, e := range im.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// checkColumns requires the header to be exactly the required column set, in any order.
func checkColumns(header []string) error {
	required := Columns()
	got := append([]string(nil), header...)
	want := append([]string(nil), required...)
	sort.Strings(got)
	sort.Strings(want)

	ok := len(got) == len(want)
	for i := 0; ok && i < len(got); i++ {
		ok = got[i] == want[i]
	}
	if ok {
		return nil
	}
	return validation.New(validation.Columns, "file", validation.Params{
		"got":      strings.Join(header, ", "),
		"expected": strings.Join(required, ", "),
	})
}

func (im *Importer) checkNames(c models.Category, names []string) error {
	field := c.String()
	minLen := im.cfg.MinNameLength[c]
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		n := utf8.RuneCountInString(name)
		switch {
		case n == 0:
			return validation.New(validation.EmptyDish, field, nil)
		case n < minLen:
			return validation.New(validation.DishTooShort, field, validation.Params{"value": name, "min": minLen})
		case n > im.cfg.MaxNameLength:
			return validation.New(validation.DishTooLong, field, validation.Params{"value": name, "max": im.cfg.MaxNameLength})
		case seen[name]:
			return validation.New(validation.DuplicateDish, field, validation.Params{"value": name})
		}
		seen[name] = true
	}
	return nil
}

func (im *Importer) checkPrices(c models.Category, values []string) ([]int64, error) {
	field := c.PriceColumn()
	minPrice := im.cfg.MinPrice[c]
	prices := make([]int64, len(values))

	for i, v := range values {
		price, ok := parsePrice(v)
		if !ok || price < minPrice {
			return nil, validation.New(validation.DishPrice, field, validation.Params{"value": v, "min": minPrice})
		}
		prices[i] = price
	}
	return prices, nil
}

// parsePrice accepts whole numbers, including spreadsheet renderings such as "25.0".
func parsePrice(v string) (int64, bool) {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
