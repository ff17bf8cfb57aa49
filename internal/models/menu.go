package models

import "fmt"

// Category is one of the four dish categories of the menu.
type Category int

const (
	FirstCourse Category = iota
	SecondCourse
	Dessert
	Drink
)

// NumCategories is the number of dish categories.
const NumCategories = 4

// Categories lists every category in menu order.
var Categories = [NumCategories]Category{FirstCourse, SecondCourse, Dessert, Drink}

var categoryNames = [NumCategories]string{"first_course", "second_course", "dessert", "drink"}

// String returns the column/field name of the category (e.g. "first_course").
func (c Category) String() string {
	if c < 0 || int(c) >= NumCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// PriceColumn is the spreadsheet column holding the category's prices.
func (c Category) PriceColumn() string {
	return c.String() + "_price"
}

// QuantityField is the order field holding the category's quantity.
func (c Category) QuantityField() string {
	return c.String() + "_quantity"
}

// ParseCategory maps a category name back to its Category.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// MenuItem is a single dish on the current menu.
type MenuItem struct {
	EntityMeta

	Category Category

	// Name is unique within its category.
	Name string

	// Price is the unit price in whole currency units.
	Price int64
}

// Menu is the full current catalog. It is replaced wholesale on every import.
type Menu struct {
	Items []MenuItem
}

// Price returns the unit price of dish within category, or 0 if the dish is not on the menu.
func (m *Menu) Price(category Category, dish string) int64 {
	if m == nil {
		return 0
	}
	for _, item := range m.Items {
		if item.Category == category && item.Name == dish {
			return item.Price
		}
	}
	return 0
}

// Has reports whether dish is offered in category.
func (m *Menu) Has(category Category, dish string) bool {
	if m == nil {
		return false
	}
	for _, item := range m.Items {
		if item.Category == category && item.Name == dish {
			return true
		}
	}
	return false
}

// Names returns the dish names of a category in menu order.
func (m *Menu) Names(category Category) []string {
	if m == nil {
		return nil
	}
	var names []string
	for _, item := range m.Items {
		if item.Category == category {
			names = append(names, item.Name)
		}
	}
	return names
}

// Prices returns category name -> dish -> unit price.
func (m *Menu) Prices() map[string]map[string]int64 {
	prices := make(map[string]map[string]int64, NumCategories)
	for _, c := range Categories {
		prices[c.String()] = make(map[string]int64)
	}
	if m == nil {
		return prices
	}
	for _, item := range m.Items {
		prices[item.Category.String()][item.Name] = item.Price
	}
	return prices
}

// Row is one spreadsheet row of the menu: one dish per category.
type Row [NumCategories]MenuItem

// Rows regroups the menu into rows, pairing the i-th dish of every category.
func (m *Menu) Rows() []Row {
	if m == nil {
		return nil
	}
	var counts [NumCategories]int
	var rows []Row
	for _, item := range m.Items {
		idx := counts[item.Category]
		counts[item.Category]++
		for len(rows) <= idx {
			rows = append(rows, Row{})
		}
		rows[idx][item.Category] = item
	}
	return rows
}
