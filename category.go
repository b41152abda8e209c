package ctrldef

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown control category")
)

// Category is the fixed kind of a control.
type Category uint8

const (
	CategoryCheckbox Category = iota
	CategoryNumberBox
	CategoryTextBox
	CategoryButton
	CategoryComboBox
	CategoryPathBox
	CategoryColorBox
	CategoryFontBox
	CategoryListBox
	CategoryGroup

	categoryCount = iota
)

var categoryNames = [categoryCount]string{
	CategoryCheckbox:  "checkbox",
	CategoryNumberBox: "numberbox",
	CategoryTextBox:   "textbox",
	CategoryButton:    "button",
	CategoryComboBox:  "combobox",
	CategoryPathBox:   "pathbox",
	CategoryColorBox:  "colorbox",
	CategoryFontBox:   "fontbox",
	CategoryListBox:   "listbox",
	CategoryGroup:     "group",
}

// String returns the table name of the category.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	return int(c) < categoryCount
}

// MarshalText implements encoding.TextMarshaler so categories render by name
// in JSON and YAML output.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

// ParseCategory resolves a category by its table name. Matching ignores case
// and surrounding whitespace.
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}
