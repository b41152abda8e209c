package ctrldef

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Base error types for header and template row parsing
var (
	ErrMalformedHeader   = errors.New("malformed header row")
	ErrMalformedTemplate = errors.New("malformed template row")
	ErrDuplicateTemplate = errors.New("category already has a template")
	ErrNoTemplates       = errors.New("table declares no template rows")
)

// This file contains the template parser. The header row names the columns
// and splits them into column groups:
//
//	name,category,label,|,min,max,||items,default
//	     ^ basic group   ^ extra   ^ items group
//
// A bare "|" (or "|label") is a separator column without data; the next
// column opens a new group. "||name" opens a new group at that very column,
// which is a data column called name. Template rows follow the header, one
// per category:
//
//	-,numberbox,O,|,O,O,|,X,X
//
// O marks an included column, X or empty an excluded one. Separator cells
// are ignored.

// Column is one header cell.
type Column struct {
	Name      string
	Index     int // position in the table row
	Group     int // index into TemplateRegistry.Groups
	Position  int // position among the data columns of the group
	Separator bool
}

// ColumnGroup is a run of columns that ends up in the same field map of a
// descriptor. Group 0 is always the basic group.
type ColumnGroup struct {
	Name  string
	Index int
	Start int // table index of the first column in the group
}

// ColumnRule says whether a category reads a column, and where it lands.
type ColumnRule struct {
	Column
	Included bool
}

// Template is the set of column rules for a single category.
type Template struct {
	Category Category
	Row      int
	Rules    map[string]ColumnRule
}

// Included reports whether the template reads the named column.
func (t *Template) Included(column string) bool {
	return t.Rules[column].Included
}

// TemplateRegistry holds the column layout of a table together with one
// Template per declared category.
type TemplateRegistry struct {
	columns        []Column
	groups         []ColumnGroup
	byName         map[string]int
	templates      map[Category]*Template
	order          []Category
	categoryColumn int
}

// NewTemplateRegistry builds the column layout from the header row.
func NewTemplateRegistry(header []string) (*TemplateRegistry, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: need at least a name and a %q column", ErrMalformedHeader, CategoryColumn)
	}

	tr := &TemplateRegistry{
		groups:         []ColumnGroup{{Name: BasicGroupName, Index: 0, Start: 0}},
		byName:         make(map[string]int),
		templates:      make(map[Category]*Template),
		categoryColumn: -1,
	}

	first := strings.TrimSpace(header[0])
	if strings.HasPrefix(first, GroupNextMarker) {
		return nil, fmt.Errorf("%w: first column cannot be a group marker", ErrMalformedHeader)
	}
	if first == "" {
		first = "name"
	}
	tr.addColumn(Column{Name: first, Index: 0})

	unnamed := 0
	groupNames := map[string]bool{BasicGroupName: true}
	openGroup := func(name string, start int) error {
		if name == "" {
			unnamed++
			name = ExtraGroupName
			if unnamed > 1 {
				name += strconv.Itoa(unnamed)
			}
		}
		if groupNames[name] {
			return fmt.Errorf("%w: duplicate column group %q", ErrMalformedHeader, name)
		}
		groupNames[name] = true
		tr.groups = append(tr.groups, ColumnGroup{Name: name, Index: len(tr.groups), Start: start})
		return nil
	}

	for i := 1; i < len(header); i++ {
		cell := strings.TrimSpace(header[i])

		switch {
		case strings.HasPrefix(cell, GroupHereMarker):
			name := strings.TrimSpace(cell[len(GroupHereMarker):])
			if name == "" {
				return nil, fmt.Errorf("%w: column %d: %q needs a column name", ErrMalformedHeader, i+1, GroupHereMarker)
			}
			if err := openGroup(name, i); err != nil {
				return nil, err
			}
			if err := tr.addDataColumn(name, i); err != nil {
				return nil, err
			}

		case strings.HasPrefix(cell, GroupNextMarker):
			tr.columns = append(tr.columns, Column{
				Name:      cell,
				Index:     i,
				Group:     len(tr.groups) - 1,
				Position:  -1,
				Separator: true,
			})
			if err := openGroup(strings.TrimSpace(cell[len(GroupNextMarker):]), i+1); err != nil {
				return nil, err
			}

		case cell == "":
			return nil, fmt.Errorf("%w: column %d has no name", ErrMalformedHeader, i+1)

		default:
			if err := tr.addDataColumn(cell, i); err != nil {
				return nil, err
			}
		}
	}

	idx, ok := tr.byName[CategoryColumn]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q column", ErrMalformedHeader, CategoryColumn)
	}
	if tr.columns[idx].Group != 0 {
		return nil, fmt.Errorf("%w: %q column must be in the %s group", ErrMalformedHeader, CategoryColumn, BasicGroupName)
	}
	tr.categoryColumn = tr.columns[idx].Index

	return tr, nil
}

func (tr *TemplateRegistry) addDataColumn(name string, index int) error {
	if _, dup := tr.byName[name]; dup {
		return fmt.Errorf("%w: duplicate column %q", ErrMalformedHeader, name)
	}
	tr.addColumn(Column{Name: name, Index: index, Group: len(tr.groups) - 1})
	return nil
}

func (tr *TemplateRegistry) addColumn(col Column) {
	pos := 0
	for _, c := range tr.columns {
		if c.Group == col.Group && !c.Separator {
			pos++
		}
	}
	col.Position = pos
	tr.byName[col.Name] = len(tr.columns)
	tr.columns = append(tr.columns, col)
}

// AddTemplate registers the template row for one category. row is the
// 1-based table row, used in error messages.
func (tr *TemplateRegistry) AddTemplate(cells []string, row int) (*Template, error) {
	category, err := ParseCategory(cellAt(cells, tr.categoryColumn))
	if err != nil {
		return nil, &RowError{Row: row, Err: err}
	}
	if prev, dup := tr.templates[category]; dup {
		return nil, &RowError{Row: row, Err: fmt.Errorf("%w: %s (first declared on row %d)", ErrDuplicateTemplate, category, prev.Row)}
	}

	t := &Template{
		Category: category,
		Row:      row,
		Rules:    make(map[string]ColumnRule, len(tr.columns)),
	}

	for _, col := range tr.columns {
		if col.Separator {
			continue
		}
		if col.Index == 0 || col.Index == tr.categoryColumn {
			t.Rules[col.Name] = ColumnRule{Column: col, Included: true}
			continue
		}

		included, err := templateFlag(cellAt(cells, col.Index))
		if err != nil {
			return nil, &RowError{Row: row, Err: fmt.Errorf("column %q: %w", col.Name, err)}
		}
		t.Rules[col.Name] = ColumnRule{Column: col, Included: included}
	}

	tr.templates[category] = t
	tr.order = append(tr.order, category)
	return t, nil
}

// templateFlag reads an O/X cell of a template row. Group markers are
// structural and count as excluded.
func templateFlag(cell string) (bool, error) {
	if strings.HasPrefix(strings.TrimSpace(cell), GroupNextMarker) {
		return false, nil
	}

	switch v := Coerce(cell).(type) {
	case nil:
		return false, nil
	case string:
		if strings.TrimSpace(v) == IncludedColumnMarker {
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: expected %s or %s, got %q", ErrMalformedTemplate, IncludedColumnMarker, ExcludedColumnMarker, cell)
}

// Template returns the template registered for category.
func (tr *TemplateRegistry) Template(category Category) (*Template, bool) {
	t, ok := tr.templates[category]
	return t, ok
}

// Categories returns the categories with a template, in table order.
func (tr *TemplateRegistry) Categories() []Category {
	return append([]Category(nil), tr.order...)
}

// Columns returns every header column, separators included.
func (tr *TemplateRegistry) Columns() []Column {
	return append([]Column(nil), tr.columns...)
}

// Groups returns the column groups in table order.
func (tr *TemplateRegistry) Groups() []ColumnGroup {
	return append([]ColumnGroup(nil), tr.groups...)
}

// Column looks up a data column by name.
func (tr *TemplateRegistry) Column(name string) (Column, bool) {
	idx, ok := tr.byName[name]
	if !ok {
		return Column{}, false
	}
	return tr.columns[idx], true
}

// Len returns the number of registered templates.
func (tr *TemplateRegistry) Len() int {
	return len(tr.templates)
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}
