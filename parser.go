package ctrldef

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyTable    = errors.New("table is empty")
	ErrMalformedRow  = errors.New("malformed data row")
	ErrExcludedValue = errors.New("value in a column the template excludes")
)

// RowError ties an error to the table row that caused it.
type RowError struct {
	Row    int
	Object string
	Err    error
}

// Error implements the error interface
func (e *RowError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("row %d (%s): %v", e.Row, e.Object, e.Err)
	}
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ParserOpts configures a Parser. The zero value is usable.
type ParserOpts struct {
	// RootNamespace is the namespace of depth-0 rows. Defaults to
	// DefaultRootNamespace.
	RootNamespace string
	// IndentGlyph marks one level of depth in the object-name column.
	// Defaults to DefaultIndentGlyph.
	IndentGlyph string
	// Strict rejects values in columns the row's template excludes instead
	// of ignoring them.
	Strict bool
	Logger *zerolog.Logger
}

// Parser turns a control table into descriptors. A Parser holds no state
// between calls to Parse.
type Parser struct {
	rootNamespace string
	glyph         string
	strict        bool
	logger        zerolog.Logger
}

// ParseResult is the output of Parser.Parse.
type ParseResult struct {
	// Roots are the depth-0 descriptors, Flat every descriptor in table order.
	Roots         []*Descriptor
	Flat          []*Descriptor
	Templates     *TemplateRegistry
	RootNamespace string
}

// NewParser creates a Parser, filling unset options with their defaults.
func NewParser(opts ParserOpts) *Parser {
	p := &Parser{
		rootNamespace: opts.RootNamespace,
		glyph:         opts.IndentGlyph,
		strict:        opts.Strict,
		logger:        zerolog.Nop(),
	}
	if p.rootNamespace == "" {
		p.rootNamespace = DefaultRootNamespace
	}
	if p.glyph == "" {
		p.glyph = DefaultIndentGlyph
	}
	if opts.Logger != nil {
		p.logger = *opts.Logger
	}
	return p
}

// ParseReader reads a table with ReadTable and parses it.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	rows, err := ReadTable(r)
	if err != nil {
		return nil, err
	}
	return p.Parse(rows)
}

// Parse builds the template registry from the header and template rows,
// then walks the data rows in order, resolving each row's parent and
// namespace from its depth.
func (p *Parser) Parse(rows [][]string) (*ParseResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	templates, err := NewTemplateRegistry(rows[0])
	if err != nil {
		return nil, &RowError{Row: 1, Err: err}
	}

	i := 1
	for ; i < len(rows); i++ {
		if isBlank(rows[i]) {
			i++
			break
		}
		if strings.TrimSpace(cellAt(rows[i], 0)) != TemplateRowMarker {
			break
		}
		t, err := templates.AddTemplate(rows[i], i+1)
		if err != nil {
			return nil, err
		}
		p.logger.Debug().Int("row", i+1).Stringer("category", t.Category).Msg("template registered")
	}
	if templates.Len() == 0 {
		return nil, ErrNoTemplates
	}

	result := &ParseResult{
		Templates:     templates,
		RootNamespace: p.rootNamespace,
	}
	h := newHierarchy(p.rootNamespace)

	for ; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		depth, name := RowDepth(cellAt(row, 0), p.glyph)
		if name == "" {
			return nil, &RowError{Row: i + 1, Err: fmt.Errorf("%w: empty object name", ErrMalformedRow)}
		}

		parent, namespace := h.resolve(depth)

		d, err := p.buildDescriptor(templates, row, i+1, name)
		if err != nil {
			return nil, &RowError{Row: i + 1, Object: name, Err: err}
		}
		d.Depth = depth
		d.Namespace = namespace

		h.attach(parent, d)
		result.Flat = append(result.Flat, d)
	}

	result.Roots = h.roots
	return result, nil
}

// buildDescriptor reads the cells the category's template includes.
func (p *Parser) buildDescriptor(templates *TemplateRegistry, row []string, rowNum int, name string) (*Descriptor, error) {
	category, err := ParseCategory(cellAt(row, templates.categoryColumn))
	if err != nil {
		return nil, err
	}
	template, ok := templates.Template(category)
	if !ok {
		return nil, fmt.Errorf("%w: no template row for %s", ErrUnknownCategory, category)
	}

	d := &Descriptor{
		Category:   category,
		ObjectName: name,
		LoadOrder:  -1,
		Row:        rowNum,
		Fields:     make(map[string]any),
	}

	for _, col := range templates.columns {
		if col.Separator || col.Index == 0 || col.Index == templates.categoryColumn {
			continue
		}

		cell := cellAt(row, col.Index)
		if !template.Included(col.Name) {
			if Coerce(cell) == nil {
				continue
			}
			if p.strict {
				return nil, fmt.Errorf("%w: %s does not use column %q", ErrExcludedValue, category, col.Name)
			}
			p.logger.Warn().Int("row", rowNum).Str("column", col.Name).Stringer("category", category).
				Msg("ignoring value in excluded column")
			continue
		}

		value, err := CoerceCell(cell)
		if err != nil {
			p.logger.Warn().Err(err).Int("row", rowNum).Str("column", col.Name).
				Msg("keeping malformed cell as text")
		}
		if value == nil {
			continue
		}

		if col.Group == 0 {
			d.Fields[col.Name] = value
			continue
		}
		group := templates.groups[col.Group].Name
		if d.Extra == nil {
			d.Extra = make(map[string]map[string]any)
		}
		if d.Extra[group] == nil {
			d.Extra[group] = make(map[string]any)
		}
		d.Extra[group][col.Name] = value
	}

	if err := p.fillTyped(d); err != nil {
		return nil, err
	}
	return d, nil
}

// fillTyped derives the control name, common fields and payload from the
// coerced cells.
func (p *Parser) fillTyped(d *Descriptor) error {
	d.ControlName = d.ObjectName
	if v, ok := d.Field(ControlNameColumn); ok {
		s, isString := v.(string)
		if !isString {
			return fmt.Errorf("%w: %s must be text, got %v", ErrInvalidField, ControlNameColumn, v)
		}
		if s = strings.TrimSpace(s); s != "" {
			d.ControlName = s
		}
	}

	fields := d.AllFields()
	d.Common = DefaultCommon()
	if err := decodeInto(&d.Common, fields); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidField, err)
	}

	payload, err := DecodePayload(d.Category, fields)
	if err != nil {
		return err
	}
	d.Payload = payload

	if g, ok := payload.(*GroupPayload); ok {
		d.SubNamespace = g.SubNamespace
	}
	return nil
}
