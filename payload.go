package ctrldef

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrInvalidField = errors.New("invalid control field")
)

// Payload carries the category specific fields of a control. There is one
// implementation per Category.
type Payload interface {
	// Category returns the category the payload belongs to.
	Category() Category
	// Validate checks the decoded fields for consistency.
	Validate() error
}

// Common holds the fields every control may declare. Visible and Enabled
// default to true.
type Common struct {
	Description             string `ctrl:"description" json:"description,omitempty" yaml:"description,omitempty"`
	LongDescription         string `ctrl:"long_description" json:"long_description,omitempty" yaml:"long_description,omitempty"`
	Callback                string `ctrl:"callback" json:"callback,omitempty" yaml:"callback,omitempty"`
	ModifiedCallbackEnabled bool   `ctrl:"modified_callback_enabled" json:"modified_callback_enabled,omitempty" yaml:"modified_callback_enabled,omitempty"`
	Visible                 bool   `ctrl:"visible" json:"visible" yaml:"visible"`
	Enabled                 bool   `ctrl:"enabled" json:"enabled" yaml:"enabled"`
}

// DefaultCommon returns the common fields of a control that declares none.
func DefaultCommon() Common {
	return Common{Visible: true, Enabled: true}
}

type CheckboxPayload struct {
	Checked bool `ctrl:"checked" json:"checked" yaml:"checked"`
}

// NumberBoxPayload is a spin box, optionally with a slider. The int
// variants only accept integral values.
type NumberBoxPayload struct {
	Variant string  `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	Value   float64 `ctrl:"value" json:"value" yaml:"value"`
	Min     float64 `ctrl:"min_val" json:"min_val" yaml:"min_val"`
	Max     float64 `ctrl:"max_val" json:"max_val" yaml:"max_val"`
	Step    float64 `ctrl:"step" json:"step" yaml:"step"`
	Suffix  string  `ctrl:"suffix" json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// TextBoxPayload is a text input. InfoType only matters for the info
// variant, which renders as a read-only label.
type TextBoxPayload struct {
	Variant  string `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	InfoType string `ctrl:"info_type" json:"info_type,omitempty" yaml:"info_type,omitempty"`
	Text     string `ctrl:"text" json:"text,omitempty" yaml:"text,omitempty"`
}

// ButtonPayload is a push button; the url variant opens URL.
type ButtonPayload struct {
	Variant string `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	URL     string `ctrl:"url" json:"url,omitempty" yaml:"url,omitempty"`
}

// ComboBoxPayload is a drop-down. Value is the selected item value and
// DisplayText the text shown for it.
type ComboBoxPayload struct {
	Variant     string `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	DisplayText string `ctrl:"display_text" json:"display_text,omitempty" yaml:"display_text,omitempty"`
	Value       string `ctrl:"value" json:"value,omitempty" yaml:"value,omitempty"`
	Items       Items  `ctrl:"items" json:"items" yaml:"items"`
}

type PathBoxPayload struct {
	Variant     string `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	DefaultPath string `ctrl:"default_path" json:"default_path,omitempty" yaml:"default_path,omitempty"`
	PathText    string `ctrl:"path_text" json:"path_text,omitempty" yaml:"path_text,omitempty"`
	FilterStr   string `ctrl:"filter_str" json:"filter_str,omitempty" yaml:"filter_str,omitempty"`
}

// ColorBoxPayload holds one 8-bit value per channel. Alpha is only packed
// by the alpha variant.
type ColorBoxPayload struct {
	Variant string `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	Red     int    `ctrl:"color_red" json:"color_red" yaml:"color_red"`
	Green   int    `ctrl:"color_green" json:"color_green" yaml:"color_green"`
	Blue    int    `ctrl:"color_blue" json:"color_blue" yaml:"color_blue"`
	Alpha   int    `ctrl:"color_alpha" json:"color_alpha" yaml:"color_alpha"`
}

type FontBoxPayload struct {
	Face      string `ctrl:"font_face" json:"font_face" yaml:"font_face"`
	Size      int    `ctrl:"font_size" json:"font_size" yaml:"font_size"`
	Style     string `ctrl:"font_style" json:"font_style" yaml:"font_style"`
	Bold      bool   `ctrl:"font_bold" json:"font_bold,omitempty" yaml:"font_bold,omitempty"`
	Italic    bool   `ctrl:"font_italic" json:"font_italic,omitempty" yaml:"font_italic,omitempty"`
	Underline bool   `ctrl:"font_underline" json:"font_underline,omitempty" yaml:"font_underline,omitempty"`
	Strikeout bool   `ctrl:"font_strikeout" json:"font_strikeout,omitempty" yaml:"font_strikeout,omitempty"`
}

// ListBoxPayload is an editable list of strings, files, or files and URLs.
type ListBoxPayload struct {
	Variant     string `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	FilterStr   string `ctrl:"filter_str" json:"filter_str,omitempty" yaml:"filter_str,omitempty"`
	DefaultPath string `ctrl:"default_path" json:"default_path,omitempty" yaml:"default_path,omitempty"`
	Items       Items  `ctrl:"items" json:"items" yaml:"items"`
}

// GroupPayload introduces SubNamespace for the group's children. Checked
// only matters for the checkable variant.
type GroupPayload struct {
	Variant      string `ctrl:"widget_variant" json:"widget_variant,omitempty" yaml:"widget_variant,omitempty"`
	SubNamespace string `ctrl:"sub_namespace" json:"sub_namespace" yaml:"sub_namespace"`
	Checked      bool   `ctrl:"checked" json:"checked" yaml:"checked"`
}

func (*CheckboxPayload) Category() Category  { return CategoryCheckbox }
func (*NumberBoxPayload) Category() Category { return CategoryNumberBox }
func (*TextBoxPayload) Category() Category   { return CategoryTextBox }
func (*ButtonPayload) Category() Category    { return CategoryButton }
func (*ComboBoxPayload) Category() Category  { return CategoryComboBox }
func (*PathBoxPayload) Category() Category   { return CategoryPathBox }
func (*ColorBoxPayload) Category() Category  { return CategoryColorBox }
func (*FontBoxPayload) Category() Category   { return CategoryFontBox }
func (*ListBoxPayload) Category() Category   { return CategoryListBox }
func (*GroupPayload) Category() Category     { return CategoryGroup }

func (p *CheckboxPayload) Validate() error { return nil }

func (p *NumberBoxPayload) Validate() error {
	if err := oneOf("widget_variant", p.Variant, "", "int", "float", "int_slider", "float_slider"); err != nil {
		return err
	}
	if p.Min > p.Max {
		return fmt.Errorf("min_val %v is greater than max_val %v", p.Min, p.Max)
	}
	if p.Step <= 0 {
		return fmt.Errorf("step %v must be positive", p.Step)
	}
	if p.Value < p.Min || p.Value > p.Max {
		return fmt.Errorf("value %v is outside [%v, %v]", p.Value, p.Min, p.Max)
	}
	if p.IsInt() {
		for _, v := range []float64{p.Value, p.Min, p.Max, p.Step} {
			if v != math.Trunc(v) {
				return fmt.Errorf("%s number box needs integral values, got %v", p.Variant, v)
			}
		}
	}
	return nil
}

// IsInt reports whether the box holds integers.
func (p *NumberBoxPayload) IsInt() bool {
	return p.Variant == "" || p.Variant == "int" || p.Variant == "int_slider"
}

func (p *TextBoxPayload) Validate() error {
	if err := oneOf("widget_variant", p.Variant, "", "default", "password", "multiline", "info"); err != nil {
		return err
	}
	return oneOf("info_type", p.InfoType, "", "normal", "warning", "error")
}

func (p *ButtonPayload) Validate() error {
	if err := oneOf("widget_variant", p.Variant, "", "default", "url"); err != nil {
		return err
	}
	if p.Variant == "url" && p.URL == "" {
		return errors.New("url button needs a url")
	}
	return nil
}

func (p *ComboBoxPayload) Validate() error {
	if err := oneOf("widget_variant", p.Variant, "", "list", "editable"); err != nil {
		return err
	}
	if p.Variant == "editable" || p.Value == "" || len(p.Items) == 0 {
		return nil
	}
	if !slices.ContainsFunc(p.Items, func(it Item) bool { return it.Value == p.Value }) {
		return fmt.Errorf("value %q is not one of the items", p.Value)
	}
	return nil
}

func (p *PathBoxPayload) Validate() error {
	return oneOf("widget_variant", p.Variant, "", "file", "file_save", "directory")
}

func (p *ColorBoxPayload) Validate() error {
	if err := oneOf("widget_variant", p.Variant, "", "color", "alpha"); err != nil {
		return err
	}
	for _, ch := range []struct {
		name  string
		value int
	}{
		{"color_red", p.Red},
		{"color_green", p.Green},
		{"color_blue", p.Blue},
		{"color_alpha", p.Alpha},
	} {
		if ch.value < 0 || ch.value > 0xFF {
			return fmt.Errorf("%s %d is outside [0, 255]", ch.name, ch.value)
		}
	}
	return nil
}

// Value packs the channels as 0xBBGGRR, or 0xAABBGGRR for the alpha
// variant, which is the layout host color properties use.
func (p *ColorBoxPayload) Value() uint32 {
	bgr := uint32(p.Blue)<<16 | uint32(p.Green)<<8 | uint32(p.Red)
	if p.Variant == "color" {
		return bgr
	}
	return uint32(p.Alpha)<<24 | bgr
}

func (p *FontBoxPayload) Validate() error {
	if p.Size <= 0 {
		return fmt.Errorf("font_size %d must be positive", p.Size)
	}
	return oneOf("font_style", p.Style, "Regular", "Bold", "Light", "Black")
}

// Flags packs bold, italic, underline and strikeout, most significant bit
// first.
func (p *FontBoxPayload) Flags() uint8 {
	var flags uint8
	for _, set := range []bool{p.Bold, p.Italic, p.Underline, p.Strikeout} {
		flags <<= 1
		if set {
			flags |= 1
		}
	}
	return flags
}

func (p *ListBoxPayload) Validate() error {
	return oneOf("widget_variant", p.Variant, "", "strings", "files", "files_and_urls")
}

func (p *GroupPayload) Validate() error {
	if err := oneOf("widget_variant", p.Variant, "", "normal", "checkable"); err != nil {
		return err
	}
	if p.SubNamespace == "" {
		return fmt.Errorf("%s cannot be empty", SubNamespaceColumn)
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s %q is not one of %q", field, value, slices.DeleteFunc(slices.Clone(allowed), func(s string) bool { return s == "" }))
}

///////////////////////////////////////////////////////////////////////////////
// Payload dispatch
///////////////////////////////////////////////////////////////////////////////

// payloadFactories maps every category to its payload constructor.
var payloadFactories = [categoryCount]func() Payload{
	CategoryCheckbox: func() Payload { return &CheckboxPayload{} },
	CategoryNumberBox: func() Payload {
		return &NumberBoxPayload{Variant: "int", Max: 100, Step: 1}
	},
	CategoryTextBox: func() Payload { return &TextBoxPayload{Variant: "default", InfoType: "normal"} },
	CategoryButton:  func() Payload { return &ButtonPayload{Variant: "default"} },
	CategoryComboBox: func() Payload {
		return &ComboBoxPayload{Variant: "list", Items: Items{}}
	},
	CategoryPathBox: func() Payload { return &PathBoxPayload{Variant: "file", FilterStr: "*.*"} },
	CategoryColorBox: func() Payload {
		return &ColorBoxPayload{Variant: "alpha", Red: 0xFF, Green: 0xFF, Blue: 0xFF, Alpha: 0xFF}
	},
	CategoryFontBox: func() Payload {
		return &FontBoxPayload{Face: "Kai", Size: 36, Style: "Regular"}
	},
	CategoryListBox: func() Payload {
		return &ListBoxPayload{Variant: "strings", FilterStr: "*.*", Items: Items{}}
	},
	CategoryGroup: func() Payload { return &GroupPayload{Variant: "normal", Checked: true} },
}

func init() {
	for _, c := range Categories() {
		if payloadFactories[c] == nil {
			panic(fmt.Sprintf("ctrldef: no payload factory for category %s", c))
		}
		if got := payloadFactories[c]().Category(); got != c {
			panic(fmt.Sprintf("ctrldef: payload factory for %s builds %s", c, got))
		}
	}
}

// NewPayload returns the payload of a category with its defaults set.
func NewPayload(category Category) (Payload, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(category))
	}
	return payloadFactories[category](), nil
}

// DecodePayload builds the payload of a category from a field map and
// validates it. Fields the payload does not declare are ignored.
func DecodePayload(category Category, fields map[string]any) (Payload, error) {
	p, err := decodePayload(category, fields)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidField, category, err)
	}
	return p, nil
}

// decodePayload is DecodePayload without validation.
func decodePayload(category Category, fields map[string]any) (Payload, error) {
	p, err := NewPayload(category)
	if err != nil {
		return nil, err
	}
	if err := decodeInto(p, fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidField, category, err)
	}
	return p, nil
}

// PayloadOf returns the payload of d as P.
func PayloadOf[P Payload](d *Descriptor) (P, bool) {
	var zero P
	if d == nil || d.Payload == nil {
		return zero, false
	}
	p, ok := d.Payload.(P)
	return p, ok
}
