package ctrldef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadFactories(t *testing.T) {
	for _, c := range Categories() {
		t.Run(c.String(), func(t *testing.T) {
			p, err := NewPayload(c)
			require.NoError(t, err)
			assert.Equal(t, c, p.Category())
			if c != CategoryGroup {
				assert.NoError(t, p.Validate())
			}
		})
	}

	_, err := NewPayload(Category(200))
	assert.ErrorIs(t, err, ErrUnknownCategory)

	t.Run("Defaults", func(t *testing.T) {
		tests := []struct {
			category Category
			want     Payload
		}{
			{CategoryCheckbox, &CheckboxPayload{}},
			{CategoryNumberBox, &NumberBoxPayload{Variant: "int", Max: 100, Step: 1}},
			{CategoryTextBox, &TextBoxPayload{Variant: "default", InfoType: "normal"}},
			{CategoryButton, &ButtonPayload{Variant: "default"}},
			{CategoryComboBox, &ComboBoxPayload{Variant: "list", Items: Items{}}},
			{CategoryPathBox, &PathBoxPayload{Variant: "file", FilterStr: "*.*"}},
			{CategoryColorBox, &ColorBoxPayload{Variant: "alpha", Red: 255, Green: 255, Blue: 255, Alpha: 255}},
			{CategoryFontBox, &FontBoxPayload{Face: "Kai", Size: 36, Style: "Regular"}},
			{CategoryListBox, &ListBoxPayload{Variant: "strings", FilterStr: "*.*", Items: Items{}}},
			{CategoryGroup, &GroupPayload{Variant: "normal", Checked: true}},
		}
		for _, tt := range tests {
			p, err := NewPayload(tt.category)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p, tt.category.String())
		}
	})

	t.Run("FreshInstances", func(t *testing.T) {
		a, _ := NewPayload(CategoryComboBox)
		b, _ := NewPayload(CategoryComboBox)
		assert.NotSame(t, a, b)
	})
}

func TestDecodePayload(t *testing.T) {
	t.Run("NumberBox", func(t *testing.T) {
		p, err := DecodePayload(CategoryNumberBox, map[string]any{
			"widget_variant": "float_slider",
			"value":          int64(5),
			"min_val":        int64(0),
			"max_val":        10.5,
			"step":           0.5,
			"suffix":         " px",
			"description":    "ignored by the payload",
		})
		require.NoError(t, err)
		assert.Equal(t, &NumberBoxPayload{Variant: "float_slider", Value: 5, Min: 0, Max: 10.5, Step: 0.5, Suffix: " px"}, p)
		assert.False(t, p.(*NumberBoxPayload).IsInt())
	})

	t.Run("NumberBoxKeepsDefaults", func(t *testing.T) {
		p, err := DecodePayload(CategoryNumberBox, map[string]any{"value": int64(7)})
		require.NoError(t, err)
		assert.Equal(t, &NumberBoxPayload{Variant: "int", Value: 7, Max: 100, Step: 1}, p)
	})

	t.Run("TextBox", func(t *testing.T) {
		p, err := DecodePayload(CategoryTextBox, map[string]any{"widget_variant": "info", "info_type": "warning", "text": "careful"})
		require.NoError(t, err)
		assert.Equal(t, &TextBoxPayload{Variant: "info", InfoType: "warning", Text: "careful"}, p)
	})

	t.Run("Button", func(t *testing.T) {
		p, err := DecodePayload(CategoryButton, map[string]any{"widget_variant": "url", "url": "https://example.com"})
		require.NoError(t, err)
		assert.Equal(t, &ButtonPayload{Variant: "url", URL: "https://example.com"}, p)
	})

	t.Run("ComboBox", func(t *testing.T) {
		p, err := DecodePayload(CategoryComboBox, map[string]any{
			"widget_variant": "editable",
			"display_text":   "Pick one",
			"value":          "custom",
			"items":          []any{"a", map[string]any{"label": "Bee", "value": "b"}},
		})
		require.NoError(t, err)
		assert.Equal(t, &ComboBoxPayload{
			Variant:     "editable",
			DisplayText: "Pick one",
			Value:       "custom",
			Items:       Items{{Label: "a", Value: "a"}, {Label: "Bee", Value: "b"}},
		}, p)
	})

	t.Run("PathBox", func(t *testing.T) {
		p, err := DecodePayload(CategoryPathBox, map[string]any{
			"widget_variant": "directory",
			"default_path":   "/tmp",
			"path_text":      "/tmp/out",
			"filter_str":     "*.png",
		})
		require.NoError(t, err)
		assert.Equal(t, &PathBoxPayload{Variant: "directory", DefaultPath: "/tmp", PathText: "/tmp/out", FilterStr: "*.png"}, p)
	})

	t.Run("ColorBox", func(t *testing.T) {
		p, err := DecodePayload(CategoryColorBox, map[string]any{
			"widget_variant": "color",
			"color_red":      int64(0x12),
			"color_green":    int64(0x34),
			"color_blue":     float64(0x56),
		})
		require.NoError(t, err)
		assert.Equal(t, &ColorBoxPayload{Variant: "color", Red: 0x12, Green: 0x34, Blue: 0x56, Alpha: 0xFF}, p)
	})

	t.Run("FontBox", func(t *testing.T) {
		p, err := DecodePayload(CategoryFontBox, map[string]any{
			"font_face":      "Mono",
			"font_size":      int64(11),
			"font_style":     "Bold",
			"font_bold":      true,
			"font_strikeout": true,
		})
		require.NoError(t, err)
		assert.Equal(t, &FontBoxPayload{Face: "Mono", Size: 11, Style: "Bold", Bold: true, Strikeout: true}, p)
	})

	t.Run("ListBox", func(t *testing.T) {
		p, err := DecodePayload(CategoryListBox, map[string]any{
			"widget_variant": "files",
			"default_path":   "/data",
			"items":          "only.txt",
		})
		require.NoError(t, err)
		assert.Equal(t, &ListBoxPayload{
			Variant:     "files",
			FilterStr:   "*.*",
			DefaultPath: "/data",
			Items:       Items{{Label: "only.txt", Value: "only.txt"}},
		}, p)
	})

	t.Run("Group", func(t *testing.T) {
		p, err := DecodePayload(CategoryGroup, map[string]any{"widget_variant": "checkable", "sub_namespace": "g", "checked": false})
		require.NoError(t, err)
		assert.Equal(t, &GroupPayload{Variant: "checkable", SubNamespace: "g"}, p)
	})

	t.Run("ComboBoxWithoutItems", func(t *testing.T) {
		p, err := DecodePayload(CategoryComboBox, map[string]any{"value": "a"})
		require.NoError(t, err)
		assert.Empty(t, p.(*ComboBoxPayload).Items)
	})

	t.Run("ComboBoxEmptyItems", func(t *testing.T) {
		p, err := DecodePayload(CategoryComboBox, map[string]any{"items": []any{}})
		require.NoError(t, err)
		assert.Equal(t, Items{}, p.(*ComboBoxPayload).Items)
	})

	t.Run("GroupNeedsSubNamespace", func(t *testing.T) {
		_, err := DecodePayload(CategoryGroup, map[string]any{})
		assert.ErrorIs(t, err, ErrInvalidField)
	})

	t.Run("WrongType", func(t *testing.T) {
		_, err := DecodePayload(CategoryCheckbox, map[string]any{"checked": "yes"})
		assert.ErrorIs(t, err, ErrInvalidField)
		assert.ErrorIs(t, err, ErrIncompatibleCellValue)
	})

	t.Run("BadItem", func(t *testing.T) {
		_, err := DecodePayload(CategoryListBox, map[string]any{"items": []any{map[string]any{"colour": "red"}}})
		assert.ErrorIs(t, err, ErrInvalidField)
		assert.ErrorIs(t, err, ErrIncompatibleCellValue)
	})
}

func TestItemsDecodeCell(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    Items
		wantErr bool
	}{
		{"empty", []any{}, Items{}, false},
		{"scalars", []any{"a", int64(2), true}, Items{{Label: "a", Value: "a"}, {Label: "2", Value: "2"}, {Label: "true", Value: "true"}}, false},
		{"single_scalar", "solo", Items{{Label: "solo", Value: "solo"}}, false},
		{"label_and_value", []any{map[string]any{"label": "Fast", "value": "f"}}, Items{{Label: "Fast", Value: "f"}}, false},
		{"value_only", []any{map[string]any{"value": int64(3)}}, Items{{Label: "3", Value: "3"}}, false},
		{"label_only", []any{map[string]any{"label": "Slow"}}, Items{{Label: "Slow", Value: "Slow"}}, false},
		{"flags", []any{map[string]any{"value": "x", "selected": true, "hidden": true}}, Items{{Label: "x", Value: "x", Selected: true, Hidden: true}}, false},
		{"single_object", map[string]any{"value": "x"}, Items{{Label: "x", Value: "x"}}, false},

		{"no_label_or_value", []any{map[string]any{"selected": true}}, nil, true},
		{"unknown_key", []any{map[string]any{"value": "x", "icon": "y"}}, nil, true},
		{"nested_label", []any{map[string]any{"label": []any{"x"}}}, nil, true},
		{"selected_not_bool", []any{map[string]any{"value": "x", "selected": "yes"}}, nil, true},
		{"nested_array", []any{[]any{"a"}}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items Items
			err := items.DecodeCell(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrIncompatibleCellValue)
				assert.Nil(t, items)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, items)
		})
	}

	assert.Equal(t, []string{"a", "b"}, Items{{Label: "A", Value: "a"}, {Value: "b"}}.Values())
}

func TestPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		wantErr bool
	}{
		{"number_ok", &NumberBoxPayload{Variant: "int", Value: 1, Min: 0, Max: 2, Step: 1}, false},
		{"number_float", &NumberBoxPayload{Variant: "float", Value: 0.25, Max: 1, Step: 0.05}, false},
		{"number_min_above_max", &NumberBoxPayload{Min: 3, Max: 2, Step: 1, Value: 3}, true},
		{"number_value_below_min", &NumberBoxPayload{Value: -1, Max: 2, Step: 1}, true},
		{"number_value_above_max", &NumberBoxPayload{Value: 5, Max: 2, Step: 1}, true},
		{"number_zero_step", &NumberBoxPayload{Max: 2}, true},
		{"number_int_fraction", &NumberBoxPayload{Variant: "int_slider", Value: 0.5, Max: 1, Step: 1}, true},
		{"number_bad_variant", &NumberBoxPayload{Variant: "double", Max: 1, Step: 1}, true},

		{"text_ok", &TextBoxPayload{Variant: "password"}, false},
		{"text_info", &TextBoxPayload{Variant: "info", InfoType: "error"}, false},
		{"text_bad_variant", &TextBoxPayload{Variant: "rich"}, true},
		{"text_bad_info_type", &TextBoxPayload{Variant: "info", InfoType: "fatal"}, true},

		{"button_ok", &ButtonPayload{Variant: "default"}, false},
		{"button_url", &ButtonPayload{Variant: "url", URL: "https://example.com"}, false},
		{"button_url_missing", &ButtonPayload{Variant: "url"}, true},
		{"button_bad_variant", &ButtonPayload{Variant: "toggle"}, true},

		{"combo_value_item", &ComboBoxPayload{Items: Items{{Value: "a"}, {Value: "b"}}, Value: "b"}, false},
		{"combo_value_unknown", &ComboBoxPayload{Items: Items{{Value: "a"}}, Value: "z"}, true},
		{"combo_value_matches_value_not_label", &ComboBoxPayload{Items: Items{{Label: "z", Value: "a"}}, Value: "z"}, true},
		{"combo_editable_free_value", &ComboBoxPayload{Variant: "editable", Items: Items{{Value: "a"}}, Value: "z"}, false},
		{"combo_no_items", &ComboBoxPayload{Value: "z"}, false},
		{"combo_bad_variant", &ComboBoxPayload{Variant: "radio"}, true},

		{"list_ok", &ListBoxPayload{Variant: "files_and_urls", Items: Items{{Value: "a"}}}, false},
		{"list_no_items", &ListBoxPayload{}, false},
		{"list_bad_variant", &ListBoxPayload{Variant: "urls"}, true},

		{"path_ok", &PathBoxPayload{Variant: "directory"}, false},
		{"path_save", &PathBoxPayload{Variant: "file_save"}, false},
		{"path_bad_variant", &PathBoxPayload{Variant: "url"}, true},

		{"font_ok", &FontBoxPayload{Face: "Mono", Size: 11, Style: "Light"}, false},
		{"font_zero_size", &FontBoxPayload{Style: "Regular"}, true},
		{"font_bad_style", &FontBoxPayload{Size: 11, Style: "Oblique"}, true},

		{"color_ok", &ColorBoxPayload{Variant: "color", Red: 255}, false},
		{"color_channel_too_large", &ColorBoxPayload{Blue: 256}, true},
		{"color_negative_alpha", &ColorBoxPayload{Alpha: -1}, true},
		{"color_bad_variant", &ColorBoxPayload{Variant: "hsv"}, true},

		{"group_ok", &GroupPayload{SubNamespace: "g"}, false},
		{"group_checkable", &GroupPayload{Variant: "checkable", SubNamespace: "g"}, false},
		{"group_empty", &GroupPayload{}, true},
		{"group_bad_variant", &GroupPayload{Variant: "folding", SubNamespace: "g"}, true},

		{"checkbox", &CheckboxPayload{Checked: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestColorBoxValue(t *testing.T) {
	tests := []struct {
		name    string
		payload ColorBoxPayload
		want    uint32
	}{
		{"color_is_bgr", ColorBoxPayload{Variant: "color", Red: 0x12, Green: 0x34, Blue: 0x56, Alpha: 0x78}, 0x563412},
		{"alpha_is_abgr", ColorBoxPayload{Variant: "alpha", Red: 0x12, Green: 0x34, Blue: 0x56, Alpha: 0x78}, 0x78563412},
		{"unset_variant_packs_alpha", ColorBoxPayload{Red: 0xFF, Alpha: 0x80}, 0x800000FF},
		{"default_white", ColorBoxPayload{Variant: "alpha", Red: 0xFF, Green: 0xFF, Blue: 0xFF, Alpha: 0xFF}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payload.Value())
		})
	}
}

func TestFontBoxFlags(t *testing.T) {
	tests := []struct {
		name    string
		payload FontBoxPayload
		want    uint8
	}{
		{"none", FontBoxPayload{}, 0},
		{"bold", FontBoxPayload{Bold: true}, 0b1000},
		{"italic", FontBoxPayload{Italic: true}, 0b0100},
		{"underline", FontBoxPayload{Underline: true}, 0b0010},
		{"strikeout", FontBoxPayload{Strikeout: true}, 0b0001},
		{"bold_strikeout", FontBoxPayload{Bold: true, Strikeout: true}, 0b1001},
		{"all", FontBoxPayload{Bold: true, Italic: true, Underline: true, Strikeout: true}, 0b1111},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payload.Flags())
		})
	}
}

func TestPayloadOf(t *testing.T) {
	d := &Descriptor{Category: CategoryGroup, Payload: &GroupPayload{SubNamespace: "g"}}

	g, ok := PayloadOf[*GroupPayload](d)
	require.True(t, ok)
	assert.Equal(t, "g", g.SubNamespace)

	_, ok = PayloadOf[*CheckboxPayload](d)
	assert.False(t, ok)

	_, ok = PayloadOf[*GroupPayload](&Descriptor{})
	assert.False(t, ok)
}
