package ctrldef

import (
	"fmt"
	"slices"
	"strings"
)

// Item is one choice of a combo box or list box.
type Item struct {
	Label    string `json:"label" yaml:"label"`
	Value    string `json:"value" yaml:"value"`
	Selected bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
	Hidden   bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Items decodes from a JSON array cell. Elements are either scalars, used
// as both label and value, or objects with the keys label, value, selected
// and hidden. A single scalar cell is one item.
type Items []Item

var itemKeys = []string{"label", "value", "selected", "hidden"}

// DecodeCell implements CellDecoder.
func (items *Items) DecodeCell(value any) error {
	elems, ok := value.([]any)
	if !ok {
		elems = []any{value}
	}

	out := make(Items, 0, len(elems))
	for i, elem := range elems {
		it, err := decodeItem(elem)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, it)
	}
	*items = out
	return nil
}

func decodeItem(elem any) (Item, error) {
	if s, ok := scalarString(elem); ok {
		return Item{Label: s, Value: s}, nil
	}

	obj, ok := elem.(map[string]any)
	if !ok {
		return Item{}, fmt.Errorf("%w: cannot use %v (%T) as an item", ErrIncompatibleCellValue, elem, elem)
	}

	var it Item
	for key, v := range obj {
		if !slices.Contains(itemKeys, key) {
			return Item{}, fmt.Errorf("%w: unknown item key %q, want one of %s", ErrIncompatibleCellValue, key, strings.Join(itemKeys, ", "))
		}

		switch key {
		case "label", "value":
			s, ok := scalarString(v)
			if !ok {
				return Item{}, fmt.Errorf("%w: item %s must be a scalar, got %T", ErrIncompatibleCellValue, key, v)
			}
			if key == "label" {
				it.Label = s
			} else {
				it.Value = s
			}
		case "selected", "hidden":
			b, ok := v.(bool)
			if !ok {
				return Item{}, fmt.Errorf("%w: item %s must be a bool, got %T", ErrIncompatibleCellValue, key, v)
			}
			if key == "selected" {
				it.Selected = b
			} else {
				it.Hidden = b
			}
		}
	}

	_, hasLabel := obj["label"]
	_, hasValue := obj["value"]
	switch {
	case !hasLabel && !hasValue:
		return Item{}, fmt.Errorf("%w: item needs a label or a value", ErrIncompatibleCellValue)
	case !hasLabel:
		it.Label = it.Value
	case !hasValue:
		it.Value = it.Label
	}
	return it, nil
}

// Values returns the item values in order.
func (items Items) Values() []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}
