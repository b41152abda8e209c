package ctrldef

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Base error types for `ctrl` tag handling
var (
	ErrMissingField          = errors.New("required field is missing")
	ErrInvalidPayloadTag     = errors.New("invalid ctrl tag")
	ErrUnsupportedFieldType  = errors.New("unsupported field type")
	ErrIncompatibleCellValue = errors.New("cell value does not fit field")
)

// CellDecoder is implemented by field types that decode a coerced cell
// value themselves.
type CellDecoder interface {
	DecodeCell(value any) error
}

// fieldPlan is the decoded `ctrl` tag of one struct field.
//
// Tag grammar:
//
//	ctrl:"<column>[,<modifier>]*"
//	modifier: required | omitempty
type fieldPlan struct {
	index    int
	column   string
	required bool
}

// planCache keeps the field plans per struct type. Payload types are a
// closed set, so entries are never evicted.
type planCache struct {
	plans sync.Map // map[reflect.Type][]fieldPlan
}

var _plans planCache

func (pc *planCache) get(typ reflect.Type) ([]fieldPlan, error) {
	if v, ok := pc.plans.Load(typ); ok {
		return v.([]fieldPlan), nil
	}

	plans, err := buildPlans(typ)
	if err != nil {
		return nil, err
	}

	actual, _ := pc.plans.LoadOrStore(typ, plans)
	return actual.([]fieldPlan), nil
}

func buildPlans(typ reflect.Type) ([]fieldPlan, error) {
	plans := make([]fieldPlan, 0, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag, ok := field.Tag.Lookup(PayloadTagName)
		if !ok || tag == "-" || !field.IsExported() {
			continue
		}

		parts := strings.Split(tag, PayloadTagDelimiter)
		column := strings.TrimSpace(parts[0])
		if column == "" {
			return nil, fmt.Errorf("%w: %s.%s has an empty column name", ErrInvalidPayloadTag, typ.Name(), field.Name)
		}

		plan := fieldPlan{index: i, column: column}
		for _, modifier := range parts[1:] {
			switch strings.TrimSpace(modifier) {
			case RequiredPayloadModifier:
				plan.required = true
			case OmitEmptyPayloadModifier, "":
			default:
				return nil, fmt.Errorf("%w: %s.%s: unknown modifier %q", ErrInvalidPayloadTag, typ.Name(), field.Name, modifier)
			}
		}
		plans = append(plans, plan)
	}

	return plans, nil
}

// decodeInto fills the tagged fields of the struct dest points to from a
// column -> coerced value map. Absent and nil values leave the field zeroed.
func decodeInto(dest any, fields map[string]any) error {
	value := reflect.ValueOf(dest)
	if value.Kind() != reflect.Ptr || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("destination must be a non-nil pointer to a struct, got %T", dest)
	}
	elem := value.Elem()

	plans, err := _plans.get(elem.Type())
	if err != nil {
		return err
	}

	for _, plan := range plans {
		v, ok := fields[plan.column]
		if !ok || v == nil {
			if plan.required {
				return fmt.Errorf("%w: %s", ErrMissingField, plan.column)
			}
			continue
		}

		if err := setFieldValue(elem.Field(plan.index), v); err != nil {
			return fmt.Errorf("column %s: %w", plan.column, err)
		}
	}

	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Helpers
///////////////////////////////////////////////////////////////////////////////

// Set field value from a coerced cell value.
//
// Currently supports:
//   - string fields from any scalar (numbers and bools are formatted)
//   - int fields from int64, or float64 without a fraction (overflow checked)
//   - float fields from float64 or int64
//   - bool fields from bool
//   - []string from a JSON array of scalars, or a single scalar
//   - map[string]any from a JSON object
//   - pointers to any of the above
//   - any, which takes the value as is
//   - any type whose pointer implements CellDecoder
func setFieldValue(field reflect.Value, value any) error {
	if field.CanAddr() {
		if dec, ok := field.Addr().Interface().(CellDecoder); ok {
			return dec.DecodeCell(value)
		}
	}

	switch field.Kind() {
	case reflect.String:
		return setStringValue(field, value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setIntValue(field, value)
	case reflect.Float32, reflect.Float64:
		return setFloatValue(field, value)
	case reflect.Bool:
		return setBoolValue(field, value)
	case reflect.Slice:
		return setSliceValue(field, value)
	case reflect.Map:
		return setMapValue(field, value)
	case reflect.Ptr:
		ptr := reflect.New(field.Type().Elem())
		if err := setFieldValue(ptr.Elem(), value); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	case reflect.Interface:
		return setInterfaceValue(field, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFieldType, field.Type())
	}
}

func incompatible(field reflect.Value, value any) error {
	return fmt.Errorf("%w: cannot use %v (%T) as %s", ErrIncompatibleCellValue, value, value, field.Type())
}

// setStringValue sets string field values
func setStringValue(field reflect.Value, value any) error {
	s, ok := scalarString(value)
	if !ok {
		return incompatible(field, value)
	}
	field.SetString(s)
	return nil
}

// setIntValue sets integer field values with overflow checking
func setIntValue(field reflect.Value, value any) error {
	var i int64
	switch v := value.(type) {
	case int64:
		i = v
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt64 {
			return incompatible(field, value)
		}
		i = int64(v)
	default:
		return incompatible(field, value)
	}

	if field.OverflowInt(i) {
		return fmt.Errorf("value %d overflows %s", i, field.Type())
	}
	field.SetInt(i)
	return nil
}

// setFloatValue sets float field values with overflow checking
func setFloatValue(field reflect.Value, value any) error {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	default:
		return incompatible(field, value)
	}

	if field.OverflowFloat(f) {
		return fmt.Errorf("value %f overflows %s", f, field.Type())
	}
	field.SetFloat(f)
	return nil
}

// setBoolValue sets boolean field values. Cells already went through
// Coerce, so only real booleans are accepted.
func setBoolValue(field reflect.Value, value any) error {
	b, ok := value.(bool)
	if !ok {
		return incompatible(field, value)
	}
	field.SetBool(b)
	return nil
}

// setSliceValue sets []string field values
func setSliceValue(field reflect.Value, value any) error {
	if field.Type() != StringListType {
		return fmt.Errorf("%w: %s", ErrUnsupportedFieldType, field.Type())
	}

	var out []string
	switch v := value.(type) {
	case []any:
		out = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := scalarString(item)
			if !ok {
				return incompatible(field, value)
			}
			out = append(out, s)
		}
	default:
		s, ok := scalarString(v)
		if !ok {
			return incompatible(field, value)
		}
		out = []string{s}
	}

	field.Set(reflect.ValueOf(out))
	return nil
}

// setMapValue sets map[string]any field values
func setMapValue(field reflect.Value, value any) error {
	m, ok := value.(map[string]any)
	if !ok || field.Type().Key().Kind() != reflect.String || field.Type().Elem() != AnyType {
		return incompatible(field, value)
	}
	field.Set(reflect.ValueOf(m))
	return nil
}

// setInterfaceValue sets any field values
func setInterfaceValue(field reflect.Value, value any) error {
	if field.NumMethod() != 0 {
		return fmt.Errorf("%w: interface with methods %s", ErrUnsupportedFieldType, field.Type())
	}
	field.Set(reflect.ValueOf(value))
	return nil
}

// scalarString formats a scalar cell value as text.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// mergeFields flattens the basic and extra field maps into one view. Header
// column names are unique, so no key can appear twice.
func mergeFields(basic map[string]any, extra map[string]map[string]any) map[string]any {
	merged := make(map[string]any, len(basic))
	for k, v := range basic {
		merged[k] = v
	}

	groups := make([]string, 0, len(extra))
	for name := range extra {
		groups = append(groups, name)
	}
	slices.Sort(groups)
	for _, name := range groups {
		for k, v := range extra[name] {
			merged[k] = v
		}
	}
	return merged
}
