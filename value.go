package ctrldef

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrMalformedCell = errors.New("malformed cell")
)

///////////////////////////////////////////////////////////////////////////////
// Value Coercion
///////////////////////////////////////////////////////////////////////////////

// Coerce converts a raw cell into a typed value. The result is one of
// nil, bool, int64, float64, string, []any or map[string]any.
//
// A quoted cell whose content looks like JSON but does not parse degrades to
// the unquoted string; use CoerceCell to observe that condition.
func Coerce(raw string) any {
	v, _ := CoerceCell(raw)
	return v
}

// CoerceCell is Coerce that also reports a recovered ErrMalformedCell. The
// returned value is always usable, even when err is non-nil.
//
// Rules are applied in this order:
//   - empty (or whitespace only) -> nil
//   - literal X -> nil
//   - "..." with "" as an escaped quote -> string; a JSON array or object
//     inside the quotes is decoded
//   - true/false (any case) -> bool
//   - contains '.' and parses as a float -> float64
//   - parses as a base 10 integer -> int64
//   - 0x prefix and parses as hex -> int64
//   - anything else -> the trimmed string
func CoerceCell(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == ExcludedColumnMarker {
		return nil, nil
	}

	if s, ok := unquote(trimmed); ok {
		return coerceQuoted(s)
	}

	if strings.EqualFold(trimmed, "true") {
		return true, nil
	}
	if strings.EqualFold(trimmed, "false") {
		return false, nil
	}

	if strings.Contains(trimmed, ".") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f, nil
		}
	}

	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i, nil
	}

	if digits, ok := strings.CutPrefix(trimmed, hexPrefix); ok && digits != "" && digits[0] != '-' && digits[0] != '+' {
		if i, err := strconv.ParseInt(digits, 16, 64); err == nil {
			return i, nil
		}
	}

	return trimmed, nil
}

// coerceQuoted decodes JSON containers held in a quoted cell.
func coerceQuoted(s string) (any, error) {
	body := strings.TrimSpace(s)
	if !looksLikeJSON(body) {
		return s, nil
	}

	if !gjson.Valid(body) {
		return s, fmt.Errorf("%w: invalid JSON %q", ErrMalformedCell, body)
	}

	return jsonValue(gjson.Parse(body)), nil
}

func looksLikeJSON(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (s[0] == '[' && s[len(s)-1] == ']') || (s[0] == '{' && s[len(s)-1] == '}')
}

// jsonValue converts a parsed JSON node, keeping integer literals as int64
// so decoded containers follow the same number rules as plain cells.
func jsonValue(r gjson.Result) any {
	switch {
	case r.IsArray():
		items := r.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = jsonValue(item)
		}
		return out
	case r.IsObject():
		out := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			out[key.String()] = jsonValue(value)
			return true
		})
		return out
	case r.Type == gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return i
			}
		}
		return r.Float()
	default:
		return r.Value()
	}
}

// unquote strips one pair of surrounding double quotes and collapses doubled
// quotes inside. It reports false when s is not a quoted cell.
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != CellQuote || s[len(s)-1] != CellQuote {
		return "", false
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`), true
}

// isBlank reports whether every cell of row is empty.
func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
