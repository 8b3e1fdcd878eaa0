package render

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Base provides the cell formatting shared by renderers.
type Base struct {
	// MaxWidth truncates cells longer than it. Zero means DefaultMaxWidth,
	// negative disables truncation.
	MaxWidth int
}

func (b Base) width() int {
	if b.MaxWidth == 0 {
		return DefaultMaxWidth
	}
	return b.MaxWidth
}

// Cell formats one field value for display.
func (b Base) Cell(v any) string {
	s := FormatValue(v)
	if w := b.width(); w > 0 {
		s = Truncate(s, w)
	}
	return s
}

// FormatValue converts a decoded JSON value to its display form. Nested
// values are rendered as compact JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return MissingValue
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case map[string]any, []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return UnknownValue
		}
		return string(raw)
	default:
		return fmt.Sprint(t)
	}
}
