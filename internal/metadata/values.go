package metadata

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// ToValues coerces v into the canonical value list: nil gives an empty list,
// a scalar gives one element, and a slice or array gives one string per
// element in order.
func ToValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, toValue(e))
		}
		return out
	case string, []byte:
		return []string{toValue(t)}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, toValue(rv.Index(i).Interface()))
		}
		return out
	}
	return []string{toValue(v)}
}

func toValue(v any) string {
	if t, ok := v.(time.Time); ok {
		return formatTime(t)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// formatTime renders dates as YYYY-MM-DD and timestamps with a time part.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.DateTime)
}

