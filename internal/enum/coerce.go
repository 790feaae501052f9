package enum

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Coerce converts raw to the representation of b's values, using the first
// declared value as the target type. It never fails: nil and values that
// are already members are returned as is, and input that cannot be
// converted is returned unchanged so validation can reject it.
func Coerce(b *Bundle, raw interface{}) interface{} {
	if raw == nil || b == nil || b.Len() == 0 {
		return raw
	}
	if b.Contains(raw) {
		return raw
	}

	target := reflect.TypeOf(b.Exemplar())
	switch target.Kind() {
	case reflect.String:
		return reflect.ValueOf(stringForm(raw)).Convert(target).Interface()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := integerForm(raw)
		if !ok {
			return raw
		}
		out := reflect.New(target).Elem()
		if out.OverflowInt(n) {
			return raw
		}
		out.SetInt(n)
		return out.Interface()

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := integerForm(raw)
		if !ok || n < 0 {
			return raw
		}
		out := reflect.New(target).Elem()
		if out.OverflowUint(uint64(n)) {
			return raw
		}
		out.SetUint(uint64(n))
		return out.Interface()

	default:
		return raw
	}
}

// stringForm returns the text of raw. Symbols, named string types and byte
// slices give their contents.
func stringForm(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return fmt.Sprint(raw)
}

// integerForm reads raw as an integer. Text, symbols and bytes are parsed
// from their string form; floats must be integral.
func integerForm(raw interface{}) (int64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true

	case reflect.String:
		return parseInteger(rv.String())

	case reflect.Slice:
		if b, ok := raw.([]byte); ok {
			return parseInteger(string(b))
		}
		return 0, false
	}

	if s, ok := raw.(fmt.Stringer); ok {
		return parseInteger(s.String())
	}
	return 0, false
}

func parseInteger(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
