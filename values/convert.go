package values

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-values/jsonx"
	"github.com/spf13/cast"
)

func matchBool(raw any) (bool, bool) {
	b, ok := raw.(bool)
	return b, ok
}

func matchFloat(raw any) (float64, bool) {
	return nativeFloat(raw)
}

func matchInt(raw any) (int, bool) {
	return nativeInt(raw)
}

func matchString(raw any) (string, bool) {
	s, ok := raw.(string)
	return s, ok
}

func matchArray(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok
}

func matchList(raw any) ([]any, bool) {
	l, ok := raw.([]any)
	return l, ok
}

func matchStringMap(raw any) (map[string]string, bool) {
	m, ok := raw.(map[string]string)
	return m, ok
}

func matchTime(raw any) (time.Time, bool) {
	switch t := raw.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

func matchResource(raw any) (io.Closer, bool) {
	if isNull(raw) {
		return nil, false
	}
	c, ok := raw.(io.Closer)
	return c, ok
}

func convertResource(raw any) (io.Closer, bool, error) {
	return nil, false, nil
}

// toBool reads the string form of a scalar: truthy tokens are true and
// anything else is false, unless the reader is strict.
func (r *Reader) toBool(raw any) (bool, bool, error) {
	s, ok := scalarString(raw)
	if !ok {
		return false, false, nil
	}
	token := strings.ToUpper(s)
	if _, ok := truthyTokens[token]; ok {
		return true, true, nil
	}
	if r.strictBool {
		if _, ok := falsyTokens[token]; !ok {
			return false, false, fmt.Errorf("%w: unknown boolean token %q", ErrUncoercible, s)
		}
	}
	return false, true, nil
}

func (r *Reader) toFloat(raw any) (float64, bool, error) {
	f, ok := toFloat(raw)
	return f, ok, nil
}

func (r *Reader) toInt(raw any) (int, bool, error) {
	i, ok := toInt(raw)
	return i, ok, nil
}

func (r *Reader) toString(raw any) (string, bool, error) {
	s, ok := scalarString(raw)
	return s, ok, nil
}

// toArray turns lists, maps, structs and path-or-JSON strings into a string
// keyed map. Lists are keyed by index.
func (r *Reader) toArray(raw any) (map[string]any, bool, error) {
	switch v := raw.(type) {
	case nil:
		return nil, false, nil
	case map[string]any:
		return v, true, nil
	case []any:
		return jsonx.IndexMap(v), true, nil
	case string:
		text, err := r.inline(v)
		if err != nil {
			return nil, false, err
		}
		m, err := jsonx.DecodeArray(text)
		if err != nil {
			return nil, false, err
		}
		return m, true, nil
	}

	rv, ok := deref(reflect.ValueOf(raw))
	if !ok {
		return nil, false, nil
	}
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return out, true, nil
	case reflect.Slice, reflect.Array:
		return jsonx.IndexMap(sliceValues(rv)), true, nil
	case reflect.Struct:
		return structFields(rv, r.tagName), true, nil
	}
	return nil, false, nil
}

// toList turns slices and path-or-JSON strings holding a list into []any.
func (r *Reader) toList(raw any) ([]any, bool, error) {
	if s, ok := raw.(string); ok {
		text, err := r.inline(s)
		if err != nil {
			return nil, false, err
		}
		list, err := jsonx.DecodeList(text)
		if err != nil {
			return nil, false, err
		}
		return list, true, nil
	}

	rv, ok := deref(reflect.ValueOf(raw))
	if !ok {
		return nil, false, nil
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceValues(rv), true, nil
	}
	return nil, false, nil
}

// toStringMap applies array coercion and keeps the entries that have a
// string form.
func (r *Reader) toStringMap(raw any) (map[string]string, bool, error) {
	arr, ok, err := r.toArray(raw)
	if err != nil || !ok {
		return nil, false, err
	}

	out := make(map[string]string, len(arr))
	for k, item := range arr {
		if s, ok := scalarString(item); ok {
			out[k] = s
			continue
		}
		if st, ok := item.(fmt.Stringer); ok && !isNull(item) {
			out[k] = st.String()
			continue
		}
		if r.strictStringMap {
			return nil, false, fmt.Errorf("%w: entry %q holds %s", ErrUncoercible, k, describe(item))
		}
		r.logger.Debug("dropping entry %q: %s has no string form", k, describe(item))
	}
	return out, true, nil
}

// toTime accepts Unix seconds, "now" and date strings. Zone-less input is
// read in the reader's location.
func (r *Reader) toTime(raw any) (time.Time, bool, error) {
	switch v := raw.(type) {
	case string:
		if strings.EqualFold(strings.TrimSpace(v), "now") {
			return r.now().In(r.location), true, nil
		}
		t, err := cast.StringToDateInDefaultLocation(v, r.location)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %w", ErrUncoercible, err)
		}
		return t, true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return time.Time{}, false, nil
		}
		return time.Unix(n, 0).In(r.location), true, nil
	}
	if n, ok := unixSeconds(raw); ok {
		return time.Unix(n, 0).In(r.location), true, nil
	}
	return time.Time{}, false, nil
}

// unixSeconds accepts integer kinds and floats without a fractional part,
// the latter being how decoded JSON carries integers.
func unixSeconds(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(clampUint64(uint64(v))), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(clampUint64(v)), true
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < math.MaxInt64 {
			return int64(v), true
		}
	case float32:
		f := float64(v)
		if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < math.MaxInt64 {
			return int64(f), true
		}
	}
	return 0, false
}

// deref follows pointers and interfaces; ok is false for nil or invalid values.
func deref(rv reflect.Value) (reflect.Value, bool) {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.IsValid()
}

func sliceValues(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// structFields returns the exported fields of a struct keyed by tag name,
// falling back to the json tag and then the field name. Nested values are
// kept as is.
func structFields(rv reflect.Value, tagName string) map[string]any {
	typ := rv.Type()
	out := make(map[string]any, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		key := tagKey(field.Tag.Get(tagName))
		if key == "" {
			key = tagKey(field.Tag.Get("json"))
		}
		if key == "" {
			key = field.Name
		}
		if key == "-" {
			continue
		}
		out[key] = rv.Field(i).Interface()
	}
	return out
}

func tagKey(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	return strings.TrimSpace(name)
}
