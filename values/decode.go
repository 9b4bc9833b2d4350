package values

import (
	"encoding"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-values/jsonx"
)

var timeType = reflect.TypeOf(time.Time{})

// toObject builds a Convert for T. Maps, lists and structs are decoded into
// T; strings are read as a file path or inline JSON object first.
func toObject[T any](r *Reader) Convert[T] {
	return func(raw any) (T, bool, error) {
		var out T

		var input any
		switch v := raw.(type) {
		case nil:
			return out, false, nil
		case string:
			text, err := r.inline(v)
			if err != nil {
				return out, false, err
			}
			m, err := jsonx.DecodeObject(text)
			if err != nil {
				return out, false, err
			}
			input = m
		case []any:
			input = jsonx.IndexMap(v)
		default:
			rv, ok := deref(reflect.ValueOf(raw))
			if !ok || (rv.Kind() != reflect.Map && rv.Kind() != reflect.Struct) {
				return out, false, nil
			}
			input = raw
		}

		if err := r.decode(input, &out); err != nil {
			var zero T
			return zero, false, err
		}
		return out, true, nil
	}
}

func matchObject[T any](raw any) (T, bool) {
	switch v := raw.(type) {
	case T:
		return v, true
	case *T:
		if v != nil {
			return *v, true
		}
	}
	var zero T
	return zero, false
}

// Decode decodes input into out with the reader's tag name and hooks.
func (r *Reader) Decode(input any, out any) error {
	return r.decode(input, out)
}

func (r *Reader) decode(input any, out any) error {
	config := &mapstructure.DecoderConfig{
		TagName:          r.tagName,
		WeaklyTypedInput: true,
		Result:           prepareDecodeTarget(out),
		DecodeHook:       r.decodeHooks(),
	}
	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func (r *Reader) decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		r.boolHook(),
		r.timeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		textUnmarshalerHook(),
	)
}

// prepareDecodeTarget allocates through a nil pointer so decoding into a
// pointer type fills a fresh value.
func prepareDecodeTarget(out any) any {
	val := reflect.ValueOf(out)
	if val.Kind() != reflect.Pointer || val.IsNil() {
		return out
	}
	elem := val.Elem()
	if elem.Kind() == reflect.Pointer {
		if elem.IsNil() {
			elem.Set(reflect.New(elem.Type().Elem()))
		}
		return elem.Interface()
	}
	return out
}

// boolHook reads strings bound for bool fields with the accessor's truthy
// token rules.
func (r *Reader) boolHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
			return data, nil
		}
		b, ok, err := r.toBool(data)
		if err != nil {
			return nil, err
		}
		if !ok {
			return data, nil
		}
		return b, nil
	}
}

// timeHook reads Unix seconds, "now" and date strings into time.Time fields.
func (r *Reader) timeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != timeType {
			return data, nil
		}
		if _, ok := matchTime(data); ok {
			return data, nil
		}
		t, ok, err := r.toTime(data)
		if err != nil {
			return nil, err
		}
		if !ok {
			return data, nil
		}
		return t, nil
	}
}

// textUnmarshalerHook feeds strings to fields implementing
// encoding.TextUnmarshaler.
func textUnmarshalerHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		result := reflect.New(to).Interface()
		unmarshaller, ok := result.(encoding.TextUnmarshaler)
		if !ok {
			return data, nil
		}
		if err := unmarshaller.UnmarshalText([]byte(reflect.ValueOf(data).String())); err != nil {
			return nil, err
		}
		return result, nil
	}
}
