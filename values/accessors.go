package values

import (
	"io"
	"time"
)

// Bool reads a boolean. Scalars coerce by their string form: 1, ON, T, TRUE,
// X, Y and YES (any case) are true, everything else is false.
func (r *Reader) Bool(bag Bag, keys ...string) (bool, error) {
	return FetchWith[bool](r, bag, keys, matchBool, r.toBool)
}

func (r *Reader) BoolOrNil(bag Bag, keys ...string) (*bool, error) {
	m, c := nullable[bool](matchBool, r.toBool)
	return FetchWith(r, bag, keys, m, c)
}

// Float reads a float64. Numeric strings use their leading numeric prefix,
// other strings read as 0.
func (r *Reader) Float(bag Bag, keys ...string) (float64, error) {
	return FetchWith[float64](r, bag, keys, matchFloat, r.toFloat)
}

func (r *Reader) FloatOrNil(bag Bag, keys ...string) (*float64, error) {
	m, c := nullable[float64](matchFloat, r.toFloat)
	return FetchWith(r, bag, keys, m, c)
}

// Int reads an int. Floats truncate toward zero and numeric strings use
// their leading numeric prefix, so "abc" reads as 0.
func (r *Reader) Int(bag Bag, keys ...string) (int, error) {
	return FetchWith[int](r, bag, keys, matchInt, r.toInt)
}

func (r *Reader) IntOrNil(bag Bag, keys ...string) (*int, error) {
	m, c := nullable[int](matchInt, r.toInt)
	return FetchWith(r, bag, keys, m, c)
}

// String reads a string; other scalars are rendered. Booleans render as
// "true" and "false", not "1" and "".
func (r *Reader) String(bag Bag, keys ...string) (string, error) {
	return FetchWith[string](r, bag, keys, matchString, r.toString)
}

func (r *Reader) StringOrNil(bag Bag, keys ...string) (*string, error) {
	m, c := nullable[string](matchString, r.toString)
	return FetchWith(r, bag, keys, m, c)
}

// Array reads a string keyed map. Lists are keyed by index, structs by
// field, and strings are read as a JSON file path or inline JSON.
func (r *Reader) Array(bag Bag, keys ...string) (map[string]any, error) {
	return FetchWith[map[string]any](r, bag, keys, matchArray, r.toArray)
}

// ArrayOrNil is Array returning a nil map for null input.
func (r *Reader) ArrayOrNil(bag Bag, keys ...string) (map[string]any, error) {
	m, c := nilable[map[string]any](matchArray, r.toArray)
	return FetchWith(r, bag, keys, m, c)
}

// List reads a list. Strings are read as a JSON file path or inline JSON.
func (r *Reader) List(bag Bag, keys ...string) ([]any, error) {
	return FetchWith[[]any](r, bag, keys, matchList, r.toList)
}

func (r *Reader) ListOrNil(bag Bag, keys ...string) ([]any, error) {
	m, c := nilable[[]any](matchList, r.toList)
	return FetchWith(r, bag, keys, m, c)
}

// StringMap reads an array and keeps the entries with a string form.
// Boolean entries become "true" or "false".
func (r *Reader) StringMap(bag Bag, keys ...string) (map[string]string, error) {
	return FetchWith[map[string]string](r, bag, keys, matchStringMap, r.toStringMap)
}

func (r *Reader) StringMapOrNil(bag Bag, keys ...string) (map[string]string, error) {
	m, c := nilable[map[string]string](matchStringMap, r.toStringMap)
	return FetchWith(r, bag, keys, m, c)
}

// Time reads a datetime from a time.Time, Unix seconds, "now" or a date
// string in one of the absolute layouts cast understands (RFC 3339, RFC 1123,
// "2006-01-02", "2006-01-02 15:04:05" and similar). Relative expressions such
// as "+1 day" or "tomorrow" are not supported and fail.
func (r *Reader) Time(bag Bag, keys ...string) (time.Time, error) {
	return FetchWith[time.Time](r, bag, keys, matchTime, r.toTime)
}

func (r *Reader) TimeOrNil(bag Bag, keys ...string) (*time.Time, error) {
	m, c := nullable[time.Time](matchTime, r.toTime)
	return FetchWith(r, bag, keys, m, c)
}

// Resource reads an open handle. Nothing coerces into one.
func (r *Reader) Resource(bag Bag, keys ...string) (io.Closer, error) {
	return FetchWith[io.Closer](r, bag, keys, matchResource, convertResource)
}

func (r *Reader) ResourceOrNil(bag Bag, keys ...string) (io.Closer, error) {
	m, c := nilable[io.Closer](matchResource, convertResource)
	return FetchWith(r, bag, keys, m, c)
}

// ToArray converts a single value the way Array does.
func (r *Reader) ToArray(v any) (map[string]any, error) {
	return convertOne[map[string]any](v, r.toArray)
}

// ToStringMap converts a single value the way StringMap does.
func (r *Reader) ToStringMap(v any) (map[string]string, error) {
	return convertOne[map[string]string](v, r.toStringMap)
}

func convertOne[T any](v any, convert Convert[T]) (T, error) {
	out, ok, err := convert(v)
	if err == nil && !ok {
		err = uncoercible[T](v)
	}
	if err != nil {
		var zero T
		return zero, &ValueError{Err: err}
	}
	return out, nil
}

// ObjectFrom reads a T. A T or non nil *T is returned as is; maps, structs
// and JSON (inline or a file path) are decoded into T.
func ObjectFrom[T any](r *Reader, bag Bag, keys ...string) (T, error) {
	return FetchWith[T](r, bag, keys, matchObject[T], toObject[T](r))
}

func ObjectOrNilFrom[T any](r *Reader, bag Bag, keys ...string) (*T, error) {
	m, c := nullable[T](matchObject[T], toObject[T](r))
	return FetchWith(r, bag, keys, m, c)
}

// Must panics when err is not nil.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
