package values

import "slices"

// Match is the type check: it returns the raw value as a T when it already
// is one.
type Match[T any] func(raw any) (T, bool)

// Convert is the coercion. ok=false with a nil error means the raw value
// cannot become a T; a non nil error is a failure while trying (bad JSON, an
// unreadable file, an unparseable date).
type Convert[T any] func(raw any) (T, bool, error)

// Fetch resolves keys against bag with DefaultReader.
func Fetch[T any](bag Bag, keys []string, match Match[T], convert Convert[T]) (T, error) {
	return FetchWith(DefaultReader, bag, keys, match, convert)
}

// FetchWith looks each key up in order; an absent key reads as null. The
// first candidate that matches or converts wins. With a single key its
// failure is returned as is; with several keys failures are logged and the
// next key is tried, and the final error names every key.
func FetchWith[T any](r *Reader, bag Bag, keys []string, match Match[T], convert Convert[T]) (T, error) {
	var zero T
	if len(keys) == 0 {
		return zero, &ValueError{Err: ErrNoKeys}
	}

	if len(keys) == 1 {
		v, err := resolve(bag, keys[0], match, convert)
		if err != nil {
			return zero, &ValueError{Keys: []string{keys[0]}, Err: err}
		}
		return v, nil
	}

	for _, key := range keys {
		v, err := resolve(bag, key, match, convert)
		if err == nil {
			return v, nil
		}
		r.logger.Debug("candidate %q rejected: %v", key, err)
	}
	return zero, &ValueError{Keys: slices.Clone(keys)}
}

func resolve[T any](bag Bag, key string, match Match[T], convert Convert[T]) (T, error) {
	var zero T
	raw := bag[key]
	if v, ok := match(raw); ok {
		return v, nil
	}
	v, ok, err := convert(raw)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, uncoercible[T](raw)
	}
	return v, nil
}

// nullable lifts a matcher and converter to pointer results where null
// input yields a nil pointer.
func nullable[T any](match Match[T], convert Convert[T]) (Match[*T], Convert[*T]) {
	m := func(raw any) (*T, bool) {
		if isNull(raw) {
			return nil, true
		}
		if v, ok := match(raw); ok {
			return &v, true
		}
		return nil, false
	}
	c := func(raw any) (*T, bool, error) {
		v, ok, err := convert(raw)
		if err != nil || !ok {
			return nil, false, err
		}
		return &v, true, nil
	}
	return m, c
}

// nilable is nullable for types whose zero value already means null, such
// as maps, slices and interfaces.
func nilable[T any](match Match[T], convert Convert[T]) (Match[T], Convert[T]) {
	m := func(raw any) (T, bool) {
		if isNull(raw) {
			var zero T
			return zero, true
		}
		return match(raw)
	}
	return m, convert
}
