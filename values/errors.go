package values

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrValue matches every ValueError via errors.Is.
	ErrValue = errors.New("value error")
	// ErrNoKeys is wrapped when a selector names no keys at all.
	ErrNoKeys = errors.New("no candidate keys")
	// ErrUncoercible is wrapped when a raw value cannot become the requested type.
	ErrUncoercible = errors.New("value cannot be coerced")
)

// ValueError reports that no candidate key produced a value of the requested
// type. Err holds the cause for single key selectors; multi key selectors
// leave it nil since each candidate failed for its own reason.
type ValueError struct {
	Keys []string
	Err  error
}

func (e *ValueError) Error() string {
	if e == nil {
		return ""
	}
	msg := "value error"
	if len(e.Keys) > 0 {
		msg += ": " + e.Key()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Key returns the candidate keys comma joined.
func (e *ValueError) Key() string {
	return strings.Join(e.Keys, ",")
}

func (e *ValueError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is ErrValue. Causes are reached through Unwrap.
func (e *ValueError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	return target == ErrValue
}

func uncoercible[T any](raw any) error {
	return fmt.Errorf("%w: %s to %s", ErrUncoercible, describe(raw), reflect.TypeFor[T]())
}

func describe(raw any) string {
	if isNull(raw) {
		return "null"
	}
	return fmt.Sprintf("%T", raw)
}
