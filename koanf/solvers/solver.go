// Package solvers post-processes a loaded koanf store, replacing string
// values that reference other keys, external content or expressions.
package solvers

import (
	"fmt"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"
)

// ConfigSolver rewrites values in place and returns the same store.
type ConfigSolver interface {
	Solve(config *koanf.Koanf) *koanf.Koanf
}

// ToString renders a resolved value for splicing into a larger string.
func ToString(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v)
}

type delimiters struct {
	Start string
	End   string
}

// stringValues returns the flattened keys holding strings.
func stringValues(config *koanf.Koanf) map[string]string {
	out := make(map[string]string)
	for key, val := range config.All() {
		if s, ok := val.(string); ok {
			out[key] = s
		}
	}
	return out
}
