package solvers

import (
	"strings"

	"github.com/knadh/koanf/v2"
)

type variables struct {
	delimiters *delimiters
}

// NewVariablesSolver replaces references such as ${db.host} with the value
// stored at that key. A value that is exactly one reference takes the
// referenced value with its type; references inside a longer string are
// spliced in as text. Unknown keys are left untouched.
func NewVariablesSolver(start, end string) ConfigSolver {
	return &variables{
		delimiters: &delimiters{
			Start: start,
			End:   end,
		},
	}
}

func (s variables) Solve(config *koanf.Koanf) *koanf.Koanf {
	if config == nil {
		return config
	}
	for key, val := range stringValues(config) {
		if resolved, ok := s.resolve(val, config); ok {
			config.Set(key, resolved)
		}
	}
	return config
}

func (s variables) resolve(val string, config *koanf.Koanf) (any, bool) {
	if path, ok := s.whole(val); ok {
		if !config.Exists(path) {
			return nil, false
		}
		return config.Get(path), true
	}

	var (
		b       strings.Builder
		changed bool
		rest    = val
	)
	for {
		start := strings.Index(rest, s.delimiters.Start)
		if start < 0 {
			break
		}
		open := start + len(s.delimiters.Start)
		end := strings.Index(rest[open:], s.delimiters.End)
		if end < 0 {
			break
		}
		end += open

		path := rest[open:end]
		b.WriteString(rest[:start])
		if path != "" && config.Exists(path) {
			b.WriteString(ToString(config.Get(path)))
			changed = true
		} else {
			b.WriteString(rest[start : end+len(s.delimiters.End)])
		}
		rest = rest[end+len(s.delimiters.End):]
	}
	b.WriteString(rest)

	return b.String(), changed
}

// whole reports whether val is a single reference and returns its path.
func (s variables) whole(val string) (string, bool) {
	if len(val) < len(s.delimiters.Start)+len(s.delimiters.End) ||
		!strings.HasPrefix(val, s.delimiters.Start) || !strings.HasSuffix(val, s.delimiters.End) {
		return "", false
	}
	path := val[len(s.delimiters.Start) : len(val)-len(s.delimiters.End)]
	if path == "" || strings.Contains(path, s.delimiters.Start) || strings.Contains(path, s.delimiters.End) {
		return "", false
	}
	return path, true
}
