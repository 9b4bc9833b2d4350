// Package env is a koanf provider for environment variables that, unlike
// the stock one, understands list indexes in variable names:
//
//	APP_DATABASE__0__PASSWORD=password_1
//	APP_DATABASE__1__PASSWORD=password_2
//
// becomes {"database": [{"password": "password_1"}, {"password": "password_2"}]}
// once the key mapper strips the prefix and maps "__" to the delimiter.
// The provider renders JSON, so load it with the koanf JSON parser.
package env

import (
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-values/logger"
	"github.com/tidwall/sjson"
)

type Env struct {
	prefix  string
	delim   string
	mapper  func(key, value string) (string, any)
	environ func() []string
	logger  logger.Logger
}

type Option func(*Env)

// WithKeyMapper rewrites variable names; an empty result skips the variable.
func WithKeyMapper(fn func(key string) string) Option {
	return func(e *Env) {
		if fn == nil {
			return
		}
		e.mapper = func(key, value string) (string, any) {
			return fn(key), value
		}
	}
}

// WithValueMapper rewrites names and values together, for instance to turn
// a comma separated value into a list.
func WithValueMapper(fn func(key, value string) (string, any)) Option {
	return func(e *Env) {
		if fn != nil {
			e.mapper = fn
		}
	}
}

// WithEnviron replaces os.Environ as the variable source.
func WithEnviron(fn func() []string) Option {
	return func(e *Env) {
		if fn != nil {
			e.environ = fn
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(e *Env) {
		if l != nil {
			e.logger = l
		}
	}
}

// Provider captures the variables starting with prefix (case sensitive,
// empty means all). delim separates nesting levels in the mapped names.
func Provider(prefix, delim string, opts ...Option) *Env {
	e := &Env{
		prefix:  prefix,
		delim:   delim,
		environ: os.Environ,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ReadBytes renders the captured variables as a JSON document.
func (e *Env) ReadBytes() ([]byte, error) {
	vars := e.environ()
	sort.Strings(vars)

	out := "{}"
	for _, kv := range vars {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, e.prefix) {
			continue
		}

		var (
			key   = name
			value any = raw
		)
		if e.mapper != nil {
			key, value = e.mapper(name, raw)
			if key == "" {
				continue
			}
		}

		path := key
		if e.delim != "" && e.delim != "." {
			path = strings.ReplaceAll(key, e.delim, ".")
		}

		next, err := sjson.Set(out, path, value)
		if err != nil {
			e.logger.Warn("skipping env var %s: %v", name, err)
			continue
		}
		out = next
	}

	return []byte(out), nil
}

// Read is not supported; use ReadBytes with a JSON parser.
func (e *Env) Read() (map[string]any, error) {
	return nil, errors.New("env provider does not support this method")
}
