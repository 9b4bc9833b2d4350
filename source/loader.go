// Package source builds a values.Bag from layered external sources: default
// maps, structs, JSON/YAML/TOML files, environment variables and command line
// flags. Sources load in priority order, later ones overriding earlier ones,
// then solvers expand ${var} references, @file:// style URIs and {{ expr }}
// expressions.
package source

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-values/koanf/solvers"
	"github.com/goliatone/go-values/logger"
	"github.com/goliatone/go-values/values"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/copystructure"
)

var (
	DefaultDelimiter   = "."
	DefaultLoadTimeout = 30 * time.Second
)

type Loader struct {
	k            *koanf.Koanf
	builders     []ProviderBuilder
	providers    []Provider
	solvers      []solvers.ConfigSolver
	solverPasses int
	loadTimeout  time.Duration
	delimiter    string
	logger       logger.Logger
}

type Option func(*Loader)

// WithProvider appends provider builders. Builders run on every Load.
func WithProvider(builders ...ProviderBuilder) Option {
	return func(l *Loader) {
		for _, b := range builders {
			if b != nil {
				l.builders = append(l.builders, b)
			}
		}
	}
}

// WithSolver appends solvers to the default set.
func WithSolver(slvrs ...solvers.ConfigSolver) Option {
	return func(l *Loader) {
		l.solvers = append(l.solvers, slvrs...)
	}
}

// WithSolvers replaces the solver list, allowing explicit ordering. Passing
// no solvers disables solving.
func WithSolvers(slvrs ...solvers.ConfigSolver) Option {
	return func(l *Loader) {
		l.solvers = append([]solvers.ConfigSolver{}, slvrs...)
	}
}

// WithSolverPasses sets the maximum number of solver passes (minimum 1).
func WithSolverPasses(passes int) Option {
	return func(l *Loader) {
		if passes < 1 {
			passes = 1
		}
		l.solverPasses = passes
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(l *Loader) {
		if timeout > 0 {
			l.loadTimeout = timeout
		}
	}
}

// WithDelimiter sets the key path delimiter used by Flat and the providers.
func WithDelimiter(delim string) Option {
	return func(l *Loader) {
		if delim != "" {
			l.delimiter = delim
		}
	}
}

func WithLogger(lgr logger.Logger) Option {
	return func(l *Loader) {
		if lgr != nil {
			l.logger = lgr
		}
	}
}

func New(opts ...Option) *Loader {
	l := &Loader{
		delimiter:    DefaultDelimiter,
		loadTimeout:  DefaultLoadTimeout,
		logger:       logger.NewDefaultLogger("source"),
		solverPasses: 1,
		solvers: []solvers.ConfigSolver{
			solvers.NewVariablesSolver("${", "}"),
			solvers.NewURISolver("@", "://"),
			solvers.NewExpressionSolver("{{", "}}"),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.reset()
	return l
}

func (l *Loader) reset() {
	l.k = koanf.NewWithConf(koanf.Conf{
		Delim: l.delimiter,
	})
}

// Delimiter returns the key path delimiter.
func (l *Loader) Delimiter() string {
	return l.delimiter
}

// Koanf exposes the underlying store.
func (l *Loader) Koanf() *koanf.Koanf {
	return l.k
}

// Bag returns the loaded values as a nested bag.
func (l *Loader) Bag() values.Bag {
	return values.Bag(l.k.Raw())
}

// Flat returns the loaded values keyed by delimiter joined paths, so
// "db.port" can be read directly.
func (l *Loader) Flat() values.Bag {
	return values.Bag(l.k.All())
}

func (l *Loader) MustLoad(ctx context.Context) {
	if err := l.Load(ctx); err != nil {
		panic(fmt.Sprintf("failed to load values: %v", err))
	}
}

// Load discards previously loaded values, then loads every provider in
// priority order and runs the solvers.
func (l *Loader) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.loadTimeout)
	defer cancel()

	l.reset()

	l.providers = l.providers[:0]
	for i, build := range l.builders {
		p, err := build(l)
		if err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to create provider").
				WithTextCode("PROVIDER_CREATION_FAILED").
				WithMetadata(map[string]any{
					"builder_index":  i,
					"total_builders": len(l.builders),
				})
		}
		l.providers = append(l.providers, p)
	}

	for i, p := range l.providers {
		if err := p.Validate(); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid provider source type").
				WithTextCode("INVALID_PROVIDER_TYPE").
				WithMetadata(map[string]any{
					"source_type":    string(p.Type()),
					"provider_index": i,
				})
		}
	}

	sort.SliceStable(l.providers, func(i, j int) bool {
		return l.providers[i].Priority() < l.providers[j].Priority()
	})

	for i, p := range l.providers {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "load cancelled").
				WithTextCode("LOAD_CANCELLED").
				WithMetadata(map[string]any{
					"source_index": i,
				})
		}
		l.logger.Debug("loading %s source", p.Type())
		if err := p.Load(ctx, l.k); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to load values from source").
				WithTextCode("SOURCE_LOAD_FAILED").
				WithMetadata(map[string]any{
					"source_type":   string(p.Type()),
					"source_index":  i,
					"total_sources": len(l.providers),
				})
		}
	}

	l.solve()
	return nil
}

func (l *Loader) solve() {
	if len(l.solvers) == 0 {
		return
	}
	for pass := 0; pass < l.solverPasses; pass++ {
		before, ok := snapshot(l.k)
		for _, s := range l.solvers {
			s.Solve(l.k)
		}
		if !ok {
			continue
		}
		if reflect.DeepEqual(before, l.k.Raw()) {
			l.logger.Debug("solvers settled after %d pass(es)", pass+1)
			return
		}
	}
}

func snapshot(k *koanf.Koanf) (any, bool) {
	raw := k.Raw()
	cloned, err := copystructure.Copy(raw)
	if err != nil {
		return raw, false
	}
	return cloned, true
}
