package solvers

import (
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/goliatone/go-values/logger"
	"github.com/knadh/koanf/v2"
)

const (
	defaultExpressionStart = "{{"
	defaultExpressionEnd   = "}}"
)

// EvalErrorHandler handles a failed expression. The solver moves on to the
// next key either way.
type EvalErrorHandler func(key string, expr string, err error, cfg *koanf.Koanf)

type ExpressionOption func(*expression)

// WithEvaluator replaces the default expr evaluator.
func WithEvaluator(eval opts.Evaluator) ExpressionOption {
	return func(e *expression) {
		if eval != nil {
			e.evaluator = eval
		}
	}
}

// WithEvalErrorHandler sets what happens to values whose expression fails.
// The default leaves them unchanged.
func WithEvalErrorHandler(h EvalErrorHandler) ExpressionOption {
	return func(e *expression) {
		if h != nil {
			e.onError = h
		}
	}
}

type expression struct {
	delimiters *delimiters
	evaluator  opts.Evaluator
	onError    EvalErrorHandler
}

// NewExpressionSolver evaluates values that are entirely an expression
// wrapped in start/end (default {{ }}) against the whole store, so
// "{{ app.env == \"dev\" }}" becomes a boolean.
func NewExpressionSolver(start, end string, options ...ExpressionOption) ConfigSolver {
	if start == "" {
		start = defaultExpressionStart
	}
	if end == "" {
		end = defaultExpressionEnd
	}

	e := &expression{
		delimiters: &delimiters{Start: start, End: end},
		onError:    OnEvalLeaveUnchanged(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.evaluator == nil {
		e.evaluator = opts.NewExprEvaluator()
	}
	return e
}

func (s expression) Solve(config *koanf.Koanf) *koanf.Koanf {
	if config == nil {
		return config
	}

	for key, val := range stringValues(config) {
		expr, ok := s.fullMatch(val)
		if !ok {
			continue
		}

		expr = strings.TrimSpace(expr)
		result, err := s.evaluator.Evaluate(opts.RuleContext{Snapshot: config.Raw()}, expr)
		if err != nil {
			s.onError(key, expr, err, config)
			continue
		}
		config.Set(key, result)
	}
	return config
}

func (s expression) fullMatch(input string) (string, bool) {
	if len(input) < len(s.delimiters.Start)+len(s.delimiters.End) {
		return "", false
	}
	if !strings.HasPrefix(input, s.delimiters.Start) || !strings.HasSuffix(input, s.delimiters.End) {
		return "", false
	}
	return input[len(s.delimiters.Start) : len(input)-len(s.delimiters.End)], true
}

// OnEvalLeaveUnchanged keeps the original value.
func OnEvalLeaveUnchanged() EvalErrorHandler {
	return func(string, string, error, *koanf.Koanf) {}
}

// OnEvalLog logs the failure at warn level and keeps the original value.
func OnEvalLog(l logger.Logger) EvalErrorHandler {
	if l == nil {
		l = logger.NewDefaultLogger("solvers")
	}
	return func(key string, expr string, err error, _ *koanf.Koanf) {
		l.Warn("expression evaluation failed for %s: %s (%v)", key, expr, err)
	}
}

// OnEvalPanic panics with the evaluation error.
func OnEvalPanic() EvalErrorHandler {
	return func(_ string, _ string, err error, _ *koanf.Koanf) {
		panic(err)
	}
}

// OnEvalRemove deletes the key from the store.
func OnEvalRemove() EvalErrorHandler {
	return func(key string, _ string, _ error, cfg *koanf.Koanf) {
		if cfg != nil {
			cfg.Delete(key)
		}
	}
}
