package solvers

import (
	"io/fs"
	"testing"

	"github.com/goliatone/go-values/logger"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, values map[string]any) *koanf.Koanf {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(confmap.Provider(values, "."), nil))
	return k
}

func TestVariablesSolver(t *testing.T) {
	k := load(t, map[string]any{
		"server": map[string]any{
			"base_url": "${base_url}",
			"health":   "${base_url}/health?v=${version}",
		},
		"version":      "0.23.45",
		"port":         8080,
		"base_url":     "http://localhost:3333",
		"listen":       "${port}",
		"not_matching": "${nothing}",
		"partial":      "x ${nothing} ${version}",
	})

	out := NewVariablesSolver("${", "}").Solve(k)

	assert.Equal(t, "http://localhost:3333", out.Get("server.base_url"))
	assert.Equal(t, "http://localhost:3333/health?v=0.23.45", out.Get("server.health"))
	assert.Equal(t, 8080, out.Get("listen"))
	assert.Equal(t, "${nothing}", out.Get("not_matching"))
	assert.Equal(t, "x ${nothing} 0.23.45", out.Get("partial"))
}

func TestVariablesSolverCustomDelimiters(t *testing.T) {
	k := load(t, map[string]any{
		"version": "0.23.45",
		"context": map[string]any{"version": "@/version/"},
		"short":   "@/",
	})

	out := NewVariablesSolver("@/", "/").Solve(k)

	assert.Equal(t, "0.23.45", out.Get("context.version"))
	assert.Equal(t, "@/", out.Get("short"))
}

func TestURISolver(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "secrets/version.txt", []byte("12345.00.54321\n"), 0o644))
	t.Setenv("GOVALUES_SOLVER_TOKEN", "from-env")

	k := load(t, map[string]any{
		"version":   "@file://secrets/version.txt",
		"password":  "@base64://I3B3MTI7UmFkZCRhLjI0Mw==",
		"token":     "@env://GOVALUES_SOLVER_TOKEN",
		"missing":   "@file://nothing",
		"unset":     "@env://GOVALUES_SOLVER_UNSET",
		"embedded":  "prefix @file://secrets/version.txt",
		"unknown":   "@ftp://host/file",
		"traversal": "@file://../secrets.txt",
		"absolute":  "@file:///etc/passwd",
	})

	out := NewURISolverWithFS("@", "://", fsys).Solve(k)

	assert.Equal(t, "12345.00.54321", out.Get("version"))
	assert.Equal(t, "#pw12;Radd$a.243", out.Get("password"))
	assert.Equal(t, "from-env", out.Get("token"))
	assert.Equal(t, "@file://nothing", out.Get("missing"))
	assert.Equal(t, "@env://GOVALUES_SOLVER_UNSET", out.Get("unset"))
	assert.Equal(t, "prefix @file://secrets/version.txt", out.Get("embedded"))
	assert.Equal(t, "@ftp://host/file", out.Get("unknown"))
	assert.Equal(t, "@file://../secrets.txt", out.Get("traversal"))
	assert.Equal(t, "@file:///etc/passwd", out.Get("absolute"))
}

func TestExpressionSolver(t *testing.T) {
	k := load(t, map[string]any{
		"app": map[string]any{
			"env":  "development",
			"name": "MyApp",
		},
		"debug":    `{{ app.env == "development" }}`,
		"label":    `{{ app.name + "-" + app.env }}`,
		"sum":      "{{ 1 + 2 }}",
		"embedded": "prefix {{ 1 + 1 }}",
	})

	out := NewExpressionSolver("{{", "}}").Solve(k)

	assert.Equal(t, true, out.Get("debug"))
	assert.Equal(t, "MyApp-development", out.Get("label"))
	assert.EqualValues(t, 3, out.Get("sum"))
	assert.Equal(t, "prefix {{ 1 + 1 }}", out.Get("embedded"))
}

func TestExpressionSolverErrorHandlers(t *testing.T) {
	t.Run("leave unchanged", func(t *testing.T) {
		out := NewExpressionSolver("", "").Solve(load(t, map[string]any{"bad": "{{ }}"}))
		assert.Equal(t, "{{ }}", out.Get("bad"))
	})

	t.Run("remove", func(t *testing.T) {
		k := load(t, map[string]any{"bad": "{{ }}", "ok": "{{ 1 + 1 }}"})
		out := NewExpressionSolver("{{", "}}", WithEvalErrorHandler(OnEvalRemove())).Solve(k)
		assert.False(t, out.Exists("bad"))
		assert.EqualValues(t, 2, out.Get("ok"))
	})

	t.Run("log", func(t *testing.T) {
		k := load(t, map[string]any{"bad": "{{ }}"})
		out := NewExpressionSolver("{{", "}}", WithEvalErrorHandler(OnEvalLog(logger.Nop()))).Solve(k)
		assert.Equal(t, "{{ }}", out.Get("bad"))
	})

	t.Run("panic", func(t *testing.T) {
		k := load(t, map[string]any{"bad": "{{ }}"})
		solver := NewExpressionSolver("{{", "}}", WithEvalErrorHandler(OnEvalPanic()))
		assert.Panics(t, func() { solver.Solve(k) })
	})
}

func TestProtocols(t *testing.T) {
	_, err := Base64Protocol("not base64!")
	assert.Error(t, err)

	_, err = FileProtocol(afero.NewMemMapFs())("/abs")
	assert.ErrorIs(t, err, fs.ErrInvalid)

	_, err = EnvProtocol("GOVALUES_SOLVER_NEVER_SET")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.Equal(t, "12", ToString(12))
	assert.Equal(t, "true", ToString(true))
}
