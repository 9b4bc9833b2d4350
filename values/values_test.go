package values

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-values/jsonx"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

func (l label) String() string { return "label:" + string(l) }

func TestIntCoercion(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want int
	}{
		{"numeric string", "42", 42},
		{"non numeric string", "abc", 0},
		{"numeric prefix", "  12px", 12},
		{"exponent", "1e3", 1000},
		{"negative float string", "-3.9", -3},
		{"float", 3.9, 3},
		{"negative float", -3.9, -3},
		{"int64", int64(7), 7},
		{"uint64 overflow", uint64(math.MaxUint64), math.MaxInt},
		{"string overflow", "99999999999999999999", math.MaxInt},
		{"json number", json.Number("17"), 17},
		{"true", true, 1},
		{"false", false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Int(Bag{"count": tc.raw}, "count")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMissingKeyFails(t *testing.T) {
	_, err := Int(Bag{}, "count")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "value error: count"), err.Error())
	assert.ErrorIs(t, err, ErrValue)
	assert.ErrorIs(t, err, ErrUncoercible)

	var verr *ValueError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"count"}, verr.Keys)
}

func TestNoKeys(t *testing.T) {
	_, err := Int(Bag{"count": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoKeys)
	assert.ErrorIs(t, err, ErrValue)
}

func TestNullHandling(t *testing.T) {
	bag := Bag{"flag": nil}

	got, err := BoolOrNil(bag, "flag")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = Bool(bag, "flag")
	require.Error(t, err)

	missing, err := IntOrNil(bag, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	var ptr *time.Time
	at, err := TimeOrNil(Bag{"at": ptr}, "at")
	require.NoError(t, err)
	assert.Nil(t, at)

	arr, err := ArrayOrNil(bag, "flag")
	require.NoError(t, err)
	assert.Nil(t, arr)

	list, err := ListOrNil(bag, "flag")
	require.NoError(t, err)
	assert.Nil(t, list)

	sm, err := StringMapOrNil(bag, "flag")
	require.NoError(t, err)
	assert.Nil(t, sm)

	res, err := ResourceOrNil(bag, "flag")
	require.NoError(t, err)
	assert.Nil(t, res)

	n, err := IntOrNil(Bag{"n": "5"}, "n")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 5, *n)

	_, err = IntOrNil(Bag{"n": []any{1}}, "n")
	require.Error(t, err)
}

func TestMultiKeyFallback(t *testing.T) {
	bag := Bag{
		"list":  []any{1},
		"port":  "7",
		"bad":   "{broken",
		"inner": `{"a": 1}`,
	}

	got, err := Int(bag, "list", "port")
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	arr, err := Array(bag, "bad", "inner")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, arr)

	_, err = Int(bag, "x", "y")
	require.Error(t, err)
	assert.Equal(t, "value error: x,y", err.Error())
	assert.ErrorIs(t, err, ErrValue)
	assert.NotErrorIs(t, err, ErrUncoercible)
}

func TestSingleKeySurfacesCause(t *testing.T) {
	_, err := Array(Bag{"bad": "{broken"}, "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValue)

	var cause *errors.Error
	require.True(t, errors.As(err, &cause))
	assert.Equal(t, "JSON_SYNTAX", cause.TextCode)
}

func TestBoolCoercion(t *testing.T) {
	truthy := []any{"YES", "yes", "X", "1", 1, "on", "t", "TRUE", 1.0, true}
	for _, raw := range truthy {
		got, err := Bool(Bag{"flag": raw}, "flag")
		require.NoError(t, err)
		assert.True(t, got, "%#v", raw)
	}

	falsy := []any{"NO", "0", "maybe", 0, false, "FALSE", "", 2}
	for _, raw := range falsy {
		got, err := Bool(Bag{"flag": raw}, "flag")
		require.NoError(t, err)
		assert.False(t, got, "%#v", raw)
	}

	_, err := Bool(Bag{"flag": map[string]any{}}, "flag")
	require.Error(t, err)
}

func TestStrictBool(t *testing.T) {
	r := NewReader(WithStrictBool())

	got, err := r.Bool(Bag{"flag": "no"}, "flag")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = r.Bool(Bag{"flag": "Y"}, "flag")
	require.NoError(t, err)
	assert.True(t, got)

	_, err = r.Bool(Bag{"flag": "maybe"}, "flag")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUncoercible)
	assert.Contains(t, err.Error(), `"maybe"`)
}

func TestFloatCoercion(t *testing.T) {
	cases := map[string]struct {
		raw  any
		want float64
	}{
		"native":      {0.25, 0.25},
		"float32":     {float32(0.5), 0.5},
		"int":         {3, 3},
		"prefix":      {"3.14abc", 3.14},
		"leading ws":  {" 2.5", 2.5},
		"exponent":    {"1e3", 1000},
		"non numeric": {"abc", 0},
		"bool":        {true, 1},
		"json number": {json.Number("1.5"), 1.5},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Float(Bag{"v": tc.raw}, "v")
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}

	_, err := Float(Bag{"v": []any{}}, "v")
	require.Error(t, err)
}

func TestStringCoercion(t *testing.T) {
	cases := map[string]struct {
		raw  any
		want string
	}{
		"native": {"x", "x"},
		"int":    {42, "42"},
		"float":  {1.5, "1.5"},
		"bool":   {true, "true"},
		"false":  {false, "false"},
		"number": {json.Number("7"), "7"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := String(Bag{"v": tc.raw}, "v")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := String(Bag{"v": []any{"x"}}, "v")
	require.Error(t, err)
	_, err = String(Bag{"v": label("x")}, "v")
	require.Error(t, err)
}

type point struct {
	X      int `json:"x"`
	Y      int
	Skip   int `mapstructure:"-"`
	hidden int
}

func TestArrayCoercion(t *testing.T) {
	native := map[string]any{"a": 1}
	got, err := Array(Bag{"v": native}, "v")
	require.NoError(t, err)
	assert.Equal(t, native, got)

	got, err = Array(Bag{"v": []any{"a", "b"}}, "v")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"0": "a", "1": "b"}, got)

	got, err = Array(Bag{"v": []string{"a"}}, "v")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"0": "a"}, got)

	got, err = Array(Bag{"v": map[int]string{1: "one"}}, "v")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "one"}, got)

	got, err = Array(Bag{"v": &point{X: 1, Y: 2, Skip: 3, hidden: 4}}, "v")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1, "Y": 2}, got)

	got, err = Array(Bag{"v": `[true, "x"]`}, "v")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"0": true, "1": "x"}, got)

	_, err = Array(Bag{"v": 5}, "v")
	require.Error(t, err)

	_, err = Array(Bag{"v": `"scalar"`}, "v")
	require.Error(t, err)
}

func TestArrayFromFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/conf/app.json", []byte(`{"name": "demo", "tags": ["a"]}`), 0o644))
	r := NewReader(WithFS(fsys))

	got, err := r.Array(Bag{"config": "/conf/app.json"}, "config")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "demo", "tags": []any{"a"}}, got)

	_, err = r.Array(Bag{"config": "/conf/missing.json"}, "config")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValue)

	type app struct {
		Name string   `mapstructure:"name"`
		Tags []string `mapstructure:"tags"`
	}
	obj, err := ObjectFrom[app](r, Bag{"config": "/conf/app.json"}, "config")
	require.NoError(t, err)
	assert.Equal(t, app{Name: "demo", Tags: []string{"a"}}, obj)
}

func TestArrayFromRelativeFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "conf/app.json", []byte(`{"name": "demo", "port": 8080}`), 0o644))
	r := NewReader(WithFS(fsys))

	got, err := r.Array(Bag{"c": "conf/app.json"}, "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "demo", "port": float64(8080)}, got)

	labels, err := r.StringMap(Bag{"c": "conf/app.json"}, "c")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "demo", "port": "8080"}, labels)
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(format string, args ...any) { l.record(format, args...) }
func (l *recordingLogger) Info(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Warn(format string, args ...any)  { l.record(format, args...) }
func (l *recordingLogger) Error(format string, args ...any) { l.record(format, args...) }

func TestReaderFilesUseReaderLogger(t *testing.T) {
	for name, order := range map[string]func(afero.Fs, *recordingLogger) []Option{
		"fs first": func(fsys afero.Fs, l *recordingLogger) []Option {
			return []Option{WithFS(fsys), WithLogger(l)}
		},
		"logger first": func(fsys afero.Fs, l *recordingLogger) []Option {
			return []Option{WithLogger(l), WithFS(fsys)}
		},
	} {
		t.Run(name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "/tmp/a.json", []byte("{}"), 0o644))
			rec := &recordingLogger{}

			r := NewReader(order(fsys, rec)...)
			n, err := r.files.DeleteFiles("/tmp/*.json")
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Equal(t, []string{"deleted /tmp/a.json"}, rec.lines)
		})
	}
}

func TestArrayRoundTrip(t *testing.T) {
	doc := map[string]any{
		"name":   "demo",
		"port":   float64(8080),
		"tags":   []any{"a", "b"},
		"nested": map[string]any{"on": true, "ratio": 0.5},
	}
	text, err := jsonx.Encode(doc)
	require.NoError(t, err)

	got, err := Array(Bag{"v": text}, "v")
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	flat := map[string]any{"name": "demo", "port": float64(8080), "on": true}
	text, err = jsonx.Encode(flat)
	require.NoError(t, err)

	labels, err := StringMap(Bag{"v": text}, "v")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "demo", "port": "8080", "on": "true"}, labels)
}

func TestListCoercion(t *testing.T) {
	got, err := List(Bag{"v": "[1, 2]"}, "v")
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, got)

	got, err = List(Bag{"v": []string{"a"}}, "v")
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, got)

	_, err = List(Bag{"v": `{"a": 1}`}, "v")
	require.Error(t, err)
	var cause *errors.Error
	require.True(t, errors.As(err, &cause))
	assert.Equal(t, "JSON_NOT_LIST", cause.TextCode)
}

func TestStringMapCoercion(t *testing.T) {
	raw := map[string]any{
		"a": 1,
		"b": "x",
		"c": []any{},
		"d": true,
		"e": nil,
		"f": label("y"),
	}

	got, err := StringMap(Bag{"v": raw}, "v")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a": "1",
		"b": "x",
		"d": "true",
		"f": "label:y",
	}, got)

	native := map[string]string{"k": "v"}
	got, err = StringMap(Bag{"v": native}, "v")
	require.NoError(t, err)
	assert.Equal(t, native, got)

	_, err = NewReader(WithStrictStringMap()).StringMap(Bag{"v": raw}, "v")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUncoercible)
}

type server struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	Debug   bool          `mapstructure:"debug"`
	Timeout time.Duration `mapstructure:"timeout"`
	Started time.Time     `mapstructure:"started"`
}

func TestObjectCoercion(t *testing.T) {
	r := NewReader(WithLocation(time.UTC))

	got, err := ObjectFrom[server](r, Bag{"srv": map[string]any{
		"host":    "localhost",
		"port":    "8080",
		"debug":   "yes",
		"timeout": "5s",
		"started": 0,
	}}, "srv")
	require.NoError(t, err)
	assert.Equal(t, "localhost", got.Host)
	assert.Equal(t, 8080, got.Port)
	assert.True(t, got.Debug)
	assert.Equal(t, 5*time.Second, got.Timeout)
	assert.True(t, got.Started.Equal(time.Unix(0, 0)))

	got, err = ObjectFrom[server](r, Bag{"srv": `{"host": "h", "port": 80, "started": "2024-01-02"}`}, "srv")
	require.NoError(t, err)
	assert.Equal(t, 80, got.Port)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got.Started)

	native := server{Host: "native"}
	got, err = ObjectFrom[server](r, Bag{"srv": native}, "srv")
	require.NoError(t, err)
	assert.Equal(t, native, got)

	got, err = ObjectFrom[server](r, Bag{"srv": &native}, "srv")
	require.NoError(t, err)
	assert.Equal(t, native, got)

	_, err = ObjectFrom[server](r, Bag{"srv": 42}, "srv")
	require.Error(t, err)

	_, err = ObjectFrom[server](r, Bag{"srv": `[1]`}, "srv")
	require.Error(t, err)

	ptr, err := ObjectOrNilFrom[server](r, Bag{}, "srv")
	require.NoError(t, err)
	assert.Nil(t, ptr)

	ptr, err = ObjectOrNil[server](Bag{"srv": map[string]any{"host": "h"}}, "srv")
	require.NoError(t, err)
	require.NotNil(t, ptr)
	assert.Equal(t, "h", ptr.Host)
}

func TestDecode(t *testing.T) {
	r := NewReader(WithLocation(time.UTC))

	var got server
	require.NoError(t, r.Decode(map[string]any{"host": "h", "port": 9.0, "debug": "on"}, &got))
	assert.Equal(t, "h", got.Host)
	assert.Equal(t, 9, got.Port)
	assert.True(t, got.Debug)

	assert.Error(t, r.Decode(map[string]any{"port": map[string]any{"n": 1}}, &got))
}

func TestTimeCoercion(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := NewReader(
		WithLocation(time.UTC),
		WithClock(func() time.Time { return fixed }),
	)

	got, err := r.Time(Bag{"at": fixed}, "at")
	require.NoError(t, err)
	assert.Equal(t, fixed, got)

	got, err = r.Time(Bag{"at": 86400}, "at")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), got)

	got, err = r.Time(Bag{"at": float64(86400)}, "at")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), got)

	got, err = r.Time(Bag{"at": "now"}, "at")
	require.NoError(t, err)
	assert.Equal(t, fixed, got)

	got, err = r.Time(Bag{"at": "2024-03-04T05:06:07Z"}, "at")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC), got)

	for _, relative := range []string{"not a date", "+1 day", "tomorrow"} {
		_, err = r.Time(Bag{"at": relative}, "at")
		require.Error(t, err, relative)
		assert.ErrorIs(t, err, ErrUncoercible)
	}

	_, err = r.Time(Bag{"at": 1.5}, "at")
	require.Error(t, err)
}

func TestResource(t *testing.T) {
	rc := io.NopCloser(strings.NewReader("x"))

	got, err := Resource(Bag{"h": rc}, "h")
	require.NoError(t, err)
	assert.Equal(t, rc, got)

	_, err = Resource(Bag{"h": "/dev/null"}, "h")
	require.Error(t, err)

	_, err = Resource(Bag{}, "h")
	require.Error(t, err)
}

func TestToArrayAndToStringMap(t *testing.T) {
	arr, err := ToArray([]any{"a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"0": "a"}, arr)

	_, err = ToArray(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValue)

	sm, err := ToStringMap(map[string]any{"a": 1, "b": []any{}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, sm)

	_, err = ToStringMap(nil)
	require.Error(t, err)
}

func TestBag(t *testing.T) {
	bag := Bag{"b": 1, "a": map[string]any{"x": 1}}

	assert.Equal(t, []string{"a", "b"}, bag.Keys())
	assert.True(t, bag.Has("a"))
	assert.False(t, bag.Has("z"))
	v, ok := bag.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	cloned, err := bag.Clone()
	require.NoError(t, err)
	cloned["a"].(map[string]any)["x"] = 2
	assert.Equal(t, 1, bag["a"].(map[string]any)["x"])

	var empty Bag
	got, err := empty.Clone()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMust(t *testing.T) {
	assert.Equal(t, 3, Must(Int(Bag{"n": "3"}, "n")))
	assert.Panics(t, func() {
		Must(Int(Bag{}, "n"))
	})
}

func TestFetchCustomType(t *testing.T) {
	match := func(raw any) (time.Duration, bool) {
		d, ok := raw.(time.Duration)
		return d, ok
	}
	convert := func(raw any) (time.Duration, bool, error) {
		s, ok := raw.(string)
		if !ok {
			return 0, false, nil
		}
		d, err := time.ParseDuration(s)
		return d, err == nil, err
	}

	got, err := Fetch[time.Duration](Bag{"ttl": "90s"}, []string{"ttl"}, match, convert)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, got)

	got, err = Fetch[time.Duration](Bag{"a": 1, "b": time.Minute}, []string{"a", "b"}, match, convert)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, got)
}

func TestConcurrentReads(t *testing.T) {
	bag := Bag{"n": "12", "flag": "yes", "doc": `{"a": [1, 2]}`}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := Int(bag, "n")
			assert.NoError(t, err)
			assert.Equal(t, 12, n)
			flag, err := Bool(bag, "flag")
			assert.NoError(t, err)
			assert.True(t, flag)
			_, err = Array(bag, "doc")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
