package values

import (
	"time"

	"github.com/goliatone/go-values/files"
	"github.com/goliatone/go-values/logger"
	"github.com/spf13/afero"
)

// Reader carries the collaborators the accessors need: file probing for
// path-or-JSON strings, a logger for rejected candidates, the location and
// clock used for datetimes, and a few strictness switches. A Reader is
// immutable once built and safe for concurrent use.
type Reader struct {
	files           *files.Methods
	fsys            afero.Fs
	logger          logger.Logger
	location        *time.Location
	now             func() time.Time
	tagName         string
	strictBool      bool
	strictStringMap bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithFS makes array and object coercion probe paths on fsys. The file
// helper logs through the reader's logger.
func WithFS(fsys afero.Fs) Option {
	return func(r *Reader) {
		if fsys != nil {
			r.fsys = fsys
			r.files = nil
		}
	}
}

// WithFiles sets the file helper used to probe paths.
func WithFiles(m *files.Methods) Option {
	return func(r *Reader) {
		if m != nil {
			r.files = m
			r.fsys = nil
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithLocation sets the location for Unix timestamps and zone-less date strings.
func WithLocation(loc *time.Location) Option {
	return func(r *Reader) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithClock sets the clock used to resolve "now".
func WithClock(now func() time.Time) Option {
	return func(r *Reader) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTagName sets the struct tag used when decoding objects and reading
// struct fields. Defaults to "mapstructure".
func WithTagName(tag string) Option {
	return func(r *Reader) {
		if tag != "" {
			r.tagName = tag
		}
	}
}

// WithStrictBool makes boolean coercion fail on tokens that are neither
// truthy nor falsy instead of reading them as false.
func WithStrictBool() Option {
	return func(r *Reader) {
		r.strictBool = true
	}
}

// WithStrictStringMap makes string-map coercion fail on non scalar entries
// instead of dropping them.
func WithStrictStringMap() Option {
	return func(r *Reader) {
		r.strictStringMap = true
	}
}

func NewReader(opts ...Option) *Reader {
	r := &Reader{
		logger:   logger.Nop(),
		location: time.Local,
		now:      time.Now,
		tagName:  "mapstructure",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	switch {
	case r.fsys != nil:
		r.files = files.New(r.fsys, files.WithLogger(r.logger))
	case r.files == nil:
		r.files = files.Default
	}
	return r
}

// DefaultReader backs the package-level accessors.
var DefaultReader = NewReader()

// inline returns the contents of s when it names an existing file, s otherwise.
func (r *Reader) inline(s string) (string, error) {
	if !r.files.IsFile(s) {
		return s, nil
	}
	return r.files.Contents(s)
}
