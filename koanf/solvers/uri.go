package solvers

import (
	"encoding/base64"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
)

// ProtocolHandler resolves the part of a URI value after the protocol
// separator.
type ProtocolHandler func(uri string) (string, error)

type uris struct {
	delimiters *delimiters
	handlers   map[string]ProtocolHandler
}

// NewURISolver resolves whole values of the form <start><protocol><end><uri>,
// such as @file://secrets/token. Files are read relative to the working
// directory.
func NewURISolver(start, end string) ConfigSolver {
	return NewURISolverWithFS(start, end, afero.NewOsFs())
}

// NewURISolverWithFS is NewURISolver reading files from fsys. Supported
// protocols are file, base64 and env; values that fail to resolve are left
// untouched.
func NewURISolverWithFS(start, end string, fsys afero.Fs) ConfigSolver {
	return &uris{
		delimiters: &delimiters{
			Start: start,
			End:   end,
		},
		handlers: map[string]ProtocolHandler{
			"file":   FileProtocol(fsys),
			"base64": Base64Protocol,
			"env":    EnvProtocol,
		},
	}
}

func (s uris) Solve(config *koanf.Koanf) *koanf.Koanf {
	if config == nil {
		return config
	}
	for key, val := range stringValues(config) {
		protocol, uri, ok := s.split(val)
		if !ok {
			continue
		}
		handler, ok := s.handlers[protocol]
		if !ok {
			continue
		}
		if content, err := handler(uri); err == nil {
			config.Set(key, content)
		}
	}
	return config
}

func (s uris) split(val string) (string, string, bool) {
	if !strings.HasPrefix(val, s.delimiters.Start) {
		return "", "", false
	}
	rest := val[len(s.delimiters.Start):]
	protocol, uri, ok := strings.Cut(rest, s.delimiters.End)
	if !ok || protocol == "" {
		return "", "", false
	}
	return protocol, uri, true
}

// FileProtocol reads a relative path from fsys, dropping trailing newlines.
// Absolute paths and paths escaping the root are rejected.
func FileProtocol(fsys afero.Fs) ProtocolHandler {
	return func(uri string) (string, error) {
		if !fs.ValidPath(uri) {
			return "", &fs.PathError{Op: "read", Path: uri, Err: fs.ErrInvalid}
		}
		b, err := afero.ReadFile(fsys, uri)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
}

// Base64Protocol decodes standard base64.
func Base64Protocol(uri string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(uri)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// EnvProtocol reads an environment variable; unset variables fail.
func EnvProtocol(uri string) (string, error) {
	v, ok := os.LookupEnv(uri)
	if !ok {
		return "", &fs.PathError{Op: "lookup", Path: uri, Err: fs.ErrNotExist}
	}
	return v, nil
}
