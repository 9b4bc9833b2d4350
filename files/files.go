// Package files wraps common filesystem chores so that every failure comes
// back as a descriptive error instead of a false or empty result.
//
// All operations run against an afero.Fs. Default uses the OS filesystem and
// backs the package-level functions; tests and callers that need isolation
// build their own Methods with New.
package files

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-values/logger"
	"github.com/spf13/afero"
)

type Methods struct {
	fs       afero.Fs
	logger   logger.Logger
	osBacked bool
}

type Option func(*Methods)

func WithLogger(l logger.Logger) Option {
	return func(m *Methods) {
		if l != nil {
			m.logger = l
		}
	}
}

func New(fsys afero.Fs, opts ...Option) *Methods {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	_, osBacked := fsys.(*afero.OsFs)
	m := &Methods{
		fs:       fsys,
		logger:   logger.NewDefaultLogger("files"),
		osBacked: osBacked,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// FS exposes the underlying filesystem.
func (m *Methods) FS() afero.Fs {
	return m.fs
}

// RealPath returns the cleaned form of path, which must exist. On the OS
// filesystem the path is made absolute and symlinks are resolved; other
// filesystems have no working directory, so relative paths stay relative.
func (m *Methods) RealPath(path string) (string, error) {
	abs := filepath.Clean(path)
	var err error
	if m.osBacked {
		abs, err = filepath.Abs(path)
		if err == nil {
			abs, err = filepath.EvalSymlinks(abs)
		}
	}
	if err == nil {
		_, err = m.fs.Stat(abs)
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryNotFound, "invalid path").
			WithTextCode("INVALID_PATH").
			WithMetadata(map[string]any{
				"path": path,
			})
	}
	return abs, nil
}

// FilePath resolves file and checks that it is a regular file.
func (m *Methods) FilePath(file string) (string, error) {
	path, err := m.RealPath(file)
	if err != nil {
		return "", err
	}
	if !m.IsFile(path) {
		return "", errors.New("file not found", errors.CategoryNotFound).
			WithTextCode("FILE_NOT_FOUND").
			WithMetadata(map[string]any{
				"file": file,
			})
	}
	return path, nil
}

// DirPath resolves dir and checks that it is a directory.
func (m *Methods) DirPath(dir string) (string, error) {
	path, err := m.RealPath(dir)
	if err != nil {
		return "", err
	}
	if ok, _ := afero.IsDir(m.fs, path); !ok {
		return "", errors.New("directory not found", errors.CategoryNotFound).
			WithTextCode("DIR_NOT_FOUND").
			WithMetadata(map[string]any{
				"dir": dir,
			})
	}
	return path, nil
}

// IsFile reports whether path names an existing regular file.
func (m *Methods) IsFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := m.fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Files lists the regular files in dir with the given extension, keyed by
// base name without that extension.
func (m *Methods) Files(dir, ext string, flags ...GlobFlag) (map[string]string, error) {
	ext = normalizeExt(ext)
	matches, err := m.Glob(strings.TrimRight(dir, "/")+"/*"+ext, flags...)
	if err != nil {
		return nil, err
	}
	return m.collect(matches, ext), nil
}

// FilesFrom is Files over an explicit list of paths.
func (m *Methods) FilesFrom(paths []string, ext string) map[string]string {
	return m.collect(paths, normalizeExt(ext))
}

func (m *Methods) collect(paths []string, ext string) map[string]string {
	regular := make([]string, 0, len(paths))
	for _, p := range paths {
		if m.IsFile(p) {
			regular = append(regular, p)
		}
	}
	sort.Strings(regular)

	out := make(map[string]string, len(regular))
	for _, p := range regular {
		out[baseName(p, ext)] = p
	}
	return out
}

// DeleteFiles removes every regular file matching pattern and returns how
// many were removed.
func (m *Methods) DeleteFiles(pattern string, flags ...GlobFlag) (int, error) {
	matches, err := m.Glob(pattern, flags...)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, p := range matches {
		if !m.IsFile(p) {
			continue
		}
		if err := m.fs.Remove(p); err != nil {
			return removed, errors.Wrap(err, errors.CategoryOperation, "failed to delete file").
				WithTextCode("FILE_DELETE_FAILED").
				WithMetadata(map[string]any{
					"path":    p,
					"pattern": pattern,
				})
		}
		m.logger.Debug("deleted %s", p)
		removed++
	}
	return removed, nil
}

// Contents reads the whole file at path.
func (m *Methods) Contents(path string) (string, error) {
	resolved, err := m.FilePath(path)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(m.fs, resolved)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", errors.Wrap(err, errors.CategoryOperation, "file not readable").
				WithTextCode("FILE_NOT_READABLE").
				WithMetadata(map[string]any{
					"path": resolved,
				})
		}
		return "", errors.Wrap(err, errors.CategoryOperation, "error reading from file").
			WithTextCode("FILE_READ_FAILED").
			WithMetadata(map[string]any{
				"path": resolved,
			})
	}
	return string(data), nil
}

// PutContents writes lines joined by newlines, plus a trailing newline, and
// returns the number of bytes written.
func (m *Methods) PutContents(path string, lines ...string) (int, error) {
	contents := strings.Join(lines, "\n") + "\n"

	f, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, writeError(err, path, 0, len(contents))
	}

	n, err := f.WriteString(contents)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil || n != len(contents) {
		return n, writeError(err, path, n, len(contents))
	}
	return n, nil
}

func writeError(err error, path string, written, expected int) error {
	meta := map[string]any{
		"path":     path,
		"written":  written,
		"expected": expected,
	}
	if err == nil {
		return errors.New("error writing to file", errors.CategoryOperation).
			WithTextCode("FILE_WRITE_FAILED").
			WithMetadata(meta)
	}
	return errors.Wrap(err, errors.CategoryOperation, "error writing to file").
		WithTextCode("FILE_WRITE_FAILED").
		WithMetadata(meta)
}

func normalizeExt(ext string) string {
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

// baseName strips ext from the base name unless that would leave it empty.
func baseName(path, ext string) string {
	base := filepath.Base(path)
	if ext != "" && base != ext && strings.HasSuffix(base, ext) {
		return strings.TrimSuffix(base, ext)
	}
	return base
}
