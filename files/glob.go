package files

import (
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goliatone/go-errors"
	"github.com/spf13/afero"
)

type GlobFlag int

const (
	// GlobMark appends a separator to each matching directory.
	GlobMark GlobFlag = 1 << iota
	// GlobNoCheck returns the pattern itself when nothing matches.
	GlobNoCheck
	// GlobOnlyDir keeps directories only.
	GlobOnlyDir
	// GlobBrace matches {a,b,c} alternatives.
	GlobBrace
)

func combine(flags []GlobFlag) GlobFlag {
	var out GlobFlag
	for _, f := range flags {
		out |= f
	}
	return out
}

func (f GlobFlag) has(flag GlobFlag) bool {
	return f&flag != 0
}

// Glob returns the sorted paths matching pattern. GlobBrace adds {a,b}
// alternation, which may span directories.
func (m *Methods) Glob(pattern string, flags ...GlobFlag) ([]string, error) {
	flag := combine(flags)

	var (
		matches []string
		err     error
	)
	if flag.has(GlobBrace) {
		matches, err = m.braceGlob(pattern)
	} else {
		matches, err = afero.Glob(m.fs, pattern)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid glob pattern").
			WithTextCode("INVALID_GLOB_PATTERN").
			WithMetadata(map[string]any{
				"pattern": pattern,
			})
	}
	if matches == nil {
		matches = []string{}
	}

	if flag.has(GlobOnlyDir) || flag.has(GlobMark) {
		filtered := matches[:0]
		for _, match := range matches {
			isDir, _ := afero.IsDir(m.fs, match)
			if flag.has(GlobOnlyDir) && !isDir {
				continue
			}
			if flag.has(GlobMark) && isDir {
				match += string(filepath.Separator)
			}
			filtered = append(filtered, match)
		}
		matches = filtered
	}

	if len(matches) == 0 && flag.has(GlobNoCheck) {
		return []string{pattern}, nil
	}
	return matches, nil
}

// braceGlob matches pattern with {a,b} alternation. The literal directory
// prefix becomes the root of an io/fs view over the filesystem, since io/fs
// paths cannot be rooted.
func (m *Methods) braceGlob(pattern string) ([]string, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))

	fsys := afero.NewIOFS(m.fs)
	if base != "." {
		fsys = afero.NewIOFS(afero.NewBasePathFs(m.fs, filepath.FromSlash(base)))
	}

	found, err := doublestar.Glob(fsys, rest)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(found))
	for i, match := range found {
		if base != "." {
			match = path.Join(base, match)
		}
		out[i] = filepath.FromSlash(match)
	}
	sort.Strings(out)
	return out, nil
}
