package files

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fopen style modes; b and t are accepted and ignored.
var openModes = map[string]int{
	"r":  os.O_RDONLY,
	"r+": os.O_RDWR,
	"w":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"w+": os.O_RDWR | os.O_CREATE | os.O_TRUNC,
	"a":  os.O_WRONLY | os.O_CREATE | os.O_APPEND,
	"a+": os.O_RDWR | os.O_CREATE | os.O_APPEND,
	"x":  os.O_WRONLY | os.O_CREATE | os.O_EXCL,
	"x+": os.O_RDWR | os.O_CREATE | os.O_EXCL,
	"c":  os.O_WRONLY | os.O_CREATE,
	"c+": os.O_RDWR | os.O_CREATE,
}

// Open opens path using an fopen style mode such as "r", "w+" or "ab".
func (m *Methods) Open(path, mode string) (afero.File, error) {
	flag, ok := openModes[strings.NewReplacer("b", "", "t", "").Replace(mode)]
	if !ok {
		return nil, errors.New("invalid file mode", errors.CategoryBadInput).
			WithTextCode("INVALID_FILE_MODE").
			WithMetadata(map[string]any{
				"path": path,
				"mode": mode,
			})
	}

	f, err := m.fs.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "unable to open file").
			WithTextCode("FILE_OPEN_FAILED").
			WithMetadata(map[string]any{
				"path": path,
				"mode": mode,
			})
	}
	return f, nil
}

// ZipStream reads the first entry of a zip archive.
type ZipStream struct {
	io.Reader
	Name  string
	entry io.Closer
	file  afero.File
}

// Close releases the entry and the archive file.
func (z *ZipStream) Close() error {
	return errors.Join(z.entry.Close(), z.file.Close())
}

// OpenZip opens the first entry of the archive at path. With stripBOM a
// leading UTF-8 byte order mark is skipped.
func (m *Methods) OpenZip(path string, stripBOM bool) (*ZipStream, error) {
	fail := func(err error, reason string) error {
		meta := map[string]any{"path": path, "reason": reason}
		if err == nil {
			return errors.New("unable to open zip file", errors.CategoryOperation).
				WithTextCode("ZIP_OPEN_FAILED").
				WithMetadata(meta)
		}
		return errors.Wrap(err, errors.CategoryOperation, "unable to open zip file").
			WithTextCode("ZIP_OPEN_FAILED").
			WithMetadata(meta)
	}

	f, err := m.fs.Open(path)
	if err != nil {
		return nil, fail(err, "open")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fail(err, "stat")
	}

	archive, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fail(err, "read_archive")
	}
	if len(archive.File) == 0 {
		f.Close()
		return nil, fail(nil, "empty_archive")
	}

	entry, err := archive.File[0].Open()
	if err != nil {
		f.Close()
		return nil, fail(err, "open_entry")
	}

	br := bufio.NewReader(entry)
	if stripBOM {
		if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			br.Discard(len(utf8BOM))
		}
	}

	return &ZipStream{
		Reader: br,
		Name:   archive.File[0].Name,
		entry:  entry,
		file:   f,
	}, nil
}

// GzipFile is a gzip stream opened for either reading or writing.
type GzipFile struct {
	file afero.File
	r    *gzip.Reader
	w    *gzip.Writer
}

func (g *GzipFile) Read(p []byte) (int, error) {
	if g.r == nil {
		return 0, errors.New("gzip file not opened for reading", errors.CategoryBadInput).
			WithTextCode("GZIP_NOT_READABLE")
	}
	return g.r.Read(p)
}

func (g *GzipFile) Write(p []byte) (int, error) {
	if g.w == nil {
		return 0, errors.New("gzip file not opened for writing", errors.CategoryBadInput).
			WithTextCode("GZIP_NOT_WRITABLE")
	}
	return g.w.Write(p)
}

// Close flushes the compressed stream and closes the file.
func (g *GzipFile) Close() error {
	var streamErr error
	switch {
	case g.w != nil:
		streamErr = g.w.Close()
	case g.r != nil:
		streamErr = g.r.Close()
	}
	return errors.Join(streamErr, g.file.Close())
}

// OpenGzip opens a gzip stream. Mode "r" reads; "w" and "a" write, truncating
// or appending, with an optional compression level digit ("w9"). An empty
// mode means "w9".
func (m *Methods) OpenGzip(path, mode string) (*GzipFile, error) {
	if mode == "" {
		mode = "w9"
	}

	fail := func(err error) error {
		meta := map[string]any{"path": path, "mode": mode}
		if err == nil {
			return errors.New("unable to open gzip file", errors.CategoryBadInput).
				WithTextCode("GZIP_OPEN_FAILED").
				WithMetadata(meta)
		}
		return errors.Wrap(err, errors.CategoryOperation, "unable to open gzip file").
			WithTextCode("GZIP_OPEN_FAILED").
			WithMetadata(meta)
	}

	level := gzip.DefaultCompression
	for _, c := range mode[1:] {
		if c >= '0' && c <= '9' {
			level = int(c - '0')
		}
	}

	switch mode[0] {
	case 'r':
		f, err := m.fs.Open(path)
		if err != nil {
			return nil, fail(err)
		}
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fail(err)
		}
		return &GzipFile{file: f, r: r}, nil
	case 'w', 'a':
		flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		if mode[0] == 'a' {
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
		f, err := m.fs.OpenFile(path, flag, 0o644)
		if err != nil {
			return nil, fail(err)
		}
		w, err := gzip.NewWriterLevel(f, level)
		if err != nil {
			f.Close()
			return nil, fail(err)
		}
		return &GzipFile{file: f, w: w}, nil
	default:
		return nil, fail(nil)
	}
}
