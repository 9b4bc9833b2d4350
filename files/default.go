package files

import "github.com/spf13/afero"

// Default operates on the OS filesystem.
var Default = New(afero.NewOsFs())

func Glob(pattern string, flags ...GlobFlag) ([]string, error) {
	return Default.Glob(pattern, flags...)
}

func RealPath(path string) (string, error) {
	return Default.RealPath(path)
}

func FilePath(file string) (string, error) {
	return Default.FilePath(file)
}

func DirPath(dir string) (string, error) {
	return Default.DirPath(dir)
}

func IsFile(path string) bool {
	return Default.IsFile(path)
}

func Files(dir, ext string, flags ...GlobFlag) (map[string]string, error) {
	return Default.Files(dir, ext, flags...)
}

func FilesFrom(paths []string, ext string) map[string]string {
	return Default.FilesFrom(paths, ext)
}

func DeleteFiles(pattern string, flags ...GlobFlag) (int, error) {
	return Default.DeleteFiles(pattern, flags...)
}

func Contents(path string) (string, error) {
	return Default.Contents(path)
}

func PutContents(path string, lines ...string) (int, error) {
	return Default.PutContents(path, lines...)
}

func Open(path, mode string) (afero.File, error) {
	return Default.Open(path, mode)
}

func OpenZip(path string, stripBOM bool) (*ZipStream, error) {
	return Default.OpenZip(path, stripBOM)
}

func OpenGzip(path, mode string) (*GzipFile, error) {
	return Default.OpenGzip(path, mode)
}
