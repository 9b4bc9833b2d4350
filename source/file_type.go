package source

import (
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
)

type FileType string

const (
	FileTypeJSON FileType = "json"
	FileTypeYAML FileType = "yaml"
	FileTypeTOML FileType = "toml"
)

func (f FileType) String() string {
	return string(f)
}

func (f FileType) Valid() error {
	switch f {
	case FileTypeJSON, FileTypeYAML, FileTypeTOML:
		return nil
	}
	return errors.New("invalid file type", errors.CategoryValidation).
		WithTextCode("INVALID_FILE_TYPE").
		WithMetadata(map[string]any{
			"file_type": string(f),
			"valid_types": []string{
				string(FileTypeJSON),
				string(FileTypeYAML),
				string(FileTypeTOML),
			},
		})
}

// Parser returns the koanf parser for f, or nil for an invalid type.
func (f FileType) Parser() koanf.Parser {
	switch f {
	case FileTypeJSON:
		return json.Parser()
	case FileTypeTOML:
		return toml.Parser()
	case FileTypeYAML:
		return yaml.Parser()
	}
	return nil
}

// InferFileType maps a path's extension to a FileType, falling back to
// fallback or JSON.
func InferFileType(path string, fallback ...FileType) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FileTypeTOML
	case ".json":
		return FileTypeJSON
	case ".yaml", ".yml":
		return FileTypeYAML
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return FileTypeJSON
}
