package source

import (
	"context"
	goerrors "errors"
	"io/fs"
	"os"
	"strings"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-values/koanf/providers/env"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

type ProviderBuilder func(*Loader) (Provider, error)

type ProviderType string

func (p ProviderType) String() string {
	return string(p)
}

type Provider interface {
	Type() ProviderType
	Priority() int
	Validate() error
	Load(context.Context, *koanf.Koanf) error
}

const (
	ProviderTypeDefault   ProviderType = "default"
	ProviderTypeLocalFile ProviderType = "file"
	ProviderTypeEnv       ProviderType = "env"
	ProviderTypeFlag      ProviderType = "pflag"
	ProviderTypeStruct    ProviderType = "struct"
)

var providerTypes = []ProviderType{
	ProviderTypeDefault,
	ProviderTypeLocalFile,
	ProviderTypeEnv,
	ProviderTypeFlag,
	ProviderTypeStruct,
}

func (p ProviderType) validate() error {
	for _, t := range providerTypes {
		if p == t {
			return nil
		}
	}
	valid := make([]string, len(providerTypes))
	for i, t := range providerTypes {
		valid[i] = string(t)
	}
	return errors.New("invalid provider type", errors.CategoryValidation).
		WithTextCode("INVALID_PROVIDER_TYPE").
		WithMetadata(map[string]any{
			"provider_type": string(p),
			"valid_types":   valid,
		})
}

type Priority int

// WithOffset nudges a priority so two sources of the same kind can be ordered:
//
//	FileProvider("base.json", int(PriorityConfig.WithOffset(-1)))
//	FileProvider("local.json", int(PriorityConfig.WithOffset(1)))
func (p Priority) WithOffset(offset int) Priority {
	return Priority(int(p) + offset)
}

var (
	PriorityDefaults Priority = 0
	PriorityStruct   Priority = 10
	PriorityConfig   Priority = 20
	PriorityEnv      Priority = 30
	PriorityFlags    Priority = 40
)

var (
	DefaultEnvPrefix    = "APP_"
	DefaultEnvDelimiter = "__"
)

// provider is the Provider every builder in this package returns.
type provider struct {
	order        int
	providerType ProviderType
	load         func(context.Context, *koanf.Koanf) error
}

func (p *provider) Priority() int {
	return p.order
}

func (p *provider) Type() ProviderType {
	return p.providerType
}

func (p *provider) Load(ctx context.Context, k *koanf.Koanf) error {
	return p.load(ctx, k)
}

func (p *provider) Validate() error {
	return p.providerType.validate()
}

func mergeOption() koanf.Option {
	return koanf.WithMergeFunc(MergeIgnoringNullValues)
}

// DefaultValuesProvider loads a nested map of defaults.
func DefaultValuesProvider(def map[string]any, order ...int) ProviderBuilder {
	return func(l *Loader) (Provider, error) {
		kprovider := confmap.Provider(def, l.delimiter)
		return &provider{
			providerType: ProviderTypeDefault,
			order:        getOrder(PriorityDefaults, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				if err := k.Load(kprovider, nil, mergeOption()); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load default values").
						WithTextCode("DEFAULT_VALUES_LOAD_FAILED").
						WithMetadata(map[string]any{
							"values_count": len(def),
						})
				}
				return nil
			},
		}, nil
	}
}

// FileProvider loads a JSON, YAML or TOML file, picking the parser from the
// extension.
func FileProvider(path string, order ...int) ProviderBuilder {
	filetype := InferFileType(path)

	return func(l *Loader) (Provider, error) {
		if err := filetype.Valid(); err != nil {
			return nil, err
		}
		parser := filetype.Parser()
		kprovider := file.Provider(path)

		return &provider{
			providerType: ProviderTypeLocalFile,
			order:        getOrder(PriorityConfig, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				l.logger.Debug("file provider: %s", path)
				if err := k.Load(kprovider, parser, mergeOption()); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load values from file").
						WithTextCode("FILE_LOAD_FAILED").
						WithMetadata(map[string]any{
							"filepath":  path,
							"file_type": string(filetype),
						})
				}
				return nil
			},
		}, nil
	}
}

// EnvProvider loads variables starting with prefix. The prefix is removed,
// names are lower cased and delim separates nesting levels, so with prefix
// "APP_" and delim "__" APP_DB__PORT becomes db.port and APP_HOSTS__0 is the
// first element of hosts.
func EnvProvider(prefix, delim string, order ...int) ProviderBuilder {
	return func(l *Loader) (Provider, error) {
		return &provider{
			providerType: ProviderTypeEnv,
			order:        getOrder(PriorityEnv, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				kprov := env.Provider(prefix, l.delimiter,
					env.WithKeyMapper(func(s string) string {
						return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), strings.ToLower(delim), l.delimiter)
					}),
					env.WithLogger(l.logger),
				)

				l.logger.Debug("env provider: %s", prefix)
				if err := k.Load(kprov, json.Parser(), mergeOption()); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load environment variables").
						WithTextCode("ENV_LOAD_FAILED").
						WithMetadata(map[string]any{
							"prefix":    prefix,
							"delimiter": delim,
						})
				}
				return nil
			},
		}, nil
	}
}

// FlagsProvider loads flags from flagset. Flags that were not set on the
// command line only fill keys no earlier source provided.
func FlagsProvider(flagset *pflag.FlagSet, order ...int) ProviderBuilder {
	return func(l *Loader) (Provider, error) {
		if flagset == nil {
			return nil, errors.New("flagset cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_FLAGSET")
		}

		return &provider{
			providerType: ProviderTypeFlag,
			order:        getOrder(PriorityFlags, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				l.logger.Debug("flags provider")
				kprov := posflag.Provider(flagset, l.delimiter, k)
				if err := k.Load(kprov, nil); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load values from flags").
						WithTextCode("FLAGS_LOAD_FAILED").
						WithMetadata(map[string]any{
							"delimiter": l.delimiter,
						})
				}
				return nil
			},
		}, nil
	}
}

// StructProvider loads the fields of v, keyed by the given struct tag
// ("koanf" when empty).
func StructProvider(v any, tag string, order ...int) ProviderBuilder {
	if tag == "" {
		tag = "koanf"
	}
	return func(l *Loader) (Provider, error) {
		if v == nil {
			return nil, errors.New("struct cannot be nil", errors.CategoryBadInput).
				WithTextCode("NIL_STRUCT")
		}
		kprov := structs.Provider(v, tag)

		return &provider{
			providerType: ProviderTypeStruct,
			order:        getOrder(PriorityStruct, order...),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				l.logger.Debug("struct provider")
				if err := k.Load(kprov, nil, mergeOption()); err != nil {
					return errors.Wrap(err, errors.CategoryOperation, "failed to load values from struct").
						WithTextCode("STRUCT_LOAD_FAILED")
				}
				return nil
			},
		}, nil
	}
}

// ErrorFilter reports whether a load error should be ignored.
type ErrorFilter func(err error) bool

// DefaultErrorFilter ignores the given errors, or missing files when none
// are given.
func DefaultErrorFilter(allowedErrors ...error) ErrorFilter {
	return func(err error) bool {
		if err == nil {
			return false
		}

		if len(allowedErrors) == 0 {
			// absent files only; parse failures still surface
			return goerrors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) || goerrors.Is(err, syscall.ENOENT)
		}

		for _, allowed := range allowedErrors {
			if goerrors.Is(err, allowed) {
				return true
			}
		}
		return false
	}
}

// OptionalProvider wraps a builder so the load errors accepted by filter
// are ignored. Without a filter missing files are ignored.
func OptionalProvider(build ProviderBuilder, filters ...ErrorFilter) ProviderBuilder {
	ignore := DefaultErrorFilter()
	if len(filters) > 0 && filters[0] != nil {
		ignore = filters[0]
	}

	return func(l *Loader) (Provider, error) {
		base, err := build(l)
		if err != nil {
			return nil, err
		}

		return &provider{
			providerType: base.Type(),
			order:        base.Priority(),
			load: func(ctx context.Context, k *koanf.Koanf) error {
				err := base.Load(ctx, k)
				if ignore(err) {
					l.logger.Debug("ignoring optional %s source: %v", base.Type(), err)
					return nil
				}
				return err
			},
		}, nil
	}
}

func getOrder(defaultOrder Priority, orders ...int) int {
	if len(orders) > 0 {
		return orders[0]
	}
	return int(defaultOrder)
}
