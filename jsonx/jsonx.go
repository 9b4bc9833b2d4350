// Package jsonx is a strict JSON codec: decoding fails loudly on malformed
// input or on a document whose top-level shape does not match the request,
// instead of handing back a zero value.
package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goliatone/go-errors"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

const (
	DefaultDepth  = 512
	DefaultIndent = "    "
)

type options struct {
	depth  int
	indent string
}

type Option func(*options)

// WithDepth sets the maximum container nesting. Values below 1 are ignored.
func WithDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.depth = depth
		}
	}
}

// WithIndent sets the indentation used by Encode.
func WithIndent(indent string) Option {
	return func(o *options) {
		o.indent = indent
	}
}

// WithCompact makes Encode emit a single line.
func WithCompact() Option {
	return WithIndent("")
}

func newOptions(opts []Option) options {
	o := options{depth: DefaultDepth, indent: DefaultIndent}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Encode renders v as JSON, pretty printed unless WithCompact is given.
func Encode(v any, opts ...Option) (string, error) {
	o := newOptions(opts)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "failed to encode JSON").
			WithTextCode("JSON_ENCODE_FAILED").
			WithMetadata(map[string]any{
				"type": fmt.Sprintf("%T", v),
			})
	}

	out := bytes.TrimRight(buf.Bytes(), "\n")
	if err := checkDepth(out, o.depth); err != nil {
		return "", err
	}

	if o.indent != "" {
		out = pretty.PrettyOptions(out, &pretty.Options{Indent: o.indent})
		out = bytes.TrimRight(out, "\n")
	}
	return string(out), nil
}

// DecodeArray decodes a JSON object or list. Lists are returned keyed by
// their decimal index so both shapes share one representation.
func DecodeArray(text string, opts ...Option) (map[string]any, error) {
	res, err := parse(text, newOptions(opts))
	if err != nil {
		return nil, err
	}

	switch {
	case res.IsObject():
		return decodeObject(text)
	case res.IsArray():
		list, _ := res.Value().([]any)
		return IndexMap(list), nil
	default:
		return nil, shapeError("JSON_NOT_ARRAY", "decoded JSON is not an array", res)
	}
}

// DecodeList decodes a JSON document whose top level is a list.
func DecodeList(text string, opts ...Option) ([]any, error) {
	res, err := parse(text, newOptions(opts))
	if err != nil {
		return nil, err
	}
	if !res.IsArray() {
		return nil, shapeError("JSON_NOT_LIST", "decoded JSON is not a list", res)
	}
	list, _ := res.Value().([]any)
	if list == nil {
		list = []any{}
	}
	return list, nil
}

// DecodeObject decodes a JSON document whose top level is an object.
func DecodeObject(text string, opts ...Option) (map[string]any, error) {
	res, err := parse(text, newOptions(opts))
	if err != nil {
		return nil, err
	}
	if !res.IsObject() {
		return nil, shapeError("JSON_NOT_OBJECT", "decoded JSON is not an object", res)
	}
	return decodeObject(text)
}

// IndexMap keys list elements by their decimal index.
func IndexMap(list []any) map[string]any {
	out := make(map[string]any, len(list))
	for i, v := range list {
		out[strconv.Itoa(i)] = v
	}
	return out
}

func parse(text string, o options) (gjson.Result, error) {
	if !gjson.Valid(text) {
		return gjson.Result{}, errors.New("invalid JSON document", errors.CategoryBadInput).
			WithTextCode("JSON_SYNTAX").
			WithMetadata(map[string]any{
				"length": len(text),
			})
	}
	if err := checkDepth([]byte(text), o.depth); err != nil {
		return gjson.Result{}, err
	}
	return gjson.Parse(text), nil
}

func decodeObject(text string) (map[string]any, error) {
	out, err := kjson.Parser().Unmarshal([]byte(text))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to decode JSON object").
			WithTextCode("JSON_DECODE_FAILED")
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func shapeError(code, msg string, res gjson.Result) error {
	return errors.New(msg, errors.CategoryBadInput).
		WithTextCode(code).
		WithMetadata(map[string]any{
			"json_type": res.Type.String(),
		})
}

func checkDepth(data []byte, limit int) error {
	if n := nesting(data); n >= limit {
		return errors.New("maximum JSON depth exceeded", errors.CategoryBadInput).
			WithTextCode("JSON_DEPTH_EXCEEDED").
			WithMetadata(map[string]any{
				"depth": n,
				"limit": limit,
			})
	}
	return nil
}

// nesting returns the deepest container level in a syntactically valid document.
func nesting(data []byte) int {
	var (
		depth, deepest   int
		inString, escape bool
	)
	for _, c := range data {
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
			if depth > deepest {
				deepest = depth
			}
		case ']', '}':
			depth--
		}
	}
	return deepest
}
