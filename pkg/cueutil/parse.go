// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize is the largest document accepted by default (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	// ParseResult holds a decoded document and the unified value it was decoded from.
	ParseResult[T any] struct {
		Value *T
		// Unified is the schema-unified CUE value, for callers that need fields the Go
		// struct does not model.
		Unified cue.Value
	}

	// Option configures ParseAndDecode.
	Option func(*parseOptions)

	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}
)

// WithMaxFileSize sets the maximum accepted document size in bytes.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) { o.maxFileSize = size }
}

// WithConcrete sets whether every value must be concrete after unification. Default true.
// Config documents set this to false so that unset optional fields keep schema defaults.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) { o.concrete = concrete }
}

// WithFilename sets the file name reported in errors.
func WithFilename(name string) Option {
	return func(o *parseOptions) { o.filename = name }
}

// ParseAndDecode validates data against the schemaPath definition of schema and decodes it.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := parseOptions{maxFileSize: DefaultMaxFileSize, concrete: true}
	for _, opt := range opts {
		opt(&options)
	}
	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	unified, err := Unify(schema, data, schemaPath, filename)
	if err != nil {
		return nil, err
	}

	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}
	return &ParseResult[T]{Value: &result, Unified: unified}, nil
}

// ParseFile reads path and decodes it with ParseAndDecode, reporting errors under path.
func ParseFile[T any](schema []byte, path, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAndDecode[T](schema, data, schemaPath, append([]Option{WithFilename(path)}, opts...)...)
}

// Unify compiles schema and data and unifies data with the schemaPath definition.
// The result is not validated.
func Unify(schema, data []byte, schemaPath, filename string) (cue.Value, error) {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	root := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if root.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, root.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), filename)
	}
	return root.Unify(userValue), nil
}
