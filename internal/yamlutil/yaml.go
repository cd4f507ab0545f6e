// Package yamlutil wraps YAML decoding so callers never import the YAML
// library directly. Config files and YAML mapping documents both go through it.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// DefaultMaxSize limits YAML input to 1MB.
const DefaultMaxSize = 1 << 20

var (
	ErrEmptyInput     = errors.New("yamlutil: empty input")
	ErrNilDestination = errors.New("yamlutil: nil destination")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Option tunes a single Decode call.
type Option func(*decodeOptions)

type decodeOptions struct {
	strict  bool
	maxSize int
}

// Strict rejects fields that have no matching destination field.
func Strict() Option {
	return func(o *decodeOptions) { o.strict = true }
}

// MaxSize overrides DefaultMaxSize. Values <= 0 are ignored.
func MaxSize(n int) Option {
	return func(o *decodeOptions) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// Decode parses data into v.
func Decode(data []byte, v any, opts ...Option) error {
	o := decodeOptions{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case len(data) == 0:
		return ErrEmptyInput
	case len(data) > o.maxSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), o.maxSize)
	case v == nil:
		return ErrNilDestination
	}

	var yopts []yaml.DecodeOption
	if o.strict {
		yopts = append(yopts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, v, yopts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Encode renders v as YAML. Used by `doctor` to print the effective config.
func Encode(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
