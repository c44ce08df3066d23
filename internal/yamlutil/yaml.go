// Package yamlutil decodes the YAML read by mdsite: the site config file
// and the "---" frontmatter block at the top of each post.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/goccy/go-yaml"
)

// MaxInputSize caps a single YAML document (1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

func checkInput(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrNilData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}
	return nil
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Unmarshal decodes data into v, ignoring keys v does not declare.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict decodes data into v and rejects unknown keys, so a
// misspelled config option fails loudly.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

// FrontmatterFormat returns the "---" delimited YAML frontmatter format
// for github.com/adrg/frontmatter. An empty block is accepted, and unknown
// keys are ignored since posts carry fields the builder does not read.
func FrontmatterFormat() *frontmatter.Format {
	return frontmatter.NewFormat("---", "---", func(data []byte, v any) error {
		if len(data) == 0 {
			return nil
		}
		return Unmarshal(data, v)
	})
}
