package model

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSpec reads a YAML model description and returns a locked model.
func LoadSpec(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	m, err := DecodeSpec(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DecodeSpec decodes a YAML model description from r. Fields left out keep
// the defaults of DefaultAttributes.
func DecodeSpec(r io.Reader) (*Model, error) {
	attrs := DefaultAttributes()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&attrs); err != nil && err != io.EOF {
		return nil, err
	}
	// is_solved is owned by the solve pipeline.
	attrs.IsSolved = false
	return New(attrs), nil
}

// DefaultAttributes returns the attribute defaults applied to model files.
func DefaultAttributes() Attributes {
	return Attributes{
		Backend:  BackendInterpreted,
		Discount: 0.95,
		NumDraws: 200,
		Seed:     1,
	}
}
