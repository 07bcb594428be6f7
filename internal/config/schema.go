package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"shipping-price-pipeline/internal/core/domain"
)

// Schema describes the columns of the shipping dataset.
type Schema struct {
	TargetColumn       string   `yaml:"target_column"`
	NumericalColumns   []string `yaml:"numerical_columns"`
	CategoricalColumns []string `yaml:"categorical_columns"`
	DropColumns        []string `yaml:"drop_columns"`
}

// RequiredColumns lists every column a validated split must contain.
func (s Schema) RequiredColumns() []string {
	cols := make([]string, 0, len(s.NumericalColumns)+len(s.CategoricalColumns)+1)
	cols = append(cols, s.NumericalColumns...)
	cols = append(cols, s.CategoricalColumns...)
	return append(cols, s.TargetColumn)
}

// Validate checks the schema is usable: a target, at least one feature and no
// column listed twice or both kept and dropped.
func (s Schema) Validate() error {
	if s.TargetColumn == "" {
		return fmt.Errorf("%w: target_column is required", domain.ErrInvalidSchema)
	}
	if len(s.NumericalColumns)+len(s.CategoricalColumns) == 0 {
		return fmt.Errorf("%w: no feature columns", domain.ErrInvalidSchema)
	}

	seen := map[string]bool{}
	for _, c := range s.RequiredColumns() {
		if seen[c] {
			return fmt.Errorf("%w: column %q listed twice", domain.ErrInvalidSchema, c)
		}
		seen[c] = true
	}
	for _, c := range s.DropColumns {
		if seen[c] {
			return fmt.Errorf("%w: column %q is both used and dropped", domain.ErrInvalidSchema, c)
		}
	}
	return nil
}

// ParseSchema decodes and validates a schema YAML payload.
func ParseSchema(data []byte) (*Schema, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: payload is empty", domain.ErrInvalidSchema)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchema reads the schema file at path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return s, nil
}
