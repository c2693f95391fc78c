package ir

import (
	"fmt"

	"github.com/roach88/keyprune/internal/keydesc"
	"github.com/roach88/keyprune/internal/types"
)

// TableSpec describes a table: its typed columns and sorting key.
type TableSpec struct {
	Name       string       `json:"name" yaml:"name"`
	Columns    []ColumnSpec `json:"columns" yaml:"columns"`
	SortingKey string       `json:"sorting_key" yaml:"sorting_key"`

	// LegacyModulo marks a key persisted before modulo was renamed; such
	// keys name modulo calls moduleLegacy.
	LegacyModulo bool `json:"legacy_modulo" yaml:"legacy_modulo"`
}

// ColumnSpec is one column with its type name, e.g. "Nullable(String)".
type ColumnSpec struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// ColumnTypes parses the column types.
func (s TableSpec) ColumnTypes() (map[string]types.DataType, error) {
	out := make(map[string]types.DataType, len(s.Columns))
	for _, c := range s.Columns {
		if _, dup := out[c.Name]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", s.Name, c.Name)
		}
		t, err := types.Parse(c.Type)
		if err != nil {
			return nil, fmt.Errorf("table %s: column %s: %w", s.Name, c.Name, err)
		}
		out[c.Name] = t
	}
	return out, nil
}

// Key parses the sorting key against the column types.
func (s TableSpec) Key() (*keydesc.KeyDescription, error) {
	cols, err := s.ColumnTypes()
	if err != nil {
		return nil, err
	}
	return keydesc.Parse(s.SortingKey, cols, s.LegacyModulo)
}

// Value returns the spec as a canonical value, for hashing.
func (s TableSpec) Value() Value {
	cols := make(Array, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = Object{"name": String(c.Name), "type": String(c.Type)}
	}
	return Object{
		"name":          String(s.Name),
		"columns":       cols,
		"sorting_key":   String(s.SortingKey),
		"legacy_modulo": Bool(s.LegacyModulo),
	}
}
