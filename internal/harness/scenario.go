package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/keyprune/internal/rpn"
)

// Representation names accepted in scenarios.
const (
	RepSyntax = "syntax"
	RepGraph  = "graph"
)

// Scenario is a node introspection test case: a set of typed columns,
// constants and prepared sets, then expressions and predicates whose
// observed properties are checked in both representations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is a CUE file holding the table; Table names the table in it.
	// Paths are relative to the scenario file location. Either Schema or
	// Columns is required.
	Schema string `yaml:"schema,omitempty"`
	Table  string `yaml:"table,omitempty"`

	// Columns maps input column names to type names.
	Columns map[string]string `yaml:"columns,omitempty"`

	// Key is the sorting key predicates are analyzed against. A schema
	// provides its own.
	Key *KeySpec `yaml:"key,omitempty"`

	// Dummy adds the _dummy constant to the constants block.
	Dummy bool `yaml:"dummy,omitempty"`

	// Constants are entries of the constants block.
	Constants []ConstantSpec `yaml:"constants,omitempty"`

	// Subqueries register prepared sets for subquery or table right-hand
	// sides. Literal sets are prepared from the expressions themselves.
	Subqueries []SubquerySpec `yaml:"subqueries,omitempty"`

	// Settings default to rpn.DefaultSettings, field by field.
	Settings *rpn.Settings `yaml:"settings,omitempty"`

	Expressions []ExpressionCase `yaml:"expressions,omitempty"`
	Predicates  []PredicateCase  `yaml:"predicates,omitempty"`
}

// KeySpec is a sorting key definition.
type KeySpec struct {
	Definition string `yaml:"definition"`
	Legacy     bool   `yaml:"legacy,omitempty"`
}

// ConstantSpec is one constants block entry.
type ConstantSpec struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

// SubquerySpec is a prepared set for a subquery or table right-hand side.
type SubquerySpec struct {
	// Query is the right-hand side text, e.g. "(SELECT x FROM t)" or "db.t".
	Query string   `yaml:"query"`
	Types []string `yaml:"types"`
	Rows  [][]any  `yaml:"rows,omitempty"`

	// Pending leaves the set unfinished, as if still being built.
	Pending bool `yaml:"pending,omitempty"`
}

// ExpressionCase is an expression with the properties it must show.
// Unset expectations are not checked.
type ExpressionCase struct {
	Expr string `yaml:"expr"`

	// Representations restricts the check; empty means both.
	Representations []string `yaml:"representations,omitempty"`

	Expect ExpressionExpect `yaml:"expect"`
}

// ExpressionExpect lists expected properties of an expression node.
type ExpressionExpect struct {
	ColumnName *string `yaml:"column_name,omitempty"`
	LegacyName *string `yaml:"legacy_name,omitempty"`

	// Function is the function name, or "" for a non-function.
	Function  *string `yaml:"function,omitempty"`
	Arguments *int    `yaml:"arguments,omitempty"`

	Constant *bool `yaml:"constant,omitempty"`

	// Value and Type describe the constant TryGetConstant finds; Value is
	// the literal text, e.g. "'abc'" or "(1, 2)".
	Value *string `yaml:"value,omitempty"`
	Type  *string `yaml:"type,omitempty"`

	// RHSSet is the prepared set found for the right-hand side of an IN
	// call, as Set.String() renders it, or "" for none.
	RHSSet *string `yaml:"rhs_set,omitempty"`
}

// PredicateCase is a WHERE predicate with its expected key condition.
type PredicateCase struct {
	Where           string   `yaml:"where"`
	Representations []string `yaml:"representations,omitempty"`
	RPN             *string  `yaml:"rpn,omitempty"`
	Useless         *bool    `yaml:"useless,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. The schema path is
// resolved relative to the file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Settings are decoded over the defaults, so omitted keys keep them.
	defaults := rpn.DefaultSettings()
	scenario := Scenario{Settings: &defaults}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Schema != "" && len(s.Columns) > 0:
		return fmt.Errorf("schema and columns are mutually exclusive")
	case s.Schema != "":
		if s.Table == "" {
			return fmt.Errorf("table is required with schema")
		}
		if s.Key != nil {
			return fmt.Errorf("key comes from the schema; remove it")
		}
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", s.Schema)
		}
	case len(s.Columns) == 0:
		return fmt.Errorf("schema or columns is required")
	}

	if len(s.Expressions) == 0 && len(s.Predicates) == 0 {
		return fmt.Errorf("at least one expression or predicate is required")
	}

	for i, c := range s.Constants {
		if c.Name == "" || c.Type == "" {
			return fmt.Errorf("constants[%d]: name and type are required", i)
		}
	}
	for i, q := range s.Subqueries {
		if q.Query == "" || len(q.Types) == 0 {
			return fmt.Errorf("subqueries[%d]: query and types are required", i)
		}
	}
	for i, e := range s.Expressions {
		if e.Expr == "" {
			return fmt.Errorf("expressions[%d]: expr is required", i)
		}
		if err := validateRepresentations(e.Representations); err != nil {
			return fmt.Errorf("expressions[%d]: %w", i, err)
		}
	}
	for i, p := range s.Predicates {
		if p.Where == "" {
			return fmt.Errorf("predicates[%d]: where is required", i)
		}
		if err := validateRepresentations(p.Representations); err != nil {
			return fmt.Errorf("predicates[%d]: %w", i, err)
		}
	}
	if len(s.Predicates) > 0 && s.Schema == "" && s.Key == nil {
		return fmt.Errorf("predicates need a key")
	}
	return nil
}

func validateRepresentations(reps []string) error {
	for _, r := range reps {
		if r != RepSyntax && r != RepGraph {
			return fmt.Errorf("unknown representation %q", r)
		}
	}
	return nil
}

// representations returns the representations to check, in output order.
func representations(reps []string) []string {
	if len(reps) == 0 {
		return []string{RepSyntax, RepGraph}
	}
	var out []string
	for _, r := range []string{RepSyntax, RepGraph} {
		if slices.Contains(reps, r) {
			out = append(out, r)
		}
	}
	return out
}
