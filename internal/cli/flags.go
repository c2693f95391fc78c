package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/keyprune/internal/harness"
)

// tableFlags describe the columns and constants an expression is typed
// against.
type tableFlags struct {
	columns   []string // name=Type
	constants []string // name:Type=value
	dummy     bool
}

func (f *tableFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.columns, "column", "c", nil, "input column as name=Type (repeatable)")
	cmd.Flags().StringArrayVar(&f.constants, "constant", nil, "constants block entry as name:Type=value (repeatable)")
	cmd.Flags().BoolVar(&f.dummy, "dummy", false, "add the _dummy constant to the constants block")
}

// apply fills the scenario's columns and constants from the flags.
func (f *tableFlags) apply(s *harness.Scenario) error {
	s.Dummy = f.dummy
	if len(f.columns) > 0 {
		s.Columns = make(map[string]string, len(f.columns))
	}
	for _, c := range f.columns {
		name, typeName, ok := strings.Cut(c, "=")
		if !ok || name == "" || typeName == "" {
			return fmt.Errorf("column %q: want name=Type", c)
		}
		s.Columns[strings.TrimSpace(name)] = strings.TrimSpace(typeName)
	}
	for _, c := range f.constants {
		spec, err := parseConstant(c)
		if err != nil {
			return err
		}
		s.Constants = append(s.Constants, spec)
	}
	return nil
}

// parseConstant reads name:Type=value. The value is decoded as YAML, so
// 7 is a number, abc a string and [1, 2] a list.
func parseConstant(text string) (harness.ConstantSpec, error) {
	head, raw, ok := strings.Cut(text, "=")
	if !ok {
		return harness.ConstantSpec{}, fmt.Errorf("constant %q: want name:Type=value", text)
	}
	name, typeName, ok := strings.Cut(head, ":")
	if !ok || name == "" || typeName == "" {
		return harness.ConstantSpec{}, fmt.Errorf("constant %q: want name:Type=value", text)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return harness.ConstantSpec{}, fmt.Errorf("constant %s: %w", name, err)
	}
	return harness.ConstantSpec{Name: name, Type: typeName, Value: value}, nil
}
