package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/keyprune/internal/harness"
	"github.com/roach88/keyprune/internal/rpn"
	"github.com/roach88/keyprune/internal/store"
)

// NewNamesCommand creates the names command.
func NewNamesCommand(rootOpts *RootOptions) *cobra.Command {
	var tf tableFlags

	cmd := &cobra.Command{
		Use:   "names <expr>",
		Short: "Print the canonical and legacy column names of an expression",
		Long: `Print the name each representation gives an expression.

The canonical name is what index analysis matches against sorting key
columns. The legacy name renders modulo as moduleLegacy, the way old
partition keys were written.`,
		Example: `  keyprune names "x % 7" -c x=UInt32
  keyprune names "f(a AS b)" --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			result, err := inspect(out, &tf, harness.Scenario{
				Name:        "names",
				Expressions: []harness.ExpressionCase{{Expr: args[0]}},
			})
			if err != nil {
				return err
			}

			type names struct {
				Rep        string `json:"rep"`
				ColumnName string `json:"column_name"`
				LegacyName string `json:"legacy_name"`
			}
			data := make([]names, 0, len(result.Expressions))
			var sb strings.Builder
			for _, e := range result.Expressions {
				data = append(data, names{Rep: e.Rep, ColumnName: e.ColumnName, LegacyName: e.LegacyName})
				fmt.Fprintf(&sb, "%-6s  %s\n", e.Rep, e.ColumnName)
				if e.LegacyName != e.ColumnName {
					fmt.Fprintf(&sb, "%-6s  %s (legacy)\n", "", e.LegacyName)
				}
			}
			return out.Success(data, sb.String())
		},
	}
	tf.register(cmd)
	return cmd
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	var tf tableFlags

	cmd := &cobra.Command{
		Use:   "classify <expr>",
		Short: "Report whether an expression is a function or a constant",
		Long: `Report what index analysis can learn about an expression in each
representation: its function name and arity, whether it is constant, the
constant value and type when one can be extracted, and the prepared set
backing the right-hand side of an IN.`,
		Example: `  keyprune classify "x IN (1, 2, 3)" -c x=UInt8
  keyprune classify "plus(1, 2)"
  keyprune classify "seven" --constant seven:UInt8=7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			result, err := inspect(out, &tf, harness.Scenario{
				Name:        "classify",
				Expressions: []harness.ExpressionCase{{Expr: args[0]}},
			})
			if err != nil {
				return err
			}

			var sb strings.Builder
			for _, e := range result.Expressions {
				fmt.Fprintf(&sb, "%s:\n", e.Rep)
				if e.Function != "" {
					fmt.Fprintf(&sb, "  function: %s/%d\n", e.Function, e.Arguments)
				}
				fmt.Fprintf(&sb, "  constant: %t\n", e.Constant)
				if e.HasValue {
					fmt.Fprintf(&sb, "  value:    %s\n", e.Value)
					fmt.Fprintf(&sb, "  type:     %s\n", e.Type)
				}
				if e.RHSSet != "" {
					fmt.Fprintf(&sb, "  set:      %s\n", e.RHSSet)
				}
			}
			return out.Success(result.Expressions, sb.String())
		},
	}
	tf.register(cmd)
	return cmd
}

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	Key      string
	Legacy   bool
	DBPath   string
	Table    string
	Settings rpn.Settings
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{Settings: rpn.DefaultSettings()}
	var tf tableFlags

	cmd := &cobra.Command{
		Use:   "analyze <where>",
		Short: "Translate a WHERE predicate into a key condition",
		Long: `Translate a WHERE predicate into the reverse Polish key condition
index analysis would evaluate against a sorting key.

The table comes either from --column and --key, or from a catalog
imported with "keyprune catalog import" (--db and --table). A condition
that is always unknown or true cannot prune anything and is reported as
useless.`,
		Example: `  keyprune analyze "x = 5 AND y > 3" -c x=UInt32 -c y=UInt8 --key "(x, y)"
  keyprune analyze "counter_id IN (1, 2)" --db catalog.db --table hits`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			scenario := harness.Scenario{
				Name:       "analyze",
				Predicates: []harness.PredicateCase{{Where: args[0]}},
				Settings:   &opts.Settings,
			}
			if err := opts.resolveTable(ctxOf(cmd), &scenario); err != nil {
				return err
			}
			result, err := inspect(out, &tf, scenario)
			if err != nil {
				return err
			}

			var sb strings.Builder
			for _, c := range result.Conditions {
				fmt.Fprintf(&sb, "%-6s  %s\n", c.Rep, c.RPN)
				if c.Useless {
					fmt.Fprintf(&sb, "%-6s  (useless)\n", "")
				}
			}
			return out.Success(result.Conditions, sb.String())
		},
	}
	tf.register(cmd)
	cmd.Flags().StringVar(&opts.Key, "key", "", "sorting key definition, e.g. \"(a, b % 7)\"")
	cmd.Flags().BoolVar(&opts.Legacy, "legacy", false, "key columns may use legacy modulo names")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "catalog database to read the table from")
	cmd.Flags().StringVar(&opts.Table, "table", "", "catalog table name (with --db)")
	cmd.Flags().BoolVar(&opts.Settings.TransformNullIn, "transform-null-in", false, "NULL IN matching: leave nullable key columns unknown")
	cmd.Flags().BoolVar(&opts.Settings.UseIndexForInWithSubqueries, "use-index-for-in-with-subqueries", true, "use sets built from subqueries for index analysis")
	cmd.MarkFlagsMutuallyExclusive("key", "db")
	cmd.MarkFlagsRequiredTogether("db", "table")
	return cmd
}

// resolveTable sets the scenario key, and with --db its columns too.
func (o *AnalyzeOptions) resolveTable(ctx context.Context, s *harness.Scenario) error {
	if o.DBPath == "" {
		if o.Key == "" {
			return NewExitError(ExitCommandError, "either --key or --db is required")
		}
		s.Key = &harness.KeySpec{Definition: o.Key, Legacy: o.Legacy}
		return nil
	}

	st, err := store.Open(o.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	defer st.Close()

	table, err := st.ReadTable(ctx, o.Table)
	if errors.Is(err, store.ErrNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("table %s not found in catalog", o.Table))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read table", err)
	}

	s.Columns = make(map[string]string, len(table.Spec.Columns))
	for _, c := range table.Spec.Columns {
		s.Columns[c.Name] = c.Type
	}
	s.Key = &harness.KeySpec{
		Definition: table.Spec.SortingKey,
		Legacy:     table.Spec.LegacyModulo || o.Legacy,
	}
	return nil
}

// inspect runs a one-off scenario built from the command arguments.
func inspect(out *OutputFormatter, tf *tableFlags, s harness.Scenario) (*harness.Result, error) {
	if len(tf.columns) > 0 && s.Columns != nil {
		return nil, NewExitError(ExitCommandError, "--column cannot be combined with --db")
	}
	if err := tf.apply(&s); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid flags", err)
	}

	result, err := harness.Run(&s, harness.WithLogger(out.Logger()))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "analysis failed", err)
	}
	return result, nil
}
