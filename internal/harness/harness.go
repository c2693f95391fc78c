package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/compiler"
	"github.com/roach88/keyprune/internal/dag"
	"github.com/roach88/keyprune/internal/keycond"
	"github.com/roach88/keyprune/internal/keydesc"
	"github.com/roach88/keyprune/internal/rpn"
	"github.com/roach88/keyprune/internal/sets"
	"github.com/roach88/keyprune/internal/testutil"
	"github.com/roach88/keyprune/internal/types"
)

// Harness holds the state one scenario runs against.
type Harness struct {
	columns map[string]types.DataType
	key     *keydesc.KeyDescription
	block   *column.Block
	sets    *sets.Registry
	ids     *testutil.SequentialIDs
	ctx     *rpn.TreeContext
	logger  *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger routes analysis debug logs to l. Logs are discarded otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Resolve columns and key, from the schema or inline
//  2. Build the constants block and register subquery sets
//  3. Prepare literal sets for every expression and predicate
//  4. Observe each expression and predicate in each representation
//  5. Compare observations against expectations
//
// Set identifiers are sequential, so results are reproducible. An error
// means the scenario could not run; failed expectations are reported in
// the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		sets:   sets.NewRegistry(),
		ids:    testutil.NewSequentialIDs(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := h.resolveTable(scenario); err != nil {
		return nil, err
	}
	if len(scenario.Predicates) > 0 && h.key == nil {
		return nil, fmt.Errorf("predicates need a key")
	}
	if err := h.buildConstants(scenario); err != nil {
		return nil, err
	}
	if err := h.registerSubqueries(scenario.Subqueries); err != nil {
		return nil, err
	}

	settings := rpn.DefaultSettings()
	if scenario.Settings != nil {
		settings = *scenario.Settings
	}

	exprs, err := parseAll(scenario)
	if err != nil {
		return nil, err
	}
	for _, n := range exprs {
		if _, err := dag.PrepareSets(n, h.buildOptions(), sets.WithIDSource(h.ids.Next)); err != nil {
			return nil, fmt.Errorf("prepare sets for %s: %w", n.ColumnName(), err)
		}
	}
	h.logger.Debug("scenario prepared", "scenario", scenario.Name, "sets", h.sets.Len())

	h.ctx = rpn.NewTreeContext(&rpn.QueryContext{Settings: settings, Logger: h.logger}, h.block, h.sets)

	result := NewResult()
	for i, ec := range scenario.Expressions {
		for _, rep := range representations(ec.Representations) {
			n, err := h.node(exprs[i], rep)
			if err != nil {
				return nil, fmt.Errorf("expressions[%d] %s: %w", i, rep, err)
			}
			obs := observeExpression(ec.Expr, rep, n)
			result.Expressions = append(result.Expressions, obs)
			for _, msg := range checkExpression(obs, ec.Expect) {
				result.AddError(fmt.Sprintf("expressions[%d] %s %q: %s", i, rep, ec.Expr, msg))
			}
		}
	}

	offset := len(scenario.Expressions)
	for i, pc := range scenario.Predicates {
		for _, rep := range representations(pc.Representations) {
			n, err := h.node(exprs[offset+i], rep)
			if err != nil {
				return nil, fmt.Errorf("predicates[%d] %s: %w", i, rep, err)
			}
			cond := keycond.Analyze(n, h.key)
			obs := ConditionObservation{
				Rep:     rep,
				Where:   pc.Where,
				RPN:     cond.String(),
				Useless: cond.AlwaysUnknownOrTrue(),
			}
			result.Conditions = append(result.Conditions, obs)
			for _, msg := range checkCondition(obs, pc) {
				result.AddError(fmt.Sprintf("predicates[%d] %s %q: %s", i, rep, pc.Where, msg))
			}
		}
	}
	return result, nil
}

// resolveTable loads columns and key from the schema or the inline columns.
func (h *Harness) resolveTable(s *Scenario) error {
	if s.Schema != "" {
		src, err := os.ReadFile(s.Schema)
		if err != nil {
			return fmt.Errorf("failed to read schema: %w", err)
		}
		specs, err := compiler.CompileSource(s.Schema, src)
		if err != nil {
			return fmt.Errorf("failed to compile schema: %w", err)
		}
		for _, spec := range specs {
			if spec.Name != s.Table {
				continue
			}
			if h.columns, err = spec.ColumnTypes(); err != nil {
				return err
			}
			h.key, err = spec.Key()
			return err
		}
		return fmt.Errorf("table %s not found in %s", s.Table, s.Schema)
	}

	h.columns = make(map[string]types.DataType, len(s.Columns))
	for name, typeName := range s.Columns {
		t, err := types.Parse(typeName)
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		h.columns[name] = t
	}
	if s.Key != nil {
		kd, err := keydesc.Parse(s.Key.Definition, h.columns, s.Key.Legacy)
		if err != nil {
			return err
		}
		h.key = kd
	}
	return nil
}

func (h *Harness) buildConstants(s *Scenario) error {
	h.block = column.NewBlock()
	if s.Dummy {
		h.block = column.DefaultConstantsBlock()
	}
	for _, c := range s.Constants {
		t, err := types.Parse(c.Type)
		if err != nil {
			return fmt.Errorf("constant %s: %w", c.Name, err)
		}
		v, err := types.FromAny(c.Value)
		if err != nil {
			return fmt.Errorf("constant %s: %w", c.Name, err)
		}
		h.block.Insert(column.WithTypeAndName{Column: column.NewConst(t, v, 1), Type: t, Name: c.Name})
	}
	return nil
}

func (h *Harness) registerSubqueries(specs []SubquerySpec) error {
	for _, q := range specs {
		rhs, err := ast.Parse(q.Query)
		if err != nil {
			return fmt.Errorf("subquery %s: %w", q.Query, err)
		}
		elemTypes := make([]types.DataType, len(q.Types))
		for i, name := range q.Types {
			if elemTypes[i], err = types.Parse(name); err != nil {
				return fmt.Errorf("subquery %s: %w", q.Query, err)
			}
		}
		s := sets.New(elemTypes, sets.WithIDSource(h.ids.Next))
		for _, row := range q.Rows {
			fields := make([]types.Field, len(row))
			for i, v := range row {
				if fields[i], err = types.FromAny(v); err != nil {
					return fmt.Errorf("subquery %s: %w", q.Query, err)
				}
			}
			if err := s.Insert(fields...); err != nil {
				return fmt.Errorf("subquery %s: %w", q.Query, err)
			}
		}
		if !q.Pending {
			s.Finish()
		}
		h.sets.Add(sets.KeyForSubquery(rhs), s)
	}
	return nil
}

func (h *Harness) buildOptions() dag.BuildOptions {
	return dag.BuildOptions{Inputs: h.columns, Constants: h.block, Sets: h.sets}
}

// node returns n in the requested representation.
func (h *Harness) node(n ast.Node, rep string) (rpn.Node, error) {
	if rep == RepSyntax {
		return rpn.FromSyntax(n, h.ctx), nil
	}
	_, root, err := dag.FromAST(n, h.buildOptions())
	if err != nil {
		return rpn.Node{}, err
	}
	return rpn.FromGraph(root, h.ctx), nil
}

// parseAll parses expressions, then predicates.
func parseAll(s *Scenario) ([]ast.Node, error) {
	var out []ast.Node
	for i, e := range s.Expressions {
		n, err := ast.Parse(e.Expr)
		if err != nil {
			return nil, fmt.Errorf("expressions[%d]: %w", i, err)
		}
		out = append(out, n)
	}
	for i, p := range s.Predicates {
		n, err := ast.Parse(p.Where)
		if err != nil {
			return nil, fmt.Errorf("predicates[%d]: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}
