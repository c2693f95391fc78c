package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/keyprune/internal/ir"
)

// Snapshot is the canonical JSON form of a result, one line, for golden
// comparison.
func Snapshot(scenarioName string, r *Result) ([]byte, error) {
	exprs := make(ir.Array, len(r.Expressions))
	for i, e := range r.Expressions {
		obj := ir.Object{
			"rep":         ir.String(e.Rep),
			"expr":        ir.String(e.Expr),
			"column_name": ir.String(e.ColumnName),
			"legacy_name": ir.String(e.LegacyName),
			"constant":    ir.Bool(e.Constant),
		}
		if e.Function != "" {
			obj["function"] = ir.String(e.Function)
			obj["arguments"] = ir.Int(e.Arguments)
		}
		if e.HasValue {
			obj["value"] = ir.String(e.Value)
			obj["type"] = ir.String(e.Type)
		}
		if e.RHSSet != "" {
			obj["rhs_set"] = ir.String(e.RHSSet)
		}
		exprs[i] = obj
	}

	conds := make(ir.Array, len(r.Conditions))
	for i, c := range r.Conditions {
		conds[i] = ir.Object{
			"rep":     ir.String(c.Rep),
			"where":   ir.String(c.Where),
			"rpn":     ir.String(c.RPN),
			"useless": ir.Bool(c.Useless),
		}
	}

	out, err := ir.MarshalCanonical(ir.Object{
		"scenario":    ir.String(scenarioName),
		"expressions": exprs,
		"conditions":  conds,
	})
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// RunWithGolden executes a scenario, fails the test on any unmet
// expectation, and compares the snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)
	return nil
}
