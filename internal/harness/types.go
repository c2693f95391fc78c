package harness

import (
	"github.com/roach88/keyprune/internal/rpn"
	"github.com/roach88/keyprune/internal/types"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	Expressions []ExpressionObservation `json:"expressions"`
	Conditions  []ConditionObservation  `json:"conditions"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// ExpressionObservation is what one representation of an expression
// reports about itself.
type ExpressionObservation struct {
	Rep        string `json:"rep"`
	Expr       string `json:"expr"`
	ColumnName string `json:"column_name"`
	LegacyName string `json:"legacy_name"`
	Function   string `json:"function,omitempty"`
	Arguments  int    `json:"arguments,omitempty"`
	Constant   bool   `json:"constant"`
	HasValue   bool   `json:"-"`
	Value      string `json:"value,omitempty"`
	Type       string `json:"type,omitempty"`
	RHSSet     string `json:"rhs_set,omitempty"`
}

// ConditionObservation is the key condition of one representation of a
// predicate.
type ConditionObservation struct {
	Rep     string `json:"rep"`
	Where   string `json:"where"`
	RPN     string `json:"rpn"`
	Useless bool   `json:"useless"`
}

func observeExpression(expr, rep string, n rpn.Node) ExpressionObservation {
	obs := ExpressionObservation{
		Rep:        rep,
		Expr:       expr,
		ColumnName: n.ColumnName(),
		LegacyName: n.ColumnNameWithModuloLegacy(),
		Constant:   n.IsConstant(),
	}
	if fn, ok := n.ToFunctionNodeOrNull(); ok {
		obs.Function = fn.FunctionName()
		obs.Arguments = fn.ArgumentsSize()
		if (obs.Function == "in" || obs.Function == "notIn") && obs.Arguments == 2 {
			if s := fn.ArgumentAt(1).TryGetPreparedSet(); s != nil {
				obs.RHSSet = s.String()
			}
		}
	}
	if v, t, ok := n.TryGetConstant(); ok {
		obs.HasValue = true
		obs.Value = types.FieldToString(v)
		obs.Type = t.Name()
	}
	return obs
}
