package harness

import "fmt"

// checkExpression compares an observation against the set expectations
// and returns one message per mismatch.
func checkExpression(obs ExpressionObservation, want ExpressionExpect) []string {
	var errs []string
	check := func(field string, got, expected any) {
		if got != expected {
			errs = append(errs, fmt.Sprintf("%s: got %v, want %v", field, got, expected))
		}
	}

	if want.ColumnName != nil {
		check("column_name", obs.ColumnName, *want.ColumnName)
	}
	if want.LegacyName != nil {
		check("legacy_name", obs.LegacyName, *want.LegacyName)
	}
	if want.Function != nil {
		check("function", obs.Function, *want.Function)
	}
	if want.Arguments != nil {
		check("arguments", obs.Arguments, *want.Arguments)
	}
	if want.Constant != nil {
		check("constant", obs.Constant, *want.Constant)
	}
	if want.Value != nil {
		if !obs.HasValue {
			errs = append(errs, fmt.Sprintf("value: no constant value, want %s", *want.Value))
		} else {
			check("value", obs.Value, *want.Value)
		}
	}
	if want.Type != nil {
		check("type", obs.Type, *want.Type)
	}
	if want.RHSSet != nil {
		check("rhs_set", obs.RHSSet, *want.RHSSet)
	}
	return errs
}

func checkCondition(obs ConditionObservation, want PredicateCase) []string {
	var errs []string
	if want.RPN != nil && obs.RPN != *want.RPN {
		errs = append(errs, fmt.Sprintf("rpn: got %q, want %q", obs.RPN, *want.RPN))
	}
	if want.Useless != nil && obs.Useless != *want.Useless {
		errs = append(errs, fmt.Sprintf("useless: got %t, want %t", obs.Useless, *want.Useless))
	}
	return errs
}
