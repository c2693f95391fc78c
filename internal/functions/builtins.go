package functions

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/keyprune/internal/types"
)

// ErrDivisionByZero is returned when folding an integer modulo by zero.
var ErrDivisionByZero = errors.New("division by zero")

func registerBuiltins(r *Registry) {
	r.Register(&Base{Name: "plus", MinArgs: 2, MaxArgs: 2, ReturnType: widening, Execute: arithmetic(
		func(a, b uint64) (uint64, error) { return a + b, nil },
		func(a, b int64) (int64, error) { return a + b, nil },
		func(a, b float64) float64 { return a + b },
	)})
	r.Register(&Base{Name: "minus", MinArgs: 2, MaxArgs: 2, ReturnType: signedResult, Execute: signedArithmetic(
		func(a, b int64) (int64, error) { return a - b, nil },
		func(a, b float64) float64 { return a - b },
	)})
	r.Register(&Base{Name: "multiply", MinArgs: 2, MaxArgs: 2, ReturnType: widening, Execute: arithmetic(
		func(a, b uint64) (uint64, error) { return a * b, nil },
		func(a, b int64) (int64, error) { return a * b, nil },
		func(a, b float64) float64 { return a * b },
	)})
	r.Register(&Base{Name: "divide", MinArgs: 2, MaxArgs: 2, ReturnType: floatResult, Execute: divide})

	modulo := &Base{Name: "modulo", MinArgs: 2, MaxArgs: 2, ReturnType: widening, Execute: arithmetic(
		func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a % b, nil
		},
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a % b, nil
		},
		math.Mod,
	)}
	r.Register(modulo)

	// moduleLegacy is modulo under the name older sorting keys were stored
	// with.
	legacy := *modulo
	legacy.Name = "moduleLegacy"
	r.Register(&legacy)

	r.Register(&Base{Name: "negate", MinArgs: 1, MaxArgs: 1, ReturnType: signedResult, Execute: negate})

	for name, accept := range map[string]func(int) bool{
		"equals":          func(c int) bool { return c == 0 },
		"notEquals":       func(c int) bool { return c != 0 },
		"less":            func(c int) bool { return c < 0 },
		"greater":         func(c int) bool { return c > 0 },
		"lessOrEquals":    func(c int) bool { return c <= 0 },
		"greaterOrEquals": func(c int) bool { return c >= 0 },
	} {
		r.Register(&Base{Name: name, MinArgs: 2, MaxArgs: 2, ReturnType: comparisonResult, Execute: comparison(accept)})
	}

	r.Register(&Base{Name: "and", MinArgs: 2, MaxArgs: -1, KeepNulls: true, ReturnType: logicalResult, Execute: logicalAnd})
	r.Register(&Base{Name: "or", MinArgs: 2, MaxArgs: -1, KeepNulls: true, ReturnType: logicalResult, Execute: logicalOr})
	r.Register(&Base{Name: "not", MinArgs: 1, MaxArgs: 1, ReturnType: logicalResult, Execute: func(args []types.Field) (types.Field, error) {
		return boolField(!types.Truthy(args[0])), nil
	}})

	// Membership is answered by the prepared set at execution time, which
	// is out of reach here: never folded.
	r.Register(&Base{Name: "in", MinArgs: 2, MaxArgs: 2, KeepNulls: true, ReturnType: membershipResult})
	r.Register(&Base{Name: "notIn", MinArgs: 2, MaxArgs: 2, KeepNulls: true, ReturnType: membershipResult})

	r.Register(&Base{Name: "tuple", MinArgs: 1, MaxArgs: -1, KeepNulls: true,
		ReturnType: func(args []types.DataType) (types.DataType, error) {
			return types.Tuple{Elems: append([]types.DataType(nil), args...)}, nil
		},
		Execute: func(args []types.Field) (types.Field, error) { return types.NewTuple(args...), nil },
	})
	r.Register(&Base{Name: "array", MinArgs: 0, MaxArgs: -1, KeepNulls: true,
		ReturnType: func(args []types.DataType) (types.DataType, error) {
			return types.Array{Elem: types.LeastSupertype(args...)}, nil
		},
		Execute: func(args []types.Field) (types.Field, error) { return types.NewArray(args...), nil },
	})

	r.Register(&Base{Name: "toString", MinArgs: 1, MaxArgs: 1,
		ReturnType: func([]types.DataType) (types.DataType, error) { return types.String, nil },
		Execute: func(args []types.Field) (types.Field, error) {
			if args[0].Kind() == types.KindString {
				return args[0], nil
			}
			return types.NewString(types.FieldToString(args[0])), nil
		},
	})
	r.Register(&Base{Name: "lower", MinArgs: 1, MaxArgs: 1,
		ReturnType: func(args []types.DataType) (types.DataType, error) {
			if !types.Equal(args[0], types.String) {
				return nil, fmt.Errorf("function lower: illegal argument type %s", args[0].Name())
			}
			return types.String, nil
		},
		Execute: func(args []types.Field) (types.Field, error) {
			return types.NewString(strings.ToLower(args[0].AsString())), nil
		},
	})
}

// numericKinds inspects non-nullable argument types. It reports nothing=true
// when an argument is the type of a bare NULL.
func numericKinds(args []types.DataType) (signed, float, nothing bool, err error) {
	for _, a := range args {
		b, ok := a.(types.Basic)
		switch {
		case ok && b == types.Nothing:
			nothing = true
		case ok && b.IsSigned():
			signed = true
		case ok && b == types.Float64:
			float = true
		case ok && b.IsUnsigned():
		default:
			return false, false, false, fmt.Errorf("illegal argument type %s for arithmetic", a.Name())
		}
	}
	return signed, float, nothing, nil
}

func widening(args []types.DataType) (types.DataType, error) {
	signed, float, nothing, err := numericKinds(args)
	switch {
	case err != nil:
		return nil, err
	case nothing:
		return types.Nothing, nil
	case float:
		return types.Float64, nil
	case signed:
		return types.Int64, nil
	}
	return types.UInt64, nil
}

func signedResult(args []types.DataType) (types.DataType, error) {
	_, float, nothing, err := numericKinds(args)
	switch {
	case err != nil:
		return nil, err
	case nothing:
		return types.Nothing, nil
	case float:
		return types.Float64, nil
	}
	return types.Int64, nil
}

func floatResult(args []types.DataType) (types.DataType, error) {
	_, _, nothing, err := numericKinds(args)
	switch {
	case err != nil:
		return nil, err
	case nothing:
		return types.Nothing, nil
	}
	return types.Float64, nil
}

func comparisonResult(args []types.DataType) (types.DataType, error) {
	a, b := args[0], args[1]
	if a == types.Nothing || b == types.Nothing {
		return types.Nothing, nil
	}
	if types.IsNumeric(a) && types.IsNumeric(b) {
		return types.UInt8, nil
	}
	if types.Equal(a, b) {
		return types.UInt8, nil
	}
	_, at := a.(types.Tuple)
	_, bt := b.(types.Tuple)
	if at && bt {
		return types.UInt8, nil
	}
	return nil, fmt.Errorf("cannot compare %s with %s", a.Name(), b.Name())
}

func logicalResult(args []types.DataType) (types.DataType, error) {
	nullable := false
	for _, a := range args {
		if types.IsNullable(a) {
			nullable = true
		}
		if inner := types.RemoveNullable(a); inner != types.Nothing && !types.IsNumeric(inner) {
			return nil, fmt.Errorf("illegal argument type %s for logical function", a.Name())
		}
	}
	if nullable {
		return types.Nullable{Nested: types.UInt8}, nil
	}
	return types.UInt8, nil
}

// The right-hand side is a prepared set, a literal list or a scalar
// treated as a one-element set.
func membershipResult([]types.DataType) (types.DataType, error) {
	return types.UInt8, nil
}

type numberKind int

const (
	numUnsigned numberKind = iota
	numSigned
	numFloat
)

func kindOf(args []types.Field) (numberKind, error) {
	k := numUnsigned
	for _, a := range args {
		switch a.Kind() {
		case types.KindUInt64:
		case types.KindInt64:
			k = max(k, numSigned)
		case types.KindFloat64:
			k = numFloat
		default:
			return 0, fmt.Errorf("illegal value %s for arithmetic", types.FieldToString(a))
		}
	}
	return k, nil
}

func asInt64(f types.Field) int64 {
	switch f.Kind() {
	case types.KindUInt64:
		return int64(f.AsUInt64())
	case types.KindFloat64:
		return int64(f.AsFloat64())
	}
	return f.AsInt64()
}

func asFloat64(f types.Field) float64 {
	switch f.Kind() {
	case types.KindUInt64:
		return float64(f.AsUInt64())
	case types.KindInt64:
		return float64(f.AsInt64())
	}
	return f.AsFloat64()
}

func arithmetic(
	u func(a, b uint64) (uint64, error),
	i func(a, b int64) (int64, error),
	f func(a, b float64) float64,
) func([]types.Field) (types.Field, error) {
	return func(args []types.Field) (types.Field, error) {
		k, err := kindOf(args)
		if err != nil {
			return types.Field{}, err
		}
		a, b := args[0], args[1]
		switch k {
		case numFloat:
			return types.NewFloat64(f(asFloat64(a), asFloat64(b))), nil
		case numSigned:
			v, err := i(asInt64(a), asInt64(b))
			if err != nil {
				return types.Field{}, err
			}
			return types.NewInt64(v), nil
		}
		v, err := u(a.AsUInt64(), b.AsUInt64())
		if err != nil {
			return types.Field{}, err
		}
		return types.NewUInt64(v), nil
	}
}

func signedArithmetic(
	i func(a, b int64) (int64, error),
	f func(a, b float64) float64,
) func([]types.Field) (types.Field, error) {
	return func(args []types.Field) (types.Field, error) {
		k, err := kindOf(args)
		if err != nil {
			return types.Field{}, err
		}
		a, b := args[0], args[1]
		if k == numFloat {
			return types.NewFloat64(f(asFloat64(a), asFloat64(b))), nil
		}
		v, err := i(asInt64(a), asInt64(b))
		if err != nil {
			return types.Field{}, err
		}
		return types.NewInt64(v), nil
	}
}

func divide(args []types.Field) (types.Field, error) {
	if _, err := kindOf(args); err != nil {
		return types.Field{}, err
	}
	return types.NewFloat64(asFloat64(args[0]) / asFloat64(args[1])), nil
}

func negate(args []types.Field) (types.Field, error) {
	k, err := kindOf(args)
	if err != nil {
		return types.Field{}, err
	}
	if k == numFloat {
		return types.NewFloat64(-args[0].AsFloat64()), nil
	}
	return types.NewInt64(-asInt64(args[0])), nil
}

func comparison(accept func(int) bool) func([]types.Field) (types.Field, error) {
	return func(args []types.Field) (types.Field, error) {
		c, err := Compare(args[0], args[1])
		if err != nil {
			return types.Field{}, err
		}
		return boolField(accept(c)), nil
	}
}

// Compare orders two non-null values: numbers numerically, strings
// bytewise, tuples and arrays lexicographically.
func Compare(a, b types.Field) (int, error) {
	ak, bk := a.Kind(), b.Kind()
	if isNumber(ak) && isNumber(bk) {
		return compareNumbers(a, b), nil
	}
	switch {
	case ak == types.KindString && bk == types.KindString:
		return strings.Compare(a.AsString(), b.AsString()), nil
	case ak == bk && (ak == types.KindTuple || ak == types.KindArray):
		ae, be := a.Elems(), b.Elems()
		for i := 0; i < len(ae) && i < len(be); i++ {
			c, err := Compare(ae[i], be[i])
			if err != nil || c != 0 {
				return c, err
			}
		}
		return cmpInt(len(ae), len(be)), nil
	}
	return 0, fmt.Errorf("cannot compare %s with %s", ak, bk)
}

func isNumber(k types.FieldKind) bool {
	return k == types.KindUInt64 || k == types.KindInt64 || k == types.KindFloat64
}

func compareNumbers(a, b types.Field) int {
	ak, bk := a.Kind(), b.Kind()
	switch {
	case ak == types.KindFloat64 || bk == types.KindFloat64:
		x, y := asFloat64(a), asFloat64(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case ak == types.KindUInt64 && bk == types.KindUInt64:
		return cmpUint(a.AsUInt64(), b.AsUInt64())
	case ak == types.KindInt64 && bk == types.KindInt64:
		return cmpInt64(a.AsInt64(), b.AsInt64())
	case ak == types.KindInt64:
		// Signed against unsigned.
		if a.AsInt64() < 0 {
			return -1
		}
		return cmpUint(uint64(a.AsInt64()), b.AsUInt64())
	}
	return -compareNumbers(b, a)
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt(a, b int) int { return cmpInt64(int64(a), int64(b)) }

// logicalAnd is three-valued: any false wins, then any NULL.
func logicalAnd(args []types.Field) (types.Field, error) {
	sawNull := false
	for _, a := range args {
		if a.IsNull() {
			sawNull = true
			continue
		}
		if !types.Truthy(a) {
			return boolField(false), nil
		}
	}
	if sawNull {
		return types.Null(), nil
	}
	return boolField(true), nil
}

// logicalOr is three-valued: any true wins, then any NULL.
func logicalOr(args []types.Field) (types.Field, error) {
	sawNull := false
	for _, a := range args {
		if a.IsNull() {
			sawNull = true
			continue
		}
		if types.Truthy(a) {
			return boolField(true), nil
		}
	}
	if sawNull {
		return types.Null(), nil
	}
	return boolField(false), nil
}

func boolField(v bool) types.Field {
	if v {
		return types.NewUInt64(1)
	}
	return types.NewUInt64(0)
}
