package types

import "math"

// FieldToDataType returns the narrowest type able to hold the value.
//
//	5     -> UInt8
//	300   -> UInt16
//	-5    -> Int8
//	1.5   -> Float64
//	NULL  -> Nullable(Nothing)
//	(1,'a') -> Tuple(UInt8, String)
func FieldToDataType(f Field) DataType {
	switch f.kind {
	case KindNull:
		return Nullable{Nested: Nothing}
	case KindUInt64:
		return unsignedFor(f.u)
	case KindInt64:
		return signedFor(f.i)
	case KindFloat64:
		return Float64
	case KindString:
		return String
	case KindTuple:
		elems := make([]DataType, len(f.elems))
		for i, e := range f.elems {
			elems[i] = FieldToDataType(e)
		}
		return Tuple{Elems: elems}
	case KindArray:
		if len(f.elems) == 0 {
			return Array{Elem: Nothing}
		}
		elems := make([]DataType, len(f.elems))
		for i, e := range f.elems {
			elems[i] = FieldToDataType(e)
		}
		return Array{Elem: LeastSupertype(elems...)}
	}
	return Nothing
}

func unsignedFor(v uint64) Basic {
	switch {
	case v <= math.MaxUint8:
		return UInt8
	case v <= math.MaxUint16:
		return UInt16
	case v <= math.MaxUint32:
		return UInt32
	}
	return UInt64
}

func signedFor(v int64) Basic {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return Int8
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return Int16
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return Int32
	}
	return Int64
}

// LeastSupertype returns a type every argument converts to without loss,
// falling back to String when the arguments are unrelated.
// Nothing is absorbed by any other type; any nullable argument makes the
// result nullable.
func LeastSupertype(ts ...DataType) DataType {
	nullable := false
	var rest []DataType
	for _, t := range ts {
		if IsNullable(t) {
			nullable = true
		}
		t = RemoveNullable(t)
		if t == Nothing {
			continue
		}
		rest = append(rest, t)
	}

	result := leastNonNullable(rest)
	if nullable {
		return MakeNullable(result)
	}
	return result
}

func leastNonNullable(ts []DataType) DataType {
	if len(ts) == 0 {
		return Nothing
	}
	first := ts[0]
	same := true
	for _, t := range ts[1:] {
		if !Equal(t, first) {
			same = false
			break
		}
	}
	if same {
		return first
	}

	var maxUnsigned, maxSigned Basic
	hasFloat := false
	for _, t := range ts {
		b, ok := t.(Basic)
		if !ok {
			return String
		}
		switch {
		case b.IsUnsigned():
			maxUnsigned = max(maxUnsigned, b)
		case b.IsSigned():
			maxSigned = max(maxSigned, b)
		case b == Float64:
			hasFloat = true
		default:
			return String
		}
	}
	switch {
	case hasFloat:
		return Float64
	case maxSigned != 0 && maxUnsigned != 0:
		// Signed type must be wide enough for the widest unsigned one.
		widened := min(Int8+(maxUnsigned-UInt8)+1, Int64)
		return max(maxSigned, widened)
	case maxSigned != 0:
		return maxSigned
	}
	return maxUnsigned
}
