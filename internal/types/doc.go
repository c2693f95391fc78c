// Package types provides the data types and values used by expression trees.
//
// DataType is a sealed interface with canonical names ("UInt8",
// "Nullable(String)", "Tuple(UInt8, String)"); two types are equal iff their
// names are equal. Field is a tagged value with an explicit NULL state.
//
// FieldToString is the textual form of a value used in column names. Both
// the syntax tree and the action graph render constants through it, which
// is what makes their canonical names comparable.
package types
