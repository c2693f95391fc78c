package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the values canonical JSON accepts.
// There is no float and no null.
type Value interface {
	irValue()
}

type String string

func (String) irValue() {}

type Int int64

func (Int) irValue() {}

type Bool bool

func (Bool) irValue() {}

type Array []Value

func (Array) irValue() {}

// Object is a JSON object. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// This differs from byte order for characters outside the BMP.
func (o Object) SortedKeys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}
