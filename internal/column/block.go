package column

import "github.com/roach88/keyprune/internal/types"

// DummyName is the block entry consulted for the type of a literal whose own
// name has no entry.
const DummyName = "_dummy"

// WithTypeAndName is a named, typed column.
type WithTypeAndName struct {
	Column Column
	Type   types.DataType
	Name   string
}

// Block is an ordered set of named columns.
//
// A nil *Block is an empty block: lookups report absence.
type Block struct {
	cols  []WithTypeAndName
	index map[string]int
}

func NewBlock(cols ...WithTypeAndName) *Block {
	b := &Block{index: make(map[string]int)}
	for _, c := range cols {
		b.Insert(c)
	}
	return b
}

// DefaultConstantsBlock returns a block holding only the _dummy entry, a
// UInt8 constant 0.
func DefaultConstantsBlock() *Block {
	return NewBlock(WithTypeAndName{
		Column: NewConst(types.UInt8, types.NewUInt64(0), 1),
		Type:   types.UInt8,
		Name:   DummyName,
	})
}

// Insert adds c, replacing any existing entry with the same name in place.
func (b *Block) Insert(c WithTypeAndName) {
	if i, ok := b.index[c.Name]; ok {
		b.cols[i] = c
		return
	}
	b.index[c.Name] = len(b.cols)
	b.cols = append(b.cols, c)
}

// Has reports whether the block has an entry named name.
func (b *Block) Has(name string) bool {
	if b == nil {
		return false
	}
	_, ok := b.index[name]
	return ok
}

// ByName returns the entry named name.
func (b *Block) ByName(name string) (WithTypeAndName, bool) {
	if b == nil {
		return WithTypeAndName{}, false
	}
	i, ok := b.index[name]
	if !ok {
		return WithTypeAndName{}, false
	}
	return b.cols[i], true
}

// Names returns the entry names in insertion order.
func (b *Block) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, len(b.cols))
	for i, c := range b.cols {
		names[i] = c.Name
	}
	return names
}

func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.cols)
}
