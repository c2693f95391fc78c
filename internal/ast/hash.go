package ast

import (
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"

	"github.com/roach88/keyprune/internal/types"
)

// Fixed SipHash keys. Tree hashes are used as lookup keys within one
// process and must be stable across runs for golden output.
const (
	hashKey0 = 0x6b65797072756e65 // "keyprune"
	hashKey1 = 0x7472656568617368 // "treehash"
)

// TreeHash is a 128-bit structural hash of a subtree.
//
// Aliases do not take part in the hash: "(1, 2) AS s" and "(1, 2)" hash
// identically, so a prepared set registered for one is found for the other.
type TreeHash struct {
	Lo, Hi uint64
}

func (h TreeHash) String() string {
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

// TreeHashOf computes the structural hash of n.
func TreeHashOf(n Node) TreeHash {
	h := &hasher{}
	n.writeHash(h)
	lo, hi := siphash.Hash128(hashKey0, hashKey1, h.buf)
	return TreeHash{Lo: lo, Hi: hi}
}

// hasher accumulates a length-prefixed serialization of a subtree;
// the bytes are hashed once at the end.
type hasher struct {
	buf []byte
}

func (h *hasher) writeString(s string) {
	h.buf = binary.LittleEndian.AppendUint32(h.buf, uint32(len(s)))
	h.buf = append(h.buf, s...)
}

func (h *hasher) writeInt(n int) {
	h.buf = binary.LittleEndian.AppendUint64(h.buf, uint64(n))
}

func (h *hasher) writeChildren(children []Node) {
	h.writeInt(len(children))
	for _, c := range children {
		c.writeHash(h)
	}
}

func (f *Function) writeHash(h *hasher) {
	h.writeString("Function_" + f.Name)
	h.writeChildren(f.Children())
}

func (l *ExpressionList) writeHash(h *hasher) {
	h.writeString("ExpressionList")
	h.writeChildren(l.Items)
}

func (l *Literal) writeHash(h *hasher) {
	h.writeString("Literal_" + types.Dump(l.Value))
	h.writeChildren(nil)
}

func (i *Identifier) writeHash(h *hasher) {
	h.writeString("Identifier_" + i.Name)
	h.writeChildren(nil)
}

func (t *TableIdentifier) writeHash(h *hasher) {
	h.writeString("TableIdentifier_" + t.Database + "." + t.Table)
	h.writeChildren(nil)
}

func (s *Subquery) writeHash(h *hasher) {
	h.writeString("Subquery")
	h.writeString(s.Query)
	h.writeChildren(nil)
}
