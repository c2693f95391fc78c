package testutil

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// SequentialIDs hands out predictable UUIDs for tests: the first call to
// Next returns 00000000-0000-0000-0000-000000000001, the second ...0002.
//
// Pass Next to sets.WithIDSource so golden output does not depend on
// random set identifiers.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu  sync.Mutex
	seq uint64
}

func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{}
}

// Next returns the next identifier.
func (g *SequentialIDs) Next() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], g.seq)
	return id
}

// Count returns how many identifiers have been handed out.
func (g *SequentialIDs) Count() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. After Reset, Next returns ...0001 again.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
