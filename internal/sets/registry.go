package sets

import (
	"strings"
	"sync"

	"github.com/roach88/keyprune/internal/ast"
	"github.com/roach88/keyprune/internal/types"
)

type keyKind int

const (
	keyLiteral keyKind = iota + 1
	keySubquery
)

// Key identifies a prepared set in a Registry.
//
// A subquery set is identified by the tree hash of the subquery alone. A
// literal set additionally depends on the left-hand side types it was built
// for: "x IN (1, 2)" yields different sets for a UInt8 x and a String x.
type Key struct {
	hash  ast.TreeHash
	kind  keyKind
	types string
}

// KeyForSubquery builds the key of a set produced by a subquery or a table.
func KeyForSubquery(node ast.Node) Key {
	return Key{hash: ast.TreeHashOf(node), kind: keySubquery}
}

// KeyForLiteral builds the key of a set produced by a literal list, for the
// given left-hand side types.
func KeyForLiteral(node ast.Node, lhsTypes []types.DataType) Key {
	names := make([]string, len(lhsTypes))
	for i, t := range lhsTypes {
		names[i] = t.Name()
	}
	return Key{hash: ast.TreeHashOf(node), kind: keyLiteral, types: strings.Join(names, ",")}
}

// TreeHash returns the structural hash the key was built from.
func (k Key) TreeHash() ast.TreeHash {
	return k.hash
}

func (k Key) String() string {
	if k.kind == keySubquery {
		return "subquery:" + k.hash.String()
	}
	return "literal:" + k.hash.String() + ":" + k.types
}

// KeyTuplePositionMapping maps a position of the IN left-hand side tuple
// to an index key column.
type KeyTuplePositionMapping struct {
	TupleIndex int
	KeyIndex   int
}

// Registry holds the prepared sets of one query.
//
// The registry is filled during set preparation and only read afterwards.
// The mutex makes concurrent preparation safe; readers running after
// preparation never contend.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[Key]*Set
	byHash map[ast.TreeHash][]*Set
}

func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[Key]*Set),
		byHash: make(map[ast.TreeHash][]*Set),
	}
}

// Add registers s under key. Registering a second set under the same key
// replaces it for Get, while ByTreeHash keeps both in insertion order.
func (r *Registry) Add(key Key, s *Set) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[key] = s
	r.byHash[key.hash] = append(r.byHash[key.hash], s)
}

// Get returns the set registered under key, or nil.
// A nil registry holds no sets.
func (r *Registry) Get(key Key) *Set {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[key]
}

// ByTreeHash returns every set whose key has the given tree hash, in
// registration order.
func (r *Registry) ByTreeHash(h ast.TreeHash) []*Set {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Set(nil), r.byHash[h]...)
}

// FromSubquery reports whether s is registered under a subquery key.
func (r *Registry) FromSubquery(s *Set) bool {
	if r == nil || s == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, v := range r.byKey {
		if v == s && k.kind == keySubquery {
			return true
		}
	}
	return false
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}
