package sets

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/keyprune/internal/types"
)

// Set is a prepared membership set: the materialized right-hand side of an
// IN predicate.
//
// A set is filled with Insert and becomes ready once Finish is called.
// Sets that are still being filled must be treated as absent by readers.
type Set struct {
	ID uuid.UUID

	elementTypes []types.DataType
	rows         map[string]struct{}
	created      bool
}

// Option configures a Set at construction.
type Option func(*Set)

// WithID sets a fixed identifier instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(s *Set) { s.ID = id }
}

// WithIDSource draws the identifier from next, once per set.
func WithIDSource(next func() uuid.UUID) Option {
	return func(s *Set) { s.ID = next() }
}

// New creates an empty, not yet created set with one element type per
// tuple position.
func New(elementTypes []types.DataType, opts ...Option) *Set {
	s := &Set{
		ID:           uuid.New(),
		elementTypes: append([]types.DataType(nil), elementTypes...),
		rows:         make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ElementTypes returns the type of each tuple position.
func (s *Set) ElementTypes() []types.DataType {
	return append([]types.DataType(nil), s.elementTypes...)
}

// Insert adds one row. The row must have one value per element type.
// Inserting into a finished set is an error.
func (s *Set) Insert(row ...types.Field) error {
	if s.created {
		return fmt.Errorf("set %s: insert after finish", s.ID)
	}
	if len(row) != len(s.elementTypes) {
		return fmt.Errorf("set %s: row has %d values, want %d", s.ID, len(row), len(s.elementTypes))
	}
	s.rows[rowKey(row)] = struct{}{}
	return nil
}

// Finish marks the set as fully created.
func (s *Set) Finish() {
	s.created = true
}

// IsCreated reports whether the set has been fully built.
func (s *Set) IsCreated() bool {
	return s.created
}

// Len returns the number of distinct rows.
func (s *Set) Len() int {
	return len(s.rows)
}

// Contains reports whether row is a member of the set.
func (s *Set) Contains(row ...types.Field) bool {
	if len(row) != len(s.elementTypes) {
		return false
	}
	_, ok := s.rows[rowKey(row)]
	return ok
}

// AreTypesEqual reports whether the element type at position i matches t.
// Nullability is ignored on both sides: a set built from non-null literals
// serves a nullable key column and vice versa.
func (s *Set) AreTypesEqual(i int, t types.DataType) bool {
	if i < 0 || i >= len(s.elementTypes) {
		return false
	}
	return types.Equal(types.RemoveNullable(s.elementTypes[i]), types.RemoveNullable(t))
}

func (s *Set) String() string {
	names := make([]string, len(s.elementTypes))
	for i, t := range s.elementTypes {
		names[i] = t.Name()
	}
	state := "building"
	if s.created {
		state = "created"
	}
	return fmt.Sprintf("Set(%s; %d rows; %s)", strings.Join(names, ", "), len(s.rows), state)
}

func rowKey(row []types.Field) string {
	return types.Dump(types.NewTuple(row...))
}
