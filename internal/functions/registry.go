package functions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/keyprune/internal/types"
)

// Base describes a function: how its result type follows from its argument
// types and, for foldable functions, how to compute it on constants.
type Base struct {
	Name string

	// MinArgs and MaxArgs bound the argument count. MaxArgs < 0 means
	// variadic.
	MinArgs, MaxArgs int

	// ReturnType computes the result type from non-nullable argument types.
	ReturnType func(args []types.DataType) (types.DataType, error)

	// Execute computes the result from non-null argument values. Nil means
	// the function is never folded.
	Execute func(args []types.Field) (types.Field, error)

	// KeepNulls disables the default null handling: nullable arguments are
	// passed to ReturnType as is and NULL values reach Execute.
	KeepNulls bool
}

// CanFold reports whether calls with all-constant arguments may be replaced
// by their result.
func (b *Base) CanFold() bool {
	return b.Execute != nil
}

// ResultType validates the argument count and returns the result type.
// Unless KeepNulls is set, any nullable argument makes the result nullable.
func (b *Base) ResultType(args []types.DataType) (types.DataType, error) {
	if err := b.checkArity(len(args)); err != nil {
		return nil, err
	}
	if b.KeepNulls {
		return b.ReturnType(args)
	}

	nullable := false
	stripped := make([]types.DataType, len(args))
	for i, a := range args {
		if types.IsNullable(a) {
			nullable = true
		}
		stripped[i] = types.RemoveNullable(a)
	}
	t, err := b.ReturnType(stripped)
	if err != nil {
		return nil, err
	}
	if nullable {
		return types.MakeNullable(t), nil
	}
	return t, nil
}

// Fold computes the function on constant arguments. Unless KeepNulls is
// set, a NULL argument yields NULL.
func (b *Base) Fold(args []types.Field) (types.Field, error) {
	if b.Execute == nil {
		return types.Field{}, fmt.Errorf("function %s cannot be folded", b.Name)
	}
	if err := b.checkArity(len(args)); err != nil {
		return types.Field{}, err
	}
	if !b.KeepNulls {
		for _, a := range args {
			if a.IsNull() {
				return types.Null(), nil
			}
		}
	}
	return b.Execute(args)
}

func (b *Base) checkArity(n int) error {
	if n < b.MinArgs || (b.MaxArgs >= 0 && n > b.MaxArgs) {
		if b.MinArgs == b.MaxArgs {
			return fmt.Errorf("function %s expects %d arguments, got %d", b.Name, b.MinArgs, n)
		}
		return fmt.Errorf("function %s expects at least %d arguments, got %d", b.Name, b.MinArgs, n)
	}
	return nil
}

// Registry maps names to function bases.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Base
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Base)}
}

// Register adds b, replacing any function with the same name.
func (r *Registry) Register(b *Base) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[b.Name] = b
}

// Lookup returns the function named name.
func (r *Registry) Lookup(name string) (*Base, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byName[name]
	return b, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry of built-in functions.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
