package rpn

import (
	"io"
	"log/slog"

	"github.com/roach88/keyprune/internal/column"
	"github.com/roach88/keyprune/internal/sets"
)

// Settings are the query settings index analysis consults.
type Settings struct {
	// TransformNullIn makes NULL IN (NULL) true. Index analysis cannot
	// use IN predicates over nullable keys when it is set.
	TransformNullIn bool `yaml:"transform_null_in" json:"transform_null_in"`

	// UseIndexForInWithSubqueries allows IN with a subquery or table on
	// the right-hand side to be used for index analysis.
	UseIndexForInWithSubqueries bool `yaml:"use_index_for_in_with_subqueries" json:"use_index_for_in_with_subqueries"`
}

// DefaultSettings returns the settings of a fresh query.
func DefaultSettings() Settings {
	return Settings{UseIndexForInWithSubqueries: true}
}

// QueryContext carries the per-query state analysis runs under.
type QueryContext struct {
	Settings Settings
	Logger   *slog.Logger
}

// Log returns the query logger, or a logger that discards everything.
func (q *QueryContext) Log() *slog.Logger {
	if q == nil || q.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return q.Logger
}

// TreeContext is shared by every Node of one analysis pass.
//
// It is built once, before any node is queried, and never modified
// afterwards. Nodes hold it by pointer.
type TreeContext struct {
	query     *QueryContext
	constants *column.Block
	sets      *sets.Registry
}

// NewTreeContext builds the context of an analysis pass. constants and
// prepared may be nil: lookups then report absence.
func NewTreeContext(query *QueryContext, constants *column.Block, prepared *sets.Registry) *TreeContext {
	if query == nil {
		query = &QueryContext{Settings: DefaultSettings()}
	}
	return &TreeContext{query: query, constants: constants, sets: prepared}
}

func (c *TreeContext) QueryContext() *QueryContext { return c.query }

// Constants returns the block of pre-evaluated constant expressions, keyed
// by column name.
func (c *TreeContext) Constants() *column.Block { return c.constants }

// PreparedSets returns the prepared-set registry.
func (c *TreeContext) PreparedSets() *sets.Registry { return c.sets }
