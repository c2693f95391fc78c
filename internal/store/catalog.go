package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/keyprune/internal/ir"
)

// ErrNotFound is returned when a table is not in the catalog.
var ErrNotFound = errors.New("table not found")

// Table is a catalog entry.
type Table struct {
	Spec       ir.TableSpec
	Hash       string
	KeyColumns []KeyColumn
}

// KeyColumn is one element of a stored sorting key.
type KeyColumn struct {
	Position int
	Name     string
	DataType string
}

// TableSummary is one row of ListTables.
type TableSummary struct {
	Name       string `json:"name"`
	Hash       string `json:"spec_hash"`
	SortingKey string `json:"sorting_key"`
}

// WriteTable stores spec, replacing any earlier version of the same table.
// It reports false when the stored spec already has the same hash.
//
// The sorting key is parsed before anything is written; a spec whose key
// does not type against its columns is rejected.
func (s *Store) WriteTable(ctx context.Context, spec ir.TableSpec) (bool, error) {
	hash, err := ir.TableSpecHash(spec)
	if err != nil {
		return false, fmt.Errorf("write table %s: %w", spec.Name, err)
	}
	key, err := spec.Key()
	if err != nil {
		return false, fmt.Errorf("write table %s: %w", spec.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write table %s: %w", spec.Name, err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT spec_hash FROM tables WHERE name = ?`, spec.Name).Scan(&existing)
	switch {
	case err == nil && existing == hash:
		return false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("write table %s: %w", spec.Name, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE name = ?`, spec.Name); err != nil {
		return false, fmt.Errorf("write table %s: %w", spec.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tables (name, spec_hash, sorting_key, legacy_modulo)
		VALUES (?, ?, ?, ?)
	`, spec.Name, hash, spec.SortingKey, spec.LegacyModulo); err != nil {
		return false, fmt.Errorf("write table %s: %w", spec.Name, err)
	}
	for i, c := range spec.Columns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO columns (table_name, position, name, type)
			VALUES (?, ?, ?, ?)
		`, spec.Name, i, c.Name, c.Type); err != nil {
			return false, fmt.Errorf("write table %s: column %s: %w", spec.Name, c.Name, err)
		}
	}
	for i, name := range key.ColumnNames {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO key_columns (table_name, position, column_name, data_type)
			VALUES (?, ?, ?, ?)
		`, spec.Name, i, name, key.DataTypes[i].Name()); err != nil {
			return false, fmt.Errorf("write table %s: key column %s: %w", spec.Name, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write table %s: %w", spec.Name, err)
	}
	return true, nil
}

// ReadTable loads a table by name. It returns ErrNotFound for an unknown
// table.
func (s *Store) ReadTable(ctx context.Context, name string) (*Table, error) {
	t := &Table{Spec: ir.TableSpec{Name: name}}
	err := s.db.QueryRowContext(ctx, `
		SELECT spec_hash, sorting_key, legacy_modulo FROM tables WHERE name = ?
	`, name).Scan(&t.Hash, &t.Spec.SortingKey, &t.Spec.LegacyModulo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read table %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}

	// The store has a single connection, so each result set is drained
	// before the next query.
	if t.Spec.Columns, err = s.readColumns(ctx, name); err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	if t.KeyColumns, err = s.readKeyColumns(ctx, name); err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	return t, nil
}

func (s *Store) readColumns(ctx context.Context, table string) ([]ir.ColumnSpec, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type FROM columns WHERE table_name = ? ORDER BY position ASC
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ir.ColumnSpec
	for rows.Next() {
		var c ir.ColumnSpec
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) readKeyColumns(ctx context.Context, table string) ([]KeyColumn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, column_name, data_type FROM key_columns
		WHERE table_name = ? ORDER BY position ASC
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KeyColumn
	for rows.Next() {
		var k KeyColumn
		if err := rows.Scan(&k.Position, &k.Name, &k.DataType); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// ListTables returns every table ordered by name.
func (s *Store) ListTables(ctx context.Context) ([]TableSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, spec_hash, sorting_key FROM tables ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []TableSummary
	for rows.Next() {
		var ts TableSummary
		if err := rows.Scan(&ts.Name, &ts.Hash, &ts.SortingKey); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// TablesByKeyColumn returns the tables whose sorting key has an element
// with the given canonical name, ordered by table name.
func (s *Store) TablesByKeyColumn(ctx context.Context, columnName string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT table_name FROM key_columns
		WHERE column_name = ? ORDER BY table_name COLLATE BINARY ASC
	`, columnName)
	if err != nil {
		return nil, fmt.Errorf("tables by key column: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("tables by key column: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
