// Package store provides the SQLite-backed sorting-key catalog.
//
// The catalog holds one row per table with:
//   - columns: the typed columns in declaration order
//   - key_columns: the sorting-key elements under their canonical names
//
// A table is identified by name and versioned by the content hash of its
// spec (see ir.TableSpecHash). Writing an unchanged spec is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// All listing queries order by name with BINARY collation so output is
// identical across runs.
package store
