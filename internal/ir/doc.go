// Package ir provides the persisted description of a table's sorting key.
//
// A TableSpec is what the catalog stores and what CUE schemas compile to.
// Its identity is a content hash over canonical JSON, so re-importing an
// unchanged schema is a no-op.
//
// Key constraints:
//   - no floats in canonical values
//   - object keys ordered by UTF-16 code units
//   - strings NFC normalized before hashing
package ir
