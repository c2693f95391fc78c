// Package column provides the column values attached to expression nodes
// and the Block used as the constant table of an analysis pass.
package column
