// Package compiler turns CUE table schemas into ir.TableSpec values and
// validates them.
package compiler
