// Package keydesc describes the sorting key of a table: its element
// expressions, their canonical column names and their types.
package keydesc
