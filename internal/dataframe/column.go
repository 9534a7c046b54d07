// Package dataframe provides the engine's columnar data types: a typed
// numeric Column, a row-range Batch and the Dataset reader abstraction
// batch evaluators pull from.
package dataframe

// Column is a named sequence of float64 scalars, the engine's only scalar
// type (spec Non-goal: no non-numeric columns). Adapted from a general
// N-dimensional NDArray down to the 1-D shape this domain actually needs.
type Column struct {
	Name string
	Data []float64
}

// NewColumn wraps data under name without copying.
func NewColumn(name string, data []float64) Column {
	return Column{Name: name, Data: data}
}

// Len reports the column's row count.
func (c Column) Len() int { return len(c.Data) }

// Slice returns the [lo, hi) row range as a new Column sharing the
// backing array (no copy).
func (c Column) Slice(lo, hi int) Column {
	return Column{Name: c.Name, Data: c.Data[lo:hi]}
}

// Zeros allocates a Column of n rows, all zero.
func Zeros(name string, n int) Column {
	return Column{Name: name, Data: make([]float64, n)}
}
