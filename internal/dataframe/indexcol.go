package dataframe

// IndexColumn is a column echoed through a replay verbatim rather than fed
// to any factor — typically a timestamp or row id. Unlike Column it is not
// restricted to float64, since index_col values are never computed on, only
// passed through (spec §6's "index_col ... to echo through verbatim").
// Adapted from the general-purpose, arbitrarily-typed Series down to the
// one thing a passthrough column needs: its raw string cell values.
type IndexColumn struct {
	Name   string
	Values []string
}

// Slice returns the [lo, hi) row range, sharing the backing array.
func (c IndexColumn) Slice(lo, hi int) IndexColumn {
	return IndexColumn{Name: c.Name, Values: c.Values[lo:hi]}
}

// Len reports the column's row count.
func (c IndexColumn) Len() int { return len(c.Values) }
