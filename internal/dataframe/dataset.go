package dataframe

// Batch is a contiguous row-slice [Lo, Hi) of a dataset's requested
// columns, as delivered by a BatchIterator.
type Batch struct {
	Lo, Hi  int
	Columns map[string][]float64
}

// BatchIterator yields a dataset's batches in file order with no gaps.
// Next returns (batch, false, nil) for every batch, the final one included;
// the second return, done, is true once there is nothing left to deliver.
type BatchIterator interface {
	Next() (batch Batch, done bool, err error)
}

// Dataset is the reader abstraction the batch evaluator pulls from: a row
// count plus a batch iterator over a requested subset of column names.
// Implementers may back this by any columnar file format or an in-memory
// table (spec §6's "Input file contract").
type Dataset interface {
	Name() string
	RowCount() int
	// HasColumn reports whether the dataset carries the named column, so
	// callers can detect a missing :column reference before ever opening
	// a batch iterator over it.
	HasColumn(name string) bool
	OpenBatches(columns []string, batchSize int) (BatchIterator, error)
	// IndexColumn returns the named column's raw values for verbatim
	// passthrough, without being fed to any factor.
	IndexColumn(name string) (IndexColumn, error)
}

// MemoryDataset is an in-memory Dataset, the simplest Dataset
// implementation and the one tests build against directly.
type MemoryDataset struct {
	name    string
	columns map[string][]float64
	rows    int
}

// NewMemoryDataset wraps already-loaded columns, all of which must share
// the same length.
func NewMemoryDataset(name string, columns map[string][]float64) *MemoryDataset {
	rows := 0
	for _, c := range columns {
		rows = len(c)
		break
	}
	return &MemoryDataset{name: name, columns: columns, rows: rows}
}

func (d *MemoryDataset) Name() string  { return d.name }
func (d *MemoryDataset) RowCount() int { return d.rows }

func (d *MemoryDataset) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

func (d *MemoryDataset) OpenBatches(columns []string, batchSize int) (BatchIterator, error) {
	selected := make(map[string][]float64, len(columns))
	for _, name := range columns {
		col, ok := d.columns[name]
		if !ok {
			return nil, errColumnNotFound(name)
		}
		selected[name] = col
	}
	return &memoryBatchIterator{columns: selected, rows: d.rows, batchSize: batchSize}, nil
}

func (d *MemoryDataset) IndexColumn(name string) (IndexColumn, error) {
	col, ok := d.columns[name]
	if !ok {
		return IndexColumn{}, errColumnNotFound(name)
	}
	values := make([]string, len(col))
	for i, v := range col {
		values[i] = formatFloat(v)
	}
	return IndexColumn{Name: name, Values: values}, nil
}

type memoryBatchIterator struct {
	columns   map[string][]float64
	rows      int
	batchSize int
	pos       int
}

func (it *memoryBatchIterator) Next() (Batch, bool, error) {
	if it.pos >= it.rows {
		return Batch{}, true, nil
	}
	hi := it.pos + it.batchSize
	if hi > it.rows {
		hi = it.rows
	}
	cols := make(map[string][]float64, len(it.columns))
	for name, data := range it.columns {
		cols[name] = data[it.pos:hi]
	}
	b := Batch{Lo: it.pos, Hi: hi, Columns: cols}
	it.pos = hi
	return b, false, nil
}
