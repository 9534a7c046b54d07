package dataframe

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dovahcrow/factor-expr/internal/errors"
)

// CSVDataset is a Dataset backed by a single CSV file, loaded eagerly into
// memory. Adapted from the teacher's ReadCSV (header row, encoding/csv,
// column-major store); no CSV library appears anywhere in the example
// pack, so the standard library's encoding/csv is used directly rather
// than introducing an unrelated dependency.
type CSVDataset struct {
	name    string
	columns map[string][]float64
	raw     map[string][]string
	rows    int
}

// OpenCSVDataset reads path's header row and all data rows, parsing every
// non-header cell as float64 (empty cells and parse failures become NaN,
// the engine's uniform missing-value sentinel). The dataset's Name is the
// file's base name without extension.
func OpenCSVDataset(path string) (*CSVDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewIOError(path, err)
	}
	if len(records) == 0 {
		return &CSVDataset{name: datasetName(path), columns: map[string][]float64{}, raw: map[string][]string{}}, nil
	}

	headers := records[0]
	rows := len(records) - 1
	columns := make(map[string][]float64, len(headers))
	raw := make(map[string][]string, len(headers))
	for _, h := range headers {
		columns[h] = make([]float64, rows)
		raw[h] = make([]string, rows)
	}

	for i, record := range records[1:] {
		for j, h := range headers {
			if j >= len(record) {
				continue
			}
			cell := record[j]
			raw[h][i] = cell
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				columns[h][i] = nanValue
				continue
			}
			columns[h][i] = v
		}
	}

	return &CSVDataset{name: datasetName(path), columns: columns, raw: raw, rows: rows}, nil
}

func datasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (d *CSVDataset) Name() string  { return d.name }
func (d *CSVDataset) RowCount() int { return d.rows }

func (d *CSVDataset) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

func (d *CSVDataset) OpenBatches(columns []string, batchSize int) (BatchIterator, error) {
	selected := make(map[string][]float64, len(columns))
	for _, name := range columns {
		col, ok := d.columns[name]
		if !ok {
			return nil, errors.NewSchemaError(name)
		}
		selected[name] = col
	}
	return &memoryBatchIterator{columns: selected, rows: d.rows, batchSize: batchSize}, nil
}

func (d *CSVDataset) IndexColumn(name string) (IndexColumn, error) {
	values, ok := d.raw[name]
	if !ok {
		return IndexColumn{}, errors.NewSchemaError(name)
	}
	return IndexColumn{Name: name, Values: values}, nil
}
