// Package evaluator drives many factors over one dataset's batch stream,
// collecting each factor's output column or its failure reason without
// re-reading the dataset, then applies the trim/predicate policies.
package evaluator

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/dovahcrow/factor-expr/internal/dataframe"
	"github.com/dovahcrow/factor-expr/internal/errors"
	"github.com/dovahcrow/factor-expr/internal/factor"
)

// FactorResult is one factor's contribution to a dataset's output table:
// either a full-length column, or a failure reason with an all-NaN column.
type FactorResult struct {
	Name   string
	Data   []float64
	Failed bool
	Reason string
}

// Table is one dataset's evaluation result: an optional passthrough index
// column plus one column per input factor, in the caller's order.
type Table struct {
	Rows        int
	IndexName   string
	IndexValues []string
	Factors     []FactorResult
}

// Options configures one dataset's evaluation.
type Options struct {
	BatchSize    int
	NFactorJobs  int
	Trim         bool
	Predicate    *factor.Factor
	IndexCol     string
}

// Evaluate runs factors (already cloned for this dataset by the caller, so
// their state is fresh and independent of any other dataset) over ds,
// returning one Table. A failing predicate aborts the whole dataset; a
// failing factor only marks that factor failed, and its siblings proceed.
func Evaluate(ctx context.Context, ds dataframe.Dataset, factors []*factor.Factor, opts Options) (*Table, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 40960
	}
	nFactorJobs := opts.NFactorJobs
	if nFactorJobs <= 0 {
		nFactorJobs = 1
	}

	if opts.Predicate != nil {
		if missing := missingColumn(ds, opts.Predicate); missing != "" {
			return nil, errors.NewPredicateError(errors.NewSchemaError(missing))
		}
	}

	failed := make([]bool, len(factors))
	reasons := make([]string, len(factors))
	for i, f := range factors {
		if missing := missingColumn(ds, f); missing != "" {
			failed[i] = true
			reasons[i] = errors.NewSchemaError(missing).Error()
		}
	}

	needed := unionColumns(factors, failed, opts.Predicate)
	it, err := ds.OpenBatches(needed, batchSize)
	if err != nil {
		return nil, errors.NewIOError(ds.Name(), err)
	}

	n := ds.RowCount()
	outputs := make([][]float64, len(factors))
	for i := range outputs {
		outputs[i] = make([]float64, n)
	}
	var predOut []float64
	if opts.Predicate != nil {
		predOut = make([]float64, n)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, done, err := it.Next()
		if err != nil {
			return nil, errors.NewIOError(ds.Name(), err)
		}
		if done {
			break
		}

		if opts.Predicate != nil {
			if err := stepOne(opts.Predicate, batch, predOut); err != nil {
				return nil, errors.NewPredicateError(err)
			}
		}

		if err := stepFactors(ctx, factors, batch, outputs, failed, reasons, nFactorJobs); err != nil {
			return nil, err
		}
	}

	for i, f := range failed {
		if f {
			fillNaN(outputs[i])
		}
	}

	lo, hi := 0, n
	if opts.Trim {
		lo = trimOffset(factors, failed)
	}

	var mask []bool
	if opts.Predicate != nil {
		mask = make([]bool, n)
		for i := lo; i < hi; i++ {
			mask[i] = isTruthy(predOut[i])
		}
	}

	results := make([]FactorResult, len(factors))
	for i, f := range factors {
		data := filterRows(outputs[i][lo:hi], mask, lo)
		results[i] = FactorResult{Name: f.String(), Data: data, Failed: failed[i], Reason: reasons[i]}
	}

	table := &Table{Rows: rowsAfterFilter(hi-lo, mask, lo), Factors: results}
	if opts.IndexCol != "" {
		idx, err := ds.IndexColumn(opts.IndexCol)
		if err != nil {
			return nil, err
		}
		table.IndexName = opts.IndexCol
		table.IndexValues = filterStrings(idx.Values[lo:hi], mask, lo)
	}
	return table, nil
}

func stepOne(f *factor.Factor, batch dataframe.Batch, out []float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewComputeError(fmt.Sprintf("panic stepping factor %s: %v", f.String(), r))
		}
	}()
	f.StepBatch(batch.Columns, batch.Lo, batch.Hi, out[batch.Lo:batch.Hi])
	return nil
}

// stepFactors advances every factor over one batch's row range. With
// nFactorJobs > 1 each factor runs on its own goroutine; the batch is
// complete only once every factor has finished, so output is identical
// regardless of worker count (no factor observes another's state).
func stepFactors(ctx context.Context, factors []*factor.Factor, batch dataframe.Batch, outputs [][]float64, failed []bool, reasons []string, nFactorJobs int) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(nFactorJobs)
	for i, f := range factors {
		i, f := i, f
		g.Go(func() error {
			if failed[i] {
				return nil
			}
			if err := stepOne(f, batch, outputs[i]); err != nil {
				failed[i] = true
				reasons[i] = err.Error()
			}
			return nil
		})
	}
	return g.Wait()
}

// missingColumn returns the first :column f references that ds does not
// carry, or "" if every referenced column exists.
func missingColumn(ds dataframe.Dataset, f *factor.Factor) string {
	for c := range f.ColumnsNeeded() {
		if !ds.HasColumn(c) {
			return c
		}
	}
	return ""
}

// unionColumns collects the columns actually needed off the dataset: every
// column referenced by a non-failed factor, plus the predicate's (already
// verified present — a missing predicate column is dataset-fatal before
// this is ever called). A failed factor's columns are excluded so a
// SchemaError on one factor never causes the reader to be asked for a
// column that doesn't exist.
func unionColumns(factors []*factor.Factor, failed []bool, predicate *factor.Factor) []string {
	set := make(map[string]struct{})
	for i, f := range factors {
		if failed[i] {
			continue
		}
		for c := range f.ColumnsNeeded() {
			set[c] = struct{}{}
		}
	}
	if predicate != nil {
		for c := range predicate.ColumnsNeeded() {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// trimOffset is the largest ready_offset among factors that did not fail;
// a failed factor's (meaningless) ready_offset never extends the trim.
func trimOffset(factors []*factor.Factor, failed []bool) int {
	max := 0
	for i, f := range factors {
		if failed[i] {
			continue
		}
		if r := f.ReadyOffset(); r > max {
			max = r
		}
	}
	return max
}

func fillNaN(data []float64) {
	for i := range data {
		data[i] = math.NaN()
	}
}

func isTruthy(x float64) bool {
	return !math.IsNaN(x) && x > 0
}

// filterRows keeps rows from data (already offset by lo) whose absolute
// row index lo+i is truthy in mask; with no mask, it returns data as-is.
func filterRows(data []float64, mask []bool, lo int) []float64 {
	if mask == nil {
		return data
	}
	out := make([]float64, 0, len(data))
	for i, v := range data {
		if mask[lo+i] {
			out = append(out, v)
		}
	}
	return out
}

func filterStrings(data []string, mask []bool, lo int) []string {
	if mask == nil {
		return data
	}
	out := make([]string, 0, len(data))
	for i, v := range data {
		if mask[lo+i] {
			out = append(out, v)
		}
	}
	return out
}

func rowsAfterFilter(n int, mask []bool, lo int) int {
	if mask == nil {
		return n
	}
	count := 0
	for i := 0; i < n; i++ {
		if mask[lo+i] {
			count++
		}
	}
	return count
}
