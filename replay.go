// Package factorexpr is the public facade over the factor engine: parse a
// factor string, then replay one or more factors across one or more
// datasets, with an optional predicate, trim policy and progress reporting.
package factorexpr

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/dovahcrow/factor-expr/internal/dataframe"
	"github.com/dovahcrow/factor-expr/internal/evaluator"
	"github.com/dovahcrow/factor-expr/internal/factor"
	"github.com/dovahcrow/factor-expr/internal/parser"
	"github.com/dovahcrow/factor-expr/internal/scheduler"
)

// Factor is a parsed, ready-to-evaluate factor expression.
type Factor = factor.Factor

// Table is one dataset's evaluation result.
type Table = evaluator.Table

// Dataset is the reader abstraction replay pulls batches from.
type Dataset = dataframe.Dataset

// Parse builds a Factor from a prefix s-expression factor string.
func Parse(source string) (*Factor, error) {
	return parser.ParseFactor(source)
}

// NewMemoryDataset wraps already-loaded columns as a Dataset, useful for
// tests and for callers that already hold their data in memory.
func NewMemoryDataset(name string, columns map[string][]float64) Dataset {
	return dataframe.NewMemoryDataset(name, columns)
}

// OpenCSVDataset opens a CSV file as a Dataset, the engine's reference
// on-disk file format (spec §6: "implementers may back this by any
// columnar file format").
func OpenCSVDataset(path string) (Dataset, error) {
	return dataframe.OpenCSVDataset(path)
}

// ReplayOptions configures a replay call. Zero-value options apply spec
// defaults (BatchSize 40960, NDataJobs and NFactorJobs 1).
type ReplayOptions struct {
	BatchSize   int
	NDataJobs   int
	NFactorJobs int
	Trim        bool
	Predicate   *Factor
	IndexCol    string
	Verbose     bool
	Unordered   bool
}

func (o ReplayOptions) schedulerOptions() scheduler.Options {
	return scheduler.Options{
		NDataJobs:   o.NDataJobs,
		NFactorJobs: o.NFactorJobs,
		BatchSize:   o.BatchSize,
		Trim:        o.Trim,
		IndexCol:    o.IndexCol,
		Unordered:   o.Unordered,
	}
}

// Replay evaluates factors over every dataset and blocks until every
// dataset has either produced a Table or failed. Results are returned in
// the order datasets were given (in completion order when opts.Unordered
// is set), wrapping each into (name, table, error).
func Replay(ctx context.Context, datasets []Dataset, factors []*Factor, opts ReplayOptions) ([]scheduler.DatasetResult, error) {
	out := scheduler.Run(ctx, datasets, factors, opts.Predicate, opts.schedulerOptions())

	results := make([]scheduler.DatasetResult, 0, len(datasets))
	for r := range out {
		if opts.Verbose {
			logVerbose(r)
		}
		results = append(results, r)
	}
	return results, nil
}

// ReplayIter is the streaming variant of Replay: it returns immediately
// with a channel that yields one DatasetResult per dataset. With Unordered
// set, each result is sent as its dataset completes; otherwise results are
// sent in input order, and only after every dataset has finished.
func ReplayIter(ctx context.Context, datasets []Dataset, factors []*Factor, opts ReplayOptions) <-chan scheduler.DatasetResult {
	return scheduler.Run(ctx, datasets, factors, opts.Predicate, opts.schedulerOptions())
}

func logVerbose(r scheduler.DatasetResult) {
	if r.Err != nil {
		fmt.Printf("[factorexpr] dataset %s failed: %v\n", r.Name, r.Err)
		return
	}
	failedCount := 0
	for _, f := range r.Table.Factors {
		if f.Failed {
			failedCount++
		}
	}
	fmt.Printf("[factorexpr] dataset %s: %s rows, %d/%d factors succeeded\n",
		r.Name, humanize.Comma(int64(r.Table.Rows)), len(r.Table.Factors)-failedCount, len(r.Table.Factors))
}
