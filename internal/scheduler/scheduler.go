// Package scheduler runs many datasets through the evaluator concurrently
// (data-parallel), bounding how many are in flight at once, and joins their
// results into an ordered or unordered stream. Factor-parallelism within a
// single dataset is the evaluator's own concern (internal/evaluator); this
// package owns only the across-dataset dimension.
package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dovahcrow/factor-expr/internal/dataframe"
	"github.com/dovahcrow/factor-expr/internal/evaluator"
	"github.com/dovahcrow/factor-expr/internal/factor"
)

// DatasetResult pairs a dataset's name with its evaluated table, or the
// dataset-fatal error that aborted it (SchemaError/PredicateError/IOError).
type DatasetResult struct {
	JobID   string
	Name    string
	Table   *evaluator.Table
	Err     error
	seq     int
}

// Options configures one scheduler run across all datasets.
type Options struct {
	NDataJobs   int
	NFactorJobs int
	BatchSize   int
	Trim        bool
	IndexCol    string
	Unordered   bool
}

// Run evaluates factors (a template cloned once per dataset, so operator
// state never leaks across datasets) over every dataset in datasets,
// holding at most NDataJobs in flight, and streams one DatasetResult per
// dataset on the returned channel. Cancelling ctx drops all in-flight
// dataset workers; partial results are discarded and the channel is closed.
func Run(ctx context.Context, datasets []dataframe.Dataset, factors []*factor.Factor, predicate *factor.Factor, opts Options) <-chan DatasetResult {
	nDataJobs := opts.NDataJobs
	if nDataJobs <= 0 {
		nDataJobs = 1
	}

	out := make(chan DatasetResult, len(datasets))
	sem := make(chan struct{}, nDataJobs)

	go func() {
		defer close(out)
		var wg sync.WaitGroup
		ordered := make([]chan DatasetResult, len(datasets))
		for i := range ordered {
			ordered[i] = make(chan DatasetResult, 1)
		}

		for i, ds := range datasets {
			i, ds := i, ds
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				res := DatasetResult{Name: ds.Name(), Err: ctx.Err(), seq: i}
				if opts.Unordered {
					out <- res
				} else {
					ordered[i] <- res
				}
				close(ordered[i])
				continue
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				res := evaluateOne(ctx, ds, factors, predicate, opts, i)
				if opts.Unordered {
					out <- res
				} else {
					ordered[i] <- res
					close(ordered[i])
				}
			}()
		}

		wg.Wait()
		if !opts.Unordered {
			for _, ch := range ordered {
				if r, ok := <-ch; ok {
					out <- r
				}
			}
		}
	}()

	return out
}

func evaluateOne(ctx context.Context, ds dataframe.Dataset, factors []*factor.Factor, predicate *factor.Factor, opts Options, seq int) DatasetResult {
	jobID := uuid.NewString()

	cloned := make([]*factor.Factor, len(factors))
	for i, f := range factors {
		cloned[i] = f.Clone()
	}
	var clonedPredicate *factor.Factor
	if predicate != nil {
		clonedPredicate = predicate.Clone()
	}

	table, err := evaluator.Evaluate(ctx, ds, cloned, evaluator.Options{
		BatchSize:   opts.BatchSize,
		NFactorJobs: opts.NFactorJobs,
		Trim:        opts.Trim,
		Predicate:   clonedPredicate,
		IndexCol:    opts.IndexCol,
	})

	return DatasetResult{JobID: jobID, Name: ds.Name(), Table: table, Err: err, seq: seq}
}
