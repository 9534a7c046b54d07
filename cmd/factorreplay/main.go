// Command factorreplay parses factor expressions and replays them over one
// or more CSV datasets, printing a small progress line per dataset when
// running against a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	factorexpr "github.com/dovahcrow/factor-expr"
)

var (
	flagFactors     []string
	flagBatchSize   int
	flagNDataJobs   int
	flagNFactorJobs int
	flagTrim        bool
	flagPredicate   string
	flagIndexCol    string
	flagVerbose     bool
)

func main() {
	root := &cobra.Command{
		Use:   "factorreplay [files...]",
		Short: "Replay factor expressions over CSV datasets",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}

	root.Flags().StringArrayVarP(&flagFactors, "factor", "f", nil, "factor expression (repeatable)")
	root.Flags().IntVar(&flagBatchSize, "batch-size", 40960, "rows per batch")
	root.Flags().IntVar(&flagNDataJobs, "data-jobs", 1, "datasets evaluated concurrently")
	root.Flags().IntVar(&flagNFactorJobs, "factor-jobs", 1, "factors stepped concurrently per batch")
	root.Flags().BoolVar(&flagTrim, "trim", false, "drop rows before every kept factor's ready_offset")
	root.Flags().StringVar(&flagPredicate, "predicate", "", "factor expression filtering output rows")
	root.Flags().StringVar(&flagIndexCol, "index-col", "", "column to echo through verbatim")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "print per-dataset progress")
	root.MarkFlagRequired("factor")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	factors := make([]*factorexpr.Factor, 0, len(flagFactors))
	for _, src := range flagFactors {
		f, err := factorexpr.Parse(src)
		if err != nil {
			return fmt.Errorf("parsing factor %q: %w", src, err)
		}
		factors = append(factors, f)
	}

	var predicate *factorexpr.Factor
	if flagPredicate != "" {
		p, err := factorexpr.Parse(flagPredicate)
		if err != nil {
			return fmt.Errorf("parsing predicate %q: %w", flagPredicate, err)
		}
		predicate = p
	}

	datasets := make([]factorexpr.Dataset, 0, len(args))
	for _, path := range args {
		ds, err := factorexpr.OpenCSVDataset(path)
		if err != nil {
			return fmt.Errorf("opening %q: %w", path, err)
		}
		datasets = append(datasets, ds)
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd())

	results, err := factorexpr.Replay(context.Background(), datasets, factors, factorexpr.ReplayOptions{
		BatchSize:   flagBatchSize,
		NDataJobs:   flagNDataJobs,
		NFactorJobs: flagNFactorJobs,
		Trim:        flagTrim,
		Predicate:   predicate,
		IndexCol:    flagIndexCol,
		Verbose:     flagVerbose && !interactive,
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Name, r.Err)
			continue
		}
		if interactive {
			fmt.Printf("%s: %s rows\n", r.Name, humanize.Comma(int64(r.Table.Rows)))
		}
		printTable(r.Table)
	}
	return nil
}

func printTable(t *factorexpr.Table) {
	headers := make([]string, 0, len(t.Factors)+1)
	if t.IndexName != "" {
		headers = append(headers, t.IndexName)
	}
	for _, f := range t.Factors {
		headers = append(headers, f.Name)
	}
	fmt.Println(joinComma(headers))

	for i := 0; i < t.Rows; i++ {
		row := make([]string, 0, len(headers))
		if t.IndexName != "" {
			row = append(row, t.IndexValues[i])
		}
		for _, f := range t.Factors {
			if f.Failed {
				row = append(row, "NaN")
				continue
			}
			row = append(row, formatCell(f.Data[i]))
		}
		fmt.Println(joinComma(row))
	}
}

func joinComma(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}

func formatCell(v float64) string {
	return fmt.Sprintf("%g", v)
}
