package scheduler

import (
	"context"
	"testing"

	"github.com/dovahcrow/factor-expr/internal/dataframe"
	"github.com/dovahcrow/factor-expr/internal/factor"
)

func makeDataset(name string, n int) *dataframe.MemoryDataset {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i + 1)
	}
	return dataframe.NewMemoryDataset(name, map[string][]float64{"x": x})
}

func TestRunOrderedMatchesInputOrder(t *testing.T) {
	datasets := []dataframe.Dataset{makeDataset("a", 5), makeDataset("b", 5), makeDataset("c", 5)}
	root, err := factor.NewSum(2, factor.NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	f := factor.NewFactorFromNode(root)

	out := Run(context.Background(), datasets, []*factor.Factor{f}, nil, Options{NDataJobs: 2, BatchSize: 2})

	var names []string
	for r := range out {
		if r.Err != nil {
			t.Fatalf("dataset %s failed: %v", r.Name, r.Err)
		}
		names = append(names, r.Name)
	}
	want := []string{"a", "b", "c"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("result %d = %q, want %q", i, names[i], name)
		}
	}
}

func TestRunClonesFactorPerDataset(t *testing.T) {
	datasets := []dataframe.Dataset{makeDataset("a", 10), makeDataset("b", 10)}
	root, err := factor.NewSum(3, factor.NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	f := factor.NewFactorFromNode(root)

	out := Run(context.Background(), datasets, []*factor.Factor{f}, nil, Options{NDataJobs: 2, BatchSize: 4})
	count := 0
	for r := range out {
		if r.Err != nil {
			t.Fatalf("unexpected error: %v", r.Err)
		}
		if r.Table.Factors[0].Data[2] != 6 {
			t.Errorf("dataset %s: row 2 = %v, want 6 (state must not leak between datasets)", r.Name, r.Table.Factors[0].Data[2])
		}
		count++
	}
	if count != 2 {
		t.Fatalf("got %d results, want 2", count)
	}
}
