package evaluator

import (
	"context"
	"math"
	"testing"

	"github.com/dovahcrow/factor-expr/internal/dataframe"
	"github.com/dovahcrow/factor-expr/internal/factor"
)

func xyDataset(n int) *dataframe.MemoryDataset {
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i + 1)
		y[i] = float64(n - i)
	}
	return dataframe.NewMemoryDataset("xy", map[string][]float64{"x": x, "y": y})
}

func mustFactor(t *testing.T, root *factor.Node, err error) *factor.Factor {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
	return factor.NewFactorFromNode(root)
}

func TestEvaluateBasic(t *testing.T) {
	ds := xyDataset(10)
	sum := mustFactor(t, factor.NewSum(3, factor.NewColumn("x")))
	add := mustFactor(t, factor.NewAdd(factor.NewColumn("x"), factor.NewColumn("y")))

	table, err := Evaluate(context.Background(), ds, []*factor.Factor{sum, add}, Options{BatchSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if table.Rows != 10 {
		t.Fatalf("Rows = %d, want 10", table.Rows)
	}
	if table.Factors[1].Data[0] != 11 {
		t.Errorf("add[0] = %v, want 11", table.Factors[1].Data[0])
	}
	if !math.IsNaN(table.Factors[0].Data[0]) {
		t.Errorf("sum[0] should be NaN before ready_offset")
	}
}

func TestEvaluateTrim(t *testing.T) {
	ds := xyDataset(10)
	sum := mustFactor(t, factor.NewSum(3, factor.NewColumn("x"))) // ready_offset=2
	table, err := Evaluate(context.Background(), ds, []*factor.Factor{sum}, Options{BatchSize: 4, Trim: true})
	if err != nil {
		t.Fatal(err)
	}
	if table.Rows != 8 {
		t.Fatalf("Rows after trim = %d, want 8", table.Rows)
	}
	if table.Factors[0].Data[0] != 6 {
		t.Errorf("first row after trim = %v, want 6", table.Factors[0].Data[0])
	}
}

func TestEvaluatePredicate(t *testing.T) {
	ds := xyDataset(10)
	x := factor.NewFactorFromNode(factor.NewColumn("x"))
	pred := mustFactor(t, factor.NewGt(factor.NewColumn("x"), factor.NewLiteral(5)))

	table, err := Evaluate(context.Background(), ds, []*factor.Factor{x}, Options{BatchSize: 4, Predicate: pred})
	if err != nil {
		t.Fatal(err)
	}
	if table.Rows != 5 {
		t.Fatalf("Rows after predicate = %d, want 5", table.Rows)
	}
	if table.Factors[0].Data[0] != 6 {
		t.Errorf("first surviving row = %v, want 6", table.Factors[0].Data[0])
	}
}

func TestEvaluateMissingColumnFactorFailsOthersSucceed(t *testing.T) {
	ds := dataframe.NewMemoryDataset("d", map[string][]float64{"x": {1, 2, 3}})
	ok := factor.NewFactorFromNode(factor.NewColumn("x"))
	missing := factor.NewFactorFromNode(factor.NewColumn("z")) // "z" is absent from ds

	table, err := Evaluate(context.Background(), ds, []*factor.Factor{ok, missing}, Options{BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	if table.Factors[0].Failed {
		t.Errorf("factor referencing known column x should not fail")
	}
	if table.Factors[0].Data[0] != 1 {
		t.Errorf("ok[0] = %v, want 1", table.Factors[0].Data[0])
	}

	if !table.Factors[1].Failed {
		t.Fatalf("factor referencing missing column z should fail")
	}
	if table.Factors[1].Reason == "" {
		t.Errorf("failed factor should carry a SchemaError reason")
	}
	for i, v := range table.Factors[1].Data {
		if !math.IsNaN(v) {
			t.Errorf("failed factor row %d = %v, want NaN", i, v)
		}
	}
}

func TestEvaluateFactorParallelDeterministic(t *testing.T) {
	ds := xyDataset(50)
	f1 := mustFactor(t, factor.NewSum(5, factor.NewColumn("x")))
	serial, err := Evaluate(context.Background(), ds, []*factor.Factor{f1.Clone()}, Options{BatchSize: 7, NFactorJobs: 1})
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := Evaluate(context.Background(), ds, []*factor.Factor{f1.Clone()}, Options{BatchSize: 7, NFactorJobs: 4})
	if err != nil {
		t.Fatal(err)
	}
	for i := range serial.Factors[0].Data {
		a, b := serial.Factors[0].Data[i], parallel.Factors[0].Data[i]
		if math.IsNaN(a) != math.IsNaN(b) {
			t.Fatalf("row %d: NaN mismatch", i)
		}
		if !math.IsNaN(a) && a != b {
			t.Errorf("row %d: serial=%v parallel=%v", i, a, b)
		}
	}
}

func TestIndexColumnPassthrough(t *testing.T) {
	ds := xyDataset(5)
	col := factor.NewFactorFromNode(factor.NewColumn("x"))
	table, err := Evaluate(context.Background(), ds, []*factor.Factor{col}, Options{BatchSize: 2, IndexCol: "y"})
	if err != nil {
		t.Fatal(err)
	}
	if table.IndexName != "y" {
		t.Errorf("IndexName = %q, want y", table.IndexName)
	}
	if len(table.IndexValues) != 5 {
		t.Errorf("IndexValues len = %d, want 5", len(table.IndexValues))
	}
}
