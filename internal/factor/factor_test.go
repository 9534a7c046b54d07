package factor

import (
	"math"
	"testing"
)

func xyColumns() map[string][]float64 {
	x := make([]float64, 10)
	y := make([]float64, 10)
	for i := range x {
		x[i] = float64(i + 1)
		y[i] = float64(10 - i)
	}
	return map[string][]float64{"x": x, "y": y}
}

func evalAll(t *testing.T, root *Node, cols map[string][]float64, n int) []float64 {
	t.Helper()
	f := NewFactorFromNode(root)
	out := make([]float64, n)
	f.StepBatch(cols, 0, n, out)
	return out
}

func assertClose(t *testing.T, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(got[i]) {
				t.Errorf("row %d: got %v, want NaN", i, got[i])
			}
			continue
		}
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("row %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAddColumns(t *testing.T) {
	cols := xyColumns()
	root, err := NewAdd(NewColumn("x"), NewColumn("y"))
	if err != nil {
		t.Fatal(err)
	}
	if root.ReadyOffset() != 0 {
		t.Errorf("ready_offset = %d, want 0", root.ReadyOffset())
	}
	got := evalAll(t, root, cols, 10)
	want := []float64{11, 11, 11, 11, 11, 11, 11, 11, 11, 11}
	assertClose(t, got, want)
}

func TestRollingSum(t *testing.T) {
	cols := xyColumns()
	root, err := NewSum(3, NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	if root.ReadyOffset() != 2 {
		t.Errorf("ready_offset = %d, want 2", root.ReadyOffset())
	}
	got := evalAll(t, root, cols, 10)
	nan := math.NaN()
	want := []float64{nan, nan, 6, 9, 12, 15, 18, 21, 24, 27}
	assertClose(t, got, want)
}

func TestDelay(t *testing.T) {
	cols := xyColumns()
	root, err := NewDelay(2, NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	if root.ReadyOffset() != 2 {
		t.Errorf("ready_offset = %d, want 2", root.ReadyOffset())
	}
	got := evalAll(t, root, cols, 10)
	nan := math.NaN()
	want := []float64{nan, nan, 1, 2, 3, 4, 5, 6, 7, 8}
	assertClose(t, got, want)
}

func TestLogReturn(t *testing.T) {
	cols := xyColumns()
	root, err := NewLogReturn(1, NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	if root.ReadyOffset() != 1 {
		t.Errorf("ready_offset = %d, want 1", root.ReadyOffset())
	}
	got := evalAll(t, root, cols, 10)
	nan := math.NaN()
	want := []float64{nan, math.Log(2), math.Log(1.5), math.Log(4.0 / 3), math.Log(5.0 / 4),
		math.Log(6.0 / 5), math.Log(7.0 / 6), math.Log(8.0 / 7), math.Log(9.0 / 8), math.Log(10.0 / 9)}
	assertClose(t, got, want)
}

func TestGreaterThan(t *testing.T) {
	cols := xyColumns()
	root, err := NewGt(NewColumn("x"), NewLiteral(5))
	if err != nil {
		t.Fatal(err)
	}
	got := evalAll(t, root, cols, 10)
	want := []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}
	assertClose(t, got, want)
}

func TestIfSelectsBranch(t *testing.T) {
	cols := xyColumns()
	cond, err := NewGt(NewColumn("x"), NewLiteral(5))
	if err != nil {
		t.Fatal(err)
	}
	root, err := NewIf(cond, NewColumn("y"), NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	got := evalAll(t, root, cols, 10)
	want := []float64{1, 2, 3, 4, 5, 5, 4, 3, 2, 1}
	assertClose(t, got, want)
}

func TestQuantileLowerInterpolation(t *testing.T) {
	cols := xyColumns()
	root, err := NewQuantile(4, 0.5, NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	if root.ReadyOffset() != 3 {
		t.Errorf("ready_offset = %d, want 3", root.ReadyOffset())
	}
	got := evalAll(t, root, cols, 10)
	nan := math.NaN()
	want := []float64{nan, nan, nan, 2, 3, 4, 5, 6, 7, 8}
	assertClose(t, got, want)
}

func TestCorrAntiCorrelated(t *testing.T) {
	cols := xyColumns()
	root, err := NewCorr(10, NewColumn("x"), NewColumn("y"))
	if err != nil {
		t.Fatal(err)
	}
	if root.ReadyOffset() != 9 {
		t.Errorf("ready_offset = %d, want 9", root.ReadyOffset())
	}
	got := evalAll(t, root, cols, 10)
	if math.Abs(got[9]-(-1.0)) > 1e-9 {
		t.Errorf("last element = %v, want -1.0", got[9])
	}
}

func TestPowExponentFirst(t *testing.T) {
	cols := map[string][]float64{"x": {1, 2, 3, 4}}
	root, err := NewPow(NewLiteral(3), NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	got := evalAll(t, root, cols, 4)
	want := []float64{1, 8, 27, 64}
	assertClose(t, got, want)
}

func TestDivByZeroIsNaN(t *testing.T) {
	cols := map[string][]float64{"x": {1, 2, 3}, "z": {1, 0, -1}}
	root, err := NewDiv(NewColumn("x"), NewColumn("z"))
	if err != nil {
		t.Fatal(err)
	}
	got := evalAll(t, root, cols, 3)
	if got[0] != 1 {
		t.Errorf("row 0 = %v, want 1", got[0])
	}
	if !math.IsNaN(got[1]) {
		t.Errorf("row 1 = %v, want NaN", got[1])
	}
	if got[2] != -3 {
		t.Errorf("row 2 = %v, want -3", got[2])
	}
}

func TestResetMatchesFreshClone(t *testing.T) {
	cols := xyColumns()
	root, err := NewMean(3, NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	f := NewFactorFromNode(root)
	out1 := make([]float64, 10)
	f.StepBatch(cols, 0, 10, out1)

	f.Reset()
	out2 := make([]float64, 10)
	f.StepBatch(cols, 0, 10, out2)

	fresh := f.Clone()
	fresh.Reset()
	out3 := make([]float64, 10)
	fresh.StepBatch(cols, 0, 10, out3)

	assertClose(t, out2, out1)
	assertClose(t, out3, out1)
}

func TestRoundTripToString(t *testing.T) {
	root, err := NewSum(3, NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	s := root.String()
	if s != "(TSSum 3 :x)" {
		t.Errorf("String() = %q, want (TSSum 3 :x)", s)
	}
}

func TestArgMin(t *testing.T) {
	cols := map[string][]float64{"x": {3, 1, 4, 1, 5, 9, 2, 6}}
	root, err := NewArgMin(3, NewColumn("x"))
	if err != nil {
		t.Fatal(err)
	}
	got := evalAll(t, root, cols, 8)
	nan := math.NaN()
	want := []float64{nan, nan, 1, 0, 1, 0, 2, 1}
	assertClose(t, got, want)
}
