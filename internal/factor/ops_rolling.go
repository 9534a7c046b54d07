package factor

import "github.com/dovahcrow/factor-expr/internal/errors"

// aggReady is the ready_offset rule for window-aggregation rolling
// operators: the window [t-w+1, t] first fully fits the child's own ready
// history once t == child.ready + (w-1).
func aggReady(child *Node, w int) int {
	return child.ready + (w - 1)
}

// lookbackReady is the ready_offset rule for the two operators that need a
// single value w rows back rather than a full window aggregate: x[t-w] only
// exists once t >= child.ready + w.
func lookbackReady(child *Node, w int) int {
	return child.ready + w
}

func newRolling1(k Kind, w int, x *Node, minWindow int) (*Node, error) {
	if err := checkNum(k.String(), x); err != nil {
		return nil, err
	}
	if w < minWindow {
		return nil, errors.NewComputeError(k.String() + ": window too small")
	}
	return &Node{kind: k, children: []*Node{x}, window: w, ready: aggReady(x, w)}, nil
}

// NewSum builds the rolling sum of x over the last w rows.
func NewSum(w int, x *Node) (*Node, error) { return newRolling1(KindSum, w, x, 1) }

// NewMean builds the rolling mean of x over the last w rows.
func NewMean(w int, x *Node) (*Node, error) { return newRolling1(KindMean, w, x, 1) }

// NewMin builds the rolling minimum of x over the last w rows.
func NewMin(w int, x *Node) (*Node, error) { return newRolling1(KindMin, w, x, 1) }

// NewMax builds the rolling maximum of x over the last w rows.
func NewMax(w int, x *Node) (*Node, error) { return newRolling1(KindMax, w, x, 1) }

// NewArgMin builds the offset (within [0, w-1]) of the window's minimum.
func NewArgMin(w int, x *Node) (*Node, error) { return newRolling1(KindArgMin, w, x, 1) }

// NewArgMax builds the offset (within [0, w-1]) of the window's maximum.
func NewArgMax(w int, x *Node) (*Node, error) { return newRolling1(KindArgMax, w, x, 1) }

// NewStd builds the rolling sample standard deviation of x; requires w>=2
// so the (w-1) divisor in the unbiased variance estimate is non-zero.
func NewStd(w int, x *Node) (*Node, error) { return newRolling1(KindStd, w, x, 2) }

// NewSkew builds the rolling bias-corrected sample skewness of x; requires
// w>=3 so the bias-correction factor's (w-2) divisor is non-zero.
func NewSkew(w int, x *Node) (*Node, error) { return newRolling1(KindSkew, w, x, 3) }

// NewRank builds the rolling rank (count strictly less than the newest
// value) of x within its window.
func NewRank(w int, x *Node) (*Node, error) { return newRolling1(KindRank, w, x, 1) }

// NewDelay builds x[t-w]; ready_offset = child.ready_offset + w, since the
// lookback row must itself exist, not merely the window's worth of history.
func NewDelay(w int, x *Node) (*Node, error) {
	if err := checkNum("Delay", x); err != nil {
		return nil, err
	}
	if w < 1 {
		return nil, errors.NewComputeError("Delay: window too small")
	}
	return &Node{kind: KindDelay, children: []*Node{x}, window: w, ready: lookbackReady(x, w)}, nil
}

// NewLogReturn builds ln(x[t]/x[t-w]); NaN whenever either value is <= 0.
func NewLogReturn(w int, x *Node) (*Node, error) {
	if err := checkNum("LogReturn", x); err != nil {
		return nil, err
	}
	if w < 1 {
		return nil, errors.NewComputeError("LogReturn: window too small")
	}
	return &Node{kind: KindLogReturn, children: []*Node{x}, window: w, ready: lookbackReady(x, w)}, nil
}

// NewCorr builds the rolling Pearson correlation of a and b.
func NewCorr(w int, a, b *Node) (*Node, error) {
	if err := checkNum("Corr", a); err != nil {
		return nil, err
	}
	if err := checkNum("Corr", b); err != nil {
		return nil, err
	}
	if w < 2 {
		return nil, errors.NewComputeError("Corr: window too small")
	}
	return &Node{kind: KindCorr, children: []*Node{a, b}, window: w, ready: aggReady2(a, b, w)}, nil
}

func aggReady2(a, b *Node, w int) int {
	r := maxReady(a, b)
	return r + (w - 1)
}

// NewQuantile builds the q-quantile (lower interpolation) of x over its
// window. q is a parse-time literal in [0, 1].
func NewQuantile(w int, q float64, x *Node) (*Node, error) {
	if err := checkNum("Quantile", x); err != nil {
		return nil, err
	}
	if w < 1 {
		return nil, errors.NewComputeError("Quantile: window too small")
	}
	if q < 0 || q > 1 {
		return nil, errors.NewParseError("Quantile: q must be in [0, 1]", "Quantile", -1)
	}
	return &Node{kind: KindQuantile, children: []*Node{x}, window: w, param: q, ready: aggReady(x, w)}, nil
}
