package factor

import "math"

// sanitize substitutes a deterministic placeholder for a child's NaN
// ("not ready yet") output before it is admitted into a rolling window's
// internal bookkeeping. Without this, a single NaN admitted into a running
// accumulator (sum, moments, the ordered multiset) would poison it for
// good — eviction of the stale slot later cannot undo NaN contamination
// arithmetically. It is safe: every rolling node's own ready_offset is set
// so that by the time it emits a real value, its entire window is built
// from rows where every child was already itself ready (see aggReady and
// lookbackReady in ops_rolling.go),
// so the placeholder is never actually read back out.
func sanitize(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return x
}

// step computes this node's raw value for row ctx.T, driving children and
// updating this node's own state exactly once. The caller (Step) applies
// the ready_offset mask to the result.
func (n *Node) step(ctx *RowContext) float64 {
	// Constructors leave state unset; a rolling node gets its zeroed state
	// on its first row.
	if n.state == nil && n.kind.isRolling() {
		n.state = freshState(n.kind, n.window)
	}
	switch n.kind {
	case KindLiteral:
		return n.lit
	case KindColumn:
		return ctx.Columns[n.col][ctx.local()]

	case KindAdd:
		return n.children[0].Step(ctx) + n.children[1].Step(ctx)
	case KindSub:
		return n.children[0].Step(ctx) - n.children[1].Step(ctx)
	case KindMul:
		return n.children[0].Step(ctx) * n.children[1].Step(ctx)
	case KindDiv:
		a, b := n.children[0].Step(ctx), n.children[1].Step(ctx)
		if b == 0 {
			return math.NaN()
		}
		return a / b
	case KindPow:
		exp, base := n.children[0].Step(ctx), n.children[1].Step(ctx)
		if base < 0 && exp != math.Trunc(exp) {
			return math.NaN()
		}
		return math.Pow(base, exp)
	case KindSPow:
		x := n.children[0].Step(ctx)
		if math.IsNaN(x) {
			return math.NaN()
		}
		return signOf(x) * math.Pow(math.Abs(x), n.param)
	case KindAbs:
		return math.Abs(n.children[0].Step(ctx))
	case KindSign:
		x := n.children[0].Step(ctx)
		if math.IsNaN(x) {
			return math.NaN()
		}
		return signOf(x)
	case KindLogAbs:
		return math.Log(math.Abs(n.children[0].Step(ctx)))

	case KindGt:
		return compare(n.children[0].Step(ctx), n.children[1].Step(ctx), func(a, b float64) bool { return a > b })
	case KindGe:
		return compare(n.children[0].Step(ctx), n.children[1].Step(ctx), func(a, b float64) bool { return a >= b })
	case KindLt:
		return compare(n.children[0].Step(ctx), n.children[1].Step(ctx), func(a, b float64) bool { return a < b })
	case KindLe:
		return compare(n.children[0].Step(ctx), n.children[1].Step(ctx), func(a, b float64) bool { return a <= b })
	case KindEq:
		return compare(n.children[0].Step(ctx), n.children[1].Step(ctx), func(a, b float64) bool { return a == b })

	case KindAnd:
		a, b := n.children[0].Step(ctx), n.children[1].Step(ctx)
		if isFalsy(a) || isFalsy(b) {
			return 0.0
		}
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		return 1.0
	case KindOr:
		a, b := n.children[0].Step(ctx), n.children[1].Step(ctx)
		if isTruthy(a) || isTruthy(b) {
			return 1.0
		}
		if math.IsNaN(a) || math.IsNaN(b) {
			return math.NaN()
		}
		return 0.0
	case KindNot:
		x := n.children[0].Step(ctx)
		if math.IsNaN(x) {
			return math.NaN()
		}
		return 1.0 - x
	case KindIf:
		cond := n.children[0].Step(ctx)
		a := n.children[1].Step(ctx)
		b := n.children[2].Step(ctx)
		if math.IsNaN(cond) {
			return math.NaN()
		}
		if isTruthy(cond) {
			return a
		}
		return b

	case KindSum, KindMean:
		x := sanitize(n.children[0].Step(ctx))
		sw := n.state.(*sumWindow)
		total := sw.push(ctx.T, x)
		if n.kind == KindSum {
			return total
		}
		return total / float64(n.window)

	case KindMin, KindMax:
		x := sanitize(n.children[0].Step(ctx))
		d := n.state.(*monoDeque)
		d.push(ctx.T, x)
		_, v := d.front()
		return v

	case KindArgMin, KindArgMax:
		x := sanitize(n.children[0].Step(ctx))
		d := n.state.(*monoDeque)
		d.push(ctx.T, x)
		idx, _ := d.front()
		windowStart := ctx.T - n.window + 1
		return float64(idx - windowStart)

	case KindStd:
		x := sanitize(n.children[0].Step(ctx))
		m := n.state.(*momentWindow)
		m.push(ctx.T, x)
		w := float64(n.window)
		mean := m.sum / w
		variance := (m.sumSq - w*mean*mean) / (w - 1)
		if variance < 0 {
			variance = 0
		}
		return math.Sqrt(variance)

	case KindSkew:
		x := sanitize(n.children[0].Step(ctx))
		m := n.state.(*momentWindow)
		m.push(ctx.T, x)
		w := float64(n.window)
		mean := m.sum / w
		m2 := m.sumSq/w - mean*mean
		if m2 <= 0 {
			return math.NaN()
		}
		m3 := m.sumCube/w - 3*mean*m.sumSq/w + 2*mean*mean*mean
		g1 := m3 / math.Pow(m2, 1.5)
		return math.Sqrt(w*(w-1)) / (w - 2) * g1

	case KindRank:
		x := sanitize(n.children[0].Step(ctx))
		o := n.state.(*orderedWindow)
		o.push(ctx.T, x)
		return float64(o.countLess(x))

	case KindQuantile:
		x := sanitize(n.children[0].Step(ctx))
		o := n.state.(*orderedWindow)
		o.push(ctx.T, x)
		k := int(math.Floor(n.param * float64(n.window-1)))
		if k >= len(o.sorted) {
			return math.NaN()
		}
		return o.at(k)

	case KindDelay:
		x := sanitize(n.children[0].Step(ctx))
		r := n.state.(*ringBuffer)
		return r.push(ctx.T, x)

	case KindLogReturn:
		x := sanitize(n.children[0].Step(ctx))
		r := n.state.(*ringBuffer)
		old := r.push(ctx.T, x)
		if x <= 0 || old <= 0 {
			return math.NaN()
		}
		return math.Log(x / old)

	case KindCorr:
		xa := sanitize(n.children[0].Step(ctx))
		xb := sanitize(n.children[1].Step(ctx))
		c := n.state.(*corrWindow)
		c.push(ctx.T, xa, xb)
		w := float64(n.window)
		meanA, meanB := c.sumA/w, c.sumB/w
		varA := c.sumA2/w - meanA*meanA
		varB := c.sumB2/w - meanB*meanB
		if varA <= 0 || varB <= 0 {
			return math.NaN()
		}
		covAB := c.sumAB/w - meanA*meanB
		return covAB / math.Sqrt(varA*varB)
	}
	return math.NaN()
}

func signOf(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func compare(a, b float64, op func(a, b float64) bool) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return boolOf(op(a, b))
}
