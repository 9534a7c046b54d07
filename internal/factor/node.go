package factor

import "math"

// Node is one operator application in a factor tree: a kind tag, its
// children (never shared — each node has exactly one parent), its static
// parameters, and its own inline mutable streaming state.
type Node struct {
	kind     Kind
	children []*Node

	lit    float64 // KindLiteral
	col    string  // KindColumn
	window int     // rolling operators' window size
	param  float64 // KindQuantile's q, or KindSPow's exponent e

	ready int // precomputed ready_offset

	state opState // nil for stateless kinds (leaves, arithmetic, logic)
}

// RowContext is everything a node needs to evaluate row t: the absolute
// row index (ring buffers are keyed off this, so it must be continuous
// across batches) and the batch's column data, addressed at t-Lo.
type RowContext struct {
	T       int
	Lo      int
	Columns map[string][]float64
}

func (c *RowContext) local() int {
	return c.T - c.Lo
}

// Kind reports the node's operator tag.
func (n *Node) Kind() Kind { return n.kind }

// Children returns the node's child list (read-only by convention).
func (n *Node) Children() []*Node { return n.children }

// ReadyOffset is the smallest row index from which this node can produce a
// non-NaN output.
func (n *Node) ReadyOffset() int { return n.ready }

// OutputKind reports whether this node's output is Num or Bool. For most
// kinds this is fixed by the operator; If takes on whichever kind its
// branches produce (its branches are validated to agree at construction).
func (n *Node) OutputKind() OutputKind {
	if n.kind == KindIf {
		return n.children[1].OutputKind()
	}
	return n.kind.OutputKind()
}

// Step evaluates this node at row ctx.T, updating its own state exactly
// once. For t < n.ready the result is always NaN (invariant 2); operators
// still admit the row into their state so later rows see correct history.
func (n *Node) Step(ctx *RowContext) float64 {
	v := n.step(ctx)
	if ctx.T < n.ready {
		return math.NaN()
	}
	return v
}

// NewLiteral builds a constant leaf: step(t) = k for every row.
func NewLiteral(k float64) *Node {
	return &Node{kind: KindLiteral, lit: k}
}

// NewColumn builds a column-reference leaf: step(t) = column[name][t].
func NewColumn(name string) *Node {
	return &Node{kind: KindColumn, col: name}
}

// ColumnName returns the referenced column name; only meaningful when
// Kind() == KindColumn.
func (n *Node) ColumnName() string { return n.col }

// Literal returns the constant value; only meaningful when Kind() ==
// KindLiteral.
func (n *Node) Literal() float64 { return n.lit }

// Window returns the rolling window size; only meaningful for rolling
// kinds.
func (n *Node) Window() int { return n.window }

// Param returns the quantile level (KindQuantile) or exponent (KindSPow).
func (n *Node) Param() float64 { return n.param }

// ColumnsNeeded returns the set of leaf column names this node's subtree
// references.
func (n *Node) ColumnsNeeded() map[string]struct{} {
	out := make(map[string]struct{})
	n.collectColumns(out)
	return out
}

func (n *Node) collectColumns(out map[string]struct{}) {
	if n.kind == KindColumn {
		out[n.col] = struct{}{}
	}
	for _, c := range n.children {
		c.collectColumns(out)
	}
}

// Clone deep-copies the tree with fresh, zeroed streaming state — the same
// observable starting point as a freshly-parsed node (invariant 3).
func (n *Node) Clone() *Node {
	clone := &Node{
		kind:   n.kind,
		lit:    n.lit,
		col:    n.col,
		window: n.window,
		param:  n.param,
		ready:  n.ready,
	}
	if len(n.children) > 0 {
		clone.children = make([]*Node, len(n.children))
		for i, c := range n.children {
			clone.children[i] = c.Clone()
		}
	}
	clone.state = freshState(n.kind, n.window)
	return clone
}

// Reset restores the node's mutable state to the same observable state as
// a freshly-parsed clone, recursively.
func (n *Node) Reset() {
	if n.state != nil {
		n.state.reset()
	}
	for _, c := range n.children {
		c.Reset()
	}
}

// freshState allocates the zeroed streaming state a node of this kind and
// window needs, or nil for stateless kinds.
func freshState(k Kind, w int) opState {
	switch k {
	case KindSum, KindMean:
		return newSumWindow(w)
	case KindMin, KindMax:
		return newMonoDeque(w, k == KindMin)
	case KindArgMin, KindArgMax:
		return newMonoDeque(w, k == KindArgMin)
	case KindStd, KindSkew:
		return newMomentWindow(w)
	case KindRank, KindQuantile:
		return newOrderedWindow(w)
	case KindDelay, KindLogReturn:
		return newRingBuffer(w)
	case KindCorr:
		return newCorrWindow(w)
	default:
		return nil
	}
}

// truthy/falsy/unknown per spec.md §3: finite and > 0 is truthy, finite
// and <= 0 is falsy, NaN is unknown and propagates.
func isTruthy(x float64) bool {
	return !math.IsNaN(x) && x > 0
}

func isFalsy(x float64) bool {
	return !math.IsNaN(x) && x <= 0
}

func boolOf(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
