package factor

import "github.com/dovahcrow/factor-expr/internal/errors"

func newComparison(k Kind, a, b *Node) (*Node, error) {
	if err := checkNum(k.String(), a); err != nil {
		return nil, err
	}
	if err := checkNum(k.String(), b); err != nil {
		return nil, err
	}
	return &Node{kind: k, children: []*Node{a, b}, ready: maxReady(a, b)}, nil
}

// NewGt builds a>b.
func NewGt(a, b *Node) (*Node, error) { return newComparison(KindGt, a, b) }

// NewGe builds a>=b.
func NewGe(a, b *Node) (*Node, error) { return newComparison(KindGe, a, b) }

// NewLt builds a<b.
func NewLt(a, b *Node) (*Node, error) { return newComparison(KindLt, a, b) }

// NewLe builds a<=b.
func NewLe(a, b *Node) (*Node, error) { return newComparison(KindLe, a, b) }

// NewEq builds a==b.
func NewEq(a, b *Node) (*Node, error) { return newComparison(KindEq, a, b) }

// NewAnd builds a Kleene-logic And over two Bool children.
func NewAnd(a, b *Node) (*Node, error) {
	if err := checkBool("And", a); err != nil {
		return nil, err
	}
	if err := checkBool("And", b); err != nil {
		return nil, err
	}
	return &Node{kind: KindAnd, children: []*Node{a, b}, ready: maxReady(a, b)}, nil
}

// NewOr builds a Kleene-logic Or over two Bool children.
func NewOr(a, b *Node) (*Node, error) {
	if err := checkBool("Or", a); err != nil {
		return nil, err
	}
	if err := checkBool("Or", b); err != nil {
		return nil, err
	}
	return &Node{kind: KindOr, children: []*Node{a, b}, ready: maxReady(a, b)}, nil
}

// NewNot builds logical negation over a Bool child.
func NewNot(x *Node) (*Node, error) {
	if err := checkBool("!", x); err != nil {
		return nil, err
	}
	return &Node{kind: KindNot, children: []*Node{x}, ready: x.ready}, nil
}

// NewIf builds If(cond, a, b): cond must be Bool, a and b must agree on
// OutputKind (both Num or both Bool) and the result takes on that kind.
func NewIf(cond, a, b *Node) (*Node, error) {
	if err := checkBool("If", cond); err != nil {
		return nil, err
	}
	if a.OutputKind() != b.OutputKind() {
		return nil, errors.NewParseError("If branches must agree in kind", "If", -1)
	}
	return &Node{kind: KindIf, children: []*Node{cond, a, b}, ready: maxReady(cond, a, b)}, nil
}
