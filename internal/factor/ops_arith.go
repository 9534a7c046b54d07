package factor

import "github.com/dovahcrow/factor-expr/internal/errors"

func checkNum(name string, n *Node) error {
	if n.OutputKind() != Num {
		return errors.NewParseError(name+" expects a numeric argument, got a boolean one", n.String(), -1)
	}
	return nil
}

func checkBool(name string, n *Node) error {
	if n.OutputKind() != Bool {
		return errors.NewParseError(name+" expects a boolean argument, got a numeric one", n.String(), -1)
	}
	return nil
}

func newBinaryArith(k Kind, a, b *Node) (*Node, error) {
	if err := checkNum(k.String(), a); err != nil {
		return nil, err
	}
	if err := checkNum(k.String(), b); err != nil {
		return nil, err
	}
	return &Node{kind: k, children: []*Node{a, b}, ready: maxReady(a, b)}, nil
}

// NewAdd builds a+b.
func NewAdd(a, b *Node) (*Node, error) { return newBinaryArith(KindAdd, a, b) }

// NewSub builds a-b.
func NewSub(a, b *Node) (*Node, error) { return newBinaryArith(KindSub, a, b) }

// NewMul builds a*b.
func NewMul(a, b *Node) (*Node, error) { return newBinaryArith(KindMul, a, b) }

// NewDiv builds a/b; a NaN result is emitted at step time whenever b==0.
func NewDiv(a, b *Node) (*Node, error) { return newBinaryArith(KindDiv, a, b) }

// NewPow builds base^exp, written exponent-first as "(^ exp base)"; NaN at
// step time when base<0 and exp is not an integer.
func NewPow(exp, base *Node) (*Node, error) { return newBinaryArith(KindPow, exp, base) }

// NewSPow builds SPow(e, x) = sign(x)*|x|^e. e is a parse-time literal, not
// a sub-expression, since nothing about it is row-dependent.
func NewSPow(e float64, x *Node) (*Node, error) {
	if err := checkNum("SPow", x); err != nil {
		return nil, err
	}
	return &Node{kind: KindSPow, children: []*Node{x}, param: e, ready: x.ready}, nil
}

func newUnaryArith(k Kind, x *Node) (*Node, error) {
	if err := checkNum(k.String(), x); err != nil {
		return nil, err
	}
	return &Node{kind: k, children: []*Node{x}, ready: x.ready}, nil
}

// NewAbs builds |x|.
func NewAbs(x *Node) (*Node, error) { return newUnaryArith(KindAbs, x) }

// NewSign builds sign(x) in {-1, 0, 1}.
func NewSign(x *Node) (*Node, error) { return newUnaryArith(KindSign, x) }

// NewLogAbs builds ln(|x|); |x|==0 yields -inf, not NaN.
func NewLogAbs(x *Node) (*Node, error) { return newUnaryArith(KindLogAbs, x) }
