// Package factor implements the operator library and factor tree: a
// discriminated union of operator kinds, each carrying its own inline
// streaming state, dispatched by tag rather than by a visitor interface
// (spec design note: fine-grained virtual dispatch has no place in a
// per-row inner loop).
package factor

// Kind tags every operator variant the tree can hold.
type Kind int

const (
	KindLiteral Kind = iota
	KindColumn

	// Arithmetic, Num -> Num.
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow
	KindSPow
	KindAbs
	KindSign
	KindLogAbs

	// Comparison, Num -> Bool.
	KindGt
	KindGe
	KindLt
	KindLe
	KindEq

	// Logic, Bool -> Bool.
	KindAnd
	KindOr
	KindNot
	KindIf

	// Rolling, window w, Num -> Num.
	KindSum
	KindMean
	KindMin
	KindMax
	KindArgMin
	KindArgMax
	KindStd
	KindSkew
	KindRank
	KindDelay
	KindLogReturn
	KindCorr
	KindQuantile
)

// OutputKind distinguishes numeric scalars from the {0,1,NaN}-restricted
// boolean scalars used by comparison/logic operators.
type OutputKind int

const (
	Num OutputKind = iota
	Bool
)

// canonicalNames gives each Kind its preferred printed operator name.
// Rolling operators other than Delay (which has no "TS" spelling) print
// with the "TS" prefix: both prefixed and bare spellings parse to the same
// Kind (spec §4.2's alias rule), and the
// prefixed form is the one real factor strings in the wild actually use
// (spec.md §1's worked example), so it is what to_string() emits.
var canonicalNames = map[Kind]string{
	KindAdd:       "+",
	KindSub:       "-",
	KindMul:       "*",
	KindDiv:       "/",
	KindPow:       "^",
	KindSPow:      "SPow",
	KindAbs:       "Abs",
	KindSign:      "Sign",
	KindLogAbs:    "LogAbs",
	KindGt:        ">",
	KindGe:        ">=",
	KindLt:        "<",
	KindLe:        "<=",
	KindEq:        "==",
	KindAnd:       "And",
	KindOr:        "Or",
	KindNot:       "!",
	KindIf:        "If",
	KindSum:       "TSSum",
	KindMean:      "TSMean",
	KindMin:       "TSMin",
	KindMax:       "TSMax",
	KindArgMin:    "TSArgMin",
	KindArgMax:    "TSArgMax",
	KindStd:       "TSStd",
	KindSkew:      "TSSkew",
	KindRank:      "TSRank",
	KindDelay:     "Delay",
	KindLogReturn: "TSLogReturn",
	KindCorr:      "TSCorr",
	KindQuantile:  "TSQuantile",
}

func (k Kind) String() string {
	if name, ok := canonicalNames[k]; ok {
		return name
	}
	return "?"
}

// OutputKind reports whether a node of this Kind produces a Num or a Bool
// scalar, used by constructors to validate argument kinds at parse time.
func (k Kind) OutputKind() OutputKind {
	switch k {
	case KindGt, KindGe, KindLt, KindLe, KindEq, KindAnd, KindOr, KindNot:
		return Bool
	default:
		return Num
	}
}

// isRolling reports whether a Kind carries a window parameter and
// ring-buffered streaming state.
func (k Kind) isRolling() bool {
	switch k {
	case KindSum, KindMean, KindMin, KindMax, KindArgMin, KindArgMax,
		KindStd, KindSkew, KindRank, KindDelay, KindLogReturn, KindCorr, KindQuantile:
		return true
	default:
		return false
	}
}

// aliases maps every identifier spec.md §4.1/§4.2 accepts as an operator
// name — including the bare (non-"TS"-prefixed) spellings of rolling
// operators — onto its Kind.
var aliases = map[string]Kind{
	"+": KindAdd, "-": KindSub, "*": KindMul, "/": KindDiv, "^": KindPow,
	"SPow": KindSPow, "Abs": KindAbs, "Sign": KindSign, "LogAbs": KindLogAbs,

	">": KindGt, ">=": KindGe, "<": KindLt, "<=": KindLe, "==": KindEq,
	"And": KindAnd, "Or": KindOr, "!": KindNot, "If": KindIf,

	"Sum": KindSum, "TSSum": KindSum,
	"Mean": KindMean, "TSMean": KindMean,
	"Min": KindMin, "TSMin": KindMin,
	"Max": KindMax, "TSMax": KindMax,
	"ArgMin": KindArgMin, "TSArgMin": KindArgMin,
	"ArgMax": KindArgMax, "TSArgMax": KindArgMax,
	"Std": KindStd, "TSStd": KindStd,
	"Skew": KindSkew, "TSSkew": KindSkew,
	"Rank": KindRank, "TSRank": KindRank,
	"Delay": KindDelay,
	"LogReturn": KindLogReturn, "TSLogReturn": KindLogReturn,
	"Corr": KindCorr, "TSCorr": KindCorr,
	"Quantile": KindQuantile, "TSQuantile": KindQuantile,
}

// LookupKind resolves an operator identifier to its Kind, accepting both
// "TS"-prefixed and bare spellings for rolling operators.
func LookupKind(name string) (Kind, bool) {
	k, ok := aliases[name]
	return k, ok
}
