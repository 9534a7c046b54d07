package parser

import "testing"

func assertParseSuccess(t *testing.T, source string) {
	t.Helper()
	root, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	if got := root.String(); got != source {
		t.Errorf("Parse(%q).String() = %q, want round-trip to %q", source, got, source)
	}
}

func assertParseError(t *testing.T, source string) {
	t.Helper()
	if _, err := Parse(source); err == nil {
		t.Fatalf("Parse(%q) succeeded, want an error", source)
	}
}

func TestParseArithmetic(t *testing.T) {
	cases := []string{
		"(+ :x :y)",
		"(- :x 1)",
		"(* :x :y)",
		"(/ :x :y)",
		"(^ :x 2)",
		"(SPow 0.5 :x)",
		"(Abs :x)",
		"(Sign :x)",
		"(LogAbs :x)",
	}
	for _, c := range cases {
		assertParseSuccess(t, c)
	}
}

func TestParseLogic(t *testing.T) {
	cases := []string{
		"(> :x :y)",
		"(>= :x 5)",
		"(< :x :y)",
		"(<= :x :y)",
		"(== :x :y)",
		"(And (> :x 0) (< :x 10))",
		"(Or (> :x 0) (< :x 10))",
		"(! (> :x 0))",
		"(If (> :x 5) :y :x)",
	}
	for _, c := range cases {
		assertParseSuccess(t, c)
	}
}

func TestParseRolling(t *testing.T) {
	cases := []string{
		"(TSSum 3 :x)",
		"(TSMean 5 :x)",
		"(TSMin 4 :x)",
		"(TSMax 4 :x)",
		"(TSArgMin 4 :x)",
		"(TSArgMax 4 :x)",
		"(TSStd 5 :x)",
		"(TSSkew 5 :x)",
		"(TSRank 6 :x)",
		"(Delay 2 :x)",
		"(TSLogReturn 1 :x)",
		"(TSCorr 10 :x :y)",
		"(TSQuantile 4 0.5 :x)",
	}
	for _, c := range cases {
		assertParseSuccess(t, c)
	}
}

func TestParseBareAliasesParseButCanonicalizeToTSForm(t *testing.T) {
	cases := map[string]string{
		"(Sum 3 :x)":      "(TSSum 3 :x)",
		"(Mean 5 :x)":     "(TSMean 5 :x)",
		"(Min 4 :x)":      "(TSMin 4 :x)",
		"(Corr 10 :x :y)": "(TSCorr 10 :x :y)",
	}
	for c, want := range cases {
		root, err := Parse(c)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", c, err)
			continue
		}
		if got := root.String(); got != want {
			t.Errorf("Parse(%q).String() = %q, want %q", c, got, want)
		}
	}
}

func TestParseAliasesAgree(t *testing.T) {
	prefixed, err := Parse("(TSSum 3 :x)")
	if err != nil {
		t.Fatal(err)
	}
	bare, err := Parse("(Sum 3 :x)")
	if err != nil {
		t.Fatal(err)
	}
	if prefixed.Kind() != bare.Kind() {
		t.Errorf("TSSum and Sum parsed to different kinds")
	}
	if prefixed.String() != bare.String() {
		t.Errorf("TSSum and Sum should canonicalize to the same string, got %q vs %q", prefixed.String(), bare.String())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"(",
		"(+ :x)",
		"(+ :x :y :z)",
		"(Unknown :x)",
		"(Sum abc :x)",
		"(Sum 3 :x) trailing",
		"(And :x :y)",             // Num where Bool expected
		"(> :x :y) extra",
		"(TSQuantile 4 1.5 :x)",  // q out of [0,1]
		"(If (> :x 0) :y (> :x 0))", // branch kind mismatch
	}
	for _, c := range cases {
		assertParseError(t, c)
	}
}

func TestNestedExpression(t *testing.T) {
	assertParseSuccess(t, "(TSSum 3 (- :x (TSMean 5 :y)))")
}
