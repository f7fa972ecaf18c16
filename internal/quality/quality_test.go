package quality

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name                  string
		evalAfter, evalBefore float64
		want                  Grade
	}{
		{"large positive gain", 0.0, 2.5, Brilliant},
		{"gain over one", 0.0, 1.5, Excellent},
		{"gain over half", 0.0, 0.8, Good},
		{"tiny positive gain", 0.0, 0.19, Book},
		{"tiny negative gain", 0.19, 0.0, Book},
		{"large loss", 2.5, 0.0, Blunder},
		{"loss over one", 1.5, 0.0, Mistake},
		{"loss over half", 0.8, 0.0, Inaccuracy},
		{"dead equal", 0.0, 0.0, Book},
		// Positive swing dominates regardless of absolute sign.
		{"sign flip still brilliant", -1.2, 1.0, Brilliant},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Classify(c.evalAfter, c.evalBefore); got != c.want {
				t.Fatalf("Classify(%v, %v) = %v, want %v", c.evalAfter, c.evalBefore, got, c.want)
			}
		})
	}
}

// The comparisons are strict, so a gain of exactly 0.2 misses the equal band
// and a gain of exactly -0.5 misses the inaccuracy band.
func TestClassifyExactBoundaries(t *testing.T) {
	cases := []struct {
		evalAfter, evalBefore float64
		want                  Grade
	}{
		// Gains of exactly ±0.2 miss the equal band, no negative branch
		// fires either, and the default catches them; exactly ±0.5 misses
		// the good/inaccuracy bands the same way.
		{0.0, 0.2, Book},
		{0.2, 0.0, Book},
		{0.5, 0.0, Book},
		{0.0, 0.5, Book},
		// Exactly ±1.0 and ±2.0 stay one band below the next grade up.
		{1.0, 0.0, Inaccuracy},
		{0.0, 1.0, Good},
		{2.0, 0.0, Mistake},
		{0.0, 2.0, Excellent},
	}
	for _, c := range cases {
		if got := Classify(c.evalAfter, c.evalBefore); got != c.want {
			t.Fatalf("Classify(%v, %v) = %v, want %v", c.evalAfter, c.evalBefore, got, c.want)
		}
	}
}

// Small negative gains stay in the equal band because it is checked before
// the negative bands.
func TestClassifyEqualBandBeforeNegative(t *testing.T) {
	if got := Classify(0.15, 0.0); got != Book {
		t.Fatalf("Classify(0.15, 0) = %v, want Book", got)
	}
	if got := Classify(0.0, 0.19); got != Book {
		t.Fatalf("Classify(0, 0.19) = %v, want Book", got)
	}
}

func TestJudgmentSymbols(t *testing.T) {
	cases := []struct {
		grade  Grade
		symbol string
		label  string
	}{
		{Brilliant, "!!", "Brilliant"},
		{Excellent, "!", "Excellent"},
		{Good, "!?", "Good"},
		{Book, "=", "Book"},
		{Inaccuracy, "?!", "Inaccuracy"},
		{Mistake, "?", "Mistake"},
		{Blunder, "??", "Blunder"},
	}
	for _, c := range cases {
		j := c.grade.Judgment()
		if j.Symbol != c.symbol || j.Label != c.label {
			t.Fatalf("%v.Judgment() = %+v, want label=%q symbol=%q", c.grade, j, c.label, c.symbol)
		}
		if j.Severity != int(c.grade) {
			t.Fatalf("%v severity = %d", c.grade, j.Severity)
		}
	}
}

func TestJudge(t *testing.T) {
	j := Judge(2.5, 0.0)
	if j.Label != "Blunder" || j.Symbol != "??" || j.Severity != -3 {
		t.Fatalf("Judge(2.5, 0) = %+v", j)
	}
	if j.Describe() != "Blunder (??)" {
		t.Fatalf("Describe() = %q", j.Describe())
	}
}
