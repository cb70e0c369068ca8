package layout

import (
	"math"
	"testing"
)

func TestPaperWidthPx(t *testing.T) {
	cases := []struct {
		mm   int
		want float64
	}{
		{58, 384},
		{80, 576},
		// Odd widths derive from the printable band at 8 dots/mm.
		{72, (72 - 10) * 8},
		{100, (100 - 10) * 8},
		// Degenerate widths fall back to the 58mm head.
		{0, 384},
		{-5, 384},
		{10, 384},
	}
	for _, c := range cases {
		if got := PaperWidthPx(c.mm); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("PaperWidthPx(%d) = %g, want %g", c.mm, got, c.want)
		}
	}
}

func TestCharBudget(t *testing.T) {
	if got := CharBudget(58); got != 32 {
		t.Fatalf("CharBudget(58) = %d, want 32", got)
	}
	if got := CharBudget(80); got != 48 {
		t.Fatalf("CharBudget(80) = %d, want 48", got)
	}
	// Derived budgets scale with the printable width and never exceed the
	// exact head budgets for narrower paper.
	if got := CharBudget(72); got <= 32 || got >= 48 {
		t.Fatalf("CharBudget(72) = %d, want between 32 and 48", got)
	}
}

func TestMMPxRoundTrip(t *testing.T) {
	for _, mm := range []float64{0, 0.125, 1, 48, 58, 72, 80} {
		back := PxToMM(MMToPx(mm))
		if diff := math.Abs(back - mm); diff > 1e-9 {
			t.Fatalf("mm→px→mm drift: in=%g back=%g diff=%g", mm, back, diff)
		}
	}
	if got := MMToPx(48); got != 384 {
		t.Fatalf("MMToPx(48) = %g, want 384", got)
	}
}
