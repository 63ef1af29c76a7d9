package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClampPercent(t *testing.T) {
	cases := []struct {
		in       string
		expected int
	}{
		{"-4", 0},
		{"0", 0},
		{"49.5", 50},
		{"49.49", 49},
		{"100", 100},
		{"250", 100},
	}
	for _, tc := range cases {
		if got := ClampPercent(decimal.RequireFromString(tc.in)); got != tc.expected {
			t.Fatalf("ClampPercent(%s) expected %d, got %d", tc.in, tc.expected, got)
		}
	}
}

func TestPercentOf_NilOnZeroDenominator(t *testing.T) {
	if p := PercentOf(decimal.NewFromInt(5), decimal.Zero, 1); p != nil {
		t.Fatalf("expected nil margin, got %s", p)
	}
	p := PercentOf(decimal.NewFromInt(1), decimal.NewFromInt(3), 1)
	if p == nil || p.String() != "33.3" {
		t.Fatalf("expected 33.3, got %v", p)
	}
}
