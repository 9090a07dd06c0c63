package utils

import "testing"

func TestParsePriceDisplay(t *testing.T) {
	cases := []struct {
		name     string
		display  string
		expected float64
	}{
		{name: "dollar decimal", display: "$12.50", expected: 12.50},
		{name: "plain integer", display: "1500", expected: 1500},
		{name: "idr grouping", display: "Rp 12.000", expected: 12000},
		{name: "comma decimal", display: "12,50", expected: 12.50},
		{name: "comma grouping with decimal", display: "1,299.00", expected: 1299},
		{name: "euro style", display: "1.299,50", expected: 1299.50},
		{name: "no digits", display: "market price", expected: 0},
		{name: "empty", display: "", expected: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParsePriceDisplay(tc.display); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.005); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
	if got := Round2(2199.999); got != 2200 {
		t.Fatalf("expected 2200, got %v", got)
	}
}
