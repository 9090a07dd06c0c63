package cart

import "testing"

func TestSubtotalTracksMutations(t *testing.T) {
	c := New()
	c.AddItem(Line{ItemID: 1, Name: "Nasi Goreng", Price: 1000, Quantity: 2})
	c.AddItem(Line{ItemID: 2, Name: "Es Teh", Price: 300, Quantity: 1})

	if got := c.Subtotal(); got != 2300 {
		t.Fatalf("expected subtotal 2300, got %v", got)
	}

	c.UpdateQuantity(1, 3)
	if got := c.Subtotal(); got != 2900 {
		t.Fatalf("expected subtotal 2900 after quantity update, got %v", got)
	}

	c.RemoveAt(0)
	if got := c.Subtotal(); got != 900 {
		t.Fatalf("expected subtotal 900 after removal, got %v", got)
	}
	if got := c.ItemCount(); got != 3 {
		t.Fatalf("expected 3 units, got %d", got)
	}
}

func TestEffectiveUnitPriceResolution(t *testing.T) {
	cases := []struct {
		name     string
		line     Line
		expected float64
	}{
		{
			name: "selected option wins over base price",
			line: Line{
				Price:               500,
				SelectedPriceOption: &PriceOption{ID: "lg", OptionName: "Large", Price: 750},
				Quantity:            1,
			},
			expected: 750,
		},
		{
			name:     "base price",
			line:     Line{Price: 500, Quantity: 1},
			expected: 500,
		},
		{
			name:     "display string fallback",
			line:     Line{PriceDisplay: "Rp 12.000", Quantity: 1},
			expected: 12000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.line.UnitPrice(); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestTipSettersAreMutuallyExclusive(t *testing.T) {
	c := New()
	c.AddItem(Line{ItemID: 1, Price: 1000, Quantity: 1})

	c.SetTipPercent(10)
	c.SetCustomTip(150)
	if c.TipPercent != nil {
		t.Fatalf("expected tip percent cleared after custom tip")
	}
	if c.TipAmount == nil || *c.TipAmount != 150 {
		t.Fatalf("expected tip amount 150")
	}

	c.SetTipPercent(15)
	if c.TipAmount != nil {
		t.Fatalf("expected tip amount cleared after percent tip")
	}
	if c.TipPercent == nil || *c.TipPercent != 15 {
		t.Fatalf("expected tip percent 15")
	}
}

func TestUpdateQuantityIgnoresInvalidValues(t *testing.T) {
	c := New()
	c.AddItem(Line{ItemID: 1, Price: 1000, Quantity: 2})

	c.UpdateQuantity(0, 0)
	c.UpdateQuantity(0, -1)
	if c.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity unchanged at 2, got %d", c.Lines[0].Quantity)
	}

	c.UpdateQuantity(5, 3)
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 2 {
		t.Fatalf("out-of-range index must be a no-op")
	}
}

func TestTotalsWithPercentTip(t *testing.T) {
	c := New()
	c.AddItem(Line{ItemID: 1, Name: "Set Menu", Price: 1000, Quantity: 2})
	c.SetTipPercent(10)

	if got := c.Subtotal(); got != 2000 {
		t.Fatalf("expected subtotal 2000, got %v", got)
	}
	if got := c.TipValue(); got != 200 {
		t.Fatalf("expected tip 200, got %v", got)
	}
	if got := c.Total(); got != 2200 {
		t.Fatalf("expected total 2200, got %v", got)
	}
}

func TestClearResetsTipSelection(t *testing.T) {
	c := New()
	c.AddItem(Line{ItemID: 1, Price: 1000, Quantity: 1})
	c.SetTipPercent(10)

	c.Clear()
	if len(c.Lines) != 0 {
		t.Fatalf("expected no lines after clear")
	}
	if c.TipPercent != nil || c.TipAmount != nil {
		t.Fatalf("expected tip selection reset")
	}
	if got := c.Total(); got != 0 {
		t.Fatalf("expected total 0, got %v", got)
	}
}
