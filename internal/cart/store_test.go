package cart

import (
	"context"
	"testing"
)

func TestSnapshotRoundtrip(t *testing.T) {
	c := New()
	c.AddItem(Line{ItemID: 7, Name: "Ramen", Price: 95.5, Quantity: 2, SpecialInstructions: "extra spicy"})
	c.SetCustomTip(12)

	data, err := Encode(c)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, ok := Decode(data)
	if !ok {
		t.Fatalf("expected clean decode")
	}
	if len(decoded.Lines) != 1 || decoded.Lines[0].Name != "Ramen" {
		t.Fatalf("unexpected lines: %+v", decoded.Lines)
	}
	if decoded.TipAmount == nil || *decoded.TipAmount != 12 {
		t.Fatalf("expected tip amount to survive roundtrip")
	}
	if got := decoded.Total(); got != c.Total() {
		t.Fatalf("expected total %v, got %v", c.Total(), got)
	}
}

func TestDecodeRejectsMalformedAndUnknownVersions(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{name: "not json", data: []byte("{broken")},
		{name: "unknown version", data: []byte(`{"version":99,"items":[]}`)},
		{name: "empty blob", data: []byte("")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := Decode(tc.data)
			if ok {
				t.Fatalf("expected decode to report failure")
			}
			if c == nil || len(c.Lines) != 0 || c.TipPercent != nil || c.TipAmount != nil {
				t.Fatalf("expected a typed empty cart, got %+v", c)
			}
		})
	}
}

func TestMemoryStoreDegradesCorruptedStateToEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := New()
	c.AddItem(Line{ItemID: 1, Price: 500, Quantity: 1})
	if err := store.Save(ctx, "guest_1:9", c); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := store.Load(ctx, "guest_1:9")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Subtotal() != 500 {
		t.Fatalf("expected subtotal 500, got %v", loaded.Subtotal())
	}

	store.Corrupt("guest_1:9")
	loaded, err = store.Load(ctx, "guest_1:9")
	if err != nil {
		t.Fatalf("load after corruption failed: %v", err)
	}
	if len(loaded.Lines) != 0 {
		t.Fatalf("expected empty cart after corruption, got %+v", loaded.Lines)
	}

	missing, err := store.Load(ctx, "never-saved")
	if err != nil || len(missing.Lines) != 0 {
		t.Fatalf("expected empty cart for missing key")
	}
}
