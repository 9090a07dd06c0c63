package checkout

import (
	"testing"

	"qrdine-order-service/internal/cart"
)

func TestValidateOrderTypeMatrix(t *testing.T) {
	cases := []struct {
		name       string
		form       Form
		wantFields []string
	}{
		{
			name: "dine-in missing table number",
			form: Form{
				OrderType:          "dine-in",
				NumberOfPassengers: "2",
				PaymentMethod:      "cash",
			},
			wantFields: []string{"tableNumber"},
		},
		{
			name: "dine-in zero passengers",
			form: Form{
				OrderType:          "dine-in",
				TableNumber:        "7",
				NumberOfPassengers: "0",
				PaymentMethod:      "cash",
			},
			wantFields: []string{"numberOfPassengers"},
		},
		{
			name: "dine-in missing both",
			form: Form{
				OrderType:     "dine-in",
				PaymentMethod: "card",
			},
			wantFields: []string{"tableNumber", "numberOfPassengers"},
		},
		{
			name: "takeaway does not require table fields",
			form: Form{
				OrderType:     "takeaway",
				PaymentMethod: "cash",
			},
			wantFields: nil,
		},
		{
			name: "unknown order type",
			form: Form{
				OrderType:     "drive-thru",
				PaymentMethod: "cash",
			},
			wantFields: []string{"orderType"},
		},
		{
			name: "invalid payment method",
			form: Form{
				OrderType:     "takeaway",
				PaymentMethod: "crypto",
			},
			wantFields: []string{"paymentMethod"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.form.Normalize()
			errs := tc.form.Validate()
			if len(errs) != len(tc.wantFields) {
				t.Fatalf("expected %d errors, got %d: %v", len(tc.wantFields), len(errs), errs)
			}
			for _, field := range tc.wantFields {
				if _, ok := errs[field]; !ok {
					t.Fatalf("expected error on %s, got %v", field, errs)
				}
			}
		})
	}
}

func TestValidateGuestEmail(t *testing.T) {
	form := Form{
		OrderType:       "takeaway",
		PaymentMethod:   "cash",
		CheckoutAsGuest: true,
		GuestEmail:      "not-an-email",
	}
	form.Normalize()
	errs := form.Validate()
	if _, ok := errs["guestEmail"]; !ok {
		t.Fatalf("expected guestEmail format error, got %v", errs)
	}

	form.GuestEmail = ""
	form.Normalize()
	if errs := form.Validate(); len(errs) != 0 {
		t.Fatalf("empty guest email must be valid, got %v", errs)
	}

	form.GuestEmail = "diner@example.com"
	form.Normalize()
	if errs := form.Validate(); len(errs) != 0 {
		t.Fatalf("valid guest email rejected: %v", errs)
	}
}

func TestNormalizeClearsDineInFieldsOnBranchChange(t *testing.T) {
	form := Form{
		OrderType:          "Takeaway",
		TableNumber:        "12",
		NumberOfPassengers: "4",
		PaymentMethod:      "CARD",
	}
	form.Normalize()

	if form.TableNumber != "" || form.NumberOfPassengers != "" {
		t.Fatalf("expected dine-in fields cleared, got %+v", form)
	}
	if errs := form.Validate(); len(errs) != 0 {
		t.Fatalf("expected clean validation after normalize, got %v", errs)
	}
}

func TestBuildOrderRequestSnapshotsCart(t *testing.T) {
	c := cart.New()
	c.AddItem(cart.Line{
		ItemID:              42,
		Name:                "Laksa",
		Price:               1000,
		Quantity:            2,
		SpecialInstructions: "no cilantro",
	})
	c.AddItem(cart.Line{
		ItemID:              43,
		Name:                "Kopi",
		SelectedPriceOption: &cart.PriceOption{ID: "lg", OptionName: "Large", Price: 250},
		Quantity:            1,
	})
	c.SetTipPercent(10)

	form := Form{
		OrderType:          "dine-in",
		TableNumber:        "3",
		NumberOfPassengers: "2",
		PaymentMethod:      "cash",
		CheckoutAsGuest:    true,
		GuestName:          "Ana",
		GuestEmail:         "ana@example.com",
	}
	form.Normalize()
	if errs := form.Validate(); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}

	req := BuildOrderRequest(9, c, form)

	if req.RestaurantID != 9 || len(req.Items) != 2 {
		t.Fatalf("unexpected request shape: %+v", req)
	}
	if req.Items[0].TotalPrice != 2000 || req.Items[1].UnitPrice != 250 {
		t.Fatalf("unexpected item pricing: %+v", req.Items)
	}
	if req.Items[1].PriceOptionName != "Large" {
		t.Fatalf("expected price option carried into snapshot")
	}
	if req.Subtotal != 2250 || req.TipValue != 225 || req.Total != 2475 {
		t.Fatalf("unexpected totals: subtotal=%v tip=%v total=%v", req.Subtotal, req.TipValue, req.Total)
	}
	if req.NumberOfPassengers != 2 || !req.CheckoutAsGuest {
		t.Fatalf("form fields not carried: %+v", req)
	}
}
