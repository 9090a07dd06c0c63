package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"qrdine-order-service/internal/cart"
	"qrdine-order-service/internal/checkout"
	"qrdine-order-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newCheckoutTestServer(t *testing.T, store cart.Store, place OrderPlacer) *httptest.Server {
	t.Helper()
	h := &Handler{Logger: zap.NewNop(), Carts: store, Orders: place}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := &middleware.Identity{GuestID: "guest_1700000000000_def456"}
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), id)))
		})
	})
	r.Post("/api/public/restaurants/{restaurantId}/checkout", h.Checkout)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func postCheckout(t *testing.T, url string, form map[string]any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("marshal form: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post checkout: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, body
}

func TestCheckoutRejectsInvalidForms(t *testing.T) {
	store := cart.NewMemoryStore()
	server := newCheckoutTestServer(t, store, nil)
	url := server.URL + "/api/public/restaurants/5/checkout"

	tests := []struct {
		name      string
		form      map[string]any
		wantField string
	}{
		{
			name:      "dine-in without table",
			form:      map[string]any{"orderType": "dine-in", "numberOfPassengers": "2", "paymentMethod": "cash"},
			wantField: "tableNumber",
		},
		{
			name:      "dine-in with zero passengers",
			form:      map[string]any{"orderType": "dine-in", "tableNumber": "12", "numberOfPassengers": "0", "paymentMethod": "cash"},
			wantField: "numberOfPassengers",
		},
		{
			name:      "unknown payment method",
			form:      map[string]any{"orderType": "takeaway", "paymentMethod": "crypto"},
			wantField: "paymentMethod",
		},
		{
			name:      "malformed guest email",
			form:      map[string]any{"orderType": "takeaway", "paymentMethod": "card", "guestEmail": "not-an-email"},
			wantField: "guestEmail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postCheckout(t, url, tt.form)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			fields, ok := body["fields"].(map[string]any)
			if !ok {
				t.Fatalf("response has no field map: %v", body)
			}
			if _, ok := fields[tt.wantField]; !ok {
				t.Fatalf("expected error on %q, got %v", tt.wantField, fields)
			}
		})
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	store := cart.NewMemoryStore()
	server := newCheckoutTestServer(t, store, nil)
	url := server.URL + "/api/public/restaurants/5/checkout"

	resp, body := postCheckout(t, url, map[string]any{
		"orderType":     "takeaway",
		"paymentMethod": "cash",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body["error"] != "EMPTY_CART" {
		t.Fatalf("error = %v, want EMPTY_CART", body["error"])
	}
}

// seedCheckoutCart stores a cart with one line and a percentage tip under the
// key the test server's injected identity resolves to.
func seedCheckoutCart(t *testing.T, store cart.Store) string {
	t.Helper()
	c := cart.New()
	c.AddItem(cart.Line{ItemID: 42, Name: "Pad Thai", Price: 11.5, Quantity: 2})
	c.SetTipPercent(10)

	id := &middleware.Identity{GuestID: "guest_1700000000000_def456"}
	key := cartKey(id, 5)
	if err := store.Save(context.Background(), key, c); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return key
}

func TestCheckoutClearsCartOnSuccess(t *testing.T) {
	store := cart.NewMemoryStore()
	var placed checkout.OrderRequest
	place := func(ctx context.Context, id *middleware.Identity, req checkout.OrderRequest) (int64, string, error) {
		placed = req
		return 41, "ORD-20260830-0001", nil
	}
	server := newCheckoutTestServer(t, store, place)
	key := seedCheckoutCart(t, store)
	url := server.URL + "/api/public/restaurants/5/checkout"

	resp, body := postCheckout(t, url, map[string]any{
		"orderType":     "takeaway",
		"paymentMethod": "cash",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %v", resp.StatusCode, body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data: %v", body)
	}
	if data["orderNumber"] != "ORD-20260830-0001" {
		t.Fatalf("orderNumber = %v", data["orderNumber"])
	}
	if len(placed.Items) != 1 {
		t.Fatalf("placed %d items, want 1", len(placed.Items))
	}
	if diff := placed.Total - 25.3; diff < -1e-9 || diff > 1e-9 {
		t.Fatalf("placed total = %v, want 25.3", placed.Total)
	}

	after, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("load cart after checkout: %v", err)
	}
	if len(after.Lines) != 0 {
		t.Fatalf("cart still holds %d lines after checkout", len(after.Lines))
	}
	if after.TipPercent != nil || after.TipAmount != nil {
		t.Fatal("tip selection survived checkout")
	}
}

func TestCheckoutKeepsCartWhenOrderInsertFails(t *testing.T) {
	store := cart.NewMemoryStore()
	place := func(ctx context.Context, id *middleware.Identity, req checkout.OrderRequest) (int64, string, error) {
		return 0, "", errors.New("insert failed")
	}
	server := newCheckoutTestServer(t, store, place)
	key := seedCheckoutCart(t, store)
	url := server.URL + "/api/public/restaurants/5/checkout"

	resp, body := postCheckout(t, url, map[string]any{
		"orderType":     "takeaway",
		"paymentMethod": "cash",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if body["error"] != "ORDER_FAILED" {
		t.Fatalf("error = %v, want ORDER_FAILED", body["error"])
	}

	after, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("load cart after failed checkout: %v", err)
	}
	if len(after.Lines) != 1 {
		t.Fatalf("cart holds %d lines, want the original 1", len(after.Lines))
	}
	if after.TipPercent == nil || *after.TipPercent != 10 {
		t.Fatal("tip selection was lost by a failed checkout")
	}
}
