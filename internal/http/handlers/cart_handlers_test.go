package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qrdine-order-service/internal/cart"
	"qrdine-order-service/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newCartTestServer(t *testing.T, store cart.Store) *httptest.Server {
	t.Helper()
	h := &Handler{Logger: zap.NewNop(), Carts: store}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := &middleware.Identity{GuestID: "guest_1700000000000_abc123"}
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), id)))
		})
	})
	r.Route("/api/public/restaurants/{restaurantId}/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddCartItem)
		r.Patch("/items/{index}", h.UpdateCartItemQuantity)
		r.Delete("/items/{index}", h.RemoveCartItem)
		r.Put("/tip", h.SetCartTip)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

type cartEnvelope struct {
	Success bool     `json:"success"`
	Data    CartView `json:"data"`
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, cartEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env cartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, env
}

func TestCartEndpointsMutateAndTotal(t *testing.T) {
	store := cart.NewMemoryStore()
	server := newCartTestServer(t, store)
	base := server.URL + "/api/public/restaurants/7/cart"

	resp, env := doJSON(t, http.MethodPost, base+"/items", map[string]any{
		"itemId":   1,
		"name":     "Green Curry",
		"price":    12.5,
		"quantity": 2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add item status = %d", resp.StatusCode)
	}
	if env.Data.ItemCount != 2 {
		t.Fatalf("cartItemsCount = %d, want 2", env.Data.ItemCount)
	}
	if env.Data.Subtotal != 25.0 {
		t.Fatalf("subtotal = %v, want 25", env.Data.Subtotal)
	}

	_, env = doJSON(t, http.MethodPatch, base+"/items/0", map[string]int{"quantity": 3})
	if env.Data.ItemCount != 3 {
		t.Fatalf("after quantity update count = %d, want 3", env.Data.ItemCount)
	}

	// Quantities below 1 are a no-op, not a remove.
	_, env = doJSON(t, http.MethodPatch, base+"/items/0", map[string]int{"quantity": 0})
	if env.Data.ItemCount != 3 {
		t.Fatalf("zero quantity should be ignored, count = %d", env.Data.ItemCount)
	}

	_, env = doJSON(t, http.MethodPut, base+"/tip", map[string]float64{"tipPercentage": 10})
	if env.Data.TipValue != 3.75 {
		t.Fatalf("tipValue = %v, want 3.75", env.Data.TipValue)
	}
	if env.Data.Total != 41.25 {
		t.Fatalf("cartTotal = %v, want 41.25", env.Data.Total)
	}

	_, env = doJSON(t, http.MethodDelete, base+"/items/0", nil)
	if env.Data.ItemCount != 0 {
		t.Fatalf("after remove count = %d, want 0", env.Data.ItemCount)
	}
}

func TestCartTipModesAreExclusive(t *testing.T) {
	store := cart.NewMemoryStore()
	server := newCartTestServer(t, store)
	base := server.URL + "/api/public/restaurants/3/cart"

	doJSON(t, http.MethodPost, base+"/items", map[string]any{
		"itemId": 5, "name": "Dumplings", "price": 10.0, "quantity": 1,
	})

	_, env := doJSON(t, http.MethodPut, base+"/tip", map[string]float64{"tipPercentage": 15})
	if env.Data.TipPercent == nil || *env.Data.TipPercent != 15 {
		t.Fatalf("tipPercentage not applied: %+v", env.Data)
	}

	_, env = doJSON(t, http.MethodPut, base+"/tip", map[string]float64{"tipAmount": 2})
	if env.Data.TipPercent != nil {
		t.Fatalf("custom tip should clear the percentage")
	}
	if env.Data.TipAmount == nil || *env.Data.TipAmount != 2 {
		t.Fatalf("tipAmount not applied: %+v", env.Data)
	}

	resp, _ := doJSON(t, http.MethodPut, base+"/tip", map[string]float64{"tipAmount": -1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative tip status = %d, want 400", resp.StatusCode)
	}
}

func TestCartIsScopedPerRestaurant(t *testing.T) {
	store := cart.NewMemoryStore()
	server := newCartTestServer(t, store)

	doJSON(t, http.MethodPost, server.URL+"/api/public/restaurants/1/cart/items", map[string]any{
		"itemId": 1, "name": "Ramen", "price": 14.0, "quantity": 1,
	})

	_, env := doJSON(t, http.MethodGet, server.URL+"/api/public/restaurants/2/cart/", nil)
	if env.Data.ItemCount != 0 {
		t.Fatalf("restaurant 2 cart should be empty, got %d items", env.Data.ItemCount)
	}

	_, env = doJSON(t, http.MethodGet, server.URL+"/api/public/restaurants/1/cart/", nil)
	if env.Data.ItemCount != 1 {
		t.Fatalf("restaurant 1 cart lost its item")
	}
}

func TestCorruptedSnapshotDegradesToEmptyCart(t *testing.T) {
	store := cart.NewMemoryStore()
	server := newCartTestServer(t, store)
	base := server.URL + "/api/public/restaurants/9/cart"

	doJSON(t, http.MethodPost, base+"/items", map[string]any{
		"itemId": 2, "name": "Satay", "price": 8.0, "quantity": 2,
	})

	id := &middleware.Identity{GuestID: "guest_1700000000000_abc123"}
	store.Corrupt(cartKey(id, 9))

	resp, env := doJSON(t, http.MethodGet, base+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("corrupted cart should still load, status = %d", resp.StatusCode)
	}
	if env.Data.ItemCount != 0 {
		t.Fatalf("corrupted cart should come back empty, got %d items", env.Data.ItemCount)
	}
	if env.Data.Items == nil {
		t.Fatalf("items should be an empty array, not null")
	}
}

func TestClearCartRemovesEverything(t *testing.T) {
	store := cart.NewMemoryStore()
	server := newCartTestServer(t, store)
	base := server.URL + "/api/public/restaurants/4/cart"

	doJSON(t, http.MethodPost, base+"/items", map[string]any{
		"itemId": 3, "name": "Laksa", "price": 13.0, "quantity": 1,
	})
	doJSON(t, http.MethodPut, base+"/tip", map[string]float64{"tipPercentage": 20})

	_, env := doJSON(t, http.MethodDelete, base+"/", nil)
	if env.Data.ItemCount != 0 || env.Data.TipPercent != nil {
		t.Fatalf("clear left state behind: %+v", env.Data)
	}

	c, err := store.Load(context.Background(), cartKey(&middleware.Identity{GuestID: "guest_1700000000000_abc123"}, 4))
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if len(c.Lines) != 0 {
		t.Fatalf("store still holds %d lines", len(c.Lines))
	}
}
