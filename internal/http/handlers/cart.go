package handlers

import (
	"net/http"

	"qrdine-order-service/internal/cart"
	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"go.uber.org/zap"
)

type addItemRequest struct {
	ItemID              int64             `json:"itemId"`
	Name                string            `json:"name"`
	Price               float64           `json:"price"`
	PriceDisplay        string            `json:"priceDisplay"`
	SelectedPriceOption *cart.PriceOption `json:"selectedPriceOption"`
	Quantity            int               `json:"quantity"`
	SpecialInstructions string            `json:"specialInstructions"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type tipRequest struct {
	TipPercent *float64 `json:"tipPercentage"`
	TipAmount  *float64 `json:"tipAmount"`
}

// GetCart returns the caller's cart for this restaurant. Every caller has a
// cart; an unknown key simply means an empty one.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.cartScope(w, r)
	if !ok {
		return
	}

	c, err := h.Carts.Load(r.Context(), key)
	if err != nil {
		h.Logger.Error("cart load failed", zap.String("key", key), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	response.Success(w, cartView(c))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.cartScope(w, r)
	if !ok {
		return
	}

	var body addItemRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.ItemID <= 0 || body.Name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "itemId and name are required")
		return
	}

	h.mutateCart(w, r, key, func(c *cart.Cart) {
		c.AddItem(cart.Line{
			ItemID:              body.ItemID,
			Name:                body.Name,
			Price:               body.Price,
			PriceDisplay:        body.PriceDisplay,
			SelectedPriceOption: body.SelectedPriceOption,
			Quantity:            body.Quantity,
			SpecialInstructions: body.SpecialInstructions,
		})
	})
}

func (h *Handler) UpdateCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.cartScope(w, r)
	if !ok {
		return
	}
	index, err := readPathInt(r, "index")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item index")
		return
	}

	var body updateQuantityRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	h.mutateCart(w, r, key, func(c *cart.Cart) {
		c.UpdateQuantity(index, body.Quantity)
	})
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.cartScope(w, r)
	if !ok {
		return
	}
	index, err := readPathInt(r, "index")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item index")
		return
	}

	h.mutateCart(w, r, key, func(c *cart.Cart) {
		c.RemoveAt(index)
	})
}

// SetCartTip applies either a percentage or a fixed tip amount. Sending one
// clears the other; sending neither clears the tip entirely.
func (h *Handler) SetCartTip(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.cartScope(w, r)
	if !ok {
		return
	}

	var body tipRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.TipPercent != nil && *body.TipPercent < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Tip percentage cannot be negative")
		return
	}
	if body.TipAmount != nil && *body.TipAmount < 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Tip amount cannot be negative")
		return
	}

	h.mutateCart(w, r, key, func(c *cart.Cart) {
		switch {
		case body.TipPercent != nil:
			c.SetTipPercent(*body.TipPercent)
		case body.TipAmount != nil:
			c.SetCustomTip(*body.TipAmount)
		default:
			c.TipPercent = nil
			c.TipAmount = nil
		}
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.cartScope(w, r)
	if !ok {
		return
	}

	if err := h.Carts.Delete(r.Context(), key); err != nil {
		h.Logger.Error("cart delete failed", zap.String("key", key), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear cart")
		return
	}
	response.Success(w, cartView(cart.New()))
}

// cartScope resolves the caller identity and restaurant-scoped storage key
// shared by every cart endpoint.
func (h *Handler) cartScope(w http.ResponseWriter, r *http.Request) (*middleware.Identity, string, bool) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "No caller identity")
		return nil, "", false
	}
	restaurantID, err := readPathInt64(r, "restaurantId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return nil, "", false
	}
	return id, cartKey(id, restaurantID), true
}

func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, key string, mutate func(*cart.Cart)) {
	ctx := r.Context()

	c, err := h.Carts.Load(ctx, key)
	if err != nil {
		h.Logger.Error("cart load failed", zap.String("key", key), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}

	mutate(c)

	if err := h.Carts.Save(ctx, key, c); err != nil {
		h.Logger.Error("cart save failed", zap.String("key", key), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save cart")
		return
	}
	response.Success(w, cartView(c))
}

func cartView(c *cart.Cart) CartView {
	return CartView{
		Items:      c.Lines,
		ItemCount:  c.ItemCount(),
		TipPercent: c.TipPercent,
		TipAmount:  c.TipAmount,
		Subtotal:   c.Subtotal(),
		TipValue:   c.TipValue(),
		Total:      c.Total(),
	}
}
