package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

func (c *Client) GetRestaurant(ctx context.Context, restaurantID int64) (*Restaurant, error) {
	var out Restaurant
	if err := c.do(ctx, http.MethodGet, restaurantPath(restaurantID, "/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCart(ctx context.Context, restaurantID int64) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, restaurantPath(restaurantID, "/cart/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToCart appends a line. The server never merges identical lines.
func (c *Client) AddToCart(ctx context.Context, restaurantID int64, line CartLine) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodPost, restaurantPath(restaurantID, "/cart/items"), line, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartQuantity(ctx context.Context, restaurantID int64, index, quantity int) (*Cart, error) {
	var out Cart
	path := restaurantPath(restaurantID, fmt.Sprintf("/cart/items/%d", index))
	body := map[string]int{"quantity": quantity}
	if err := c.do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, restaurantID int64, index int) (*Cart, error) {
	var out Cart
	path := restaurantPath(restaurantID, fmt.Sprintf("/cart/items/%d", index))
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetTipPercent and SetTipAmount are mutually exclusive on the server; the
// last one sent wins.
func (c *Client) SetTipPercent(ctx context.Context, restaurantID int64, percent float64) (*Cart, error) {
	var out Cart
	body := map[string]float64{"tipPercentage": percent}
	if err := c.do(ctx, http.MethodPut, restaurantPath(restaurantID, "/cart/tip"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetTipAmount(ctx context.Context, restaurantID int64, amount float64) (*Cart, error) {
	var out Cart
	body := map[string]float64{"tipAmount": amount}
	if err := c.do(ctx, http.MethodPut, restaurantPath(restaurantID, "/cart/tip"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearCart(ctx context.Context, restaurantID int64) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodDelete, restaurantPath(restaurantID, "/cart/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrCheckoutInFlight rejects a second submit while one is outstanding. The
// server does not deduplicate; this guard is the only protection.
var ErrCheckoutInFlight = errors.New("a checkout is already in progress")

func (c *Client) Checkout(ctx context.Context, restaurantID int64, form CheckoutForm) (*CheckoutResult, error) {
	if !c.checkoutInFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInFlight
	}
	defer c.checkoutInFlight.Store(false)

	var out CheckoutResult
	if err := c.do(ctx, http.MethodPost, restaurantPath(restaurantID, "/checkout"), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyOrders(ctx context.Context, restaurantID int64) ([]Order, error) {
	var out struct {
		Orders []Order `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, restaurantPath(restaurantID, "/orders/mine"), nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/", nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

func (c *Client) UnreadNotificationCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/unread-count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("/api/notifications/%d/read", notificationID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/notifications/read-all", nil, nil)
}
