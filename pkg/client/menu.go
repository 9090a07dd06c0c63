package client

import (
	"context"
	"errors"
	"net/http"
)

// FallbackMenu is the placeholder shown when the service is unreachable and
// the caller has nothing cached.
func FallbackMenu(restaurantID int64) *Menu {
	return &Menu{
		Restaurant: Restaurant{
			ID:       restaurantID,
			Name:     "Menu unavailable",
			Currency: "USD",
			IsOpen:   false,
			Settings: map[string]any{},
		},
		Categories: []MenuCategory{},
	}
}

func (c *Client) FetchMenu(ctx context.Context, restaurantID int64) (*Menu, error) {
	var out Menu
	if err := c.do(ctx, http.MethodGet, restaurantPath(restaurantID, "/menu"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchMenuOrFallback returns the live menu, or the supplied fallback when
// the service is unreachable. Server-side errors (a deleted restaurant, say)
// still surface as errors; only connectivity degrades to the fallback.
func (c *Client) FetchMenuOrFallback(ctx context.Context, restaurantID int64, fallback *Menu) (*Menu, bool, error) {
	menu, err := c.FetchMenu(ctx, restaurantID)
	if err == nil {
		return menu, false, nil
	}

	var connErr *ErrConnectivity
	if errors.As(err, &connErr) {
		if fallback == nil {
			fallback = FallbackMenu(restaurantID)
		}
		return fallback, true, nil
	}
	return nil, false, err
}
