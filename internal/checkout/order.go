package checkout

import (
	"qrdine-order-service/internal/cart"
)

// OrderItemSnapshot freezes a cart line at submit time; later menu edits
// cannot change what was ordered.
type OrderItemSnapshot struct {
	MenuItemID          int64   `json:"menuItemId"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unitPrice"`
	TotalPrice          float64 `json:"totalPrice"`
	SpecialInstructions string  `json:"specialInstructions,omitempty"`
	PriceOptionID       string  `json:"priceOptionId,omitempty"`
	PriceOptionName     string  `json:"priceOptionName,omitempty"`
}

type OrderRequest struct {
	RestaurantID       int64               `json:"restaurantId"`
	OrderType          string              `json:"orderType"`
	TableNumber        string              `json:"tableNumber,omitempty"`
	NumberOfPassengers int                 `json:"numberOfPassengers,omitempty"`
	PaymentMethod      string              `json:"paymentMethod"`
	CheckoutAsGuest    bool                `json:"checkoutAsGuest"`
	GuestName          string              `json:"guestName,omitempty"`
	GuestEmail         string              `json:"guestEmail,omitempty"`
	Items              []OrderItemSnapshot `json:"items"`
	Subtotal           float64             `json:"subtotal"`
	TipPercent         *float64            `json:"tipPercentage,omitempty"`
	TipValue           float64             `json:"tipValue"`
	Total              float64             `json:"total"`
}

// BuildOrderRequest assembles the outbound order from current cart state and
// a validated form. Totals are derived here, once, from the same arithmetic
// the cart exposes.
func BuildOrderRequest(restaurantID int64, c *cart.Cart, form Form) OrderRequest {
	items := make([]OrderItemSnapshot, 0, len(c.Lines))
	for _, line := range c.Lines {
		snap := OrderItemSnapshot{
			MenuItemID:          line.ItemID,
			Name:                line.Name,
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice(),
			TotalPrice:          line.LineTotal(),
			SpecialInstructions: line.SpecialInstructions,
		}
		if line.SelectedPriceOption != nil {
			snap.PriceOptionID = line.SelectedPriceOption.ID
			snap.PriceOptionName = line.SelectedPriceOption.OptionName
		}
		items = append(items, snap)
	}

	return OrderRequest{
		RestaurantID:       restaurantID,
		OrderType:          form.OrderType,
		TableNumber:        form.TableNumber,
		NumberOfPassengers: form.Passengers(),
		PaymentMethod:      form.PaymentMethod,
		CheckoutAsGuest:    form.CheckoutAsGuest,
		GuestName:          form.GuestName,
		GuestEmail:         form.GuestEmail,
		Items:              items,
		Subtotal:           c.Subtotal(),
		TipPercent:         c.TipPercent,
		TipValue:           c.TipValue(),
		Total:              c.Total(),
	}
}
