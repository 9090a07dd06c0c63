// Package checkout validates the checkout form and assembles the outbound
// order from cart state.
package checkout

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeaway = "takeaway"

	PaymentCash = "cash"
	PaymentCard = "card"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Form struct {
	OrderType          string `json:"orderType"`
	TableNumber        string `json:"tableNumber"`
	NumberOfPassengers string `json:"numberOfPassengers"`
	PaymentMethod      string `json:"paymentMethod"`
	CheckoutAsGuest    bool   `json:"checkoutAsGuest"`
	GuestName          string `json:"guestName"`
	GuestEmail         string `json:"guestEmail"`
}

// Normalize clears the dine-in-only fields when the order type is anything
// else. Switching away from dine-in resets table and passenger input rather
// than carrying it along.
func (f *Form) Normalize() {
	f.OrderType = strings.ToLower(strings.TrimSpace(f.OrderType))
	f.PaymentMethod = strings.ToLower(strings.TrimSpace(f.PaymentMethod))
	f.TableNumber = strings.TrimSpace(f.TableNumber)
	f.NumberOfPassengers = strings.TrimSpace(f.NumberOfPassengers)
	f.GuestName = strings.TrimSpace(f.GuestName)
	f.GuestEmail = strings.TrimSpace(f.GuestEmail)

	if f.OrderType != OrderTypeDineIn {
		f.TableNumber = ""
		f.NumberOfPassengers = ""
	}
}

// Validate returns a field->message map; an empty map means the form may be
// submitted. Guest name and email are always optional; only the email format
// is checked, and only when non-empty.
func (f *Form) Validate() map[string]string {
	errs := map[string]string{}

	switch f.OrderType {
	case OrderTypeDineIn:
		if f.TableNumber == "" {
			errs["tableNumber"] = "Table number is required for dine-in orders"
		}
		passengers, err := strconv.Atoi(f.NumberOfPassengers)
		if f.NumberOfPassengers == "" {
			errs["numberOfPassengers"] = "Number of guests is required for dine-in orders"
		} else if err != nil || passengers <= 0 {
			errs["numberOfPassengers"] = "Number of guests must be greater than 0"
		}
	case OrderTypeTakeaway:
		// table and passenger fields are not required
	default:
		errs["orderType"] = "Order type must be dine-in or takeaway"
	}

	if f.PaymentMethod != PaymentCash && f.PaymentMethod != PaymentCard {
		errs["paymentMethod"] = "Payment method must be cash or card"
	}

	if f.GuestEmail != "" && !emailPattern.MatchString(f.GuestEmail) {
		errs["guestEmail"] = "Please enter a valid email address"
	}

	return errs
}

func (f *Form) Passengers() int {
	n, err := strconv.Atoi(f.NumberOfPassengers)
	if err != nil {
		return 0
	}
	return n
}
