package client

import "time"

type User struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

type Restaurant struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Address     string         `json:"address"`
	Phone       string         `json:"phone"`
	Currency    string         `json:"currency"`
	LogoURL     *string        `json:"logoUrl"`
	BannerURL   *string        `json:"bannerUrl"`
	IsOpen      bool           `json:"isOpen"`
	Settings    map[string]any `json:"settings"`
}

type PriceOption struct {
	ID         string  `json:"id"`
	OptionName string  `json:"optionName"`
	Price      float64 `json:"price"`
}

type MenuItem struct {
	ID           int64         `json:"id"`
	CategoryID   *int64        `json:"categoryId"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Price        *float64      `json:"price"`
	PriceDisplay string        `json:"priceDisplay"`
	PriceOptions []PriceOption `json:"priceOptions"`
	ImageURL     *string       `json:"imageUrl"`
}

type MenuCategory struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

type Menu struct {
	Restaurant Restaurant     `json:"restaurant"`
	Categories []MenuCategory `json:"categories"`
}

type CartLine struct {
	ItemID              int64        `json:"itemId"`
	Name                string       `json:"name"`
	Price               float64      `json:"price"`
	PriceDisplay        string       `json:"priceDisplay,omitempty"`
	SelectedPriceOption *PriceOption `json:"selectedPriceOption,omitempty"`
	Quantity            int          `json:"quantity"`
	SpecialInstructions string       `json:"specialInstructions,omitempty"`
	AddedAt             time.Time    `json:"addedAt"`
}

type Cart struct {
	Items      []CartLine `json:"items"`
	ItemCount  int        `json:"cartItemsCount"`
	TipPercent *float64   `json:"tipPercentage,omitempty"`
	TipAmount  *float64   `json:"tipAmount,omitempty"`
	Subtotal   float64    `json:"subtotal"`
	TipValue   float64    `json:"tipValue"`
	Total      float64    `json:"cartTotal"`
}

type CheckoutForm struct {
	OrderType          string `json:"orderType"`
	TableNumber        string `json:"tableNumber,omitempty"`
	NumberOfPassengers string `json:"numberOfPassengers,omitempty"`
	PaymentMethod      string `json:"paymentMethod"`
	CheckoutAsGuest    bool   `json:"checkoutAsGuest"`
	GuestName          string `json:"guestName,omitempty"`
	GuestEmail         string `json:"guestEmail,omitempty"`
}

type CheckoutResult struct {
	OrderID     int64   `json:"orderId"`
	OrderNumber string  `json:"orderNumber"`
	Status      string  `json:"status"`
	Total       float64 `json:"total"`
	Cart        Cart    `json:"cart"`
}

type OrderItem struct {
	ID                  int64   `json:"id"`
	MenuItemID          *int64  `json:"menuItemId"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unitPrice"`
	TotalPrice          float64 `json:"totalPrice"`
	SpecialInstructions string  `json:"specialInstructions,omitempty"`
}

type Order struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	OrderType   string      `json:"orderType"`
	Status      string      `json:"status"`
	Subtotal    float64     `json:"subtotal"`
	TipAmount   float64     `json:"tipAmount"`
	Total       float64     `json:"total"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type Notification struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
