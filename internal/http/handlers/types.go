package handlers

import (
	"time"

	"qrdine-order-service/internal/cart"
)

type UserProfile struct {
	ID              int64  `json:"id"`
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

type RestaurantInfo struct {
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

type MenuSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
	IsActive    bool   `json:"isActive"`
}

type CategorySummary struct {
	ID       int64  `json:"id"`
	MenuID   *int64 `json:"menuId"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsActive bool   `json:"isActive"`
}

type MenuItemDetail struct {
	ID           int64              `json:"id"`
	CategoryID   *int64             `json:"categoryId"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Price        *float64           `json:"price"`
	PriceDisplay string             `json:"priceDisplay"`
	PriceOptions []cart.PriceOption `json:"priceOptions"`
	ImageURL     *string            `json:"imageUrl"`
	Position     int                `json:"position"`
	IsActive     bool               `json:"isActive"`
}

type PublicCategory struct {
	ID    int64            `json:"id"`
	Name  string           `json:"name"`
	Items []MenuItemDetail `json:"items"`
}

type PublicMenu struct {
	Restaurant RestaurantInfo   `json:"restaurant"`
	Categories []PublicCategory `json:"categories"`
}

type CartView struct {
	Items      []cart.Line `json:"items"`
	ItemCount  int         `json:"cartItemsCount"`
	TipPercent *float64    `json:"tipPercentage,omitempty"`
	TipAmount  *float64    `json:"tipAmount,omitempty"`
	Subtotal   float64     `json:"subtotal"`
	TipValue   float64     `json:"tipValue"`
	Total      float64     `json:"cartTotal"`
}

type OrderItemView struct {
	ID                  int64   `json:"id"`
	MenuItemID          *int64  `json:"menuItemId"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unitPrice"`
	TotalPrice          float64 `json:"totalPrice"`
	SpecialInstructions string  `json:"specialInstructions,omitempty"`
	PriceOptionID       *string `json:"priceOptionId,omitempty"`
	PriceOptionName     *string `json:"priceOptionName,omitempty"`
}

type OrderDetail struct {
	ID                 int64           `json:"id"`
	RestaurantID       int64           `json:"restaurantId"`
	OrderNumber        string          `json:"orderNumber"`
	OrderType          string          `json:"orderType"`
	TableNumber        *string         `json:"tableNumber"`
	NumberOfPassengers *int            `json:"numberOfPassengers"`
	PaymentMethod      string          `json:"paymentMethod"`
	Status             string          `json:"status"`
	CustomerName       string          `json:"customerName"`
	CustomerEmail      string          `json:"customerEmail,omitempty"`
	Subtotal           float64         `json:"subtotal"`
	TipPercent         *float64        `json:"tipPercentage,omitempty"`
	TipAmount          float64         `json:"tipAmount"`
	Total              float64         `json:"total"`
	Items              []OrderItemView `json:"items"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	CompletedAt        *time.Time      `json:"completedAt"`
}

type NotificationView struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
