package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"qrdine-order-service/internal/cart"
	"qrdine-order-service/internal/checkout"
	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/internal/queue"
	"qrdine-order-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OrderPlacer persists a validated checkout as an order. It returns
// pgx.ErrNoRows when the restaurant does not exist.
type OrderPlacer func(ctx context.Context, id *middleware.Identity, req checkout.OrderRequest) (orderID int64, orderNumber string, err error)

// Checkout submits the caller's cart as an order. The flow is strict: reject
// empty carts, validate the form, insert the order and its items in one
// transaction, publish the lifecycle event, and only then clear the cart. A
// failed insert leaves the cart untouched so the customer can retry.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := middleware.GetIdentity(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "No caller identity")
		return
	}
	restaurantID, err := readPathInt64(r, "restaurantId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	var form checkout.Form
	if err := decodeBody(r, &form); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	form.Normalize()
	if fields := form.Validate(); len(fields) > 0 {
		response.FieldErrors(w, fields)
		return
	}

	key := cartKey(id, restaurantID)
	c, err := h.Carts.Load(ctx, key)
	if err != nil {
		h.Logger.Error("cart load failed", zap.String("key", key), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	if len(c.Lines) == 0 {
		response.Error(w, http.StatusBadRequest, "EMPTY_CART", "Cannot check out an empty cart")
		return
	}

	req := checkout.BuildOrderRequest(restaurantID, c, form)
	place := h.Orders
	if place == nil {
		place = h.insertOrder
	}
	orderID, orderNumber, err := place(ctx, id, req)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}
	if err != nil {
		h.Logger.Error("order insert failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "ORDER_FAILED", "Failed to place order")
		return
	}

	h.publishOrderEvent(ctx, queue.RKOrderCreated, queue.OrderEvent{
		OrderID:      orderID,
		RestaurantID: restaurantID,
		OrderNumber:  orderNumber,
		Status:       "RECEIVED",
		Recipient:    id.Key(),
		Total:        req.Total,
	})

	// The cart is cleared only after the order exists. Losing this delete is
	// acceptable; losing the order is not.
	if err := h.Carts.Delete(ctx, key); err != nil {
		h.Logger.Warn("cart clear after checkout failed", zap.String("key", key), zap.Error(err))
	}

	response.Created(w, map[string]any{
		"orderId":     orderID,
		"orderNumber": orderNumber,
		"status":      "RECEIVED",
		"total":       req.Total,
		"cart":        cartView(cart.New()),
	}, "Order placed")
}

func (h *Handler) insertOrder(ctx context.Context, id *middleware.Identity, req checkout.OrderRequest) (int64, string, error) {
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		return 0, "", err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `select exists(select 1 from restaurants where id = $1)`, req.RestaurantID).Scan(&exists); err != nil {
		return 0, "", err
	}
	if !exists {
		return 0, "", pgx.ErrNoRows
	}

	orderNumber, err := nextOrderNumber(ctx, tx, req.RestaurantID)
	if err != nil {
		return 0, "", err
	}

	var customerUserID *int64
	var guestID *string
	customerName := req.GuestName
	customerEmail := req.GuestEmail
	if id.IsAuthenticated() && !req.CheckoutAsGuest {
		customerUserID = &id.UserID
		if customerEmail == "" {
			customerEmail = id.Email
		}
	} else if id.GuestID != "" {
		guestID = &id.GuestID
	}

	var tableNumber *string
	if req.TableNumber != "" {
		tableNumber = &req.TableNumber
	}
	var passengers *int
	if req.NumberOfPassengers > 0 {
		passengers = &req.NumberOfPassengers
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		insert into orders (
			restaurant_id, order_number, customer_user_id, guest_id,
			customer_name, customer_email,
			order_type, table_number, number_of_passengers, payment_method,
			status, subtotal, tip_percent, tip_amount, total_amount
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'RECEIVED', $11, $12, $13, $14)
		returning id
	`, req.RestaurantID, orderNumber, customerUserID, guestID,
		customerName, customerEmail,
		req.OrderType, tableNumber, passengers, req.PaymentMethod,
		req.Subtotal, req.TipPercent, req.TipValue, req.Total).Scan(&orderID)
	if err != nil {
		return 0, "", err
	}

	for _, item := range req.Items {
		var optionID, optionName *string
		if item.PriceOptionID != "" {
			optionID = &item.PriceOptionID
			optionName = &item.PriceOptionName
		}
		if _, err := tx.Exec(ctx, `
			insert into order_items (
				order_id, menu_item_id, name, quantity, unit_price, total_price,
				special_instructions, price_option_id, price_option_name
			)
			values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, orderID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice, item.TotalPrice,
			item.SpecialInstructions, optionID, optionName); err != nil {
			return 0, "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, "", err
	}
	return orderID, orderNumber, nil
}

// nextOrderNumber allocates ORD-YYYYMMDD-NNNN, a per-restaurant daily
// sequence. The advisory lock serializes allocation per restaurant for the
// duration of the transaction.
func nextOrderNumber(ctx context.Context, tx pgx.Tx, restaurantID int64) (string, error) {
	if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, restaurantID); err != nil {
		return "", err
	}

	day := time.Now().UTC().Format("20060102")
	prefix := "ORD-" + day + "-"

	var next int
	err := tx.QueryRow(ctx, `
		select coalesce(max(substring(order_number from 14)::int), 0) + 1
		from orders
		where restaurant_id = $1 and order_number like $2 || '%'
	`, restaurantID, prefix).Scan(&next)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}
