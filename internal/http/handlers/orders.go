package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/internal/queue"
	"qrdine-order-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Order lifecycle. Transitions only move forward, except that CANCELLED is
// reachable from any non-terminal status.
var statusTransitions = map[string][]string{
	"RECEIVED":  {"PREPARING", "CANCELLED"},
	"PREPARING": {"READY", "CANCELLED"},
	"READY":     {"COMPLETED", "CANCELLED"},
	"COMPLETED": {},
	"CANCELLED": {},
}

func validTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ListMyOrders returns the caller's order history for one restaurant, newest
// first. Guests see orders placed under their guest id; signed-in customers
// see orders tied to their account.
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
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

	query := `
		select id, restaurant_id, order_number, order_type, table_number, number_of_passengers,
		       payment_method, status, customer_name, customer_email,
		       subtotal, tip_percent, tip_amount, total_amount, created_at, updated_at, completed_at
		from orders
		where restaurant_id = $1 and `
	var arg any
	if id.IsAuthenticated() {
		query += `customer_user_id = $2`
		arg = id.UserID
	} else {
		query += `guest_id = $2`
		arg = id.GuestID
	}
	query += ` order by created_at desc limit 50`

	rows, err := h.DB.Query(ctx, query, restaurantID, arg)
	if err != nil {
		h.Logger.Error("order history query failed", zap.String("caller", id.Key()), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}
	orders, err := scanOrders(rows)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}

	if err := h.attachItems(ctx, orders); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}
	response.Success(w, map[string]any{"orders": orders})
}

// OwnerListOrders returns the restaurant's orders, optionally filtered by
// status via ?status=.
func (h *Handler) OwnerListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	query := `
		select id, restaurant_id, order_number, order_type, table_number, number_of_passengers,
		       payment_method, status, customer_name, customer_email,
		       subtotal, tip_percent, tip_amount, total_amount, created_at, updated_at, completed_at
		from orders
		where restaurant_id = $1`
	args := []any{restaurantID}
	if status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))); status != "" {
		if _, known := statusTransitions[status]; !known {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status filter")
			return
		}
		query += ` and status = $2`
		args = append(args, status)
	}
	query += ` order by created_at desc limit 200`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		h.Logger.Error("owner order query failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}
	orders, err := scanOrders(rows)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}
	if err := h.attachItems(ctx, orders); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load orders")
		return
	}
	response.Success(w, map[string]any{"orders": orders})
}

func (h *Handler) OwnerGetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	order, err := h.fetchOrder(ctx, restaurantID, orderID)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}
	response.Success(w, order)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

// OwnerUpdateOrderStatus moves an order along the lifecycle and publishes the
// status event so the customer's notification lands.
func (h *Handler) OwnerUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	var body statusUpdateRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	newStatus := strings.ToUpper(strings.TrimSpace(body.Status))
	if _, known := statusTransitions[newStatus]; !known {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status")
		return
	}

	var (
		current     string
		orderNumber string
		recipient   *string
		userID      *int64
		guestID     *string
	)
	err = h.DB.QueryRow(ctx, `
		select status, order_number, customer_user_id, guest_id
		from orders where id = $1 and restaurant_id = $2
	`, orderID, restaurantID).Scan(&current, &orderNumber, &userID, &guestID)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order")
		return
	}
	if !validTransition(current, newStatus) {
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION",
			"Cannot move order from "+current+" to "+newStatus)
		return
	}

	var completedAt *time.Time
	if newStatus == "COMPLETED" {
		now := time.Now().UTC()
		completedAt = &now
	}
	if _, err := h.DB.Exec(ctx, `
		update orders set status = $1, updated_at = now(), completed_at = coalesce($2, completed_at)
		where id = $3
	`, newStatus, completedAt, orderID); err != nil {
		h.Logger.Error("order status update failed", zap.Int64("orderId", orderID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order")
		return
	}

	if userID != nil {
		key := "user:" + strconv.FormatInt(*userID, 10)
		recipient = &key
	} else if guestID != nil {
		recipient = guestID
	}

	now := time.Now().UTC()
	evt := queue.OrderEvent{
		OrderID:      orderID,
		RestaurantID: restaurantID,
		OrderNumber:  orderNumber,
		Status:       newStatus,
		UpdatedAt:    &now,
	}
	if recipient != nil {
		evt.Recipient = *recipient
	}
	h.publishOrderEvent(ctx, queue.RKOrderStatusUpdated, evt)

	response.Success(w, map[string]any{"id": orderID, "status": newStatus})
}

func (h *Handler) fetchOrder(ctx context.Context, restaurantID, orderID int64) (*OrderDetail, error) {
	row := h.DB.QueryRow(ctx, `
		select id, restaurant_id, order_number, order_type, table_number, number_of_passengers,
		       payment_method, status, customer_name, customer_email,
		       subtotal, tip_percent, tip_amount, total_amount, created_at, updated_at, completed_at
		from orders where id = $1 and restaurant_id = $2
	`, orderID, restaurantID)

	var o OrderDetail
	if err := scanOrderRow(row, &o); err != nil {
		return nil, err
	}
	orders := []*OrderDetail{&o}
	if err := h.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderRow(row rowScanner, o *OrderDetail) error {
	return row.Scan(&o.ID, &o.RestaurantID, &o.OrderNumber, &o.OrderType, &o.TableNumber,
		&o.NumberOfPassengers, &o.PaymentMethod, &o.Status, &o.CustomerName, &o.CustomerEmail,
		&o.Subtotal, &o.TipPercent, &o.TipAmount, &o.Total, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
}

func scanOrders(rows pgx.Rows) ([]*OrderDetail, error) {
	defer rows.Close()
	orders := make([]*OrderDetail, 0)
	for rows.Next() {
		var o OrderDetail
		if err := scanOrderRow(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

func (h *Handler) attachItems(ctx context.Context, orders []*OrderDetail) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*OrderDetail, len(orders))
	for _, o := range orders {
		o.Items = []OrderItemView{}
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := h.DB.Query(ctx, `
		select id, order_id, menu_item_id, name, quantity, unit_price, total_price,
		       special_instructions, price_option_id, price_option_name
		from order_items where order_id = any($1) order by id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    OrderItemView
			orderID int64
		)
		if err := rows.Scan(&item.ID, &orderID, &item.MenuItemID, &item.Name, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice, &item.SpecialInstructions,
			&item.PriceOptionID, &item.PriceOptionName); err != nil {
			return err
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}
