package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderEvent struct {
	Type         string     `json:"type"`
	OrderID      int64      `json:"orderId"`
	RestaurantID int64      `json:"restaurantId"`
	OrderNumber  string     `json:"orderNumber"`
	Status       string     `json:"status"`
	Recipient    string     `json:"recipient"`
	Total        float64    `json:"total,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// ProcessOrderEvent turns order lifecycle events into notification rows: the
// restaurant owner hears about new orders, the ordering customer (user or
// guest) hears about status changes.
func ProcessOrderEvent(ctx context.Context, db *pgxpool.Pool, body []byte) error {
	if db == nil {
		return nil
	}

	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}
	if strings.TrimSpace(evt.Type) == "" {
		// unknown envelope
		return nil
	}

	switch evt.Type {
	case RKOrderCreated:
		return notifyOrderCreated(ctx, db, evt)
	case RKOrderStatusUpdated:
		return notifyStatusUpdated(ctx, db, evt)
	default:
		return nil
	}
}

func notifyOrderCreated(ctx context.Context, db *pgxpool.Pool, evt OrderEvent) error {
	var ownerID int64
	var restaurantName string
	query := `
		select r.owner_id, r.name
		from restaurants r
		where r.id = $1
	`
	if err := db.QueryRow(ctx, query, evt.RestaurantID).Scan(&ownerID, &restaurantName); err != nil {
		return err
	}

	ownerRecipient := fmt.Sprintf("user:%d", ownerID)
	title := fmt.Sprintf("New order %s", evt.OrderNumber)
	body := fmt.Sprintf("A new order for %.2f was placed at %s.", evt.Total, restaurantName)
	if err := insertNotification(ctx, db, ownerRecipient, evt.RestaurantID, "order.created", title, body); err != nil {
		return err
	}

	if strings.TrimSpace(evt.Recipient) != "" && evt.Recipient != ownerRecipient {
		customerBody := fmt.Sprintf("Your order %s has been received by %s.", evt.OrderNumber, restaurantName)
		return insertNotification(ctx, db, evt.Recipient, evt.RestaurantID, "order.created", title, customerBody)
	}
	return nil
}

func notifyStatusUpdated(ctx context.Context, db *pgxpool.Pool, evt OrderEvent) error {
	if strings.TrimSpace(evt.Recipient) == "" {
		return nil
	}
	title := fmt.Sprintf("Order %s %s", evt.OrderNumber, strings.ToLower(evt.Status))
	body := fmt.Sprintf("Your order %s is now %s.", evt.OrderNumber, strings.ToLower(evt.Status))
	return insertNotification(ctx, db, evt.Recipient, evt.RestaurantID, "order.status", title, body)
}

func insertNotification(ctx context.Context, db *pgxpool.Pool, recipient string, restaurantID int64, kind, title, body string) error {
	_, err := db.Exec(ctx, `
		insert into notifications (recipient, restaurant_id, kind, title, body)
		values ($1, $2, $3, $4, $5)
	`, recipient, restaurantID, kind, title, body)
	return err
}
