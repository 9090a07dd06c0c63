package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/internal/queue"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errMissingParam = errors.New("missing param")

func readPathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func readPathInt64(r *http.Request, key string) (int64, error) {
	value := readPathString(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

func readPathInt(r *http.Request, key string) (int, error) {
	value := readPathString(r, key)
	if value == "" {
		return 0, errMissingParam
	}
	var out int
	_, err := fmt.Sscan(value, &out)
	return out, err
}

func decodeBody(r *http.Request, dest any) error {
	return json.NewDecoder(r.Body).Decode(dest)
}

// cartKey scopes cart storage to one caller at one restaurant.
func cartKey(id *middleware.Identity, restaurantID int64) string {
	return fmt.Sprintf("%s:%d", id.Key(), restaurantID)
}

// publishOrderEvent is best-effort: ordering must not depend on the broker
// being reachable.
func (h *Handler) publishOrderEvent(ctx context.Context, routingKey string, evt queue.OrderEvent) {
	if h.Queue == nil {
		return
	}
	evt.Type = routingKey
	if err := h.Queue.PublishJSON(ctx, queue.EventsExchange, routingKey, evt); err != nil {
		h.Logger.Warn("event publish failed",
			zap.String("routingKey", routingKey),
			zap.Int64("orderId", evt.OrderID),
			zap.Error(err))
	}
}

func (h *Handler) logActivity(ctx context.Context, actor, action, detail string) {
	if _, err := h.DB.Exec(ctx, `
		insert into activity_logs (actor, action, detail) values ($1, $2, $3)
	`, actor, action, detail); err != nil {
		h.Logger.Warn("activity log write failed", zap.String("action", action), zap.Error(err))
	}
}
