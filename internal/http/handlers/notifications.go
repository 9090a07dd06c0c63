package handlers

import (
	"net/http"

	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"go.uber.org/zap"
)

// ListNotifications returns the caller's notifications, newest first. The
// recipient key is the same for signed-in users and guests, so guests see
// their order updates without an account.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := middleware.GetIdentity(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "No caller identity")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select id, kind, title, body, is_read, created_at
		from notifications
		where recipient = $1
		order by created_at desc
		limit 50
	`, id.Key())
	if err != nil {
		h.Logger.Error("notification query failed", zap.String("recipient", id.Key()), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load notifications")
		return
	}
	defer rows.Close()

	notifications := make([]NotificationView, 0)
	for rows.Next() {
		var n NotificationView
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load notifications")
			return
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load notifications")
		return
	}

	response.Success(w, map[string]any{"notifications": notifications})
}

// UnreadNotificationCount backs the badge poller.
func (h *Handler) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "No caller identity")
		return
	}

	var count int
	err := h.DB.QueryRow(r.Context(), `
		select count(*) from notifications where recipient = $1 and not is_read
	`, id.Key()).Scan(&count)
	if err != nil {
		h.Logger.Error("unread count query failed", zap.String("recipient", id.Key()), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to count notifications")
		return
	}

	response.Success(w, map[string]any{"count": count})
}

// MarkNotificationRead flips one notification. Scoped to the caller's
// recipient key so nobody can mark someone else's rows.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "No caller identity")
		return
	}
	notificationID, err := readPathInt64(r, "notificationId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid notification id")
		return
	}

	tag, err := h.DB.Exec(r.Context(), `
		update notifications set is_read = true where id = $1 and recipient = $2
	`, notificationID, id.Key())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update notification")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Notification not found")
		return
	}

	response.Success(w, map[string]any{"id": notificationID, "isRead": true})
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "No caller identity")
		return
	}

	tag, err := h.DB.Exec(r.Context(), `
		update notifications set is_read = true where recipient = $1 and not is_read
	`, id.Key())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update notifications")
		return
	}

	response.Success(w, map[string]any{"updated": tag.RowsAffected()})
}
