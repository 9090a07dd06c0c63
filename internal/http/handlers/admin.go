package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"qrdine-order-service/internal/auth"
	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"go.uber.org/zap"
)

type ownerAccount struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	IsApproved     bool      `json:"isApproved"`
	IsActive       bool      `json:"isActive"`
	RestaurantID   *int64    `json:"restaurantId"`
	RestaurantName *string   `json:"restaurantName"`
	CreatedAt      time.Time `json:"createdAt"`
}

type activityLogEntry struct {
	ID        int64     `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}

// AdminListOwners lists restaurant owner accounts for the approval queue.
// ?pending=true narrows to accounts still waiting.
func (h *Handler) AdminListOwners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := `
		select u.id, u.email, u.first_name, u.last_name, u.is_approved, u.is_active,
		       r.id, r.name, u.created_at
		from users u
		left join restaurants r on r.owner_id = u.id
		where u.role = $1`
	args := []any{string(auth.RoleRestaurantOwner)}
	if r.URL.Query().Get("pending") == "true" {
		query += ` and not u.is_approved`
	}
	query += ` order by u.created_at desc limit 200`

	rows, err := h.DB.Query(ctx, query, args...)
	if err != nil {
		h.Logger.Error("owner list query failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load owners")
		return
	}
	defer rows.Close()

	owners := make([]ownerAccount, 0)
	for rows.Next() {
		var o ownerAccount
		if err := rows.Scan(&o.ID, &o.Email, &o.FirstName, &o.LastName, &o.IsApproved, &o.IsActive,
			&o.RestaurantID, &o.RestaurantName, &o.CreatedAt); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load owners")
			return
		}
		owners = append(owners, o)
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load owners")
		return
	}

	response.Success(w, map[string]any{"owners": owners})
}

func (h *Handler) AdminApproveOwner(w http.ResponseWriter, r *http.Request) {
	h.setOwnerFlags(w, r, "approve")
}

func (h *Handler) AdminSuspendOwner(w http.ResponseWriter, r *http.Request) {
	h.setOwnerFlags(w, r, "suspend")
}

func (h *Handler) setOwnerFlags(w http.ResponseWriter, r *http.Request, action string) {
	ctx := r.Context()
	ownerID, err := readPathInt64(r, "ownerId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid owner id")
		return
	}

	var query string
	switch action {
	case "approve":
		query = `update users set is_approved = true, is_active = true, updated_at = now()
		         where id = $1 and role = $2 returning email`
	case "suspend":
		query = `update users set is_active = false, updated_at = now()
		         where id = $1 and role = $2 returning email`
	}

	var email string
	if err := h.DB.QueryRow(ctx, query, ownerID, string(auth.RoleRestaurantOwner)).Scan(&email); err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Owner not found")
		return
	}

	actor := ""
	if id, ok := middleware.GetIdentity(ctx); ok {
		actor = id.Email
	}
	h.logActivity(ctx, actor, "owner."+action, email)

	response.Success(w, map[string]any{"id": ownerID, "action": action})
}

func (h *Handler) AdminListActivityLogs(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `
		select id, actor, action, detail, created_at
		from activity_logs order by created_at desc limit 200
	`)
	if err != nil {
		h.Logger.Error("activity log query failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load activity logs")
		return
	}
	defer rows.Close()

	entries := make([]activityLogEntry, 0)
	for rows.Next() {
		var e activityLogEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load activity logs")
			return
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load activity logs")
		return
	}

	response.Success(w, map[string]any{"logs": entries})
}

func (h *Handler) AdminGetSettings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `select key, value from system_settings order by key`)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load settings")
		return
	}
	defer rows.Close()

	settings := map[string]any{}
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load settings")
			return
		}
		var value any
		_ = json.Unmarshal(raw, &value)
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load settings")
		return
	}

	response.Success(w, map[string]any{"settings": settings})
}

// AdminPutSettings upserts each submitted key. Values are arbitrary JSON.
func (h *Handler) AdminPutSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body map[string]any
	if err := decodeBody(r, &body); err != nil || len(body) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "A settings object is required")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings")
		return
	}
	defer tx.Rollback(ctx)

	for key, value := range body {
		raw, err := json.Marshal(value)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Setting values must be JSON-encodable")
			return
		}
		if _, err := tx.Exec(ctx, `
			insert into system_settings (key, value, updated_at)
			values ($1, $2, now())
			on conflict (key) do update set value = excluded.value, updated_at = now()
		`, key, raw); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings")
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save settings")
		return
	}

	if id, ok := middleware.GetIdentity(ctx); ok {
		h.logActivity(ctx, id.Email, "settings.updated", "")
	}

	response.Success(w, map[string]any{"updated": len(body)})
}
