package handlers

import (
	"net/http"
	"strings"

	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"go.uber.org/zap"
)

type menuRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    *int   `json:"position"`
	IsActive    *bool  `json:"isActive"`
}

func (h *Handler) OwnerListMenus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select id, name, description, position, is_active
		from menus where restaurant_id = $1 order by position, id
	`, restaurantID)
	if err != nil {
		h.Logger.Error("menu list query failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menus")
		return
	}
	defer rows.Close()

	menus := make([]MenuSummary, 0)
	for rows.Next() {
		var m MenuSummary
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Position, &m.IsActive); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menus")
			return
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menus")
		return
	}

	response.Success(w, map[string]any{"menus": menus})
}

func (h *Handler) OwnerCreateMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	var body menuRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Menu name is required")
		return
	}

	position := 0
	if body.Position != nil {
		position = *body.Position
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}

	var m MenuSummary
	err := h.DB.QueryRow(ctx, `
		insert into menus (restaurant_id, name, description, position, is_active)
		values ($1, $2, $3, $4, $5)
		returning id, name, description, position, is_active
	`, restaurantID, body.Name, strings.TrimSpace(body.Description), position, active).
		Scan(&m.ID, &m.Name, &m.Description, &m.Position, &m.IsActive)
	if err != nil {
		h.Logger.Error("menu insert failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create menu")
		return
	}

	response.Created(w, m, "Menu created")
}

func (h *Handler) OwnerUpdateMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	menuID, err := readPathInt64(r, "menuId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid menu id")
		return
	}

	var body menuRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var m MenuSummary
	err = h.DB.QueryRow(ctx, `
		update menus set
			name = coalesce(nullif($1, ''), name),
			description = coalesce($2, description),
			position = coalesce($3, position),
			is_active = coalesce($4, is_active),
			updated_at = now()
		where id = $5 and restaurant_id = $6
		returning id, name, description, position, is_active
	`, strings.TrimSpace(body.Name), nilIfEmpty(body.Description), body.Position, body.IsActive,
		menuID, restaurantID).
		Scan(&m.ID, &m.Name, &m.Description, &m.Position, &m.IsActive)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}

	response.Success(w, m)
}

func (h *Handler) OwnerDeleteMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	menuID, err := readPathInt64(r, "menuId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid menu id")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete menu")
		return
	}
	defer tx.Rollback(ctx)

	// Categories keep their items; they just detach from the deleted menu.
	if _, err := tx.Exec(ctx, `
		update categories set menu_id = null where menu_id = $1 and restaurant_id = $2
	`, menuID, restaurantID); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete menu")
		return
	}

	tag, err := tx.Exec(ctx, `
		delete from menus where id = $1 and restaurant_id = $2
	`, menuID, restaurantID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete menu")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Menu not found")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete menu")
		return
	}

	response.Success(w, map[string]any{"deleted": menuID})
}

func nilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
