package handlers

import (
	"net/http"
	"strings"

	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"go.uber.org/zap"
)

type categoryRequest struct {
	MenuID   *int64 `json:"menuId"`
	Name     string `json:"name"`
	Position *int   `json:"position"`
	IsActive *bool  `json:"isActive"`
}

func (h *Handler) OwnerListCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select id, menu_id, name, position, is_active
		from categories where restaurant_id = $1 order by position, id
	`, restaurantID)
	if err != nil {
		h.Logger.Error("category list query failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load categories")
		return
	}
	defer rows.Close()

	categories := make([]CategorySummary, 0)
	for rows.Next() {
		var c CategorySummary
		if err := rows.Scan(&c.ID, &c.MenuID, &c.Name, &c.Position, &c.IsActive); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load categories")
			return
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load categories")
		return
	}

	response.Success(w, map[string]any{"categories": categories})
}

func (h *Handler) OwnerCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	var body categoryRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Category name is required")
		return
	}
	if body.MenuID != nil && !h.menuBelongsToRestaurant(r, *body.MenuID, restaurantID) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Menu does not belong to this restaurant")
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

	var c CategorySummary
	err := h.DB.QueryRow(ctx, `
		insert into categories (restaurant_id, menu_id, name, position, is_active)
		values ($1, $2, $3, $4, $5)
		returning id, menu_id, name, position, is_active
	`, restaurantID, body.MenuID, body.Name, position, active).
		Scan(&c.ID, &c.MenuID, &c.Name, &c.Position, &c.IsActive)
	if err != nil {
		h.Logger.Error("category insert failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create category")
		return
	}

	response.Created(w, c, "Category created")
}

func (h *Handler) OwnerUpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	categoryID, err := readPathInt64(r, "categoryId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category id")
		return
	}

	var body categoryRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.MenuID != nil && !h.menuBelongsToRestaurant(r, *body.MenuID, restaurantID) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Menu does not belong to this restaurant")
		return
	}

	var c CategorySummary
	err = h.DB.QueryRow(ctx, `
		update categories set
			menu_id = coalesce($1, menu_id),
			name = coalesce(nullif($2, ''), name),
			position = coalesce($3, position),
			is_active = coalesce($4, is_active),
			updated_at = now()
		where id = $5 and restaurant_id = $6
		returning id, menu_id, name, position, is_active
	`, body.MenuID, strings.TrimSpace(body.Name), body.Position, body.IsActive,
		categoryID, restaurantID).
		Scan(&c.ID, &c.MenuID, &c.Name, &c.Position, &c.IsActive)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	response.Success(w, c)
}

// OwnerDeleteCategory removes a category. Its items are soft-deleted with it
// so order history keeps pointing at real rows.
func (h *Handler) OwnerDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	categoryID, err := readPathInt64(r, "categoryId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category id")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete category")
		return
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		update menu_items set deleted_at = now(), category_id = null
		where category_id = $1 and restaurant_id = $2 and deleted_at is null
	`, categoryID, restaurantID); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete category")
		return
	}

	tag, err := tx.Exec(ctx, `
		delete from categories where id = $1 and restaurant_id = $2
	`, categoryID, restaurantID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete category")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Category not found")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete category")
		return
	}

	response.Success(w, map[string]any{"deleted": categoryID})
}

func (h *Handler) menuBelongsToRestaurant(r *http.Request, menuID, restaurantID int64) bool {
	var ok bool
	err := h.DB.QueryRow(r.Context(), `
		select exists(select 1 from menus where id = $1 and restaurant_id = $2)
	`, menuID, restaurantID).Scan(&ok)
	return err == nil && ok
}
