package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"go.uber.org/zap"
)

type restaurantUpdateRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Address     *string        `json:"address"`
	Phone       *string        `json:"phone"`
	Currency    *string        `json:"currency"`
	IsOpen      *bool          `json:"isOpen"`
	Settings    map[string]any `json:"settings"`
}

// OwnerGetRestaurant returns the owner's restaurant profile for the dashboard
// settings page.
func (h *Handler) OwnerGetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := middleware.GetRestaurantID(r.Context())
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	info, err := h.fetchRestaurant(r, restaurantID)
	if err != nil {
		h.Logger.Error("restaurant fetch failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load restaurant")
		return
	}
	response.Success(w, info)
}

// OwnerUpdateRestaurant applies a partial profile update. Settings replace
// wholesale; merging individual keys is the client's job.
func (h *Handler) OwnerUpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	var body restaurantUpdateRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Restaurant name cannot be empty")
		return
	}
	if body.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*body.Currency))
		if len(currency) < 1 || len(currency) > 8 {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid currency code")
			return
		}
		body.Currency = &currency
	}

	var settingsJSON []byte
	if body.Settings != nil {
		settingsJSON, _ = json.Marshal(body.Settings)
	}

	if _, err := h.DB.Exec(ctx, `
		update restaurants set
			name = coalesce($1, name),
			description = coalesce($2, description),
			address = coalesce($3, address),
			phone = coalesce($4, phone),
			currency = coalesce($5, currency),
			is_open = coalesce($6, is_open),
			settings = coalesce($7, settings),
			updated_at = now()
		where id = $8
	`, trimPtr(body.Name), trimPtr(body.Description), trimPtr(body.Address), trimPtr(body.Phone),
		body.Currency, body.IsOpen, settingsJSON, restaurantID); err != nil {
		h.Logger.Error("restaurant update failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update restaurant")
		return
	}

	info, err := h.fetchRestaurant(r, restaurantID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load restaurant")
		return
	}
	response.Success(w, info)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
