package handlers

import (
	"encoding/json"
	"net/http"

	"qrdine-order-service/internal/cart"
	"qrdine-order-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// GetRestaurant serves the public restaurant profile shown at the top of the
// ordering page.
func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := readPathInt64(r, "restaurantId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	info, err := h.fetchRestaurant(r, restaurantID)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}
	if err != nil {
		h.Logger.Error("restaurant lookup failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load restaurant")
		return
	}

	response.Success(w, info)
}

// GetPublicMenu returns the full customer-facing menu: active categories with
// their active, non-deleted items, ordered by position.
func (h *Handler) GetPublicMenu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, err := readPathInt64(r, "restaurantId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id")
		return
	}

	info, err := h.fetchRestaurant(r, restaurantID)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Restaurant not found")
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select c.id, c.name,
		       i.id, i.category_id, coalesce(i.name, ''), coalesce(i.description, ''),
		       i.price, coalesce(i.price_display, ''), i.price_options, i.image_url, coalesce(i.position, 0)
		from categories c
		left join menu_items i
		  on i.category_id = c.id and i.is_active and i.deleted_at is null
		where c.restaurant_id = $1 and c.is_active
		order by c.position, c.id, i.position, i.id
	`, restaurantID)
	if err != nil {
		h.Logger.Error("menu query failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
		return
	}
	defer rows.Close()

	categories := make([]PublicCategory, 0)
	index := map[int64]int{}
	for rows.Next() {
		var (
			categoryID   int64
			categoryName string
			itemID       *int64
			item         MenuItemDetail
			optionsRaw   []byte
		)
		if err := rows.Scan(&categoryID, &categoryName,
			&itemID, &item.CategoryID, &item.Name, &item.Description,
			&item.Price, &item.PriceDisplay, &optionsRaw, &item.ImageURL, &item.Position); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
			return
		}

		pos, seen := index[categoryID]
		if !seen {
			pos = len(categories)
			index[categoryID] = pos
			categories = append(categories, PublicCategory{
				ID:    categoryID,
				Name:  categoryName,
				Items: []MenuItemDetail{},
			})
		}
		if itemID == nil {
			continue
		}
		item.ID = *itemID
		item.IsActive = true
		item.PriceOptions = decodePriceOptions(optionsRaw)
		categories[pos].Items = append(categories[pos].Items, item)
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load menu")
		return
	}

	response.Success(w, PublicMenu{Restaurant: info, Categories: categories})
}

func (h *Handler) fetchRestaurant(r *http.Request, restaurantID int64) (RestaurantInfo, error) {
	var (
		info        RestaurantInfo
		settingsRaw []byte
	)
	err := h.DB.QueryRow(r.Context(), `
		select id, name, coalesce(description, ''), coalesce(address, ''), coalesce(phone, ''),
		       currency, logo_url, banner_url, is_open, settings
		from restaurants where id = $1
	`, restaurantID).Scan(&info.ID, &info.Name, &info.Description, &info.Address, &info.Phone,
		&info.Currency, &info.LogoURL, &info.BannerURL, &info.IsOpen, &settingsRaw)
	if err != nil {
		return RestaurantInfo{}, err
	}
	if len(settingsRaw) > 0 {
		_ = json.Unmarshal(settingsRaw, &info.Settings)
	}
	if info.Settings == nil {
		info.Settings = map[string]any{}
	}
	return info, nil
}

func decodePriceOptions(raw []byte) []cart.PriceOption {
	options := []cart.PriceOption{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &options)
	}
	return options
}
