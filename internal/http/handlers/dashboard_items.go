package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"qrdine-order-service/internal/cart"
	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/internal/utils"
	"qrdine-order-service/pkg/response"

	"go.uber.org/zap"
)

const (
	menuImageMaxSide   = 1600
	menuImageThumbSize = 400
	menuImageQuality   = 82
)

type menuItemRequest struct {
	CategoryID   *int64             `json:"categoryId"`
	Name         string             `json:"name"`
	Description  *string            `json:"description"`
	Price        *float64           `json:"price"`
	PriceDisplay *string            `json:"priceDisplay"`
	PriceOptions []cart.PriceOption `json:"priceOptions"`
	Position     *int               `json:"position"`
	IsActive     *bool              `json:"isActive"`
}

func (h *Handler) OwnerListMenuItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	rows, err := h.DB.Query(ctx, `
		select id, category_id, name, description, price, price_display, price_options,
		       image_url, position, is_active
		from menu_items
		where restaurant_id = $1 and deleted_at is null
		order by position, id
	`, restaurantID)
	if err != nil {
		h.Logger.Error("item list query failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load items")
		return
	}
	defer rows.Close()

	items := make([]MenuItemDetail, 0)
	for rows.Next() {
		var (
			item       MenuItemDetail
			optionsRaw []byte
		)
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description,
			&item.Price, &item.PriceDisplay, &optionsRaw, &item.ImageURL,
			&item.Position, &item.IsActive); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load items")
			return
		}
		item.PriceOptions = decodePriceOptions(optionsRaw)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load items")
		return
	}

	response.Success(w, map[string]any{"items": items})
}

func (h *Handler) OwnerCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}

	var body menuItemRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item name is required")
		return
	}
	if fields := validatePricing(body); len(fields) > 0 {
		response.FieldErrors(w, fields)
		return
	}
	if body.CategoryID != nil && !h.categoryBelongsToRestaurant(r, *body.CategoryID, restaurantID) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Category does not belong to this restaurant")
		return
	}

	optionsJSON, _ := json.Marshal(normalizeOptions(body.PriceOptions))
	description := ""
	if body.Description != nil {
		description = strings.TrimSpace(*body.Description)
	}
	priceDisplay := ""
	if body.PriceDisplay != nil {
		priceDisplay = strings.TrimSpace(*body.PriceDisplay)
	}
	position := 0
	if body.Position != nil {
		position = *body.Position
	}
	active := true
	if body.IsActive != nil {
		active = *body.IsActive
	}

	var item MenuItemDetail
	var optionsRaw []byte
	err := h.DB.QueryRow(ctx, `
		insert into menu_items (restaurant_id, category_id, name, description, price,
		                        price_display, price_options, position, is_active)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		returning id, category_id, name, description, price, price_display, price_options,
		          image_url, position, is_active
	`, restaurantID, body.CategoryID, body.Name, description, body.Price,
		priceDisplay, optionsJSON, position, active).
		Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.Price,
			&item.PriceDisplay, &optionsRaw, &item.ImageURL, &item.Position, &item.IsActive)
	if err != nil {
		h.Logger.Error("item insert failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create item")
		return
	}
	item.PriceOptions = decodePriceOptions(optionsRaw)

	response.Created(w, item, "Item created")
}

func (h *Handler) OwnerUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	var body menuItemRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if body.CategoryID != nil && !h.categoryBelongsToRestaurant(r, *body.CategoryID, restaurantID) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Category does not belong to this restaurant")
		return
	}

	var optionsJSON []byte
	if body.PriceOptions != nil {
		optionsJSON, _ = json.Marshal(normalizeOptions(body.PriceOptions))
	}
	var priceDisplay *string
	if body.PriceDisplay != nil {
		trimmed := strings.TrimSpace(*body.PriceDisplay)
		priceDisplay = &trimmed
	}
	var description *string
	if body.Description != nil {
		trimmed := strings.TrimSpace(*body.Description)
		description = &trimmed
	}

	var item MenuItemDetail
	var optionsRaw []byte
	err = h.DB.QueryRow(ctx, `
		update menu_items set
			category_id = coalesce($1, category_id),
			name = coalesce(nullif($2, ''), name),
			description = coalesce($3, description),
			price = coalesce($4, price),
			price_display = coalesce($5, price_display),
			price_options = coalesce($6, price_options),
			position = coalesce($7, position),
			is_active = coalesce($8, is_active),
			updated_at = now()
		where id = $9 and restaurant_id = $10 and deleted_at is null
		returning id, category_id, name, description, price, price_display, price_options,
		          image_url, position, is_active
	`, body.CategoryID, strings.TrimSpace(body.Name), description, body.Price,
		priceDisplay, optionsJSON, body.Position, body.IsActive, itemID, restaurantID).
		Scan(&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.Price,
			&item.PriceDisplay, &optionsRaw, &item.ImageURL, &item.Position, &item.IsActive)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}
	item.PriceOptions = decodePriceOptions(optionsRaw)

	response.Success(w, item)
}

// OwnerDeleteMenuItem soft-deletes so past orders keep a valid reference.
func (h *Handler) OwnerDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	tag, err := h.DB.Exec(ctx, `
		update menu_items set deleted_at = now(), is_active = false
		where id = $1 and restaurant_id = $2 and deleted_at is null
	`, itemID, restaurantID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete item")
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}

	response.Success(w, map[string]any{"deleted": itemID})
}

// OwnerUploadMenuItemImage accepts a multipart upload, normalizes it to JPEG
// with a thumbnail, stores both, and updates the item. The previous image is
// removed best-effort.
func (h *Handler) OwnerUploadMenuItemImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	restaurantID, ok := middleware.GetRestaurantID(ctx)
	if !ok {
		response.Error(w, http.StatusForbidden, "FORBIDDEN", "No restaurant in scope")
		return
	}
	if h.Images == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Image storage is not configured")
		return
	}
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id")
		return
	}

	var previousURL *string
	err = h.DB.QueryRow(ctx, `
		select image_url from menu_items
		where id = $1 and restaurant_id = $2 and deleted_at is null
	`, itemID, restaurantID).Scan(&previousURL)
	if err != nil {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Item not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxFileSizeBytes)
	if err := r.ParseMultipartForm(h.Config.MaxFileSizeBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "FILE_TOO_LARGE", "Upload exceeds the size limit")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "An image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Could not read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !utils.AllowedImageContentType(contentType) {
		contentType = utils.DetectContentType(data)
	}
	if !utils.AllowedImageContentType(contentType) {
		response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA", "Unsupported image format")
		return
	}

	processed, err := utils.ProcessMenuImage(data, menuImageMaxSide, menuImageThumbSize, menuImageQuality)
	if err != nil {
		h.Logger.Warn("image processing failed", zap.Int64("itemId", itemID), zap.Error(err))
		response.Error(w, http.StatusUnprocessableEntity, "IMAGE_DECODE_FAILED", "Could not decode image")
		return
	}

	stamp := time.Now().UTC().UnixMilli()
	baseKey := fmt.Sprintf("restaurants/%d/items/%d/%d", restaurantID, itemID, stamp)
	fullURL, err := h.Images.PutObject(ctx, baseKey+".jpg", processed.Full, "image/jpeg")
	if err != nil {
		h.Logger.Error("image upload failed", zap.Int64("itemId", itemID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return
	}
	thumbURL, err := h.Images.PutObject(ctx, baseKey+"_thumb.jpg", processed.Thumbnail, "image/jpeg")
	if err != nil {
		h.Logger.Error("thumbnail upload failed", zap.Int64("itemId", itemID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return
	}

	if _, err := h.DB.Exec(ctx, `
		update menu_items set image_url = $1, updated_at = now()
		where id = $2 and restaurant_id = $3
	`, fullURL, itemID, restaurantID); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store image")
		return
	}

	if previousURL != nil {
		if err := h.Images.DeleteURL(ctx, *previousURL); err != nil {
			h.Logger.Debug("previous image cleanup skipped", zap.String("url", *previousURL), zap.Error(err))
		}
	}

	response.Success(w, map[string]any{
		"imageUrl":     fullURL,
		"thumbnailUrl": thumbURL,
		"width":        processed.Width,
		"height":       processed.Height,
	})
}

// validatePricing requires at least one usable price source on an item.
func validatePricing(body menuItemRequest) map[string]string {
	fields := map[string]string{}

	hasPrice := body.Price != nil && *body.Price > 0
	hasDisplay := body.PriceDisplay != nil && strings.TrimSpace(*body.PriceDisplay) != ""
	hasOptions := len(body.PriceOptions) > 0
	if !hasPrice && !hasDisplay && !hasOptions {
		fields["price"] = "A price, price display, or price options are required"
	}
	if body.Price != nil && *body.Price < 0 {
		fields["price"] = "Price cannot be negative"
	}
	for _, opt := range body.PriceOptions {
		if strings.TrimSpace(opt.OptionName) == "" || opt.Price < 0 {
			fields["priceOptions"] = "Each price option needs a name and a non-negative price"
			break
		}
	}
	return fields
}

// normalizeOptions assigns stable ids to options that arrive without one.
func normalizeOptions(options []cart.PriceOption) []cart.PriceOption {
	out := make([]cart.PriceOption, 0, len(options))
	for i, opt := range options {
		opt.OptionName = strings.TrimSpace(opt.OptionName)
		if opt.ID == "" {
			opt.ID = fmt.Sprintf("opt-%d-%d", time.Now().UTC().UnixMilli(), i)
		}
		out = append(out, opt)
	}
	return out
}

func (h *Handler) categoryBelongsToRestaurant(r *http.Request, categoryID, restaurantID int64) bool {
	var ok bool
	err := h.DB.QueryRow(r.Context(), `
		select exists(select 1 from categories where id = $1 and restaurant_id = $2)
	`, categoryID, restaurantID).Scan(&ok)
	return err == nil && ok
}
