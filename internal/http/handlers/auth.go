package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"qrdine-order-service/internal/auth"
	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type registerRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	RestaurantName string `json:"restaurantName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthRegister creates a restaurant owner account plus its restaurant. The
// account stays unusable for dashboard work until a system admin approves it.
func (h *Handler) AuthRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body registerRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	body.RestaurantName = strings.TrimSpace(body.RestaurantName)
	if !emailPattern.MatchString(body.Email) {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "A valid email is required")
		return
	}
	if len(body.Password) < 8 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Password must be at least 8 characters")
		return
	}
	if body.RestaurantName == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Restaurant name is required")
		return
	}

	var exists bool
	if err := h.DB.QueryRow(ctx, `select exists(select 1 from users where email = $1)`, body.Email).Scan(&exists); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}
	if exists {
		response.Error(w, http.StatusConflict, "EMAIL_TAKEN", "An account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx, `
		insert into users (email, password_hash, first_name, last_name, role, is_approved)
		values ($1, $2, $3, $4, $5, false)
		returning id
	`, body.Email, hash, strings.TrimSpace(body.FirstName), strings.TrimSpace(body.LastName), string(auth.RoleRestaurantOwner)).Scan(&userID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}

	if _, err := tx.Exec(ctx, `
		insert into restaurants (owner_id, name) values ($1, $2)
	`, userID, body.RestaurantName); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}

	h.logActivity(ctx, body.Email, "owner.registered", body.RestaurantName)
	response.Created(w, map[string]any{"id": userID}, "Registration received; awaiting approval")
}

func (h *Handler) AuthLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body loginRequest
	if err := decodeBody(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	var (
		profile      UserProfile
		passwordHash string
		active       bool
	)
	err := h.DB.QueryRow(ctx, `
		select id, email, first_name, last_name, role, is_email_verified, password_hash, is_active
		from users where email = $1
	`, body.Email).Scan(&profile.ID, &profile.Email, &profile.FirstName, &profile.LastName,
		&profile.Role, &profile.IsEmailVerified, &passwordHash, &active)
	if err == pgx.ErrNoRows || (err == nil && !auth.CheckPassword(passwordHash, body.Password)) {
		response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		return
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}
	if !active {
		response.Error(w, http.StatusForbidden, "ACCOUNT_DISABLED", "This account has been disabled")
		return
	}

	profile.Name = strings.TrimSpace(profile.FirstName + " " + profile.LastName)

	claims := &auth.Claims{
		UserID: fmt.Sprintf("%d", profile.ID),
		Role:   auth.UserRole(profile.Role),
		Email:  profile.Email,
	}
	token, err := auth.SignAccessToken(claims, h.Config.JWTSecret, time.Duration(h.Config.JWTExpirySeconds)*time.Second)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	h.setSessionCookie(w, token, time.Duration(h.Config.JWTExpirySeconds)*time.Second)
	h.logActivity(ctx, profile.Email, "auth.login", "")

	response.Success(w, map[string]any{
		"user":  profile,
		"token": token,
	})
}

// AuthLogout clears the session cookie. Best-effort by design: the client
// discards local state whether or not this call succeeds.
func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	if id, ok := middleware.GetIdentity(r.Context()); ok && id.IsAuthenticated() {
		h.logActivity(r.Context(), id.Email, "auth.logout", "")
	}
	h.setSessionCookie(w, "", -time.Hour)
	response.Success(w, map[string]any{"loggedOut": true})
}

// AuthMe is the session verification endpoint clients poll after hydrating a
// possibly stale local user.
func (h *Handler) AuthMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok || !id.IsAuthenticated() {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
		return
	}

	var profile UserProfile
	err := h.DB.QueryRow(r.Context(), `
		select id, email, first_name, last_name, role, is_email_verified
		from users where id = $1 and is_active
	`, id.UserID).Scan(&profile.ID, &profile.Email, &profile.FirstName, &profile.LastName,
		&profile.Role, &profile.IsEmailVerified)
	if err != nil {
		h.Logger.Debug("session check failed", zap.Int64("userId", id.UserID), zap.Error(err))
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session is no longer valid")
		return
	}
	profile.Name = strings.TrimSpace(profile.FirstName + " " + profile.LastName)

	response.Success(w, map[string]any{"user": profile})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.Config.CookieDomain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
