package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"qrdine-order-service/internal/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

type restaurantKey string

const restaurantContextKey restaurantKey = "restaurantId"

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	})
}

// RequireUser gates routes that need any authenticated account.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok || !id.IsAuthenticated() {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner gates the dashboard: the caller must be an approved, active
// restaurant owner. The owner's restaurant id is resolved once here and made
// available to handlers.
func RequireOwner(db *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok || !id.IsAuthenticated() {
				writeAuthError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if id.Role != auth.RoleRestaurantOwner {
				writeAuthError(w, http.StatusForbidden, "Owner access required")
				return
			}

			var (
				restaurantID int64
				approved     bool
				active       bool
			)
			query := `
				select r.id, u.is_approved, u.is_active
				from users u
				join restaurants r on r.owner_id = u.id
				where u.id = $1
			`
			if err := db.QueryRow(r.Context(), query, id.UserID).Scan(&restaurantID, &approved, &active); err != nil {
				writeAuthError(w, http.StatusForbidden, "No restaurant linked to this account")
				return
			}
			if !active {
				writeAuthError(w, http.StatusForbidden, "Account is disabled")
				return
			}
			if !approved {
				writeAuthError(w, http.StatusForbidden, "Account is pending approval")
				return
			}

			ctx := WithRestaurantID(r.Context(), restaurantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the system-admin console.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok || !id.IsAuthenticated() || id.Role != auth.RoleSystemAdmin {
				writeAuthError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithRestaurantID(ctx context.Context, restaurantID int64) context.Context {
	return context.WithValue(ctx, restaurantContextKey, restaurantID)
}

func GetRestaurantID(ctx context.Context) (int64, bool) {
	value := ctx.Value(restaurantContextKey)
	if value == nil {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

func parseInt64(value string) (int64, error) {
	var out int64
	_, err := fmt.Sscan(value, &out)
	return out, err
}

func itoa(v int64) string {
	return fmt.Sprintf("%d", v)
}
