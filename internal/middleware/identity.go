package middleware

import (
	"context"
	"net/http"

	"qrdine-order-service/internal/auth"
	"qrdine-order-service/internal/checkout"
	"qrdine-order-service/internal/config"
)

type contextKey string

const identityContextKey contextKey = "identity"

// SessionCookieName carries the signed access token for browser clients;
// bearer tokens are accepted as a fallback for non-browser callers.
const SessionCookieName = "qrdine_session"

// Identity is the resolved caller: an authenticated user, or a cookie-minted
// guest. Exactly one of UserID/GuestID is set.
type Identity struct {
	UserID  int64
	Role    auth.UserRole
	Email   string
	GuestID string
}

func (id Identity) IsAuthenticated() bool {
	return id.UserID != 0
}

// Key is the stable identifier used for cart storage and notification
// recipients.
func (id Identity) Key() string {
	if id.IsAuthenticated() {
		return "user:" + itoa(id.UserID)
	}
	return id.GuestID
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

func GetIdentity(ctx context.Context) (*Identity, bool) {
	value := ctx.Value(identityContextKey)
	if value == nil {
		return nil, false
	}
	id, ok := value.(*Identity)
	return id, ok
}

// ResolveIdentity attaches the caller identity to every request. A valid
// session token wins; anyone else gets (or keeps) a guest id so carts and
// notifications work without an account.
func ResolveIdentity(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := resolveUser(r, cfg.JWTSecret)
			if id == nil {
				guestID := checkout.EnsureGuestID(w, r, cfg.CookieDomain, cfg.GuestCookieTTL, cfg.CookieSecure)
				id = &Identity{GuestID: guestID}
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func resolveUser(r *http.Request, secret string) *Identity {
	token := auth.ParseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return nil
	}

	claims, err := auth.VerifyAccessToken(token, secret)
	if err != nil {
		return nil
	}
	userID, err := parseInt64(claims.UserID)
	if err != nil || userID == 0 {
		return nil
	}
	return &Identity{
		UserID: userID,
		Role:   claims.Role,
		Email:  claims.Email,
	}
}
