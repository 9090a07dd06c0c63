package checkout

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GuestCookieName identifies unauthenticated purchasers across visits. It is
// the only identity mechanism available to them.
const GuestCookieName = "guestId"

// GuestIdentity is deliberately separate from authenticated users; the two
// identity paths never mix.
type GuestIdentity struct {
	ID       string
	MintedAt time.Time
}

func NewGuestIdentity() GuestIdentity {
	now := time.Now()
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	return GuestIdentity{
		ID:       fmt.Sprintf("guest_%d_%s", now.UnixMilli(), hex.EncodeToString(buf)),
		MintedAt: now,
	}
}

func IsGuestID(id string) bool {
	return strings.HasPrefix(id, "guest_")
}

// EnsureGuestID returns the caller's guest id, minting one and setting the
// cookie when none exists. Repeated calls on the same client return the same
// id until the cookie is cleared.
func EnsureGuestID(w http.ResponseWriter, r *http.Request, domain string, ttl time.Duration, secure bool) string {
	if cookie, err := r.Cookie(GuestCookieName); err == nil {
		if id := strings.TrimSpace(cookie.Value); IsGuestID(id) {
			return id
		}
	}

	identity := NewGuestIdentity()
	http.SetCookie(w, &http.Cookie{
		Name:     GuestCookieName,
		Value:    identity.ID,
		Path:     "/",
		Domain:   domain,
		Expires:  identity.MintedAt.Add(ttl),
		MaxAge:   int(ttl / time.Second),
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
	return identity.ID
}

// GuestIDFromRequest reads the cookie without minting.
func GuestIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(GuestCookieName)
	if err != nil {
		return ""
	}
	id := strings.TrimSpace(cookie.Value)
	if !IsGuestID(id) {
		return ""
	}
	return id
}
