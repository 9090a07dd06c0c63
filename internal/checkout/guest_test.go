package checkout

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEnsureGuestIDIsStableUntilCookieCleared(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	first := EnsureGuestID(w, r, "", 30*24*time.Hour, false)
	if !IsGuestID(first) {
		t.Fatalf("expected guest id, got %q", first)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != GuestCookieName {
		t.Fatalf("expected %s cookie to be set", GuestCookieName)
	}
	if cookies[0].SameSite != http.SameSiteLaxMode || cookies[0].Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookies[0])
	}

	// Second request carries the cookie: same id, nothing minted.
	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	second := EnsureGuestID(w2, r2, "", 30*24*time.Hour, false)
	if second != first {
		t.Fatalf("expected stable id, got %q then %q", first, second)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Fatalf("expected no new cookie on repeat call")
	}

	// Cookie cleared: a fresh, different id is minted.
	w3 := httptest.NewRecorder()
	r3 := httptest.NewRequest(http.MethodGet, "/", nil)
	third := EnsureGuestID(w3, r3, "", 30*24*time.Hour, false)
	if third == first {
		t.Fatalf("expected a new id after clearing cookies")
	}
}

func TestGuestIDFromRequestRejectsForeignValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: GuestCookieName, Value: "admin"})
	if got := GuestIDFromRequest(r); got != "" {
		t.Fatalf("expected empty id for non-guest value, got %q", got)
	}
}
