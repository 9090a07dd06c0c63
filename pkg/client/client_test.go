package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.URL)
	require.NoError(t, err)
	return c, server
}

func TestAPIErrorCarriesFieldMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/public/restaurants/1/checkout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "VALIDATION_ERROR",
			"message": "Please correct the highlighted fields",
			"fields": map[string]string{
				"tableNumber": "Table number is required for dine-in orders",
			},
		})
	})
	c, _ := newTestClient(t, mux)

	_, err := c.Checkout(context.Background(), 1, CheckoutForm{OrderType: "dine-in", PaymentMethod: "cash"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Fields, "tableNumber")
}

func TestUnreachableServerReportsConnectivity(t *testing.T) {
	c, server := newTestClient(t, http.NewServeMux())
	server.Close()

	_, err := c.GetCart(context.Background(), 1)
	require.Error(t, err)
	assert.IsType(t, &ErrConnectivity{}, err)
}

func TestCartRoundTrip(t *testing.T) {
	var saved CartLine
	mux := http.NewServeMux()
	mux.HandleFunc("/api/public/restaurants/7/cart/items", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"items":          []any{saved},
				"cartItemsCount": saved.Quantity,
				"subtotal":       saved.Price * float64(saved.Quantity),
				"tipValue":       0,
				"cartTotal":      saved.Price * float64(saved.Quantity),
			},
		})
	})
	c, _ := newTestClient(t, mux)

	cart, err := c.AddToCart(context.Background(), 7, CartLine{
		ItemID:   42,
		Name:     "Pad Thai",
		Price:    11.5,
		Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ItemID)
	assert.Equal(t, 2, cart.ItemCount)
	assert.InDelta(t, 23.0, cart.Total, 0.001)
}

func TestMenuFallbackOnlyOnConnectivity(t *testing.T) {
	fallback := &Menu{Restaurant: Restaurant{Name: "Cached Bistro"}}

	t.Run("connectivity failure degrades to fallback", func(t *testing.T) {
		c, server := newTestClient(t, http.NewServeMux())
		server.Close()

		menu, degraded, err := c.FetchMenuOrFallback(context.Background(), 1, fallback)
		require.NoError(t, err)
		assert.True(t, degraded)
		assert.Equal(t, "Cached Bistro", menu.Restaurant.Name)
	})

	t.Run("server rejection is not masked", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/public/restaurants/1/menu", func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "NOT_FOUND",
				"message": "Restaurant not found",
			})
		})
		c, _ := newTestClient(t, mux)

		_, _, err := c.FetchMenuOrFallback(context.Background(), 1, fallback)
		require.Error(t, err)
		assert.IsType(t, &APIError{}, err)
	})
}

type memCredentialStore struct {
	mu    sync.Mutex
	user  User
	token string
	set   bool
}

func (s *memCredentialStore) Load() (User, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.token, s.set
}

func (s *memCredentialStore) Save(u User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.token, s.set = u, token, true
	return nil
}

func (s *memCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.token, s.set = User{}, "", false
	return nil
}

func TestSessionHydrateThenVerify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			writeEnvelope(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "UNAUTHORIZED",
				"message": "Session is no longer valid",
			})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"user": User{ID: 9, Email: "owner@example.com", Name: "Fresh Name", Role: "RESTAURANT_OWNER"},
			},
		})
	})
	c, _ := newTestClient(t, mux)

	store := &memCredentialStore{}
	require.NoError(t, store.Save(User{ID: 9, Email: "owner@example.com", Name: "Stale Name"}, "good-token"))

	session := NewSession(c, store)

	// Phase one: local state is available before any network call.
	hydrated, ok := session.Hydrate()
	require.True(t, ok)
	assert.Equal(t, int64(9), hydrated.ID)

	// Phase two: the server confirms and enriches the user.
	verified, err := session.Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "RESTAURANT_OWNER", verified.Role)

	// The verified user is written back, so the next Hydrate is fresh.
	stored, token, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, "Fresh Name", stored.Name)
	assert.Equal(t, "RESTAURANT_OWNER", stored.Role)
	assert.Equal(t, "good-token", token)
}

func TestSessionVerifyClearsRejectedCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error":   "UNAUTHORIZED",
			"message": "Session is no longer valid",
		})
	})
	c, _ := newTestClient(t, mux)

	store := &memCredentialStore{}
	require.NoError(t, store.Save(User{ID: 3}, "stale-token"))

	session := NewSession(c, store)
	_, ok := session.Hydrate()
	require.True(t, ok)

	_, err := session.Verify(context.Background())
	require.Error(t, err)

	_, ok = session.User()
	assert.False(t, ok, "rejected session should be cleared")
	_, _, ok = store.Load()
	assert.False(t, ok, "stored credentials should be cleared")
}

func TestSessionVerifyKeepsUserWhenOffline(t *testing.T) {
	c, server := newTestClient(t, http.NewServeMux())
	server.Close()

	store := &memCredentialStore{}
	require.NoError(t, store.Save(User{ID: 5, Email: "x@example.com"}, "token"))

	session := NewSession(c, store)
	_, ok := session.Hydrate()
	require.True(t, ok)

	_, err := session.Verify(context.Background())
	require.Error(t, err)
	assert.IsType(t, &ErrConnectivity{}, err)

	user, ok := session.User()
	require.True(t, ok, "connectivity failure must not log the user out")
	assert.Equal(t, int64(5), user.ID)
}

func TestPollerRecoversAfterFailures(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n <= 2 {
			writeEnvelope(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "INTERNAL_ERROR",
				"message": "boom",
			})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"count": 4},
		})
	})
	c, _ := newTestClient(t, mux)

	counts := make(chan int, 8)
	errs := make(chan error, 8)
	poller := &NotificationPoller{
		Client:   c,
		Interval: 10 * time.Millisecond,
		Ceiling:  40 * time.Millisecond,
		OnCount: func(count int) {
			select {
			case counts <- count:
			default:
			}
		},
		OnError: func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	// The failing polls report zero; the first real count must be 4.
	for delivered := false; !delivered; {
		select {
		case count := <-counts:
			if count == 0 {
				continue
			}
			assert.Equal(t, 4, count)
			delivered = true
		case <-ctx.Done():
			t.Fatal("poller never delivered a count")
		}
	}
	assert.NotEmpty(t, errs, "the failing polls should have been reported")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancellation")
	}
}

func TestPollerResetsToZeroWhileFailing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "INTERNAL_ERROR",
			"message": "boom",
		})
	})
	c, _ := newTestClient(t, mux)

	counts := make(chan int, 1)
	lists := make(chan []Notification, 1)
	poller := &NotificationPoller{
		Client:   c,
		Interval: 10 * time.Millisecond,
		Ceiling:  40 * time.Millisecond,
		OnCount: func(count int) {
			select {
			case counts <- count:
			default:
			}
		},
		OnNotifications: func(notifications []Notification) {
			select {
			case lists <- notifications:
			default:
			}
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go poller.Run(ctx)

	select {
	case count := <-counts:
		assert.Equal(t, 0, count, "a failed poll must reset the badge")
	case <-ctx.Done():
		t.Fatal("poller never reported the failed poll")
	}
	select {
	case notifications := <-lists:
		assert.Empty(t, notifications, "a failed poll must reset the list")
	case <-ctx.Done():
		t.Fatal("poller never reset the notification list")
	}
}
