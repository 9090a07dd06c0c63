// Package ws pushes live order updates to connected owner dashboards. It
// polls the database per subscribed restaurant and broadcasts when anything
// changed, which keeps the transport dumb and the source of truth in one
// place.
package ws

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"qrdine-order-service/internal/auth"
	"qrdine-order-service/internal/config"
	"qrdine-order-service/internal/middleware"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	started sync.Once
	mu      sync.RWMutex
	subs    map[int64]map[*client]struct{}
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	return &Server{
		DB:     db,
		Logger: logger,
		Config: cfg,
		subs:   make(map[int64]map[*client]struct{}),
	}
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

// OwnerOrdersWS upgrades an owner dashboard connection and streams active
// orders whenever they change.
func (s *Server) OwnerOrdersWS(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := s.authorizeOwner(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	unsubscribe := s.subscribe(restaurantID, c)
	defer func() {
		unsubscribe()
		_ = conn.Close()
	}()

	s.started.Do(func() {
		go s.pollLoop(context.Background())
	})

	// Initial snapshot so the dashboard paints without waiting a poll tick.
	if orders, err := s.fetchActiveOrders(r.Context(), restaurantID); err == nil {
		_ = c.writeJSON(map[string]any{"type": "orders.snapshot", "orders": orders})
	}

	heartbeat := time.NewTicker(s.Config.WSHeartbeatInterval)
	defer heartbeat.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

func (s *Server) authorizeOwner(r *http.Request) (int64, bool) {
	token := auth.ParseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
			token = cookie.Value
		}
	}

	claims, err := auth.VerifyAccessToken(token, s.Config.JWTSecret)
	if err != nil || claims.Role != auth.RoleRestaurantOwner {
		return 0, false
	}
	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return 0, false
	}

	var restaurantID int64
	query := `select id from restaurants where owner_id = $1`
	if err := s.DB.QueryRow(r.Context(), query, userID).Scan(&restaurantID); err != nil {
		return 0, false
	}
	return restaurantID, true
}

func (s *Server) subscribe(restaurantID int64, c *client) func() {
	s.mu.Lock()
	if s.subs[restaurantID] == nil {
		s.subs[restaurantID] = make(map[*client]struct{})
	}
	s.subs[restaurantID][c] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		clients := s.subs[restaurantID]
		delete(clients, c)
		if len(clients) == 0 {
			delete(s.subs, restaurantID)
		}
		s.mu.Unlock()
	}
}

func (s *Server) pollLoop(ctx context.Context) {
	lastSeen := map[int64]time.Time{}
	ticker := time.NewTicker(s.Config.WSOwnerPollInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		ids := make([]int64, 0, len(s.subs))
		for id := range s.subs {
			ids = append(ids, id)
		}
		s.mu.RUnlock()

		for _, restaurantID := range ids {
			updated := s.fetchOrdersUpdatedAt(ctx, restaurantID)
			if !updated.After(lastSeen[restaurantID]) {
				continue
			}
			lastSeen[restaurantID] = updated

			orders, err := s.fetchActiveOrders(ctx, restaurantID)
			if err != nil {
				s.Logger.Warn("owner feed query failed", zap.Int64("restaurantId", restaurantID), zap.Error(err))
				continue
			}
			s.broadcast(restaurantID, map[string]any{"type": "orders.snapshot", "orders": orders})
		}
	}
}

func (s *Server) broadcast(restaurantID int64, message any) {
	s.mu.RLock()
	clientsMap := s.subs[restaurantID]
	clients := make([]*client, 0, len(clientsMap))
	for c := range clientsMap {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			s.mu.Lock()
			if current := s.subs[restaurantID]; current != nil {
				delete(current, c)
				if len(current) == 0 {
					delete(s.subs, restaurantID)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) fetchOrdersUpdatedAt(ctx context.Context, restaurantID int64) time.Time {
	query := `
		select coalesce(max(updated_at), 'epoch'::timestamptz)
		from orders
		where restaurant_id = $1 and status in ('RECEIVED', 'PREPARING', 'READY')
	`
	var updated time.Time
	if err := s.DB.QueryRow(ctx, query, restaurantID).Scan(&updated); err != nil {
		return time.Time{}
	}
	return updated
}

type activeOrder struct {
	ID          int64     `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	OrderType   string    `json:"orderType"`
	TableNumber *string   `json:"tableNumber"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Server) fetchActiveOrders(ctx context.Context, restaurantID int64) ([]activeOrder, error) {
	query := `
		select id, order_number, order_type, table_number, status, total_amount, created_at, updated_at
		from orders
		where restaurant_id = $1 and status in ('RECEIVED', 'PREPARING', 'READY')
		order by created_at desc
		limit 100
	`
	rows, err := s.DB.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]activeOrder, 0)
	for rows.Next() {
		var o activeOrder
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.OrderType, &o.TableNumber, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
