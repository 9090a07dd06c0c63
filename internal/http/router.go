package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"qrdine-order-service/internal/cart"
	"qrdine-order-service/internal/config"
	"qrdine-order-service/internal/http/handlers"
	"qrdine-order-service/internal/middleware"
	"qrdine-order-service/internal/queue"
	"qrdine-order-service/internal/storage"
	"qrdine-order-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewRouter(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config, queueClient *queue.Client,
	carts cart.Store, images *storage.ObjectStore, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Use(middleware.ResolveIdentity(cfg))

	h := &handlers.Handler{DB: db, Logger: logger, Config: cfg, Queue: queueClient, Carts: carts, Images: images}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.AuthRegister)
		r.Post("/login", h.AuthLogin)
		r.Post("/logout", h.AuthLogout)
		r.Get("/me", h.AuthMe)
	})

	r.Route("/api/public/restaurants/{restaurantId}", func(r chi.Router) {
		r.Get("/", h.GetRestaurant)
		r.Get("/menu", h.GetPublicMenu)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Patch("/items/{index}", h.UpdateCartItemQuantity)
			r.Delete("/items/{index}", h.RemoveCartItem)
			r.Put("/tip", h.SetCartTip)
		})

		r.Post("/checkout", h.Checkout)
		r.Get("/orders/mine", h.ListMyOrders)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", h.ListNotifications)
		r.Get("/unread-count", h.UnreadNotificationCount)
		r.Post("/{notificationId}/read", h.MarkNotificationRead)
		r.Post("/read-all", h.MarkAllNotificationsRead)
	})

	r.Route("/api/owner", func(r chi.Router) {
		r.Use(middleware.RequireOwner(db))

		r.Get("/restaurant", h.OwnerGetRestaurant)
		r.Put("/restaurant", h.OwnerUpdateRestaurant)

		r.Get("/menus", h.OwnerListMenus)
		r.Post("/menus", h.OwnerCreateMenu)
		r.Put("/menus/{menuId}", h.OwnerUpdateMenu)
		r.Delete("/menus/{menuId}", h.OwnerDeleteMenu)

		r.Get("/categories", h.OwnerListCategories)
		r.Post("/categories", h.OwnerCreateCategory)
		r.Put("/categories/{categoryId}", h.OwnerUpdateCategory)
		r.Delete("/categories/{categoryId}", h.OwnerDeleteCategory)

		r.Get("/items", h.OwnerListMenuItems)
		r.Post("/items", h.OwnerCreateMenuItem)
		r.Put("/items/{itemId}", h.OwnerUpdateMenuItem)
		r.Delete("/items/{itemId}", h.OwnerDeleteMenuItem)
		r.Post("/items/{itemId}/image", h.OwnerUploadMenuItemImage)

		r.Get("/orders", h.OwnerListOrders)
		r.Get("/orders/{orderId}", h.OwnerGetOrder)
		r.Put("/orders/{orderId}/status", h.OwnerUpdateOrderStatus)
		r.Get("/orders/{orderId}/receipt", h.OwnerOrderReceipt)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin())

		r.Get("/owners", h.AdminListOwners)
		r.Post("/owners/{ownerId}/approve", h.AdminApproveOwner)
		r.Post("/owners/{ownerId}/suspend", h.AdminSuspendOwner)
		r.Get("/activity-logs", h.AdminListActivityLogs)
		r.Get("/settings", h.AdminGetSettings)
		r.Put("/settings", h.AdminPutSettings)
	})

	if wsServer != nil {
		r.Get("/ws/owner/orders", wsServer.OwnerOrdersWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
