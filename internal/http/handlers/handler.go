package handlers

import (
	"qrdine-order-service/internal/cart"
	"qrdine-order-service/internal/config"
	"qrdine-order-service/internal/queue"
	"qrdine-order-service/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config
	Queue  *queue.Client
	Carts  cart.Store
	Images *storage.ObjectStore

	// Orders overrides order persistence; nil means the database-backed
	// implementation.
	Orders OrderPlacer
}
