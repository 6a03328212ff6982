package api

import (
	"time"

	"go.uber.org/zap"

	"slotswap-backend/config"
	"slotswap-backend/internal/catalog"
	"slotswap-backend/internal/ledger"
	"slotswap-backend/internal/notification"
	"slotswap-backend/internal/realtime"
	"slotswap-backend/internal/store"
)

// Services are the components the handlers delegate to.
type Services struct {
	Store         store.Store
	Ledger        *ledger.Ledger
	Notifications *notification.Service
	Catalog       *catalog.Catalog
	Registry      *realtime.Registry
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	Services
	queueSize int
	heartbeat time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc Services, rt config.RealtimeConfig, logger *zap.Logger) *Handler {
	heartbeat := rt.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &Handler{
		Services:  svc,
		queueSize: rt.QueueSize,
		heartbeat: heartbeat,
		logger:    logger,
	}
}
