package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/metrics"
)

type Handler struct {
	logger        *slog.Logger
	sessions      *auth.SessionStore
	adminSessions *auth.AdminSessionStore
	metrics       *metrics.Collector
}

func NewHandler(logger *slog.Logger, sessions *auth.SessionStore, adminSessions *auth.AdminSessionStore, collector *metrics.Collector) *Handler {
	return &Handler{
		logger:        logger,
		sessions:      sessions,
		adminSessions: adminSessions,
		metrics:       collector,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeSessionPurge, h.HandleSessionPurge)
}

// HandleSessionPurge sweeps expired rows from both session tables. Expired
// sessions are already rejected at resolve time, so the sweep only reclaims
// storage; a failed run leaves nothing visible to users.
func (h *Handler) HandleSessionPurge(ctx context.Context, t *asynq.Task) error {
	purged, err := h.sessions.PurgeExpired(ctx)
	if err != nil {
		h.logger.Error("session purge failed", "error", err)
		return err
	}

	adminPurged, err := h.adminSessions.PurgeExpired(ctx)
	if err != nil {
		h.logger.Error("admin session purge failed", "error", err)
		return err
	}

	h.metrics.RecordSessionsPurged(purged + adminPurged)

	if purged+adminPurged > 0 {
		h.logger.Info("purged expired sessions",
			"sessions", purged,
			"admin_sessions", adminPurged,
		)
	}
	return nil
}
