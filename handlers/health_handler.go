package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dbState := "ok"
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check: database unavailable", slog.Any("error", err))
		status = http.StatusServiceUnavailable
		dbState = "unavailable"
	}

	err := writeJSON(w, status, jsonResponse{"status": dbState}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
