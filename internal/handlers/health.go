package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/questforge/questforge/internal/services"
	"github.com/questforge/questforge/internal/storage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	store  storage.Store // nil when no durable tier is configured
	oracle services.Oracle
	logger *slog.Logger
}

func NewHealthHandler(store storage.Store, oracle services.Oracle, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		oracle: oracle,
		logger: logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"

	if h.store == nil {
		components["storage"] = "memory-only"
	} else if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		// Gameplay continues on the memory tier, so degraded only.
		overallStatus = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if err := h.oracle.Ready(ctx); err != nil {
		h.logger.Warn("Oracle health check failed", "error", err)
		components["oracle"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["oracle"] = "healthy"
	}

	response := HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "questforge",
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding health response", "error", err)
	}
}
