package handlers

import (
	"context"

	xhttp "github.com/nimasrn/water-billing/pkg/http"
	"github.com/nimasrn/water-billing/pkg/logger"
)

type HealthService interface {
	Check(ctx context.Context) error
}

type HealthHandler struct {
	healthService HealthService
}

func RegisterHealthRoutes(e Routes, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(healthService HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	if err := h.healthService.Check(ctx); err != nil {
		logger.Warn("health check failed", "error", err)
		writeJSON(ctx, xhttp.StatusServiceUnavailable, messageResponse{Message: "unavailable"})
		return
	}
	writeJSON(ctx, xhttp.StatusOK, messageResponse{Message: "ok"})
}
