package handlers

import (
	"context"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

type DashboardService interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
	Activities(ctx context.Context) ([]model.Activity, error)
}

type DashboardHandler struct {
	dashboardService DashboardService
}

func RegisterDashboardRoutes(e Routes, h *DashboardHandler, g *Guard) {
	e.GET("/admin/dashboard/stats", g.Protect(h.Stats))
	e.GET("/admin/dashboard/activities", g.Protect(h.Activities))
}

func NewDashboardHandler(dashboardService DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Stats(ctx *xhttp.RequestCtx) {
	stats, err := h.dashboardService.Stats(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stats)
}

func (h *DashboardHandler) Activities(ctx *xhttp.RequestCtx) {
	feed, err := h.dashboardService.Activities(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, feed)
}
