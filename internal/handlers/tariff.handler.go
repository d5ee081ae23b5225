package handlers

import (
	"context"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

const msgTariffNotFound = "tariff not found"

type TariffService interface {
	List(ctx context.Context, p model.Pagination) (model.Page[*model.Tariff], error)
	Get(ctx context.Context, id int64) (*model.Tariff, error)
	Create(ctx context.Context, req model.TariffRequest) (*model.Tariff, error)
	Update(ctx context.Context, id int64, req model.TariffRequest) (*model.Tariff, error)
	Delete(ctx context.Context, id int64) error
}

type TariffHandler struct {
	tariffService TariffService
}

func RegisterTariffRoutes(e Routes, h *TariffHandler, g *Guard) {
	e.GET("/admin/tariffs", g.Protect(h.List))
	e.POST("/admin/tariffs", g.Protect(h.Create))
	e.GET("/admin/tariffs/{id}", g.Protect(h.Get))
	e.PUT("/admin/tariffs/{id}", g.Protect(h.Update))
	e.DELETE("/admin/tariffs/{id}", g.Protect(h.Delete))
}

func NewTariffHandler(tariffService TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

func (h *TariffHandler) List(ctx *xhttp.RequestCtx) {
	page, err := h.tariffService.List(ctx, pagination(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, page)
}

func (h *TariffHandler) Get(ctx *xhttp.RequestCtx) {
	withID(ctx, msgTariffNotFound, func(id int64) {
		t, err := h.tariffService.Get(ctx, id)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, t)
	})
}

func (h *TariffHandler) Create(ctx *xhttp.RequestCtx) {
	var req model.TariffRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	t, err := h.tariffService.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, t)
}

func (h *TariffHandler) Update(ctx *xhttp.RequestCtx) {
	withID(ctx, msgTariffNotFound, func(id int64) {
		var req model.TariffRequest
		if err := readJSON(ctx, &req); err != nil {
			writeBadJSON(ctx, err)
			return
		}
		t, err := h.tariffService.Update(ctx, id, req)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, t)
	})
}

func (h *TariffHandler) Delete(ctx *xhttp.RequestCtx) {
	withID(ctx, msgTariffNotFound, func(id int64) {
		if err := h.tariffService.Delete(ctx, id); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.SetStatusCode(xhttp.StatusNoContent)
	})
}
