package handlers

import (
	"context"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

type MeterService interface {
	Record(ctx context.Context, req model.MeterReadingRequest) (*model.MeterReadingResult, error)
	CustomerInfo(ctx context.Context, req model.CustomerInfoRequest) (*model.CustomerInfo, error)
}

type OperatorHandler struct {
	meterService MeterService
}

func RegisterOperatorRoutes(e Routes, h *OperatorHandler, g *Guard) {
	e.POST("/operator/catat-meteran", g.Protect(h.RecordReading))
	e.POST("/operator/customer-info", g.Protect(h.CustomerInfo))
}

func NewOperatorHandler(meterService MeterService) *OperatorHandler {
	return &OperatorHandler{meterService: meterService}
}

func (h *OperatorHandler) RecordReading(ctx *xhttp.RequestCtx) {
	var req model.MeterReadingRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	res, err := h.meterService.Record(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, res)
}

func (h *OperatorHandler) CustomerInfo(ctx *xhttp.RequestCtx) {
	var req model.CustomerInfoRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	res, err := h.meterService.CustomerInfo(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}
