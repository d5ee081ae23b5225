package handlers

import (
	"context"
	"strings"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

const idempotencyHeader = "Idempotency-Key"

type CashierService interface {
	Lookup(ctx context.Context, req model.BillLookupRequest) (*model.BillLookup, error)
	Pay(ctx context.Context, userID int64, req model.CashierPaymentRequest) (*model.PaymentReceipt, error)
}

type CashierHandler struct {
	cashierService CashierService
}

func RegisterCashierRoutes(e Routes, h *CashierHandler, g *Guard) {
	e.POST("/kasir/cek-tagihan", g.Protect(h.Lookup))
	e.POST("/kasir/bayar", g.Protect(h.Pay))
}

func NewCashierHandler(cashierService CashierService) *CashierHandler {
	return &CashierHandler{cashierService: cashierService}
}

func (h *CashierHandler) Lookup(ctx *xhttp.RequestCtx) {
	var req model.BillLookupRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	res, err := h.cashierService.Lookup(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

func (h *CashierHandler) Pay(ctx *xhttp.RequestCtx) {
	var req model.CashierPaymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(string(ctx.Request.Header.Peek(idempotencyHeader)))

	receipt, err := h.cashierService.Pay(ctx, currentSession(ctx).UserID, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, receipt)
}
