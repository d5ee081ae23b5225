package handlers

import (
	"context"
	"strconv"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

const msgPaymentNotFound = "payment not found"

type PaymentService interface {
	List(ctx context.Context, f model.PaymentFilter) (model.Page[*model.Payment], error)
	Get(ctx context.Context, id int64) (*model.Payment, error)
	Create(ctx context.Context, userID int64, req model.PaymentCreateRequest) (*model.Payment, error)
	Update(ctx context.Context, id int64, req model.PaymentUpdateRequest) (*model.Payment, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*model.PaymentStats, error)
	Recent(ctx context.Context) ([]*model.Payment, error)
}

type PaymentHandler struct {
	paymentService PaymentService
}

func RegisterPaymentRoutes(e Routes, h *PaymentHandler, g *Guard) {
	e.GET("/admin/payments", g.Protect(h.List))
	e.POST("/admin/payments", g.Protect(h.Create))
	e.GET("/admin/payments/stats", g.Protect(h.Stats))
	e.GET("/admin/payments/recent", g.Protect(h.Recent))
	e.GET("/admin/payments/{id}", g.Protect(h.Get))
	e.PUT("/admin/payments/{id}", g.Protect(h.Update))
	e.DELETE("/admin/payments/{id}", g.Protect(h.Delete))
}

func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) filter(ctx *xhttp.RequestCtx) (model.PaymentFilter, error) {
	f := model.PaymentFilter{
		Method:     model.PaymentMethod(query(ctx, "method")),
		Pagination: pagination(ctx),
	}
	ve := model.NewValidationError()
	if v := query(ctx, "bill_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			ve.Add("bill_id", "The bill id must be an integer.")
		}
		f.BillID = &id
	}
	if v := query(ctx, "from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			ve.Add("from", "The from is not a valid date.")
		}
		f.From = &t
	}
	if v := query(ctx, "to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			ve.Add("to", "The to is not a valid date.")
		}
		f.To = &t
	}
	return f, ve.Err()
}

func (h *PaymentHandler) List(ctx *xhttp.RequestCtx) {
	f, err := h.filter(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	page, err := h.paymentService.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, page)
}

func (h *PaymentHandler) Get(ctx *xhttp.RequestCtx) {
	withID(ctx, msgPaymentNotFound, func(id int64) {
		p, err := h.paymentService.Get(ctx, id)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, p)
	})
}

func (h *PaymentHandler) Create(ctx *xhttp.RequestCtx) {
	var req model.PaymentCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	p, err := h.paymentService.Create(ctx, currentSession(ctx).UserID, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, p)
}

func (h *PaymentHandler) Update(ctx *xhttp.RequestCtx) {
	withID(ctx, msgPaymentNotFound, func(id int64) {
		var req model.PaymentUpdateRequest
		if err := readJSON(ctx, &req); err != nil {
			writeBadJSON(ctx, err)
			return
		}
		p, err := h.paymentService.Update(ctx, id, req)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, p)
	})
}

func (h *PaymentHandler) Delete(ctx *xhttp.RequestCtx) {
	withID(ctx, msgPaymentNotFound, func(id int64) {
		if err := h.paymentService.Delete(ctx, id); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.SetStatusCode(xhttp.StatusNoContent)
	})
}

func (h *PaymentHandler) Stats(ctx *xhttp.RequestCtx) {
	stats, err := h.paymentService.Stats(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, stats)
}

func (h *PaymentHandler) Recent(ctx *xhttp.RequestCtx) {
	payments, err := h.paymentService.Recent(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, payments)
}
