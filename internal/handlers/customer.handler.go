package handlers

import (
	"context"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/report"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

const msgCustomerNotFound = "customer not found"

type CustomerService interface {
	List(ctx context.Context, f model.CustomerFilter) (model.Page[*model.Customer], error)
	Get(ctx context.Context, id int64) (*model.Customer, error)
	Create(ctx context.Context, req model.CustomerCreateRequest) (*model.Customer, error)
	Update(ctx context.Context, id int64, req model.CustomerUpdateRequest) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, req model.CustomerImportRequest) (*model.ImportResult, error)
}

type CustomerHandler struct {
	customerService CustomerService
}

func RegisterCustomerRoutes(e Routes, h *CustomerHandler, g *Guard) {
	e.GET("/admin/customers", g.Protect(h.List))
	e.POST("/admin/customers", g.Protect(h.Create))
	e.POST("/admin/customers/import", g.Protect(h.Import))
	e.GET("/admin/customers/{id}", g.Protect(h.Get))
	e.PUT("/admin/customers/{id}", g.Protect(h.Update))
	e.DELETE("/admin/customers/{id}", g.Protect(h.Delete))
}

func NewCustomerHandler(customerService CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) List(ctx *xhttp.RequestCtx) {
	page, err := h.customerService.List(ctx, model.CustomerFilter{
		Search:     query(ctx, "search"),
		Status:     model.CustomerStatus(query(ctx, "status")),
		Pagination: pagination(ctx),
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, page)
}

func (h *CustomerHandler) Get(ctx *xhttp.RequestCtx) {
	withID(ctx, msgCustomerNotFound, func(id int64) {
		c, err := h.customerService.Get(ctx, id)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, c)
	})
}

func (h *CustomerHandler) Create(ctx *xhttp.RequestCtx) {
	var req model.CustomerCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	c, err := h.customerService.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, c)
}

func (h *CustomerHandler) Update(ctx *xhttp.RequestCtx) {
	withID(ctx, msgCustomerNotFound, func(id int64) {
		var req model.CustomerUpdateRequest
		if err := readJSON(ctx, &req); err != nil {
			writeBadJSON(ctx, err)
			return
		}
		c, err := h.customerService.Update(ctx, id, req)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, c)
	})
}

func (h *CustomerHandler) Delete(ctx *xhttp.RequestCtx) {
	withID(ctx, msgCustomerNotFound, func(id int64) {
		if err := h.customerService.Delete(ctx, id); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.SetStatusCode(xhttp.StatusNoContent)
	})
}

// Import takes either a JSON body or an xlsx upload.
func (h *CustomerHandler) Import(ctx *xhttp.RequestCtx) {
	var req model.CustomerImportRequest
	if isMultipart(ctx) {
		f, err := uploadedSheet(ctx)
		if err != nil {
			writeImportError(ctx, err)
			return
		}
		defer f.Close()
		if req.Customers, err = report.ParseCustomers(f); err != nil {
			writeImportError(ctx, err)
			return
		}
	} else if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}

	res, err := h.customerService.Import(ctx, req)
	if err != nil {
		writeImportError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, res)
}
