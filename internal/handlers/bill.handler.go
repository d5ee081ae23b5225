package handlers

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/internal/report"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

const msgBillNotFound = "bill not found"

type BillService interface {
	List(ctx context.Context, f model.BillFilter) (model.Page[*model.Bill], error)
	Get(ctx context.Context, id int64) (*model.Bill, error)
	Create(ctx context.Context, req model.BillCreateRequest) (*model.Bill, error)
	Update(ctx context.Context, id int64, req model.BillUpdateRequest) (*model.Bill, error)
	Delete(ctx context.Context, id int64) error
	Generate(ctx context.Context, req model.BillGenerateRequest) (*model.BillGenerateResult, error)
	Import(ctx context.Context, req model.BillImportRequest) (*model.ImportResult, error)
	Template(ctx context.Context, now time.Time) (model.BillTemplate, error)
	Export(ctx context.Context, f model.BillExportFilter) (*bytes.Buffer, error)
}

type BillHandler struct {
	billService BillService
	now         func() time.Time
}

func RegisterBillRoutes(e Routes, h *BillHandler, g *Guard) {
	e.GET("/admin/bills", g.Protect(h.List))
	e.POST("/admin/bills", g.Protect(h.Create))
	e.POST("/admin/bills/generate", g.Protect(h.Generate))
	e.POST("/admin/bills/import", g.Protect(h.Import))
	e.GET("/admin/bills/template", g.Protect(h.Template))
	e.GET("/admin/bills/export", g.Protect(h.Export))
	e.GET("/admin/bills/{id}", g.Protect(h.Get))
	e.PUT("/admin/bills/{id}", g.Protect(h.Update))
	e.DELETE("/admin/bills/{id}", g.Protect(h.Delete))
}

func NewBillHandler(billService BillService, now func() time.Time) *BillHandler {
	return &BillHandler{billService: billService, now: now}
}

func (h *BillHandler) List(ctx *xhttp.RequestCtx) {
	f := model.BillFilter{
		Period:     query(ctx, "period"),
		Status:     model.BillStatus(query(ctx, "status")),
		Pagination: pagination(ctx),
	}
	if v := query(ctx, "customer_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeServiceError(ctx, model.FieldError("customer_id", "The customer id must be an integer."))
			return
		}
		f.CustomerID = &id
	}
	page, err := h.billService.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, page)
}

func (h *BillHandler) Get(ctx *xhttp.RequestCtx) {
	withID(ctx, msgBillNotFound, func(id int64) {
		b, err := h.billService.Get(ctx, id)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, b)
	})
}

func (h *BillHandler) Create(ctx *xhttp.RequestCtx) {
	var req model.BillCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	b, err := h.billService.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, b)
}

func (h *BillHandler) Update(ctx *xhttp.RequestCtx) {
	withID(ctx, msgBillNotFound, func(id int64) {
		var req model.BillUpdateRequest
		if err := readJSON(ctx, &req); err != nil {
			writeBadJSON(ctx, err)
			return
		}
		b, err := h.billService.Update(ctx, id, req)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		writeJSON(ctx, xhttp.StatusOK, b)
	})
}

func (h *BillHandler) Delete(ctx *xhttp.RequestCtx) {
	withID(ctx, msgBillNotFound, func(id int64) {
		if err := h.billService.Delete(ctx, id); err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.SetStatusCode(xhttp.StatusNoContent)
	})
}

func (h *BillHandler) Generate(ctx *xhttp.RequestCtx) {
	var req model.BillGenerateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	res, err := h.billService.Generate(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

// Import takes either a JSON body or an xlsx upload.
func (h *BillHandler) Import(ctx *xhttp.RequestCtx) {
	var req model.BillImportRequest
	if isMultipart(ctx) {
		f, err := uploadedSheet(ctx)
		if err != nil {
			writeImportError(ctx, err)
			return
		}
		defer f.Close()
		if req.Bills, err = report.ParseBills(f); err != nil {
			writeImportError(ctx, err)
			return
		}
	} else if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}

	res, err := h.billService.Import(ctx, req)
	if err != nil {
		writeImportError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, res)
}

// Template answers JSON unless ?format=xlsx is given.
func (h *BillHandler) Template(ctx *xhttp.RequestCtx) {
	tpl, err := h.billService.Template(ctx, h.now())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if query(ctx, "format") != "xlsx" {
		writeJSON(ctx, xhttp.StatusOK, tpl)
		return
	}
	buf, err := report.BillTemplate(tpl)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeSpreadsheet(ctx, "bill_import_template.xlsx", report.ContentType, buf.Bytes())
}

func (h *BillHandler) Export(ctx *xhttp.RequestCtx) {
	f := model.BillExportFilter{
		Period: query(ctx, "period"),
		Status: model.BillStatus(query(ctx, "status")),
	}
	buf, err := h.billService.Export(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	name := "bills"
	if f.Period != "" {
		name += "_" + f.Period
	}
	name += "_" + h.now().Format("20060102_150405") + ".xlsx"
	writeSpreadsheet(ctx, name, report.ContentType, buf.Bytes())
}
