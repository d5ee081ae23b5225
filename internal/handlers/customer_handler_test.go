package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"testing"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func uploadContext(t *testing.T, path, filename string, content []byte) *xhttp.RequestCtx {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ctx := setupTestContext("POST", path, body.Bytes())
	ctx.Request.Header.SetContentType(w.FormDataContentType())
	return ctx
}

func sheet(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestCustomerHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(r model.CustomerCreateRequest) bool {
			return r.SubscriberNumber == "PLG011" && r.Name == "Budi"
		})).Return(&model.Customer{ID: 11, SubscriberNumber: "PLG011", Name: "Budi"}, nil)

		body := []byte(`{"subscriber_number":"PLG011","name":"Budi","address":"Jl. Merdeka 1","tariff_per_unit":"5000"}`)
		ctx := setupTestContext("POST", "/admin/customers", body)
		handler.Create(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		var response model.Customer
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, int64(11), response.ID)
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		ctx := setupTestContext("POST", "/admin/customers", []byte("invalid json"))
		handler.Create(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate subscriber number", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, model.FieldError("subscriber_number", "The subscriber number has already been taken."))

		ctx := setupTestContext("POST", "/admin/customers", []byte(`{"subscriber_number":"PLG001"}`))
		handler.Create(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
		var response validationResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Contains(t, response.Errors, "subscriber_number")
	})
}

func TestCustomerHandler_List(t *testing.T) {
	svc := new(MockCustomerService)
	handler := NewCustomerHandler(svc)

	want := model.CustomerFilter{
		Search:     "budi",
		Status:     model.CustomerActive,
		Pagination: model.Pagination{Page: 2, PerPage: 5},
	}
	page := model.NewPage([]*model.Customer{{ID: 6}}, 6, model.Pagination{Page: 2, PerPage: 5})
	svc.On("List", mock.Anything, want).Return(page, nil)

	ctx := setupTestContext("GET", "/admin/customers?search=budi&status=active&page=2&per_page=5", nil)
	handler.List(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())
	var response model.Page[*model.Customer]
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, int64(6), response.Total)
	assert.Equal(t, 2, response.LastPage)
	svc.AssertExpectations(t)
}

func TestCustomerHandler_Routes(t *testing.T) {
	svc := new(MockCustomerService)
	g, authn := newGuard(t)
	r := xhttp.CreateDefaultRouter()
	RegisterCustomerRoutes(r, NewCustomerHandler(svc), g)

	authn.On("Authenticate", mock.Anything, "admin").Return(&model.Session{UserID: 1, Role: model.RoleAdmin}, nil)
	authn.On("Authenticate", mock.Anything, "operator").Return(&model.Session{UserID: 2, Role: model.RoleOperator}, nil)
	svc.On("Get", mock.Anything, int64(7)).Return(&model.Customer{ID: 7}, nil)
	svc.On("Get", mock.Anything, int64(8)).Return(nil, model.ErrCustomerNotFound)
	svc.On("Delete", mock.Anything, int64(7)).Return(nil)

	call := func(method, path, token string) *xhttp.RequestCtx {
		ctx := setupTestContext(method, path, nil)
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
		r.Handler(ctx)
		return ctx
	}

	assert.Equal(t, 200, call("GET", "/admin/customers/7", "operator").Response.StatusCode())
	assert.Equal(t, 404, call("GET", "/admin/customers/8", "operator").Response.StatusCode())
	assert.Equal(t, 404, call("GET", "/admin/customers/abc", "admin").Response.StatusCode())
	assert.Equal(t, 403, call("DELETE", "/admin/customers/7", "operator").Response.StatusCode())
	assert.Equal(t, 204, call("DELETE", "/admin/customers/7", "admin").Response.StatusCode())
	svc.AssertNumberOfCalls(t, "Delete", 1)
}

func TestCustomerHandler_Import(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		svc.On("Import", mock.Anything, mock.MatchedBy(func(r model.CustomerImportRequest) bool {
			return len(r.Customers) == 2
		})).Return(&model.ImportResult{Message: "Successfully imported 2 customers", ImportedCount: 2}, nil)

		body := []byte(`{"customers":[{"subscriber_number":"PLG011"},{"subscriber_number":"PLG012"}]}`)
		ctx := setupTestContext("POST", "/admin/customers/import", body)
		handler.Import(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		var response model.ImportResult
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, 2, response.ImportedCount)
	})

	t.Run("spreadsheet upload", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		svc.On("Import", mock.Anything, mock.MatchedBy(func(r model.CustomerImportRequest) bool {
			return len(r.Customers) == 1 && r.Customers[0].SubscriberNumber == "PLG011" && r.Customers[0].Name == "Budi"
		})).Return(&model.ImportResult{ImportedCount: 1}, nil)

		content := sheet(t, [][]any{
			{"Subscriber Number", "Name", "Address"},
			{"PLG011", "Budi", "Jl. Merdeka 1"},
		})
		ctx := uploadContext(t, "/admin/customers/import", "customers.xlsx", content)
		handler.Import(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("wrong file type", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		ctx := uploadContext(t, "/admin/customers/import", "customers.csv", []byte("a,b"))
		handler.Import(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
		var response validationResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Contains(t, response.Errors, "file")
		svc.AssertNotCalled(t, "Import", mock.Anything, mock.Anything)
	})

	t.Run("business failure", func(t *testing.T) {
		svc := new(MockCustomerService)
		handler := NewCustomerHandler(svc)

		svc.On("Import", mock.Anything, mock.Anything).
			Return(nil, &model.ImportError{Row: 4, Reason: "subscriber number PLG001 already exists"})

		ctx := setupTestContext("POST", "/admin/customers/import", []byte(`{"customers":[{}]}`))
		handler.Import(ctx)

		assert.Equal(t, 422, ctx.Response.StatusCode())
		var response importFailedResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "Import failed", response.Message)
		assert.Equal(t, "row 4: subscriber number PLG001 already exists", response.Error)
	})
}
