package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/nimasrn/water-billing/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", model.FieldError("period", "The period field is required."), 422, msgInvalidData},
		{"import", &model.ImportError{Row: 3, Reason: "customer PLG404 not found"}, 422, msgImportFailed},
		{"not found", model.ErrBillNotFound, 404, model.ErrBillNotFound.Error()},
		{"wrapped not found", fmt.Errorf("lookup: %w", model.ErrCustomerInactive), 404, "lookup: " + model.ErrCustomerInactive.Error()},
		{"conflict", model.ErrBillAlreadyPaid, 409, model.ErrBillAlreadyPaid.Error()},
		{"unprocessable", model.ErrCustomerNotActive, 422, model.ErrCustomerNotActive.Error()},
		{"unauthenticated", model.ErrInvalidCredentials, 401, model.ErrInvalidCredentials.Error()},
		{"internal", errors.New("pq: connection reset by peer"), 500, msgInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupTestContext("GET", "/admin/bills", nil)
			writeServiceError(ctx, tc.err)

			assert.Equal(t, tc.status, ctx.Response.StatusCode())
			var response map[string]any
			require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
			assert.Equal(t, tc.message, response["message"])
		})
	}

	t.Run("validation fields are returned", func(t *testing.T) {
		ctx := setupTestContext("POST", "/admin/bills", nil)
		writeServiceError(ctx, model.FieldError("period", "The period field is required."))

		var response validationResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, []string{"The period field is required."}, response.Errors["period"])
		assert.Zero(t, response.ErrorCount)
	})

	t.Run("import error carries the row", func(t *testing.T) {
		ctx := setupTestContext("POST", "/admin/bills/import", nil)
		writeServiceError(ctx, &model.ImportError{Row: 3, Reason: "customer PLG404 not found"})

		var response importFailedResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Contains(t, response.Error, "PLG404")
	})
}

func TestWriteImportError(t *testing.T) {
	ve := model.NewValidationError()
	ve.Add("bills.0.period", "The period field is required.")
	ve.Add("bills.2.meter_end", "The meter end field is required.")

	ctx := setupTestContext("POST", "/admin/bills/import", nil)
	writeImportError(ctx, ve)

	assert.Equal(t, 422, ctx.Response.StatusCode())
	var response validationResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, 2, response.ErrorCount)
	assert.Contains(t, response.Errors, "bills.2.meter_end")
}

func TestPathID(t *testing.T) {
	for v, ok := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false, "": false} {
		ctx := withPathID(setupTestContext("GET", "/admin/bills/"+v, nil), v)
		_, got := pathID(ctx)
		assert.Equal(t, ok, got, v)
	}
}

func TestPagination(t *testing.T) {
	ctx := setupTestContext("GET", "/admin/customers?page=3&per_page=20", nil)
	assert.Equal(t, model.Pagination{Page: 3, PerPage: 20}, pagination(ctx))

	ctx = setupTestContext("GET", "/admin/customers?page=x", nil)
	assert.Equal(t, model.Pagination{}, pagination(ctx))
}
