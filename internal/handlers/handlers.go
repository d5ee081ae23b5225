package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
	"github.com/nimasrn/water-billing/pkg/logger"
)

const (
	msgInvalidData   = "The given data was invalid."
	msgImportFailed  = "Import failed"
	msgInternalError = "internal server error"
)

// Routes is satisfied by both the router and its groups.
type Routes interface {
	GET(path string, handler xhttp.RequestHandler)
	POST(path string, handler xhttp.RequestHandler)
	PUT(path string, handler xhttp.RequestHandler)
	DELETE(path string, handler xhttp.RequestHandler)
}

type validationResponse struct {
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors"`
	ErrorCount int                 `json:"error_count,omitempty"`
}

type importFailedResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	xhttp.JSON(ctx, status, v)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	xhttp.JSONMessage(ctx, status, msg)
}

func writeBadJSON(ctx *xhttp.RequestCtx, err error) {
	logger.Debug("invalid request body", "path", string(ctx.Path()), "error", err)
	writeError(ctx, xhttp.StatusBadRequest, "invalid JSON body")
}

// writeServiceError maps domain errors to a status code. Anything unknown is
// logged and answered with a bare 500.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var (
		ve *model.ValidationError
		ie *model.ImportError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(ctx, xhttp.StatusUnprocessableEntity, validationResponse{Message: msgInvalidData, Errors: ve.Fields})
	case errors.As(err, &ie):
		writeJSON(ctx, xhttp.StatusUnprocessableEntity, importFailedResponse{Message: msgImportFailed, Error: ie.Error()})
	case errors.Is(err, model.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrConflict):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, model.ErrUnprocessable):
		writeError(ctx, xhttp.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrUnauthenticated):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())
	case errors.Is(err, model.ErrForbidden):
		writeError(ctx, xhttp.StatusForbidden, err.Error())
	default:
		logger.Error("request failed",
			"request_id", xhttp.RequestID(ctx),
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"error", err)
		writeError(ctx, xhttp.StatusInternalServerError, msgInternalError)
	}
}

// writeImportError is writeServiceError with the number of failing fields
// added to validation failures.
func writeImportError(ctx *xhttp.RequestCtx, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		writeJSON(ctx, xhttp.StatusUnprocessableEntity, validationResponse{
			Message:    msgInvalidData,
			Errors:     ve.Fields,
			ErrorCount: ve.Count(),
		})
		return
	}
	writeServiceError(ctx, err)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek(key)))
}

func queryInt(ctx *xhttp.RequestCtx, key string) int {
	n, _ := strconv.Atoi(query(ctx, key))
	return n
}

func pagination(ctx *xhttp.RequestCtx) model.Pagination {
	return model.Pagination{
		Page:    queryInt(ctx, "page"),
		PerPage: queryInt(ctx, "per_page"),
	}
}

// pathID reads the {id} route parameter.
func pathID(ctx *xhttp.RequestCtx) (int64, bool) {
	v, _ := ctx.UserValue("id").(string)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func withID(ctx *xhttp.RequestCtx, notFound string, fn func(id int64)) {
	id, ok := pathID(ctx)
	if !ok {
		writeError(ctx, xhttp.StatusNotFound, notFound)
		return
	}
	fn(id)
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func isMultipart(ctx *xhttp.RequestCtx) bool {
	return bytes.HasPrefix(ctx.Request.Header.ContentType(), []byte("multipart/form-data"))
}

// uploadedSheet opens the xlsx file sent in the "file" form field.
func uploadedSheet(ctx *xhttp.RequestCtx) (io.ReadCloser, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, model.FieldError("file", "The file field is required.")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return nil, model.FieldError("file", "The file must be a file of type: xlsx.")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return f, nil
}

func writeSpreadsheet(ctx *xhttp.RequestCtx, filename, contentType string, body []byte) {
	ctx.Response.Header.SetContentType(contentType)
	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyRaw(body)
}
