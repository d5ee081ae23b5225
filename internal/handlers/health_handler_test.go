package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthHandler_GetHealth(t *testing.T) {
	svc := new(MockHealthService)
	handler := NewHealthHandler(svc)
	svc.On("Check", mock.Anything).Return(nil).Once()
	svc.On("Check", mock.Anything).Return(errors.New("redis: connection refused")).Once()

	ctx := setupTestContext("GET", "/health", nil)
	handler.GetHealth(ctx)
	assert.Equal(t, 200, ctx.Response.StatusCode())

	ctx = setupTestContext("GET", "/health", nil)
	handler.GetHealth(ctx)
	assert.Equal(t, 503, ctx.Response.StatusCode())
}
