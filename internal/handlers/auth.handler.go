package handlers

import (
	"context"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
)

type AuthService interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Current(ctx context.Context, sess *model.Session) (*model.User, error)
}

type AuthHandler struct {
	authService AuthService
}

// RegisterAuthRoutes mounts login behind limit and the session routes behind g.
func RegisterAuthRoutes(e Routes, h *AuthHandler, g *Guard, limit xhttp.MiddlewareFunc) {
	e.POST("/login", limit(h.Login))
	e.POST("/logout", g.Protect(h.Logout))
	e.GET("/user", g.Protect(h.User))
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(ctx *xhttp.RequestCtx) {
	var req model.LoginRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadJSON(ctx, err)
		return
	}
	res, err := h.authService.Login(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, res)
}

func (h *AuthHandler) Logout(ctx *xhttp.RequestCtx) {
	if err := h.authService.Logout(ctx, currentSession(ctx).Token); err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}

func (h *AuthHandler) User(ctx *xhttp.RequestCtx) {
	u, err := h.authService.Current(ctx, currentSession(ctx))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, u)
}
