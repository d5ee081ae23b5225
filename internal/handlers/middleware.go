package handlers

import (
	"bytes"
	"context"

	"github.com/nimasrn/water-billing/internal/model"
	xhttp "github.com/nimasrn/water-billing/pkg/http"
	"github.com/nimasrn/water-billing/pkg/logger"
)

const sessionKey = "session"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

type Authorizer interface {
	Allow(role model.Role, path, method string) (bool, error)
}

// Guard authenticates bearer tokens and checks the caller's role against
// the route.
type Guard struct {
	authn Authenticator
	authz Authorizer
}

func NewGuard(authn Authenticator, authz Authorizer) *Guard {
	return &Guard{authn: authn, authz: authz}
}

func bearerToken(ctx *xhttp.RequestCtx) string {
	h := ctx.Request.Header.Peek("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !bytes.EqualFold(h[:len(prefix)], []byte(prefix)) {
		return ""
	}
	return string(bytes.TrimSpace(h[len(prefix):]))
}

// Authenticate stores the caller's session on the request, 401 without one.
func (g *Guard) Authenticate(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		token := bearerToken(ctx)
		if token == "" {
			writeError(ctx, xhttp.StatusUnauthorized, "Unauthenticated.")
			return
		}
		sess, err := g.authn.Authenticate(ctx, token)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.SetUserValue(sessionKey, sess)
		next(ctx)
	}
}

// Authorize must run after Authenticate.
func (g *Guard) Authorize(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		sess := currentSession(ctx)
		if sess == nil {
			writeError(ctx, xhttp.StatusUnauthorized, "Unauthenticated.")
			return
		}
		path, method := string(ctx.Path()), string(ctx.Method())
		ok, err := g.authz.Allow(sess.Role, path, method)
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		if !ok {
			logger.Warn("access denied", "user_id", sess.UserID, "role", sess.Role, "method", method, "path", path)
			writeError(ctx, xhttp.StatusForbidden, "This action is unauthorized.")
			return
		}
		next(ctx)
	}
}

// Protect wraps a handler with authentication and authorization.
func (g *Guard) Protect(h xhttp.RequestHandler) xhttp.RequestHandler {
	return g.Authenticate(g.Authorize(h))
}

func currentSession(ctx *xhttp.RequestCtx) *model.Session {
	sess, _ := ctx.UserValue(sessionKey).(*model.Session)
	return sess
}
