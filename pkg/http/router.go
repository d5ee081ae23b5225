package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router

// NewRouter returns a new Router
func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router that answers unknown routes and
// wrong methods with a JSON error. OPTIONS requests are answered by the
// CORS middleware before they reach the router.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = MethodNotAllowedHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	r.PanicHandler = func(ctx *RequestCtx, v interface{}) {
		panicResponse(ctx, v)
	}
	return r
}

// NotFoundHandler is the default 404 handler
func NotFoundHandler(ctx *RequestCtx) {
	JSONMessage(ctx, StatusNotFound, "route not found")
}

func MethodNotAllowedHandler(ctx *RequestCtx) {
	JSONMessage(ctx, StatusMethodNotAllowed, StatusText(StatusMethodNotAllowed))
}

// MatchedRoute returns the registered pattern (e.g. /admin/bills/{id}) of
// the current request, or the raw path when the router did not record one.
func MatchedRoute(ctx *RequestCtx) string {
	if v, ok := ctx.UserValue(router.MatchedRoutePathParam).(string); ok && v != "" {
		return v
	}
	return string(ctx.Path())
}
