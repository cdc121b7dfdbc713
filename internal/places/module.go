package places

import (
	apphttp "frontsnap_backend/internal/http"
)

// Module wires the place resolution HTTP routes.
type Module struct {
	handler *Handler
}

func NewModule(handler *Handler) *Module {
	return &Module{handler: handler}
}

func (m *Module) Name() string {
	return "places"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/places")

	// Resolution fans out to billable external APIs; rate limit it harder
	// than the rest of the API.
	resolve := group.Group("")
	resolve.Use(ctx.ResolveRateLimiter.RateLimit())
	resolve.POST("/resolve", m.handler.Resolve)
	resolve.POST("/resolve/:session/retry", m.handler.Retry)

	group.POST("/nearby", m.handler.Nearby)
	group.GET("/:id", m.handler.GetPlace)
	group.GET("/:id/qr", m.handler.ShareQR)
}

var _ apphttp.Module = (*Module)(nil)
