// Package routes mounts the briar HTTP surface on an echo server.
package routes

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/briar/pkg/middleware"
	"github.com/Ramsey-B/briar/pkg/routes/admin"
	"github.com/Ramsey-B/briar/pkg/routes/entity"
	"github.com/Ramsey-B/briar/pkg/routes/health"
	"github.com/Ramsey-B/briar/pkg/routes/screening"
	"github.com/Ramsey-B/briar/pkg/routes/search"
	"github.com/Ramsey-B/briar/pkg/routes/traces"
)

// Register mounts middleware, health probes, and the versioned API surface.
// The platform entrypoint calls this after the dependency container is built;
// handlers resolve their services per-request through ectoinject.
func Register(e *echo.Echo, logger ectologger.Logger, appName string, checker *health.Checker) {
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(otelecho.Middleware(appName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker.RegisterRoutes(e)

	v1 := e.Group("/v1")
	search.Register(v1.Group("/search"))
	screening.Register(v1.Group("/screen"))
	entity.Register(v1.Group("/entities"))
	traces.Register(v1.Group("/traces"))
	admin.Register(v1.Group("/admin"))
}
