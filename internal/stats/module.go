// Package stats provides the dashboard statistics bounded context module:
// role-scoped summary counters and detailed listings.
package stats

import (
	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"
	"github.com/vagadeeshwar/household-services-sub000/internal/stats/handler"
	"github.com/vagadeeshwar/household-services-sub000/internal/stats/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/stats/service"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the dashboard stats bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the stats module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "stats"
}

// RegisterRoutes mounts the dashboard routes for any authenticated role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	dashboard := ctx.Protected.Group("/dashboard")
	dashboard.GET("/stats", m.handler.Overview)
	dashboard.GET("/detailed-stats", m.handler.Detailed)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
