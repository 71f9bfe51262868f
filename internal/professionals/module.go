// Package professionals provides the professional profiles bounded context
// module: public listings plus admin verification and blocking.
package professionals

import (
	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"
	"github.com/vagadeeshwar/household-services-sub000/internal/professionals/handler"
	"github.com/vagadeeshwar/household-services-sub000/internal/professionals/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/professionals/service"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the professionals bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the professionals module.
func NewModule(pool *pgxpool.Pool, audit *auditrepo.Repository, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, audit, bus, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "professionals"
}

// Repository returns the professionals repository for cross-module reads.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts professional routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/professionals", m.handler.ListByService)
	ctx.Protected.GET("/professionals/:id", m.handler.GetByID)

	adminGroup := ctx.Admin.Group("/professionals")
	adminGroup.GET("", m.handler.ListAll)
	adminGroup.PATCH("/:id/verify", m.handler.Verify)
	adminGroup.PATCH("/:id/block", m.handler.Block)
	adminGroup.PATCH("/:id/unblock", m.handler.Unblock)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
