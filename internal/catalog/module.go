// Package catalog provides the service catalog bounded context module.
package catalog

import (
	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/catalog/handler"
	"github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/catalog/service"
	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"
	"github.com/vagadeeshwar/household-services-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, audit *auditrepo.Repository, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, audit, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Repository returns the catalog repository for cross-module reads.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts catalog routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Authenticated read-only catalog
	ctx.Protected.GET("/services", m.handler.ListActive)
	ctx.Protected.GET("/services/:id", m.handler.GetByID)

	// Admin-only catalog management
	adminGroup := ctx.Admin.Group("/services")
	adminGroup.GET("", m.handler.ListAll)
	adminGroup.POST("", m.handler.Create)
	adminGroup.PUT("/:id", m.handler.Update)
	adminGroup.DELETE("/:id", m.handler.Delete)
	adminGroup.PATCH("/:id/restore", m.handler.Restore)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
