// Package auth provides the accounts bounded context module: registration,
// login and admin customer blocking.
package auth

import (
	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/auth/handler"
	"github.com/vagadeeshwar/household-services-sub000/internal/auth/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/auth/service"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"
	"github.com/vagadeeshwar/household-services-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, catalog *catalogrepo.Repository, audit *auditrepo.Repository,
	cfg config.AuthServiceConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, audit, cfg, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Repository returns the users repository for cross-module reads.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts auth routes. Registration and login sit behind the
// stricter per-IP auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/register/customer", m.handler.RegisterCustomer)
	authGroup.POST("/register/professional", m.handler.RegisterProfessional)
	authGroup.POST("/login", m.handler.Login)

	customers := ctx.Admin.Group("/customers")
	customers.GET("", m.handler.ListCustomers)
	customers.PATCH("/:id/block", m.handler.BlockCustomer)
	customers.PATCH("/:id/unblock", m.handler.UnblockCustomer)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
