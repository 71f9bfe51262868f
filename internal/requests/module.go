// Package requests provides the service request lifecycle bounded context:
// booking, assignment, completion, reviews and the professional calendar.
package requests

import (
	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/availability"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests/handler"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests/service"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"
	"github.com/vagadeeshwar/household-services-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the requests bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the requests module. cache may be nil
// to disable schedule caching.
func NewModule(
	pool *pgxpool.Pool,
	audit *auditrepo.Repository,
	catalog *catalogrepo.Repository,
	policy config.BookingPolicy,
	cache service.ScheduleCache,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool, audit)
	engine := availability.NewEngine(repo, policy)
	svc := service.New(repo, catalog, engine, policy, cache, bus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "requests"
}

// Repository returns the requests repository for cross-module reads
// (exports, scheduler reminders).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lifecycle, calendar and review moderation routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Customer lifecycle
	customer := ctx.Protected.Group("/requests")
	customer.POST("", httpkit.RequireRole(httpkit.RoleCustomer), m.handler.Create)
	customer.GET("", httpkit.RequireRole(httpkit.RoleCustomer), m.handler.ListMine)
	customer.GET("/:id", m.handler.Get)
	customer.PUT("/:id", httpkit.RequireRole(httpkit.RoleCustomer), m.handler.Update)
	customer.POST("/:id/cancel", m.handler.Cancel)
	customer.POST("/:id/close", httpkit.RequireRole(httpkit.RoleCustomer), m.handler.Close)

	// Professional lifecycle
	customer.POST("/:id/accept", httpkit.RequireRole(httpkit.RoleProfessional), m.handler.Accept)
	customer.POST("/:id/start", httpkit.RequireRole(httpkit.RoleProfessional), m.handler.Start)
	customer.POST("/:id/complete", httpkit.RequireRole(httpkit.RoleProfessional), m.handler.Complete)

	professional := ctx.Protected.Group("/professional")
	professional.Use(httpkit.RequireRole(httpkit.RoleProfessional))
	professional.GET("/requests", m.handler.ListAssigned)

	// Calendar, visible to any authenticated user
	ctx.Protected.GET("/professionals/:id/schedule", m.handler.Schedule)

	// Admin dashboards
	ctx.Admin.GET("/customers/:id/requests", m.handler.ListForCustomerAdmin)
	ctx.Admin.GET("/professionals/:id/requests", m.handler.ListForProfessionalAdmin)

	// Review moderation
	reviews := ctx.Admin.Group("/reviews")
	reviews.GET("/:id", m.handler.GetReview)
	reviews.POST("/:id/report", m.handler.ReportReview)
	reviews.POST("/:id/dismiss", m.handler.DismissReport)
	reviews.DELETE("/:id", m.handler.RemoveReview)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
