// Package audit provides the activity log bounded context module.
// The domain types and persistence live in the repository subpackage.
package audit

import (
	"github.com/vagadeeshwar/household-services-sub000/internal/audit/handler"
	"github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the activity log bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the audit module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	return &Module{
		handler: handler.New(repo),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// Repository returns the activity log repository so other modules can append
// entries inside their own transactions.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the admin-only activity log endpoint.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/activity-log", m.handler.List)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
