package exports

import (
	"context"
	"net/http"

	apphttp "github.com/vagadeeshwar/household-services-sub000/internal/http"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Enqueuer queues an export for background generation. The scheduler
// client implements it.
type Enqueuer interface {
	EnqueueServiceReportExport(ctx context.Context, professionalID uuid.UUID) error
}

// Module exposes the export trigger endpoints. Generation itself happens
// in the scheduler worker.
type Module struct {
	enqueuer Enqueuer
}

// NewModule creates the exports module.
func NewModule(enqueuer Enqueuer) *Module {
	return &Module{enqueuer: enqueuer}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts the export trigger endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/professional/exports",
		httpkit.RequireRole(httpkit.RoleProfessional), m.triggerOwn)
	ctx.Admin.POST("/professionals/:id/export", m.triggerForProfessional)
}

// triggerOwn queues an export of the calling professional's completed work.
// POST /api/v1/professional/exports
func (m *Module) triggerOwn(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	if httpkit.HandleError(c, m.enqueuer.EnqueueServiceReportExport(c.Request.Context(), identity.UserID())) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "queued"})
}

// triggerForProfessional queues an export on a professional's behalf.
// POST /api/v1/admin/professionals/:id/export
func (m *Module) triggerForProfessional(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid professional ID", nil)
		return
	}
	if httpkit.HandleError(c, m.enqueuer.EnqueueServiceReportExport(c.Request.Context(), id)) {
		return
	}
	httpkit.JSON(c, http.StatusAccepted, gin.H{"status": "queued"})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
