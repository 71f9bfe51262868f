// Package exports generates CSV service reports for professionals. Reports
// are written under the configured export directory and announced on the
// event bus so the notification module can mail them out.
package exports

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	requestsrepo "github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// RequestSource supplies the finished work included in a report.
type RequestSource interface {
	ListCompletedByProfessional(ctx context.Context, professionalID uuid.UUID) ([]requestsrepo.Request, error)
}

// CatalogSource resolves service names for report rows.
type CatalogSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (catalogrepo.Service, error)
}

// AuditSink records export activity. Nil disables auditing (tests).
type AuditSink interface {
	Append(ctx context.Context, entry auditrepo.Entry) error
}

// Generator writes CSV reports of a professional's completed requests.
type Generator struct {
	source  RequestSource
	catalog CatalogSource
	audit   AuditSink
	dir     string
	bus     events.Bus
	log     *logger.Logger
}

// New creates a report generator writing into dir.
func New(source RequestSource, catalog CatalogSource, audit AuditSink, dir string, bus events.Bus, log *logger.Logger) *Generator {
	return &Generator{source: source, catalog: catalog, audit: audit, dir: dir, bus: bus, log: log}
}

var csvHeader = []string{
	"request_id", "service", "customer_id", "preferred_time",
	"duration_minutes", "status", "completed_at", "remarks",
}

// Generate writes the professional's report and returns the file path and
// row count.
func (g *Generator) Generate(ctx context.Context, professionalID uuid.UUID) (string, int, error) {
	requests, err := g.source.ListCompletedByProfessional(ctx, professionalID)
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(g.dir,
		fmt.Sprintf("service-report-%s-%d.csv", professionalID, time.Now().UTC().Unix()))
	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return "", 0, fmt.Errorf("failed to write export header: %w", err)
	}

	// Service names are cached per report; most professionals offer one
	// service.
	names := make(map[uuid.UUID]string)
	for _, req := range requests {
		name, ok := names[req.ServiceID]
		if !ok {
			svc, err := g.catalog.GetByID(ctx, req.ServiceID)
			if err != nil {
				name = req.ServiceID.String()
			} else {
				name = svc.Name
			}
			names[req.ServiceID] = name
		}

		completedAt := ""
		if req.CompletedAt != nil {
			completedAt = req.CompletedAt.Format(time.RFC3339)
		}
		row := []string{
			req.ID.String(),
			name,
			req.CustomerID.String(),
			req.PreferredTime.Format(time.RFC3339),
			strconv.Itoa(req.DurationMinutes),
			string(req.Status),
			completedAt,
			req.Remarks,
		}
		if err := w.Write(row); err != nil {
			return "", 0, fmt.Errorf("failed to write export row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", 0, fmt.Errorf("failed to flush export: %w", err)
	}

	if g.audit != nil {
		entry := auditrepo.Entry{
			Action:      auditrepo.ActionExportGenerate,
			TargetID:    professionalID,
			Description: fmt.Sprintf("generated service report with %d rows", len(requests)),
		}
		if err := g.audit.Append(ctx, entry); err != nil {
			g.log.Warn("failed to record export activity", "error", err)
		}
	}

	g.log.Info("service report generated",
		"professionalId", professionalID, "path", path, "rows", len(requests))
	g.bus.Publish(ctx, events.ExportReady{
		BaseEvent:      events.NewBaseEvent(),
		ProfessionalID: professionalID,
		FilePath:       path,
		RowCount:       len(requests),
	})
	return path, len(requests), nil
}
