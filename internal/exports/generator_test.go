package exports

import (
	"context"
	"encoding/csv"
	"os"
	"testing"
	"time"

	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	requestsrepo "github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

type fakeRequestSource struct {
	requests []requestsrepo.Request
}

func (f *fakeRequestSource) ListCompletedByProfessional(ctx context.Context, professionalID uuid.UUID) ([]requestsrepo.Request, error) {
	return f.requests, nil
}

type fakeCatalogSource struct {
	services map[uuid.UUID]catalogrepo.Service
}

func (f *fakeCatalogSource) GetByID(ctx context.Context, id uuid.UUID) (catalogrepo.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return catalogrepo.Service{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

type captureBus struct {
	published []events.Event
}

func (b *captureBus) Publish(ctx context.Context, event events.Event)           { b.published = append(b.published, event) }
func (b *captureBus) PublishSync(ctx context.Context, event events.Event) error { return nil }
func (b *captureBus) Subscribe(eventName string, handler events.Handler)        {}

func TestGenerateWritesCompletedRequests(t *testing.T) {
	ctx := context.Background()
	professionalID := uuid.New()
	serviceID := uuid.New()
	completedAt := time.Date(2026, 8, 20, 15, 0, 0, 0, time.UTC)

	source := &fakeRequestSource{requests: []requestsrepo.Request{
		{
			ID:              uuid.New(),
			ServiceID:       serviceID,
			CustomerID:      uuid.New(),
			ProfessionalID:  &professionalID,
			Status:          requestsrepo.StatusClosed,
			PreferredTime:   time.Date(2026, 8, 20, 14, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
			CompletedAt:     &completedAt,
			Remarks:         "replaced faucet",
		},
		{
			ID:              uuid.New(),
			ServiceID:       serviceID,
			CustomerID:      uuid.New(),
			ProfessionalID:  &professionalID,
			Status:          requestsrepo.StatusCompleted,
			PreferredTime:   time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 90,
			CompletedAt:     &completedAt,
		},
	}}
	catalog := &fakeCatalogSource{services: map[uuid.UUID]catalogrepo.Service{
		serviceID: {ID: serviceID, Name: "plumbing"},
	}}
	bus := &captureBus{}

	dir := t.TempDir()
	gen := New(source, catalog, nil, dir, bus, logger.New("development"))

	path, rows, err := gen.Generate(ctx, professionalID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want header + 2 rows", len(records))
	}
	if records[0][0] != "request_id" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][1] != "plumbing" {
		t.Fatalf("service name not resolved: %v", records[1])
	}
	if records[1][7] != "replaced faucet" {
		t.Fatalf("remarks missing: %v", records[1])
	}

	if len(bus.published) != 1 {
		t.Fatalf("published events = %d, want 1", len(bus.published))
	}
	ready, ok := bus.published[0].(events.ExportReady)
	if !ok || ready.RowCount != 2 || ready.FilePath != path {
		t.Fatalf("ExportReady = %+v", bus.published[0])
	}
}

func TestGenerateEmptyReport(t *testing.T) {
	ctx := context.Background()
	bus := &captureBus{}
	gen := New(&fakeRequestSource{}, &fakeCatalogSource{}, nil, t.TempDir(), bus, logger.New("development"))

	path, rows, err := gen.Generate(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rows != 0 {
		t.Fatalf("rows = %d, want 0", rows)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("empty report should contain only the header, got %d records", len(records))
	}
}
