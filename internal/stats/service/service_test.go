package service

import (
	"context"
	"testing"

	"github.com/vagadeeshwar/household-services-sub000/internal/stats/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// fakeStore records the last call so tests can assert the dispatch scoped
// each query to the right actor.
type fakeStore struct {
	lastMethod        string
	lastReviewFilter  repository.ReviewFilter
	lastRequestFilter repository.RequestFilter
	lastUserRole      string
	overviewFor       uuid.UUID
}

func (f *fakeStore) AdminOverview(ctx context.Context) (repository.AdminOverview, error) {
	f.lastMethod = "AdminOverview"
	return repository.AdminOverview{TotalProfessionals: 3}, nil
}

func (f *fakeStore) ProfessionalOverview(ctx context.Context, id uuid.UUID) (repository.ProfessionalOverview, error) {
	f.lastMethod = "ProfessionalOverview"
	f.overviewFor = id
	return repository.ProfessionalOverview{Verified: true}, nil
}

func (f *fakeStore) CustomerOverview(ctx context.Context, id uuid.UUID) (repository.CustomerOverview, error) {
	f.lastMethod = "CustomerOverview"
	f.overviewFor = id
	return repository.CustomerOverview{ReviewsGiven: 2}, nil
}

func (f *fakeStore) PendingVerifications(ctx context.Context, limit, offset int) ([]repository.ProfessionalRow, error) {
	f.lastMethod = "PendingVerifications"
	return nil, nil
}

func (f *fakeStore) RecentUsers(ctx context.Context, role string, limit, offset int) ([]repository.UserRow, error) {
	f.lastMethod = "RecentUsers"
	f.lastUserRole = role
	return nil, nil
}

func (f *fakeStore) Reviews(ctx context.Context, filter repository.ReviewFilter, limit, offset int) ([]repository.ReviewRow, error) {
	f.lastMethod = "Reviews"
	f.lastReviewFilter = filter
	return nil, nil
}

func (f *fakeStore) Requests(ctx context.Context, filter repository.RequestFilter, limit, offset int) ([]repository.RequestRow, error) {
	f.lastMethod = "Requests"
	f.lastRequestFilter = filter
	return nil, nil
}

func (f *fakeStore) ActiveServices(ctx context.Context, limit, offset int) ([]repository.ServiceRow, error) {
	f.lastMethod = "ActiveServices"
	return nil, nil
}

type testIdentity struct {
	id   uuid.UUID
	role string
}

func (t testIdentity) UserID() uuid.UUID        { return t.id }
func (t testIdentity) Role() string             { return t.role }
func (t testIdentity) HasRole(role string) bool { return t.role == role }
func (t testIdentity) IsAuthenticated() bool    { return true }

func newTestService() (*Service, *fakeStore) {
	store := &fakeStore{}
	return New(store, logger.New("development")), store
}

func TestOverviewDispatchesByRole(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	cases := []struct {
		role       string
		wantMethod string
	}{
		{httpkit.RoleAdmin, "AdminOverview"},
		{httpkit.RoleProfessional, "ProfessionalOverview"},
		{httpkit.RoleCustomer, "CustomerOverview"},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			actor := testIdentity{id: uuid.New(), role: tc.role}
			overview, err := svc.Overview(ctx, actor)
			if err != nil {
				t.Fatalf("Overview: %v", err)
			}
			if store.lastMethod != tc.wantMethod {
				t.Fatalf("dispatched to %s, want %s", store.lastMethod, tc.wantMethod)
			}
			if overview.Role != tc.role {
				t.Fatalf("overview tagged %s, want %s", overview.Role, tc.role)
			}
			if tc.role != httpkit.RoleAdmin && store.overviewFor != actor.id {
				t.Fatalf("overview scoped to %s, want %s", store.overviewFor, actor.id)
			}
		})
	}
}

func TestOverviewUnknownRoleForbidden(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Overview(context.Background(), testIdentity{id: uuid.New(), role: "auditor"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("got %v, want forbidden", err)
	}
}

func TestKindsForCoversEveryKindExactlyPerRole(t *testing.T) {
	cases := []struct {
		role string
		want []Kind
	}{
		{httpkit.RoleAdmin, []Kind{KindPendingVerifications, KindReportedReviews, KindRecentProfessionals, KindRecentCustomers, KindRecentRequests}},
		{httpkit.RoleProfessional, []Kind{KindPendingRequests, KindActiveRequests, KindCompletedRequests, KindMyReviews, KindReportedReviews}},
		{httpkit.RoleCustomer, []Kind{KindPendingRequests, KindActiveRequests, KindCompletedRequests, KindMyReviews, KindAvailableServices}},
	}
	for _, tc := range cases {
		got := KindsFor(tc.role)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: %d kinds, want %d", tc.role, len(got), len(tc.want))
		}
		for i, k := range tc.want {
			if got[i] != k {
				t.Errorf("%s[%d] = %s, want %s", tc.role, i, got[i], k)
			}
			if !Allowed(tc.role, k) {
				t.Errorf("Allowed(%s, %s) = false", tc.role, k)
			}
		}
	}
	if Allowed(httpkit.RoleCustomer, KindPendingVerifications) {
		t.Error("customer must not see pending verifications")
	}
	if Allowed(httpkit.RoleProfessional, KindAvailableServices) {
		t.Error("professional must not see the catalog stat")
	}
}

func TestDetailedRejectsKindOutsideRole(t *testing.T) {
	svc, store := newTestService()
	actor := testIdentity{id: uuid.New(), role: httpkit.RoleCustomer}

	_, err := svc.Detailed(context.Background(), actor, KindPendingVerifications, 0, 0)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("got %v, want bad request", err)
	}
	if store.lastMethod != "" {
		t.Fatalf("store was called (%s) despite rejection", store.lastMethod)
	}
}

func TestDetailedScopesSharedKindsToActor(t *testing.T) {
	ctx := context.Background()

	t.Run("professional reported reviews are own only", func(t *testing.T) {
		svc, store := newTestService()
		actor := testIdentity{id: uuid.New(), role: httpkit.RoleProfessional}
		if _, err := svc.Detailed(ctx, actor, KindReportedReviews, 0, 0); err != nil {
			t.Fatalf("Detailed: %v", err)
		}
		if store.lastReviewFilter.ProfessionalID == nil || *store.lastReviewFilter.ProfessionalID != actor.id {
			t.Fatalf("filter not scoped to professional: %+v", store.lastReviewFilter)
		}
		if !store.lastReviewFilter.ReportedOnly {
			t.Fatal("reported-only flag not set")
		}
	})

	t.Run("admin reported reviews are platform wide", func(t *testing.T) {
		svc, store := newTestService()
		actor := testIdentity{id: uuid.New(), role: httpkit.RoleAdmin}
		if _, err := svc.Detailed(ctx, actor, KindReportedReviews, 0, 0); err != nil {
			t.Fatalf("Detailed: %v", err)
		}
		if store.lastReviewFilter.ProfessionalID != nil || store.lastReviewFilter.CustomerID != nil {
			t.Fatalf("admin filter unexpectedly scoped: %+v", store.lastReviewFilter)
		}
	})

	t.Run("professional pending requests match own service", func(t *testing.T) {
		svc, store := newTestService()
		actor := testIdentity{id: uuid.New(), role: httpkit.RoleProfessional}
		if _, err := svc.Detailed(ctx, actor, KindPendingRequests, 0, 0); err != nil {
			t.Fatalf("Detailed: %v", err)
		}
		if store.lastRequestFilter.ServiceOfProfessional == nil || *store.lastRequestFilter.ServiceOfProfessional != actor.id {
			t.Fatalf("filter not scoped to professional's service: %+v", store.lastRequestFilter)
		}
	})

	t.Run("customer active requests are own only", func(t *testing.T) {
		svc, store := newTestService()
		actor := testIdentity{id: uuid.New(), role: httpkit.RoleCustomer}
		if _, err := svc.Detailed(ctx, actor, KindActiveRequests, 0, 0); err != nil {
			t.Fatalf("Detailed: %v", err)
		}
		if store.lastRequestFilter.CustomerID == nil || *store.lastRequestFilter.CustomerID != actor.id {
			t.Fatalf("filter not scoped to customer: %+v", store.lastRequestFilter)
		}
		if len(store.lastRequestFilter.Statuses) != 2 {
			t.Fatalf("statuses = %v, want assigned and in_progress", store.lastRequestFilter.Statuses)
		}
	})

	t.Run("recent customers query the customer role", func(t *testing.T) {
		svc, store := newTestService()
		actor := testIdentity{id: uuid.New(), role: httpkit.RoleAdmin}
		detailed, err := svc.Detailed(ctx, actor, KindRecentCustomers, 0, 0)
		if err != nil {
			t.Fatalf("Detailed: %v", err)
		}
		if store.lastUserRole != httpkit.RoleCustomer {
			t.Fatalf("queried role %s, want customer", store.lastUserRole)
		}
		if detailed.Kind != KindRecentCustomers {
			t.Fatalf("result tagged %s", detailed.Kind)
		}
	})
}
