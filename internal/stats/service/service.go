// Package service dispatches dashboard statistics per actor role. Every
// stat kind is an enum constant resolved through a static role table; there
// are no runtime-built handler maps.
package service

import (
	"context"
	"fmt"

	"github.com/vagadeeshwar/household-services-sub000/internal/stats/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// Kind identifies one detailed statistic. Which kinds an actor may request
// depends on their role; see KindsFor.
type Kind string

const (
	KindPendingVerifications Kind = "pending_verifications"
	KindReportedReviews      Kind = "reported_reviews"
	KindRecentProfessionals  Kind = "recent_professionals"
	KindRecentCustomers      Kind = "recent_customers"
	KindRecentRequests       Kind = "recent_requests"
	KindPendingRequests      Kind = "pending_requests"
	KindActiveRequests       Kind = "active_requests"
	KindCompletedRequests    Kind = "completed_requests"
	KindMyReviews            Kind = "my_reviews"
	KindAvailableServices    Kind = "available_services"
)

// kindsByRole is the static dispatch table: the complete set of detailed
// stats each role may request. A kind shared between roles (reported
// reviews, request listings) is scoped to the actor inside Detailed.
var kindsByRole = map[string][]Kind{
	httpkit.RoleAdmin: {
		KindPendingVerifications, KindReportedReviews,
		KindRecentProfessionals, KindRecentCustomers, KindRecentRequests,
	},
	httpkit.RoleProfessional: {
		KindPendingRequests, KindActiveRequests, KindCompletedRequests,
		KindMyReviews, KindReportedReviews,
	},
	httpkit.RoleCustomer: {
		KindPendingRequests, KindActiveRequests, KindCompletedRequests,
		KindMyReviews, KindAvailableServices,
	},
}

// KindsFor returns the detailed stat kinds available to a role.
func KindsFor(role string) []Kind {
	return kindsByRole[role]
}

// Allowed reports whether the role may request the kind.
func Allowed(role string, kind Kind) bool {
	for _, k := range kindsByRole[role] {
		if k == kind {
			return true
		}
	}
	return false
}

// Store is the read surface the dashboard depends on.
type Store interface {
	AdminOverview(ctx context.Context) (repository.AdminOverview, error)
	ProfessionalOverview(ctx context.Context, professionalID uuid.UUID) (repository.ProfessionalOverview, error)
	CustomerOverview(ctx context.Context, customerID uuid.UUID) (repository.CustomerOverview, error)
	PendingVerifications(ctx context.Context, limit, offset int) ([]repository.ProfessionalRow, error)
	RecentUsers(ctx context.Context, role string, limit, offset int) ([]repository.UserRow, error)
	Reviews(ctx context.Context, filter repository.ReviewFilter, limit, offset int) ([]repository.ReviewRow, error)
	Requests(ctx context.Context, filter repository.RequestFilter, limit, offset int) ([]repository.RequestRow, error)
	ActiveServices(ctx context.Context, limit, offset int) ([]repository.ServiceRow, error)
}

// Service computes role-scoped dashboard statistics.
type Service struct {
	store Store
	log   *logger.Logger
}

// New creates the stats service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Overview is the role-tagged dashboard summary. Exactly one of the three
// payload fields is set, matching Role.
type Overview struct {
	Role         string                           `json:"role"`
	Admin        *repository.AdminOverview        `json:"admin,omitempty"`
	Professional *repository.ProfessionalOverview `json:"professional,omitempty"`
	Customer     *repository.CustomerOverview     `json:"customer,omitempty"`
}

// Overview computes the summary counters for the actor's role.
func (s *Service) Overview(ctx context.Context, actor httpkit.Identity) (Overview, error) {
	switch actor.Role() {
	case httpkit.RoleAdmin:
		o, err := s.store.AdminOverview(ctx)
		if err != nil {
			return Overview{}, err
		}
		return Overview{Role: httpkit.RoleAdmin, Admin: &o}, nil
	case httpkit.RoleProfessional:
		o, err := s.store.ProfessionalOverview(ctx, actor.UserID())
		if err != nil {
			return Overview{}, err
		}
		return Overview{Role: httpkit.RoleProfessional, Professional: &o}, nil
	case httpkit.RoleCustomer:
		o, err := s.store.CustomerOverview(ctx, actor.UserID())
		if err != nil {
			return Overview{}, err
		}
		return Overview{Role: httpkit.RoleCustomer, Customer: &o}, nil
	default:
		return Overview{}, apperr.Forbidden("no dashboard for this role")
	}
}

// Detailed is one paginated detail listing tagged with its kind.
type Detailed struct {
	Kind  Kind        `json:"kind"`
	Items interface{} `json:"items"`
}

const (
	defaultDetailLimit = 20
	maxDetailLimit     = 100
)

// Detailed resolves one stat kind for the actor: role check against the
// static table first, then a scoped query. Shared kinds narrow to the
// actor's own rows for non-admin roles.
func (s *Service) Detailed(ctx context.Context, actor httpkit.Identity, kind Kind, limit, offset int) (Detailed, error) {
	if !Allowed(actor.Role(), kind) {
		return Detailed{}, apperr.BadRequest(
			fmt.Sprintf("stat type %q is not available to role %s", kind, actor.Role()))
	}
	if limit <= 0 || limit > maxDetailLimit {
		limit = defaultDetailLimit
	}
	if offset < 0 {
		offset = 0
	}

	actorID := actor.UserID()
	var items interface{}
	var err error

	switch kind {
	case KindPendingVerifications:
		items, err = s.store.PendingVerifications(ctx, limit, offset)
	case KindRecentProfessionals:
		items, err = s.store.RecentUsers(ctx, httpkit.RoleProfessional, limit, offset)
	case KindRecentCustomers:
		items, err = s.store.RecentUsers(ctx, httpkit.RoleCustomer, limit, offset)
	case KindRecentRequests:
		items, err = s.store.Requests(ctx, repository.RequestFilter{}, limit, offset)
	case KindReportedReviews:
		filter := repository.ReviewFilter{ReportedOnly: true}
		if actor.Role() == httpkit.RoleProfessional {
			filter.ProfessionalID = &actorID
		}
		items, err = s.store.Reviews(ctx, filter, limit, offset)
	case KindMyReviews:
		filter := repository.ReviewFilter{}
		if actor.Role() == httpkit.RoleProfessional {
			filter.ProfessionalID = &actorID
		} else {
			filter.CustomerID = &actorID
		}
		items, err = s.store.Reviews(ctx, filter, limit, offset)
	case KindPendingRequests:
		filter := repository.RequestFilter{Statuses: []string{"created"}}
		if actor.Role() == httpkit.RoleProfessional {
			filter.ServiceOfProfessional = &actorID
		} else {
			filter.CustomerID = &actorID
		}
		items, err = s.store.Requests(ctx, filter, limit, offset)
	case KindActiveRequests:
		filter := repository.RequestFilter{Statuses: []string{"assigned", "in_progress"}}
		if actor.Role() == httpkit.RoleProfessional {
			filter.ProfessionalID = &actorID
		} else {
			filter.CustomerID = &actorID
		}
		items, err = s.store.Requests(ctx, filter, limit, offset)
	case KindCompletedRequests:
		filter := repository.RequestFilter{Statuses: []string{"completed", "closed"}}
		if actor.Role() == httpkit.RoleProfessional {
			filter.ProfessionalID = &actorID
		} else {
			filter.CustomerID = &actorID
		}
		items, err = s.store.Requests(ctx, filter, limit, offset)
	case KindAvailableServices:
		items, err = s.store.ActiveServices(ctx, limit, offset)
	default:
		return Detailed{}, apperr.BadRequest(fmt.Sprintf("unknown stat type %q", kind))
	}
	if err != nil {
		return Detailed{}, err
	}
	return Detailed{Kind: kind, Items: items}, nil
}
