// Package service implements registration, login and account blocking.
package service

import (
	"context"
	"strings"
	"time"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/auth/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/auth/transport"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"
	"github.com/vagadeeshwar/household-services-sub000/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenType = "access"

// Service provides authentication business logic.
type Service struct {
	repo    *repository.Repository
	catalog *catalogrepo.Repository
	audit   *auditrepo.Repository
	cfg     config.AuthServiceConfig
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new auth service.
func New(repo *repository.Repository, catalog *catalogrepo.Repository, audit *auditrepo.Repository,
	cfg config.AuthServiceConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, audit: audit, cfg: cfg, bus: bus, log: log}
}

// RegisterCustomer creates a customer account.
func (s *Service) RegisterCustomer(ctx context.Context, req transport.RegisterCustomerRequest) (transport.UserResponse, error) {
	user, err := s.buildUser(req.Email, req.Password, req.FullName, req.Phone, repository.RoleCustomer)
	if err != nil {
		return transport.UserResponse{}, err
	}

	profile := repository.CustomerProfile{
		Address: strings.TrimSpace(req.Address),
		Pincode: strings.TrimSpace(req.Pincode),
	}
	if err := s.repo.CreateCustomer(ctx, user, profile); err != nil {
		return transport.UserResponse{}, err
	}

	s.afterRegister(ctx, user)
	return toUserResponse(user), nil
}

// RegisterProfessional creates a professional account. The account can log
// in immediately but cannot accept work until an admin verifies it.
func (s *Service) RegisterProfessional(ctx context.Context, req transport.RegisterProfessionalRequest) (transport.UserResponse, error) {
	if _, err := s.catalog.GetActiveByID(ctx, req.ServiceID); err != nil {
		return transport.UserResponse{}, apperr.Validation("unknown or inactive service")
	}

	user, err := s.buildUser(req.Email, req.Password, req.FullName, req.Phone, repository.RoleProfessional)
	if err != nil {
		return transport.UserResponse{}, err
	}

	profile := repository.ProfessionalProfile{
		ServiceID:       req.ServiceID,
		ExperienceYears: req.ExperienceYears,
	}
	if err := s.repo.CreateProfessional(ctx, user, profile); err != nil {
		return transport.UserResponse{}, err
	}

	s.afterRegister(ctx, user)
	return toUserResponse(user), nil
}

// Login verifies credentials and issues an access token. Blocked accounts
// cannot log in.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.LoginResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("login", email, false, "unknown email")
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return transport.LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if !user.Active {
		s.log.AuthEvent("login", email, false, "account blocked")
		return transport.LoginResponse{}, apperr.Forbidden("account is blocked")
	}

	accessToken, err := s.signJWT(user)
	if err != nil {
		return transport.LoginResponse{}, err
	}

	s.log.AuthEvent("login", email, true, "")
	s.recordActivity(ctx, user.ID, auditrepo.ActionUserLogin, user.ID, user.Role+" logged in")

	return transport.LoginResponse{AccessToken: accessToken, User: toUserResponse(user)}, nil
}

// BlockCustomer deactivates a customer account.
func (s *Service) BlockCustomer(ctx context.Context, adminID, customerID uuid.UUID) error {
	if err := s.repo.SetActive(ctx, customerID, repository.RoleCustomer, false); err != nil {
		return err
	}
	s.recordActivity(ctx, adminID, auditrepo.ActionCustomerBlock, customerID, "customer blocked")
	return nil
}

// UnblockCustomer reactivates a customer account.
func (s *Service) UnblockCustomer(ctx context.Context, adminID, customerID uuid.UUID) error {
	if err := s.repo.SetActive(ctx, customerID, repository.RoleCustomer, true); err != nil {
		return err
	}
	s.recordActivity(ctx, adminID, auditrepo.ActionCustomerUnblock, customerID, "customer unblocked")
	return nil
}

// ListCustomers returns all customer accounts for the admin dashboard.
func (s *Service) ListCustomers(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func (s *Service) buildUser(email, plainPassword, fullName, rawPhone, role string) (repository.User, error) {
	normalizedPhone := phone.NormalizeE164(rawPhone)
	if !phone.IsValid(normalizedPhone) {
		return repository.User{}, apperr.Validation("invalid phone number")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	return repository.User{
		ID:           uuid.New(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		Phone:        normalizedPhone,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (s *Service) afterRegister(ctx context.Context, user repository.User) {
	s.recordActivity(ctx, user.ID, auditrepo.ActionUserRegister, user.ID, user.Role+" registered")
	s.bus.Publish(ctx, events.UserRegistered{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
	})
}

func (s *Service) signJWT(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"type": accessTokenType,
		"role": user.Role,
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to sign access token", err)
	}
	return signed, nil
}

func (s *Service) recordActivity(ctx context.Context, actorID uuid.UUID, action auditrepo.Action, targetID uuid.UUID, description string) {
	entry := auditrepo.Entry{ActorID: &actorID, Action: action, TargetID: targetID, Description: description}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Error("failed to record auth activity", "action", action, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(u repository.User) transport.UserResponse {
	return transport.UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
		Active:   u.Active,
	}
}
