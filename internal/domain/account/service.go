package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/primelabs/primelabs/internal/domain/validation"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

var (
	ErrRegistrationFailed = errors.New("registration failed, please try again")
	ErrInvalidTransition  = errors.New("invalid account status transition")
	ErrOwnerAccount       = errors.New("owner accounts cannot be changed")
)

type Service struct {
	repo   Repository
	creds  auth.CredentialProvider
	owners auth.OwnerList
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, creds auth.CredentialProvider, owners auth.OwnerList, logger zerolog.Logger) *Service {
	return &Service{repo: repo, creds: creds, owners: owners, logger: logger, now: time.Now}
}

// profile returns the stored profile for email, or nil when there is none.
func (s *Service) profile(ctx context.Context, email string) (*Account, error) {
	a, err := s.repo.GetByEmail(ctx, auth.NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return a, err
}

// ResolveSession verifies token and resolves the caller's session. It
// implements auth.SessionResolver.
func (s *Service) ResolveSession(ctx context.Context, token string) (*auth.Session, error) {
	identity, err := s.creds.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	profile, err := s.profile(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return NewSession(identity, profile, s.owners), nil
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// Register creates a login and a pending Employee profile. If the profile
// cannot be written the login is deleted again.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	name := strings.TrimSpace(req.Name)
	if err := validation.MinLength("name", "name", name); err != nil {
		return nil, err
	}

	cred, err := s.creds.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		ID:        cred.UserID,
		Email:     cred.Email,
		Name:      name,
		Role:      auth.RoleEmployee,
		Status:    StatusPendingApproval,
		CreatedAt: docstore.NewTime(s.now()),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		log := s.logger.Error().Err(err).Str("actor", cred.Email).Str("op", "register")
		if delErr := s.creds.Delete(ctx, cred.UserID); delErr != nil {
			log = log.AnErr("compensate_err", delErr)
		}
		log.Msg("profile write failed, credential removed")
		return nil, ErrRegistrationFailed
	}
	return a, nil
}

// LoginResult is a fresh token and the session it resolves to.
type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Session   *auth.Session `json:"session"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	cred, err := s.creds.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	profile, err := s.profile(ctx, cred.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt,
		Session:   NewSession(&auth.Identity{UserID: cred.UserID, Email: cred.Email}, profile, s.owners),
	}, nil
}

func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	return s.creds.SendPasswordReset(ctx, email)
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	return s.creds.ConfirmPasswordReset(ctx, token, password)
}

func (s *Service) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAccounts(ctx context.Context, status AccountStatus, limit int, cursor string) ([]*Account, string, error) {
	return s.repo.List(ctx, status, limit, cursor)
}

var transitions = map[AccountStatus]map[AccountStatus]bool{
	StatusPendingApproval: {StatusApproved: true, StatusRejected: true},
	StatusApproved:        {StatusRejected: true},
	StatusRejected:        {StatusApproved: true},
}

// target loads a non-owner account for an admin write.
func (s *Service) target(ctx context.Context, actor *auth.Session, id string) (*Account, error) {
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.owners.Contains(a.Email) {
		return nil, ErrOwnerAccount
	}
	return a, nil
}

func (s *Service) transition(ctx context.Context, actor *auth.Session, id string, to AccountStatus) (*Account, error) {
	a, err := s.target(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !transitions[a.Status][to] {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.Status, to)
	}

	now := docstore.NewTime(s.now())
	fields := map[string]any{"status": string(to)}
	switch to {
	case StatusApproved:
		a.ApprovedBy, a.ApprovedAt = actor.Actor(), now
		fields["approved_by"], fields["approved_at"] = a.ApprovedBy, a.ApprovedAt
	case StatusRejected:
		a.RejectedBy, a.RejectedAt = actor.Actor(), now
		fields["rejected_by"], fields["rejected_at"] = a.RejectedBy, a.RejectedAt
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		s.logger.Error().Err(err).Str("actor", actor.Actor()).Str("op", "account_"+string(to)).
			Str("account_id", id).Msg("persist account transition")
		return nil, err
	}
	a.Status = to
	s.logger.Info().Str("actor", actor.Actor()).Str("account", a.Email).
		Str("status", string(to)).Msg("account status changed")
	return a, nil
}

// Approve admits a pending account or reinstates a rejected one.
func (s *Service) Approve(ctx context.Context, actor *auth.Session, id string) (*Account, error) {
	return s.transition(ctx, actor, id, StatusApproved)
}

// Reject refuses a pending account or revokes an approved one.
func (s *Service) Reject(ctx context.Context, actor *auth.Session, id string) (*Account, error) {
	return s.transition(ctx, actor, id, StatusRejected)
}

// ChangeRole is reserved to owners.
func (s *Service) ChangeRole(ctx context.Context, actor *auth.Session, id string, role auth.Role) (*Account, error) {
	if actor.Status != auth.StatusApproved || !actor.Owner {
		return nil, auth.ErrForbidden
	}
	if !role.Valid() {
		return nil, &validation.Error{Field: "role", Message: fmt.Sprintf("invalid role: %q", role)}
	}
	a, err := s.target(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	now := docstore.NewTime(s.now())
	err = s.repo.Update(ctx, id, map[string]any{
		"role":            string(role),
		"role_changed_by": actor.Actor(),
		"role_changed_at": now,
	})
	if err != nil {
		return nil, err
	}
	a.Role, a.RoleChangedBy, a.RoleChangedAt = role, actor.Actor(), now
	return a, nil
}
