package expense

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/primelabs/primelabs/internal/domain/validation"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
	"github.com/primelabs/primelabs/pkg/period"
)

var ErrSubmissionInFlight = errors.New("an expense submission is already in progress")

type Service struct {
	repo       Repository
	collection string
	guard      *validation.Guard
	loc        *time.Location
	logger     zerolog.Logger
	now        func() time.Time
}

func NewService(repo Repository, collection string, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       repo,
		collection: collection,
		guard:      validation.NewGuard(),
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Now() time.Time { return s.now() }

func validate(sub Submission) (*Expense, error) {
	var errs validation.Errors
	t, err := ParseType(sub.Type)
	errs.Add("expense_type", err)
	errs.Add("amount", validation.ExpenseAmount(sub.Amount))
	desc := strings.TrimSpace(sub.Description)
	errs.Add("description", validation.ExpenseDescription(desc, t.RequiresDescription()))
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return &Expense{Type: t, Amount: sub.Amount, Description: desc}, nil
}

func (s *Service) Submit(ctx context.Context, actor *auth.Session, sub Submission) (*Expense, error) {
	release, ok := s.guard.Acquire(actor.Actor())
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	defer release()

	e, err := validate(sub)
	if err != nil {
		return nil, err
	}
	e.Date = docstore.NewTime(s.now())
	e.AuthorEmail = actor.Actor()
	e.AuthorRole = actor.Role
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).
			Str("actor", actor.Actor()).
			Str("role", string(actor.Role)).
			Str("collection", s.collection).
			Str("op", "create_expense").
			Str("kind", string(docstore.Classify(err))).
			Msg("persist expense")
		return nil, err
	}
	s.logger.Info().Str("actor", actor.Actor()).Str("expense_type", string(e.Type)).
		Int64("amount", e.Amount).Msg("expense submitted")
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context, w period.Window, limit int, cursor string) ([]*Expense, string, error) {
	return s.repo.List(ctx, w.Start, w.End, limit, cursor)
}

func (s *Service) Between(ctx context.Context, w period.Window) ([]*Expense, error) {
	return s.repo.Between(ctx, w.Start, w.End)
}
