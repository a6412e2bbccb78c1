package doctor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/domain/validation"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/cache"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

const activeCacheKey = "doctors:active"

type Service struct {
	repo   Repository
	cache  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, c cache.Store, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl, logger: logger, now: time.Now}
}

func canCurate(actor *auth.Session) error {
	if !actor.IsAdmin() {
		return auth.ErrForbidden
	}
	return nil
}

func validateDoctor(d *Doctor) error {
	var errs validation.Errors
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
	errs.Add("name", validation.DoctorName(d.Name))
	errs.Add("location", validation.DoctorLocation(d.Location))
	phone, err := validation.OptionalPhone(d.Phone)
	errs.Add("phone", err)
	d.Phone = phone
	errs.Add("commission_rates", d.Rates.Validate())
	return errs.Err()
}

func (s *Service) warnHighRates(id string, rates commission.Rates) {
	for _, r := range rates {
		if r.Type == commission.RatePercentage && r.Value.GreaterThan(decimal.NewFromInt(100)) {
			s.logger.Warn().Str("doctor_id", id).Str("category", string(r.Category)).
				Str("rate", r.Value.String()).Msg("percentage commission rate above 100")
		}
	}
}

func (s *Service) CreateDoctor(ctx context.Context, actor *auth.Session, d *Doctor) error {
	if err := canCurate(actor); err != nil {
		return err
	}
	if err := validateDoctor(d); err != nil {
		return err
	}
	now := docstore.NewTime(s.now())
	d.Active = true
	d.CreatedBy, d.CreatedAt = actor.Actor(), now
	d.UpdatedBy, d.UpdatedAt = actor.Actor(), now
	if d.Rates == nil {
		d.Rates = commission.Rates{}
	}
	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error().Err(err).Str("actor", actor.Actor()).Str("op", "create_doctor").Msg("persist doctor")
		return err
	}
	s.warnHighRates(d.ID, d.Rates)
	s.invalidate(ctx)
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, id string) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, actor *auth.Session, id string, u Update) (*Doctor, error) {
	if err := canCurate(actor); err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Location != nil {
		d.Location = *u.Location
	}
	if u.Phone != nil {
		d.Phone = *u.Phone
	}
	if u.Active != nil {
		d.Active = *u.Active
	}
	if err := validateDoctor(d); err != nil {
		return nil, err
	}
	d.UpdatedBy, d.UpdatedAt = actor.Actor(), docstore.NewTime(s.now())
	fields := map[string]any{
		"name":       d.Name,
		"location":   d.Location,
		"phone":      d.Phone,
		"active":     d.Active,
		"updated_by": d.UpdatedBy,
		"updated_at": d.UpdatedAt,
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// SetRates replaces a doctor's rate table. Records already stored keep the
// breakdown computed when they were submitted.
func (s *Service) SetRates(ctx context.Context, actor *auth.Session, id string, rates commission.Rates) (*Doctor, error) {
	if err := canCurate(actor); err != nil {
		return nil, err
	}
	if rates == nil {
		rates = commission.Rates{}
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Rates = rates
	d.UpdatedBy, d.UpdatedAt = actor.Actor(), docstore.NewTime(s.now())
	err = s.repo.Update(ctx, id, map[string]any{
		"commission_rates": d.Rates,
		"updated_by":       d.UpdatedBy,
		"updated_at":       d.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	s.warnHighRates(id, rates)
	s.invalidate(ctx)
	return d, nil
}

// ListActive returns active doctors, served from cache for the configured
// TTL.
func (s *Service) ListActive(ctx context.Context) ([]*Doctor, error) {
	return cache.Remember(ctx, s.cache, activeCacheKey, s.ttl, func(ctx context.Context) ([]*Doctor, error) {
		return s.repo.List(ctx, true)
	})
}

func (s *Service) ListAll(ctx context.Context) ([]*Doctor, error) {
	return s.repo.List(ctx, false)
}

// InvalidateCache drops the cached active list.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if err := s.cache.Delete(ctx, activeCacheKey); err != nil {
		return fmt.Errorf("clear doctor cache: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.InvalidateCache(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("doctor cache not cleared")
	}
}
