package report

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/primelabs/primelabs/internal/domain/expense"
	"github.com/primelabs/primelabs/internal/domain/record"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/cache"
	"github.com/primelabs/primelabs/pkg/period"
)

const referralCachePrefix = "referrals:"

type RecordSource interface {
	Between(ctx context.Context, w period.Window) ([]*record.Record, error)
}

type ExpenseSource interface {
	Between(ctx context.Context, w period.Window) ([]*expense.Expense, error)
}

// CacheInvalidator is a cached view outside this package, such as the
// active doctor list.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

type Service struct {
	records  RecordSource
	expenses ExpenseSource
	cache    cache.Store
	ttl      time.Duration
	others   []CacheInvalidator
	loc      *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(records RecordSource, expenses ExpenseSource, c cache.Store, ttl time.Duration,
	loc *time.Location, logger zerolog.Logger, others ...CacheInvalidator) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		records:  records,
		expenses: expenses,
		cache:    c,
		ttl:      ttl,
		others:   others,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Now() time.Time { return s.now() }

func (s *Service) load(ctx context.Context, w period.Window) ([]*record.Record, []*expense.Expense, error) {
	records, err := s.records.Between(ctx, w)
	if err != nil {
		return nil, nil, fmt.Errorf("load records: %w", err)
	}
	expenses, err := s.expenses.Between(ctx, w)
	if err != nil {
		return nil, nil, fmt.Errorf("load expenses: %w", err)
	}
	return records, expenses, nil
}

// Daily reports one business day.
func (s *Service) Daily(ctx context.Context, day period.Window) (*Daily, error) {
	records, expenses, err := s.load(ctx, day)
	if err != nil {
		return nil, err
	}
	d := &Daily{
		Date:           day.Start.In(s.loc).Format(period.DateLayout),
		Totals:         totals(records, expenses),
		ExpensesByType: byType(expenses),
	}
	for _, r := range records {
		d.TestCount += len(r.Tests)
		if r.ReferralInfo != nil {
			d.ReferralCommission += r.ReferralInfo.TotalCommission
		}
	}
	return d, nil
}

// Monthly reports a calendar month. Only owners and Admins may read it.
func (s *Service) Monthly(ctx context.Context, actor *auth.Session, year int, month time.Month) (*Monthly, error) {
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	w, err := period.Month(year, month, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	records, expenses, err := s.load(ctx, w)
	if err != nil {
		return nil, err
	}
	return &Monthly{
		Year:           year,
		Month:          month,
		Start:          w.Start,
		End:            w.End,
		Totals:         totals(records, expenses),
		RecordsByDate:  byDate(records, s.loc),
		ExpensesByType: byType(expenses),
	}, nil
}

// Referrals rolls referral commissions up per doctor. Results are cached
// per window for the configured TTL.
func (s *Service) Referrals(ctx context.Context, actor *auth.Session, w period.Window) (*Referrals, error) {
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}
	key := referralCachePrefix + w.Key()
	return cache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) (*Referrals, error) {
		records, err := s.records.Between(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}
		r := referrals(records, w)
		return &r, nil
	})
}

// ClearCache drops the referral rollups and every other registered cached
// view.
func (s *Service) ClearCache(ctx context.Context, actor *auth.Session) error {
	if !actor.IsAdmin() {
		return auth.ErrForbidden
	}
	if err := s.cache.DeletePrefix(ctx, referralCachePrefix); err != nil {
		return fmt.Errorf("clear referral cache: %w", err)
	}
	for _, o := range s.others {
		if err := o.InvalidateCache(ctx); err != nil {
			return err
		}
	}
	s.logger.Info().Str("actor", actor.Actor()).Msg("report caches cleared")
	return nil
}
