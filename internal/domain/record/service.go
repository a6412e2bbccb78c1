package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/primelabs/primelabs/internal/domain/catalog"
	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/domain/doctor"
	"github.com/primelabs/primelabs/internal/domain/validation"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
	"github.com/primelabs/primelabs/pkg/period"
)

var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// DoctorSource resolves registered referrers.
type DoctorSource interface {
	GetDoctor(ctx context.Context, id string) (*doctor.Doctor, error)
}

type Service struct {
	repo       Repository
	collection string
	catalog    *catalog.Catalog
	calc       *commission.Calculator
	doctors    DoctorSource
	guard      *validation.Guard
	loc        *time.Location
	logger     zerolog.Logger
	now        func() time.Time
}

type Config struct {
	Collection string
	Catalog    *catalog.Catalog
	Calculator *commission.Calculator
	Doctors    DoctorSource
	Location   *time.Location
}

func NewService(repo Repository, cfg Config, logger zerolog.Logger) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:       repo,
		collection: cfg.Collection,
		catalog:    cfg.Catalog,
		calc:       cfg.Calculator,
		doctors:    cfg.Doctors,
		guard:      validation.NewGuard(),
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Now() time.Time { return s.now() }

// build validates sub, prices its tests from the catalog and, for a
// registered referrer, computes the commission breakdown.
func (s *Service) build(ctx context.Context, sub Submission) (*Record, error) {
	var errs validation.Errors
	rec := &Record{
		Patient: Patient{
			Name:    strings.TrimSpace(sub.Patient.Name),
			Address: strings.TrimSpace(sub.Patient.Address),
		},
		FreeReason: strings.TrimSpace(sub.FreeReason),
		Comments:   strings.TrimSpace(sub.Comments),
	}
	errs.Add("patient.name", validation.PatientName(rec.Patient.Name))
	phone, err := validation.OptionalPhone(sub.Patient.Phone)
	errs.Add("patient.phone", err)
	rec.Patient.Phone = phone

	if len(sub.Tests) == 0 {
		errs.Add("tests", errors.New("at least one test is required"))
	}
	var total int64
	for i, line := range sub.Tests {
		field := fmt.Sprintf("tests[%d]", i)
		t, ok := s.catalog.Lookup(line.Name)
		if !ok {
			errs.Add(field, fmt.Errorf("%w: %s", catalog.ErrUnknownTest, strings.TrimSpace(line.Name)))
			continue
		}
		paid := t.Price
		if rec.FreeReason != "" {
			paid = 0
		}
		if line.PaidPrice != nil {
			paid = *line.PaidPrice
		}
		switch {
		case paid < 0:
			errs.Add(field, fmt.Errorf("paid price of %s must not be negative", t.Name))
			continue
		case paid > t.Price:
			errs.Add(field, fmt.Errorf("paid price of %s exceeds its standard price %d", t.Name, t.Price))
			continue
		}
		rec.Tests = append(rec.Tests, Test{Name: t.Name, Price: t.Price, PaidPrice: paid})
		total += paid
	}

	rec.Payment = Payment{Amount: total, Description: strings.TrimSpace(sub.PaymentDescription)}
	if sub.Payment != nil {
		rec.Payment.Amount = *sub.Payment
	}
	if rec.Payment.Amount < 0 {
		errs.Add("payment", errors.New("payment must not be negative"))
	}

	var referrer *doctor.Doctor
	switch {
	case strings.TrimSpace(sub.DoctorID) != "":
		d, err := s.doctors.GetDoctor(ctx, strings.TrimSpace(sub.DoctorID))
		switch {
		case errors.Is(err, doctor.ErrNotFound):
			errs.Add("doctor_id", errors.New("referring doctor is not registered"))
		case err != nil:
			return nil, fmt.Errorf("load referring doctor: %w", err)
		case !d.Active:
			errs.Add("doctor_id", errors.New("referring doctor is inactive"))
		default:
			referrer = d
		}
	case sub.Doctor != nil:
		legacy := Doctor{Name: strings.TrimSpace(sub.Doctor.Name), Location: strings.TrimSpace(sub.Doctor.Location)}
		errs.Add("doctor.name", validation.DoctorName(legacy.Name))
		errs.Add("doctor.location", validation.DoctorLocation(legacy.Location))
		rec.Doctor = &legacy
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	if !validation.CanSubmit(errs, rec.Payment.Amount, rec.FreeReason, false) {
		return nil, &validation.Error{Field: "payment", Message: "payment must be greater than 0 unless a free test reason is given"}
	}

	if referrer != nil {
		details := make([]commission.Detail, 0, len(rec.Tests))
		for _, t := range rec.Tests {
			det, err := s.calc.Calculate(t.Name, t.Price, t.PaidPrice, referrer.Rates)
			if err != nil {
				return nil, err
			}
			details = append(details, det)
		}
		rec.ReferralInfo = commission.Aggregate(referrer.Ref(), details)
	}
	return rec, nil
}

// Quote computes the record and commission a submission would produce
// without storing anything.
func (s *Service) Quote(ctx context.Context, sub Submission) (*Record, error) {
	return s.build(ctx, sub)
}

// Submit stores a new record authored by actor. A second submission from
// the same actor while one is still being written is refused.
func (s *Service) Submit(ctx context.Context, actor *auth.Session, sub Submission) (*Record, error) {
	release, ok := s.guard.Acquire(actor.Actor())
	if !ok {
		return nil, ErrSubmissionInFlight
	}
	defer release()

	rec, err := s.build(ctx, sub)
	if err != nil {
		return nil, err
	}
	rec.Date = docstore.NewTime(s.now())
	rec.AuthorEmail = actor.Actor()
	rec.AuthorRole = actor.Role

	if err := s.repo.Create(ctx, rec); err != nil {
		s.logger.Error().Err(err).
			Str("actor", actor.Actor()).
			Str("role", string(actor.Role)).
			Str("collection", s.collection).
			Str("op", "create_record").
			Str("kind", string(docstore.Classify(err))).
			Msg("persist medical record")
		return nil, err
	}
	ev := s.logger.Info().Str("actor", actor.Actor()).Str("record_id", rec.ID).Int64("payment", rec.Payment.Amount)
	if rec.ReferralInfo != nil {
		ev = ev.Str("doctor_id", rec.ReferralInfo.ID).Int64("commission", rec.ReferralInfo.TotalCommission)
	}
	ev.Msg("medical record submitted")
	return rec, nil
}

func (s *Service) GetRecord(ctx context.Context, id string) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, w period.Window, limit int, cursor string) ([]*Record, string, error) {
	return s.repo.List(ctx, w.Start, w.End, limit, cursor)
}

// Between loads every record in w for reporting.
func (s *Service) Between(ctx context.Context, w period.Window) ([]*Record, error) {
	return s.repo.Between(ctx, w.Start, w.End)
}
