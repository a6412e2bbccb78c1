package commission

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var ErrNegativePrice = errors.New("price must not be negative")

var hundred = decimal.NewFromInt(100)

// Detail is the commission breakdown of one test.
type Detail struct {
	TestName           string          `json:"test_name"`
	Category           Category        `json:"category"`
	OriginalPrice      int64           `json:"original_price"`
	PaidPrice          int64           `json:"paid_price"`
	Discount           int64           `json:"discount"`
	CommissionType     RateType        `json:"commission_type"`
	CommissionRate     decimal.Decimal `json:"commission_rate"`
	OriginalCommission int64           `json:"original_commission"`
	CommissionAmount   int64           `json:"commission_amount"`
}

// Calculator applies rate tables to tests.
type Calculator struct {
	defaults Rates
	logger   zerolog.Logger
}

func NewCalculator(logger zerolog.Logger) *Calculator {
	return &Calculator{defaults: DefaultRates, logger: logger}
}

// Rate returns the doctor's rate for c, or the default when the doctor has
// none.
func (calc *Calculator) Rate(c Category, rates Rates) Rate {
	if r, ok := rates.Lookup(c); ok {
		return r
	}
	r, _ := calc.defaults.Lookup(c)
	return r
}

// Calculate computes the commission for one test. The discount given to the
// patient comes out of the commission, which never drops below zero.
func (calc *Calculator) Calculate(testName string, standardPrice, paidPrice int64, rates Rates) (Detail, error) {
	if standardPrice < 0 || paidPrice < 0 {
		return Detail{}, fmt.Errorf("%w: %s", ErrNegativePrice, testName)
	}
	cat := Categorize(testName, standardPrice)
	rate := calc.Rate(cat, rates)
	if err := rate.Validate(); err != nil {
		return Detail{}, err
	}
	if rate.Type == RatePercentage && rate.Value.GreaterThan(hundred) {
		calc.logger.Warn().
			Str("category", string(cat)).
			Str("rate", rate.Value.String()).
			Msg("percentage commission rate above 100")
	}

	original := originalCommission(rate, standardPrice)
	discount := standardPrice - paidPrice
	if discount < 0 {
		discount = 0
	}
	final := original - discount
	if final < 0 {
		final = 0
	}

	return Detail{
		TestName:           testName,
		Category:           cat,
		OriginalPrice:      standardPrice,
		PaidPrice:          paidPrice,
		Discount:           discount,
		CommissionType:     rate.Type,
		CommissionRate:     rate.Value,
		OriginalCommission: original,
		CommissionAmount:   final,
	}, nil
}

func originalCommission(r Rate, standardPrice int64) int64 {
	if r.Type == RatePercentage {
		return decimal.NewFromInt(standardPrice).Mul(r.Value).Div(hundred).Floor().IntPart()
	}
	return r.Value.Floor().IntPart()
}
