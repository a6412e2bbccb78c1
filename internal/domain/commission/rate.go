package commission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeRate    = errors.New("commission rate must not be negative")
	ErrDuplicateRate   = errors.New("at most one commission rate per category")
	ErrInvalidRateType = errors.New("commission type must be percentage or fixed")
)

type RateType string

const (
	RatePercentage RateType = "percentage"
	RateFixed      RateType = "fixed"
)

func ParseRateType(s string) (RateType, error) {
	switch RateType(strings.ToLower(strings.TrimSpace(s))) {
	case RatePercentage:
		return RatePercentage, nil
	case RateFixed:
		return RateFixed, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRateType, s)
}

// Rate is one entry of a doctor's rate table. A percentage applies to the
// standard price; a fixed rate is a flat rupee amount per test.
type Rate struct {
	Category Category        `json:"category"`
	Type     RateType        `json:"type"`
	Value    decimal.Decimal `json:"rate"`
}

func (r Rate) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("invalid category: %q", r.Category)
	}
	if _, err := ParseRateType(string(r.Type)); err != nil {
		return err
	}
	if r.Value.IsNegative() {
		return fmt.Errorf("%w: %s %s", ErrNegativeRate, r.Category, r.Value)
	}
	return nil
}

// Rates is a doctor's rate table.
type Rates []Rate

func (rs Rates) Lookup(c Category) (Rate, bool) {
	for _, r := range rs {
		if r.Category == c {
			return r, true
		}
	}
	return Rate{}, false
}

func (rs Rates) Validate() error {
	seen := make(map[Category]bool, len(rs))
	for _, r := range rs {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.Category] {
			return fmt.Errorf("%w: %s", ErrDuplicateRate, r.Category)
		}
		seen[r.Category] = true
	}
	return nil
}

// Without returns a copy of rs minus the entry for c.
func (rs Rates) Without(c Category) Rates {
	out := make(Rates, 0, len(rs))
	for _, r := range rs {
		if r.Category != c {
			out = append(out, r)
		}
	}
	return out
}

func fixed(c Category, v int64) Rate {
	return Rate{Category: c, Type: RateFixed, Value: decimal.NewFromInt(v)}
}

func percent(c Category, v int64) Rate {
	return Rate{Category: c, Type: RatePercentage, Value: decimal.NewFromInt(v)}
}

// DefaultRates apply to categories a doctor has no entry for.
var DefaultRates = Rates{
	percent(CategoryPath, 50),
	fixed(CategoryXray350, 100),
	fixed(CategoryXray450, 150),
	fixed(CategoryXray650, 200),
	fixed(CategoryUSG750, 250),
	fixed(CategoryUSG1200, 400),
	percent(CategoryCTScan, 40),
	fixed(CategoryECG, 100),
}
