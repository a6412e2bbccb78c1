package commission

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newTestCalculator() *Calculator {
	return NewCalculator(zerolog.Nop())
}

func usgDoctorRates() Rates {
	return Rates{fixed(CategoryUSG750, 250)}
}

func TestCalculate_FullPrice(t *testing.T) {
	d, err := newTestCalculator().Calculate("USG WHOLE ABDOMEN", 750, 750, usgDoctorRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Category != CategoryUSG750 {
		t.Errorf("expected USG_750, got %s", d.Category)
	}
	if d.OriginalCommission != 250 || d.Discount != 0 || d.CommissionAmount != 250 {
		t.Errorf("expected 250/0/250, got %d/%d/%d", d.OriginalCommission, d.Discount, d.CommissionAmount)
	}
}

func TestCalculate_DiscountDeducted(t *testing.T) {
	d, _ := newTestCalculator().Calculate("USG WHOLE ABDOMEN", 750, 600, usgDoctorRates())
	if d.Discount != 150 || d.CommissionAmount != 100 {
		t.Errorf("expected discount 150 and commission 100, got %d and %d", d.Discount, d.CommissionAmount)
	}
}

func TestCalculate_OverDiscountFloorsAtZero(t *testing.T) {
	d, _ := newTestCalculator().Calculate("USG WHOLE ABDOMEN", 750, 400, usgDoctorRates())
	if d.Discount != 350 || d.OriginalCommission != 250 || d.CommissionAmount != 0 {
		t.Errorf("expected 350/250/0, got %d/%d/%d", d.Discount, d.OriginalCommission, d.CommissionAmount)
	}
}

func TestCalculate_Percentage(t *testing.T) {
	rates := Rates{{Category: CategoryPath, Type: RatePercentage, Value: decimal.RequireFromString("33.5")}}
	d, err := newTestCalculator().Calculate("LIPID PROFILE", 599, 599, rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// floor(599 * 33.5 / 100) = floor(200.665)
	if d.OriginalCommission != 200 {
		t.Errorf("expected 200, got %d", d.OriginalCommission)
	}
}

func TestCalculate_FixedIgnoresPrice(t *testing.T) {
	rates := Rates{{Category: CategoryECG, Type: RateFixed, Value: decimal.RequireFromString("99.9")}}
	d, _ := newTestCalculator().Calculate("ECG", 5000, 5000, rates)
	if d.OriginalCommission != 99 {
		t.Errorf("expected floored 99, got %d", d.OriginalCommission)
	}
}

func TestCalculate_FallbackMatchesDefault(t *testing.T) {
	calc := newTestCalculator()
	custom := Rates{fixed(CategoryCTScan, 900), fixed(CategoryPath, 10)}

	for _, c := range []struct {
		name  string
		price int64
		cat   Category
	}{
		{"CT-SCAN HEAD", 2500, CategoryCTScan},
		{"CBC", 300, CategoryPath},
	} {
		withoutRate, err := calc.Calculate(c.name, c.price, c.price, custom.Without(c.cat))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defaults, _ := calc.Calculate(c.name, c.price, c.price, nil)
		if !sameDetail(withoutRate, defaults) {
			t.Errorf("%s: removing the custom rate gave %+v, default table gives %+v", c.name, withoutRate, defaults)
		}
	}

	// CT_SCAN default is 40% of 2500
	d, _ := calc.Calculate("CT-SCAN HEAD", 2500, 2500, nil)
	if d.CommissionType != RatePercentage || d.OriginalCommission != 1000 {
		t.Errorf("expected 40%% default = 1000, got %s %d", d.CommissionType, d.OriginalCommission)
	}
}

func sameDetail(a, b Detail) bool {
	return a.Category == b.Category &&
		a.CommissionType == b.CommissionType &&
		a.CommissionRate.Equal(b.CommissionRate) &&
		a.OriginalCommission == b.OriginalCommission &&
		a.Discount == b.Discount &&
		a.CommissionAmount == b.CommissionAmount
}

func TestCalculate_NonNegative(t *testing.T) {
	calc := newTestCalculator()
	for _, c := range Categories {
		for _, v := range []int64{0, 1, 50, 100, 250, 1000} {
			rates := Rates{fixed(c, v)}
			for _, paid := range []int64{0, 100, 500, 750} {
				d, err := calc.Calculate("USG WHOLE ABDOMEN", 750, paid, rates)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				want := d.OriginalCommission - d.Discount
				if want < 0 {
					want = 0
				}
				if d.CommissionAmount < 0 || d.CommissionAmount != want {
					t.Errorf("rate %d paid %d: commission %d, want %d", v, paid, d.CommissionAmount, want)
				}
			}
		}
	}
}

func TestCalculate_NegativeRate(t *testing.T) {
	rates := Rates{{Category: CategoryUSG750, Type: RateFixed, Value: decimal.NewFromInt(-5)}}
	_, err := newTestCalculator().Calculate("USG WHOLE ABDOMEN", 750, 750, rates)
	if !errors.Is(err, ErrNegativeRate) {
		t.Errorf("expected ErrNegativeRate, got %v", err)
	}
}

func TestCalculate_NegativePrice(t *testing.T) {
	_, err := newTestCalculator().Calculate("CBC", 300, -1, nil)
	if !errors.Is(err, ErrNegativePrice) {
		t.Errorf("expected ErrNegativePrice, got %v", err)
	}
}

func TestRates_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rates   Rates
		wantErr error
	}{
		{"empty", nil, nil},
		{"valid", Rates{fixed(CategoryUSG750, 250), percent(CategoryPath, 120)}, nil},
		{"duplicate", Rates{fixed(CategoryECG, 1), fixed(CategoryECG, 2)}, ErrDuplicateRate},
		{"negative", Rates{fixed(CategoryECG, -1)}, ErrNegativeRate},
		{"bad type", Rates{{Category: CategoryECG, Type: "flat", Value: decimal.NewFromInt(1)}}, ErrInvalidRateType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rates.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
