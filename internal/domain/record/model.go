package record

import (
	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

type Patient struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Doctor is a free-text referring doctor who is not registered.
type Doctor struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Test is a performed test with its catalog price and what the patient paid.
type Test struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	PaidPrice int64  `json:"paid_price"`
}

type Payment struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
}

// Record is one lab visit. Records are written once and never changed.
type Record struct {
	ID           string                   `json:"id"`
	Patient      Patient                  `json:"patient"`
	Doctor       *Doctor                  `json:"doctor,omitempty"`
	ReferralInfo *commission.ReferralInfo `json:"referral_info,omitempty"`
	Tests        []Test                   `json:"medical_tests"`
	Payment      Payment                  `json:"payment"`
	FreeReason   string                   `json:"free_reason,omitempty"`
	Comments     string                   `json:"comments,omitempty"`
	Date         docstore.Time            `json:"date"`
	AuthorEmail  string                   `json:"author_email"`
	AuthorRole   auth.Role                `json:"author_role"`
}

func (r *Record) TestNames() []string {
	names := make([]string, len(r.Tests))
	for i, t := range r.Tests {
		names[i] = t.Name
	}
	return names
}

// Referral is the view of r used by the doctor rollup.
func (r *Record) Referral() commission.Referral {
	return commission.Referral{
		RecordID:    r.ID,
		PatientName: r.Patient.Name,
		Payment:     r.Payment.Amount,
		Tests:       r.TestNames(),
		At:          r.Date.Time,
		Info:        r.ReferralInfo,
	}
}

// TestLine is one requested test. A nil PaidPrice means the catalog price,
// or zero for a free visit.
type TestLine struct {
	Name      string `json:"name"`
	PaidPrice *int64 `json:"paid_price"`
}

// Submission is the record form as entered at the desk.
type Submission struct {
	Patient  Patient `json:"patient"`
	DoctorID string  `json:"doctor_id,omitempty"`
	// Doctor names an unregistered referrer; ignored when DoctorID is set.
	Doctor             *Doctor    `json:"doctor,omitempty"`
	Tests              []TestLine `json:"tests"`
	Payment            *int64     `json:"payment"`
	PaymentDescription string     `json:"payment_description"`
	FreeReason         string     `json:"free_reason"`
	Comments           string     `json:"comments"`
}
