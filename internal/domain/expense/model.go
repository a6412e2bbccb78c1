package expense

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

type Type string

const (
	TypeDoctorFees    Type = "Doctor Fees"
	TypeStaffExpense  Type = "Staff Expense"
	TypeEquipment     Type = "Equipment"
	TypeRent          Type = "Rent"
	TypeSalary        Type = "Salary"
	TypeStationary    Type = "Stationary"
	TypeChaiNashta    Type = "Chai Nashta"
	TypeMiscellaneous Type = "Miscellaneous"
	TypeOther         Type = "Other"
)

var Types = []Type{
	TypeDoctorFees, TypeStaffExpense, TypeEquipment, TypeRent, TypeSalary,
	TypeStationary, TypeChaiNashta, TypeMiscellaneous, TypeOther,
}

func ParseType(s string) (Type, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, t := range Types {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid expense type: %q", s)
}

// RequiresDescription reports whether an expense of type t must say what it was.
func (t Type) RequiresDescription() bool {
	return t == TypeOther
}

// UnmarshalJSON canonicalizes known types. Types outside the enum written
// by older clients are kept as stored so reports still group them.
func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		parsed = Type(strings.TrimSpace(s))
	}
	*t = parsed
	return nil
}

// Expense is one operating expense. Expenses are written once and never
// changed.
type Expense struct {
	ID          string        `json:"id"`
	Type        Type          `json:"expense_type"`
	Amount      int64         `json:"amount"`
	Description string        `json:"description,omitempty"`
	Date        docstore.Time `json:"date"`
	AuthorEmail string        `json:"author_email"`
	AuthorRole  auth.Role     `json:"author_role"`
}

type Submission struct {
	Type        string `json:"expense_type"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}
