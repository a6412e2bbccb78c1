package validation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
)

const (
	MinNameLength        = 2
	MinPhoneDigits       = 10
	MaxExpenseAmount     = 1_000_000
	MinDescriptionLength = 3
	MaxDescriptionLength = 500

	// PhoneRegion is assumed for numbers written without a country code.
	PhoneRegion = "IN"
)

// Error is a failed field check.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func fieldError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Errors collects the failures of a form.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Add appends err when it is a field error; other non-nil errors are
// wrapped under field.
func (es *Errors) Add(field string, err error) {
	if err == nil {
		return
	}
	var fe *Error
	if errors.As(err, &fe) {
		*es = append(*es, fe)
		return
	}
	*es = append(*es, &Error{Field: field, Message: err.Error()})
}

// Err returns nil when nothing failed.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// MinLength requires value to hold at least two characters after trimming.
func MinLength(field, label, value string) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < MinNameLength {
		if strings.TrimSpace(value) == "" {
			return fieldError(field, "%s is required", label)
		}
		return fieldError(field, "%s must be at least %d characters", label, MinNameLength)
	}
	return nil
}

func PatientName(name string) error {
	return MinLength("patient.name", "patient name", name)
}

func DoctorName(name string) error {
	return MinLength("doctor.name", "doctor name", name)
}

func DoctorLocation(location string) error {
	return MinLength("doctor.location", "doctor location", location)
}

// Phone checks that a number has at least ten digits once separators are
// stripped. The digit count is the only acceptance rule. A number the
// phonenumbers library considers possible is stored in E.164 form as long as
// that keeps ten national digits; anything else is stored as the stripped
// digits.
func Phone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	var digits strings.Builder
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		case r == ' ', r == '-', r == '(', r == ')', r == '.', r == '+':
		default:
			return "", fieldError("patient.phone", "phone number may only contain digits")
		}
	}
	if digits.Len() < MinPhoneDigits {
		return "", fieldError("patient.phone", "phone number must have at least %d digits", MinPhoneDigits)
	}

	num, err := phonenumbers.Parse(phone, PhoneRegion)
	if err == nil && phonenumbers.IsPossibleNumber(num) &&
		len(phonenumbers.GetNationalSignificantNumber(num)) >= MinPhoneDigits {
		return phonenumbers.Format(num, phonenumbers.E164), nil
	}
	if strings.HasPrefix(phone, "+") {
		return "+" + digits.String(), nil
	}
	return digits.String(), nil
}

// OptionalPhone accepts an empty phone.
func OptionalPhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}
	return Phone(phone)
}

func ExpenseAmount(amount int64) error {
	if amount <= 0 {
		return fieldError("amount", "amount must be greater than 0")
	}
	if amount > MaxExpenseAmount {
		return fieldError("amount", "amount must not exceed %d", MaxExpenseAmount)
	}
	return nil
}

// ExpenseDescription requires a description when required is set and
// bounds its length whenever one is given.
func ExpenseDescription(desc string, required bool) error {
	n := utf8.RuneCountInString(strings.TrimSpace(desc))
	if n == 0 {
		if required {
			return fieldError("description", "description is required for this expense type")
		}
		return nil
	}
	if n < MinDescriptionLength || n > MaxDescriptionLength {
		return fieldError("description", "description must be %d to %d characters", MinDescriptionLength, MaxDescriptionLength)
	}
	return nil
}

// CanSubmit reports whether a record form may be submitted: no field
// failed, the visit is paid or marked free, and no submission is in flight.
func CanSubmit(errs Errors, payment int64, freeReason string, submitting bool) bool {
	if len(errs) > 0 || submitting {
		return false
	}
	return payment > 0 || strings.TrimSpace(freeReason) != ""
}

func (e *Error) StatusCode() int  { return http.StatusBadRequest }
func (es Errors) StatusCode() int { return http.StatusBadRequest }
