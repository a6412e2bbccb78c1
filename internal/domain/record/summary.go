package record

import (
	"fmt"
	"strings"
	"time"
)

const summaryTimeLayout = "02 Jan 2006 03:04 PM"

// Summary renders the printable lines of a record in loc.
func Summary(r *Record, loc *time.Location) []string {
	lines := []string{fmt.Sprintf("Patient Name: %s", r.Patient.Name)}
	if r.Patient.Phone != "" {
		lines = append(lines, fmt.Sprintf("Patient Phone: %s", r.Patient.Phone))
	}
	if r.Patient.Address != "" {
		lines = append(lines, fmt.Sprintf("Patient Address: %s", r.Patient.Address))
	}
	switch {
	case r.ReferralInfo != nil:
		lines = append(lines, fmt.Sprintf("Referred by Dr. %s from %s", r.ReferralInfo.Name, r.ReferralInfo.Location))
	case r.Doctor != nil:
		lines = append(lines, fmt.Sprintf("Referred by Dr. %s from %s", r.Doctor.Name, r.Doctor.Location))
	}
	for _, t := range r.Tests {
		line := fmt.Sprintf("Paid %d Rupees for %s", t.PaidPrice, t.Name)
		if t.PaidPrice < t.Price {
			line += fmt.Sprintf(" (standard %d)", t.Price)
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("Total Payment: %d Rupees", r.Payment.Amount))
	if r.FreeReason != "" {
		lines = append(lines, fmt.Sprintf("Free Test: %s", r.FreeReason))
	}
	if r.ReferralInfo != nil {
		lines = append(lines, fmt.Sprintf("Referral Commission: %d Rupees", r.ReferralInfo.TotalCommission))
	}
	if r.Comments != "" {
		lines = append(lines, fmt.Sprintf("Comments: %s", r.Comments))
	}
	if !r.Date.IsZero() {
		lines = append(lines, fmt.Sprintf("Date: %s", r.Date.In(loc).Format(summaryTimeLayout)))
	}
	if r.AuthorEmail != "" {
		lines = append(lines, fmt.Sprintf("Entered by: %s (%s)", r.AuthorEmail, r.AuthorRole))
	}
	return lines
}

func SummaryText(r *Record, loc *time.Location) string {
	return strings.Join(Summary(r, loc), "\n")
}
