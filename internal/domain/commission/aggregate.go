package commission

import (
	"sort"
	"time"
)

// Doctor identifies the registered doctor a referral belongs to.
type Doctor struct {
	ID       string `json:"doctor_id"`
	Name     string `json:"doctor_name"`
	Location string `json:"doctor_location"`
}

// ReferralInfo is the referral summary stored on a record.
type ReferralInfo struct {
	Doctor
	Tests           []Detail `json:"test_commissions"`
	TotalCommission int64    `json:"total_commission"`
}

// Aggregate sums the per-test commissions of one record.
func Aggregate(d Doctor, details []Detail) *ReferralInfo {
	info := &ReferralInfo{Doctor: d, Tests: details}
	for _, det := range details {
		info.TotalCommission += det.CommissionAmount
	}
	return info
}

// Referral is the slice of a medical record the doctor rollup needs.
type Referral struct {
	RecordID    string
	PatientName string
	Payment     int64
	Tests       []string
	At          time.Time
	Info        *ReferralInfo
}

type PatientBreakdown struct {
	RecordID    string    `json:"record_id"`
	PatientName string    `json:"patient_name"`
	Payment     int64     `json:"payment"`
	Commission  int64     `json:"commission"`
	Tests       []string  `json:"tests"`
	Date        time.Time `json:"date"`
}

type DoctorAggregate struct {
	DoctorName      string             `json:"doctor_name"`
	DoctorLocation  string             `json:"doctor_location"`
	TotalCommission int64              `json:"total_commission"`
	TotalRevenue    int64              `json:"total_revenue"`
	PatientCount    int                `json:"patient_count"`
	Patients        []PatientBreakdown `json:"patients"`
}

// GroupByDoctor rolls referrals inside [start, end] up per doctor name.
// Referrals without referral info or without commission are skipped. The
// result is sorted by total commission, highest first; ties keep the order
// in which doctors first appear.
func GroupByDoctor(refs []Referral, start, end time.Time) []DoctorAggregate {
	index := make(map[string]int)
	var out []DoctorAggregate
	for _, r := range refs {
		if r.Info == nil || r.Info.TotalCommission <= 0 {
			continue
		}
		if r.At.Before(start) || r.At.After(end) {
			continue
		}
		i, ok := index[r.Info.Name]
		if !ok {
			i = len(out)
			index[r.Info.Name] = i
			out = append(out, DoctorAggregate{DoctorName: r.Info.Name, DoctorLocation: r.Info.Location})
		}
		agg := &out[i]
		agg.TotalCommission += r.Info.TotalCommission
		agg.TotalRevenue += r.Payment
		agg.PatientCount++
		agg.Patients = append(agg.Patients, PatientBreakdown{
			RecordID:    r.RecordID,
			PatientName: r.PatientName,
			Payment:     r.Payment,
			Commission:  r.Info.TotalCommission,
			Tests:       r.Tests,
			Date:        r.At,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCommission > out[j].TotalCommission
	})
	return out
}

// TotalCommission sums a rollup.
func TotalCommission(aggs []DoctorAggregate) int64 {
	var total int64
	for _, a := range aggs {
		total += a.TotalCommission
	}
	return total
}
