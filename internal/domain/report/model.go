package report

import (
	"time"

	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/domain/expense"
)

// Totals are the money figures shared by the daily and monthly reports.
type Totals struct {
	TotalCollection int64 `json:"total_collection"`
	TotalExpenses   int64 `json:"total_expenses"`
	NetAmount       int64 `json:"net_amount"`
	IsProfit        bool  `json:"is_profit"`
	RecordCount     int   `json:"record_count"`
	ExpenseCount    int   `json:"expense_count"`
}

type TypeGroup struct {
	Type  expense.Type `json:"expense_type"`
	Total int64        `json:"total"`
	Count int          `json:"count"`
}

type DateGroup struct {
	Date        string `json:"date"`
	RecordCount int    `json:"record_count"`
	Collection  int64  `json:"collection"`
}

type Daily struct {
	Date string `json:"date"`
	Totals
	TestCount          int         `json:"test_count"`
	ReferralCommission int64       `json:"referral_commission"`
	ExpensesByType     []TypeGroup `json:"expenses_by_type"`
}

type Monthly struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
	Totals
	RecordsByDate  []DateGroup `json:"records_by_date"`
	ExpensesByType []TypeGroup `json:"expenses_by_type"`
}

type Referrals struct {
	Start           time.Time                    `json:"start"`
	End             time.Time                    `json:"end"`
	Doctors         []commission.DoctorAggregate `json:"doctors"`
	TotalCommission int64                        `json:"total_commission"`
}
