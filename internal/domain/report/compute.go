package report

import (
	"sort"
	"time"

	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/domain/expense"
	"github.com/primelabs/primelabs/internal/domain/record"
	"github.com/primelabs/primelabs/pkg/period"
)

func totals(records []*record.Record, expenses []*expense.Expense) Totals {
	var t Totals
	for _, r := range records {
		t.TotalCollection += r.Payment.Amount
	}
	for _, e := range expenses {
		t.TotalExpenses += e.Amount
	}
	t.NetAmount = t.TotalCollection - t.TotalExpenses
	t.IsProfit = t.NetAmount >= 0
	t.RecordCount = len(records)
	t.ExpenseCount = len(expenses)
	return t
}

// byType groups expenses in first-seen order.
func byType(expenses []*expense.Expense) []TypeGroup {
	index := make(map[expense.Type]int)
	out := []TypeGroup{}
	for _, e := range expenses {
		i, ok := index[e.Type]
		if !ok {
			i = len(out)
			index[e.Type] = i
			out = append(out, TypeGroup{Type: e.Type})
		}
		out[i].Total += e.Amount
		out[i].Count++
	}
	return out
}

// byDate groups records by calendar date in loc, earliest first.
func byDate(records []*record.Record, loc *time.Location) []DateGroup {
	index := make(map[string]int)
	out := []DateGroup{}
	for _, r := range records {
		d := r.Date.In(loc).Format(period.DateLayout)
		i, ok := index[d]
		if !ok {
			i = len(out)
			index[d] = i
			out = append(out, DateGroup{Date: d})
		}
		out[i].RecordCount++
		out[i].Collection += r.Payment.Amount
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func referrals(records []*record.Record, w period.Window) Referrals {
	refs := make([]commission.Referral, len(records))
	for i, r := range records {
		refs[i] = r.Referral()
	}
	aggs := commission.GroupByDoctor(refs, w.Start, w.End)
	if aggs == nil {
		aggs = []commission.DoctorAggregate{}
	}
	return Referrals{Start: w.Start, End: w.End, Doctors: aggs, TotalCommission: commission.TotalCommission(aggs)}
}
