package expense

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *Expense) error
	List(ctx context.Context, start, end time.Time, limit int, cursor string) ([]*Expense, string, error)
	Between(ctx context.Context, start, end time.Time) ([]*Expense, error)
}
