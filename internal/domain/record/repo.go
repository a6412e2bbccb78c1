package record

import (
	"context"
	"time"
)

// Repository is append-only: there is no update or delete.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	// List pages through records dated inside [start, end], newest first.
	List(ctx context.Context, start, end time.Time, limit int, cursor string) ([]*Record, string, error)
	// Between returns every record dated inside [start, end], oldest first.
	Between(ctx context.Context, start, end time.Time) ([]*Record, error)
}
