package doctor

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id string) (*Doctor, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	// List returns every doctor, or only active ones, sorted by name.
	List(ctx context.Context, activeOnly bool) ([]*Doctor, error)
}
