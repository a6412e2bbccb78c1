package account

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	// GetByEmail returns ErrNotFound when no profile has the email.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	List(ctx context.Context, status AccountStatus, limit int, cursor string) ([]*Account, string, error)
}
