package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/primelabs/primelabs/internal/platform/docstore"
)

var ErrNotFound = errors.New("account not found")

type storeRepo struct {
	store docstore.Store
}

func NewStoreRepo(store docstore.Store) Repository {
	return &storeRepo{store: store}
}

func (r *storeRepo) Create(ctx context.Context, a *Account) error {
	_, err := r.store.Create(ctx, Collection, a, a.ID)
	return err
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (*Account, error) {
	var a Account
	if err := r.store.Read(ctx, Collection, id, &a); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.ID = id
	return &a, nil
}

func (r *storeRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	page, err := r.store.Query(ctx, Collection, docstore.Query{
		Filters: []docstore.Filter{docstore.Where("email", docstore.OpEq, email)},
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Docs) == 0 {
		return nil, ErrNotFound
	}
	return decode(page.Docs[0])
}

func (r *storeRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	err := r.store.Update(ctx, Collection, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *storeRepo) List(ctx context.Context, status AccountStatus, limit int, cursor string) ([]*Account, string, error) {
	q := docstore.Query{
		Order:  &docstore.Order{Field: "created_at", Desc: true},
		Limit:  limit,
		Cursor: cursor,
	}
	if status != "" {
		q.Filters = append(q.Filters, docstore.Where("status", docstore.OpEq, string(status)))
	}
	page, err := r.store.Query(ctx, Collection, q)
	if err != nil {
		return nil, "", fmt.Errorf("list accounts: %w", err)
	}
	out := make([]*Account, 0, len(page.Docs))
	for _, doc := range page.Docs {
		a, err := decode(doc)
		if err != nil {
			return nil, "", err
		}
		out = append(out, a)
	}
	return out, page.Next, nil
}

func decode(doc docstore.Doc) (*Account, error) {
	var a Account
	if err := doc.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", doc.ID, err)
	}
	a.ID = doc.ID
	return &a, nil
}
