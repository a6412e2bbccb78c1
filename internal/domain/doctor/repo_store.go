package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/primelabs/primelabs/internal/platform/docstore"
)

var ErrNotFound = errors.New("doctor not found")

type storeRepo struct {
	store docstore.Store
}

func NewStoreRepo(store docstore.Store) Repository {
	return &storeRepo{store: store}
}

func (r *storeRepo) Create(ctx context.Context, d *Doctor) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	_, err := r.store.Create(ctx, Collection, d, d.ID)
	return err
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (*Doctor, error) {
	var d Doctor
	if err := r.store.Read(ctx, Collection, id, &d); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	d.ID = id
	return &d, nil
}

func (r *storeRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	err := r.store.Update(ctx, Collection, id, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *storeRepo) List(ctx context.Context, activeOnly bool) ([]*Doctor, error) {
	q := docstore.Query{Order: &docstore.Order{Field: "name"}}
	if activeOnly {
		q.Filters = []docstore.Filter{docstore.Where("active", docstore.OpEq, true)}
	}
	docs, err := docstore.All(ctx, r.store, Collection, q)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	out := make([]*Doctor, 0, len(docs))
	for _, doc := range docs {
		var d Doctor
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode doctor %s: %w", doc.ID, err)
		}
		d.ID = doc.ID
		out = append(out, &d)
	}
	return out, nil
}
