package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/primelabs/primelabs/internal/platform/docstore"
)

type storeRepo struct {
	store      docstore.Store
	collection string
}

func NewStoreRepo(store docstore.Store, collection string) Repository {
	return &storeRepo{store: store, collection: collection}
}

func (r *storeRepo) Create(ctx context.Context, e *Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err := r.store.Create(ctx, r.collection, e, e.ID)
	return err
}

func window(start, end time.Time) []docstore.Filter {
	return []docstore.Filter{
		docstore.Where("date", docstore.OpGte, start),
		docstore.Where("date", docstore.OpLte, end),
	}
}

func (r *storeRepo) List(ctx context.Context, start, end time.Time, limit int, cursor string) ([]*Expense, string, error) {
	page, err := r.store.Query(ctx, r.collection, docstore.Query{
		Filters: window(start, end),
		Order:   &docstore.Order{Field: "date", Desc: true},
		Limit:   limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, "", fmt.Errorf("list expenses: %w", err)
	}
	out, err := decodeAll(page.Docs)
	return out, page.Next, err
}

func (r *storeRepo) Between(ctx context.Context, start, end time.Time) ([]*Expense, error) {
	docs, err := docstore.All(ctx, r.store, r.collection, docstore.Query{
		Filters: window(start, end),
		Order:   &docstore.Order{Field: "date"},
	})
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return decodeAll(docs)
}

func decodeAll(docs []docstore.Doc) ([]*Expense, error) {
	out := make([]*Expense, 0, len(docs))
	for _, doc := range docs {
		var e Expense
		if err := doc.Decode(&e); err != nil {
			return nil, fmt.Errorf("decode expense %s: %w", doc.ID, err)
		}
		e.ID = doc.ID
		out = append(out, &e)
	}
	return out, nil
}
