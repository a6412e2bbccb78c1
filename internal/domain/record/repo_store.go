package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/primelabs/primelabs/internal/platform/docstore"
)

var ErrNotFound = errors.New("medical record not found")

type storeRepo struct {
	store      docstore.Store
	collection string
}

// NewStoreRepo keeps records in collection, which differs between the
// production and development datasets.
func NewStoreRepo(store docstore.Store, collection string) Repository {
	return &storeRepo{store: store, collection: collection}
}

func (r *storeRepo) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := r.store.Create(ctx, r.collection, rec, rec.ID)
	return err
}

func (r *storeRepo) GetByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	if err := r.store.Read(ctx, r.collection, id, &rec); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.ID = id
	return &rec, nil
}

func between(start, end time.Time) []docstore.Filter {
	return []docstore.Filter{
		docstore.Where("date", docstore.OpGte, start),
		docstore.Where("date", docstore.OpLte, end),
	}
}

func (r *storeRepo) List(ctx context.Context, start, end time.Time, limit int, cursor string) ([]*Record, string, error) {
	page, err := r.store.Query(ctx, r.collection, docstore.Query{
		Filters: between(start, end),
		Order:   &docstore.Order{Field: "date", Desc: true},
		Limit:   limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, "", fmt.Errorf("list records: %w", err)
	}
	out, err := decodeAll(page.Docs)
	return out, page.Next, err
}

func (r *storeRepo) Between(ctx context.Context, start, end time.Time) ([]*Record, error) {
	docs, err := docstore.All(ctx, r.store, r.collection, docstore.Query{
		Filters: between(start, end),
		Order:   &docstore.Order{Field: "date"},
	})
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return decodeAll(docs)
}

func decodeAll(docs []docstore.Doc) ([]*Record, error) {
	out := make([]*Record, 0, len(docs))
	for _, doc := range docs {
		var rec Record
		if err := doc.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", doc.ID, err)
		}
		rec.ID = doc.ID
		out = append(out, &rec)
	}
	return out, nil
}
