package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. It backs development runs
// and every domain test.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]map[string]any)}
}

func (s *MemoryStore) Create(_ context.Context, collection string, doc any, id string) (string, error) {
	if collection == "" {
		return "", fmt.Errorf("%w: collection is required", ErrInvalidQuery)
	}
	obj, err := toObject(doc)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.New().String()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		s.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return "", fmt.Errorf("%s/%s: %w", collection, id, ErrAlreadyExists)
	}
	coll[id] = obj
	return id, nil
}

func (s *MemoryStore) Read(_ context.Context, collection, id string, out any) error {
	s.mu.RLock()
	obj, ok := s.collections[collection][id]
	var b []byte
	var err error
	if ok {
		b, err = json.Marshal(obj)
	}
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, partial map[string]any) error {
	patch, err := toObject(partial)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		obj[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collections[collection]
	if _, ok := coll[id]; !ok {
		return ErrNotFound
	}
	delete(coll, id)
	return nil
}

type memRow struct {
	id  string
	obj map[string]any
	key any
}

func (s *MemoryStore) Query(_ context.Context, collection string, q Query) (*Page, error) {
	if err := validateQuery(collection, &q); err != nil {
		return nil, err
	}
	filters := make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %s: %v", ErrInvalidQuery, f.Field, err)
		}
		filters[i] = Filter{Field: f.Field, Op: f.Op, Value: v}
	}
	cur, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	var rows []memRow
	for id, obj := range s.collections[collection] {
		if !matchAll(obj, filters) {
			continue
		}
		row := memRow{id: id, obj: obj}
		if q.Order != nil {
			row.key, _ = lookup(obj, splitField(q.Order.Field))
		}
		rows = append(rows, row)
	}
	desc := q.Order != nil && q.Order.Desc
	sort.Slice(rows, func(i, j int) bool {
		c := compareRows(rows[i], rows[j])
		if desc {
			return c > 0
		}
		return c < 0
	})

	if cur != nil {
		ckey, err := cur.keyValue()
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		anchor := memRow{id: cur.ID, key: ckey}
		start := len(rows)
		for i, r := range rows {
			c := compareRows(r, anchor)
			if (!desc && c > 0) || (desc && c < 0) {
				start = i
				break
			}
		}
		rows = rows[start:]
	}

	page := &Page{}
	more := len(rows) > q.Limit
	if more {
		rows = rows[:q.Limit]
	}
	for _, r := range rows {
		b, err := json.Marshal(r.obj)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		page.Docs = append(page.Docs, Doc{ID: r.id, Data: b})
	}
	s.mu.RUnlock()

	if more {
		last := rows[len(rows)-1]
		var key json.RawMessage
		if q.Order != nil {
			key, _ = json.Marshal(last.key)
		}
		page.Next = encodeCursor(key, last.id)
	}
	return page, nil
}

func matchAll(obj map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := lookup(obj, splitField(f.Field))
		if !ok || !match(v, f.Op, f.Value) {
			return false
		}
	}
	return true
}

func match(v any, op Op, want any) bool {
	c, comparable := compareValues(v, want)
	switch op {
	case OpEq:
		return comparable && c == 0
	case OpNe:
		return !comparable || c != 0
	case OpLt:
		return comparable && c < 0
	case OpLte:
		return comparable && c <= 0
	case OpGt:
		return comparable && c > 0
	case OpGte:
		return comparable && c >= 0
	}
	return false
}

// compareValues orders two JSON scalars of the same kind. Values of different
// kinds, objects and arrays are not comparable.
func compareValues(a, b any) (int, bool) {
	switch x := a.(type) {
	case nil:
		return 0, b == nil
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// kindRank follows the Postgres jsonb ordering across kinds.
func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case float64:
		return 2
	case bool:
		return 3
	case []any:
		return 4
	}
	return 5
}

func compareRows(a, b memRow) int {
	if ra, rb := kindRank(a.key), kindRank(b.key); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if c, ok := compareValues(a.key, b.key); ok && c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}
