// Package docstore is the persistence boundary for every domain package.
// Documents are JSON objects grouped in named collections. Three backends
// implement Store: Postgres JSONB, MongoDB and an in-memory map.
package docstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	ErrInvalidQuery  = errors.New("invalid query")
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type Op string

const (
	OpEq  Op = "=="
	OpNe  Op = "!="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

var validOps = map[Op]bool{
	OpEq: true, OpNe: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
}

// Filter matches documents whose value at Field satisfies Op against Value.
// Field may be a dotted path into nested objects.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type Order struct {
	Field string
	Desc  bool
}

type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int
	Cursor  string
}

type Doc struct {
	ID   string
	Data json.RawMessage
}

func (d Doc) Decode(out any) error {
	return json.Unmarshal(d.Data, out)
}

type Page struct {
	Docs []Doc
	// Next resumes after the last document of this page. Empty on the last page.
	Next string
}

type Store interface {
	// Create stores doc under id. An empty id generates one.
	Create(ctx context.Context, collection string, doc any, id string) (string, error)
	Read(ctx context.Context, collection, id string, out any) error
	// Update shallow-merges the top-level keys of partial into the document.
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) (*Page, error)
}

// All follows cursors until the query is exhausted.
func All(ctx context.Context, s Store, collection string, q Query) ([]Doc, error) {
	q.Limit = MaxLimit
	q.Cursor = ""
	var docs []Doc
	for {
		page, err := s.Query(ctx, collection, q)
		if err != nil {
			return nil, err
		}
		docs = append(docs, page.Docs...)
		if page.Next == "" {
			return docs, nil
		}
		q.Cursor = page.Next
	}
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func splitField(field string) []string {
	return strings.Split(field, ".")
}

func validateQuery(collection string, q *Query) error {
	if collection == "" {
		return fmt.Errorf("%w: collection is required", ErrInvalidQuery)
	}
	for _, f := range q.Filters {
		if !fieldPattern.MatchString(f.Field) {
			return fmt.Errorf("%w: bad field %q", ErrInvalidQuery, f.Field)
		}
		if !validOps[f.Op] {
			return fmt.Errorf("%w: bad operator %q", ErrInvalidQuery, f.Op)
		}
	}
	if q.Order != nil && !fieldPattern.MatchString(q.Order.Field) {
		return fmt.Errorf("%w: bad order field %q", ErrInvalidQuery, q.Order.Field)
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	return nil
}

// normalize converts a Go value into its JSON data model form
// (map[string]any, []any, string, float64, bool, nil).
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		v = NewTime(t)
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		v = NewTime(*t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toObject(doc any) (map[string]any, error) {
	n, err := normalize(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	m, ok := n.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("encode document: expected a JSON object, got %T", n)
	}
	return m, nil
}

func lookup(obj map[string]any, path []string) (any, bool) {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

type cursor struct {
	Key json.RawMessage `json:"k,omitempty"`
	ID  string          `json:"id"`
}

func encodeCursor(key json.RawMessage, id string) string {
	b, _ := json.Marshal(cursor{Key: key, ID: id})
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(s string) (*cursor, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", ErrInvalidQuery)
	}
	var c cursor
	if err := json.Unmarshal(b, &c); err != nil || c.ID == "" {
		return nil, fmt.Errorf("%w: malformed cursor", ErrInvalidQuery)
	}
	return &c, nil
}

func (c *cursor) keyValue() (any, error) {
	if len(c.Key) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(c.Key, &v); err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", ErrInvalidQuery)
	}
	return v, nil
}
