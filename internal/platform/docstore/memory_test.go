package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type testDoc struct {
	Name    string         `json:"name"`
	Amount  int            `json:"amount"`
	Patient map[string]any `json:"patient,omitempty"`
	Date    Time           `json:"date"`
}

func TestMemoryStore_CreateRead(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, "records", testDoc{Name: "a", Amount: 10}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	var got testDoc
	if err := s.Read(ctx, "records", id, &got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Name != "a" || got.Amount != 10 {
		t.Errorf("unexpected document: %+v", got)
	}
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.Create(ctx, "c", testDoc{}, "x"); err != nil {
		t.Fatal(err)
	}
	_, err := s.Create(ctx, "c", testDoc{}, "x")
	if !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMemoryStore_CreateRejectsNonObject(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Create(context.Background(), "c", []int{1}, ""); err == nil {
		t.Error("expected error for non-object document")
	}
}

func TestMemoryStore_ReadNotFound(t *testing.T) {
	s := NewMemoryStore()
	var out testDoc
	err := s.Read(context.Background(), "records", "missing", &out)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_UpdateMerges(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.Create(ctx, "c", testDoc{Name: "a", Amount: 1}, "")

	if err := s.Update(ctx, "c", id, map[string]any{"amount": 5}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	var got testDoc
	s.Read(ctx, "c", id, &got)
	if got.Name != "a" || got.Amount != 5 {
		t.Errorf("expected merged document, got %+v", got)
	}

	if err := s.Update(ctx, "c", "nope", map[string]any{"amount": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	id, _ := s.Create(ctx, "c", testDoc{Name: "a"}, "")
	if err := s.Delete(ctx, "c", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "c", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_ReadIsolatedFromCaller(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc := map[string]any{"name": "a"}
	id, _ := s.Create(ctx, "c", doc, "")
	doc["name"] = "changed"

	var got map[string]any
	s.Read(ctx, "c", id, &got)
	if got["name"] != "a" {
		t.Errorf("store should keep its own copy, got %v", got["name"])
	}
}

func seed(t *testing.T, s *MemoryStore, n int) {
	t.Helper()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		doc := testDoc{
			Name:    fmt.Sprintf("p%02d", i),
			Amount:  i * 100,
			Patient: map[string]any{"city": []string{"Pune", "Delhi"}[i%2]},
			Date:    NewTime(base.Add(time.Duration(i) * time.Hour)),
		}
		if _, err := s.Create(context.Background(), "records", doc, fmt.Sprintf("id%02d", i)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMemoryStore_QueryFilters(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, 10)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters []Filter
		want    int
	}{
		{"eq", []Filter{Where("amount", OpEq, 300)}, 1},
		{"ne", []Filter{Where("amount", OpNe, 300)}, 9},
		{"lt", []Filter{Where("amount", OpLt, 300)}, 3},
		{"lte", []Filter{Where("amount", OpLte, 300)}, 4},
		{"gt", []Filter{Where("amount", OpGt, 300)}, 6},
		{"gte", []Filter{Where("amount", OpGte, 300)}, 7},
		{"nested", []Filter{Where("patient.city", OpEq, "Pune")}, 5},
		{"missing field", []Filter{Where("nope", OpNe, 1)}, 0},
		{"combined", []Filter{Where("patient.city", OpEq, "Delhi"), Where("amount", OpGt, 500)}, 2},
		{"time range", []Filter{
			Where("date", OpGte, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
			Where("date", OpLt, time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)),
		}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Query(ctx, "records", Query{Filters: tt.filters})
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(page.Docs) != tt.want {
				t.Errorf("expected %d docs, got %d", tt.want, len(page.Docs))
			}
		})
	}
}

func TestMemoryStore_QueryInvalid(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.Query(ctx, "records", Query{Filters: []Filter{{Field: "a b", Op: OpEq}}}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for bad field, got %v", err)
	}
	if _, err := s.Query(ctx, "records", Query{Filters: []Filter{{Field: "a", Op: "~"}}}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for bad op, got %v", err)
	}
	if _, err := s.Query(ctx, "records", Query{Cursor: "%%%"}); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery for bad cursor, got %v", err)
	}
}

func TestMemoryStore_QueryPaginationDesc(t *testing.T) {
	s := NewMemoryStore()
	seed(t, s, 7)
	ctx := context.Background()

	q := Query{Order: &Order{Field: "date", Desc: true}, Limit: 3}
	var names []string
	pages := 0
	for {
		page, err := s.Query(ctx, "records", q)
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		pages++
		for _, d := range page.Docs {
			var doc testDoc
			if err := d.Decode(&doc); err != nil {
				t.Fatal(err)
			}
			names = append(names, doc.Name)
		}
		if page.Next == "" {
			break
		}
		q.Cursor = page.Next
	}
	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
	want := []string{"p06", "p05", "p04", "p03", "p02", "p01", "p00"}
	if fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestMemoryStore_QueryTiesBrokenByID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		s.Create(ctx, "c", map[string]any{"k": 1}, id)
	}
	q := Query{Order: &Order{Field: "k"}, Limit: 2}
	page, _ := s.Query(ctx, "c", q)
	if len(page.Docs) != 2 || page.Docs[0].ID != "a" || page.Docs[1].ID != "b" {
		t.Fatalf("unexpected first page: %+v", page.Docs)
	}
	q.Cursor = page.Next
	page, _ = s.Query(ctx, "c", q)
	if len(page.Docs) != 1 || page.Docs[0].ID != "c" || page.Next != "" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}

func TestAll_FollowsCursors(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < MaxLimit+5; i++ {
		s.Create(ctx, "c", map[string]any{"i": i}, "")
	}
	docs, err := All(ctx, s, "c", Query{})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != MaxLimit+5 {
		t.Errorf("expected %d docs, got %d", MaxLimit+5, len(docs))
	}
}
