package docstore

import (
	"strings"
	"testing"
)

func TestBuildSelect_FiltersAndOrder(t *testing.T) {
	q := Query{
		Filters: []Filter{Where("patient.name", OpEq, "Asha"), Where("amount", OpGte, 100)},
		Order:   &Order{Field: "date", Desc: true},
		Limit:   10,
	}
	sql, args, err := buildSelect("records", q)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"collection = $1",
		"data #> $2::text[] = $3::jsonb",
		"data #> $4::text[] >= $5::jsonb",
		"ORDER BY COALESCE(data #> $6::text[], 'null'::jsonb) DESC, id DESC",
		"LIMIT 11",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("expected %q in %s", want, sql)
		}
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
	if path, ok := args[1].([]string); !ok || len(path) != 2 || path[1] != "name" {
		t.Errorf("unexpected path arg %#v", args[1])
	}
	if args[2] != `"Asha"` || args[4] != "100" {
		t.Errorf("unexpected value args %#v %#v", args[2], args[4])
	}
}

func TestBuildSelect_Cursor(t *testing.T) {
	q := Query{Order: &Order{Field: "date"}, Limit: 5, Cursor: encodeCursor([]byte(`"2024-01-01T00:00:00.000000Z"`), "abc")}
	sql, args, err := buildSelect("records", q)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql, "(COALESCE(data #> $2::text[], 'null'::jsonb), id) > ($3::jsonb, $4)") {
		t.Errorf("missing cursor predicate in %s", sql)
	}
	if args[3] != "abc" {
		t.Errorf("unexpected cursor id arg %#v", args[3])
	}

	q = Query{Limit: 5, Cursor: encodeCursor(nil, "abc")}
	sql, _, _ = buildSelect("records", q)
	if !strings.Contains(sql, "id > $2") || !strings.Contains(sql, "ORDER BY id ASC") {
		t.Errorf("unexpected unordered cursor sql %s", sql)
	}
}

func TestMongoFilter(t *testing.T) {
	f, err := mongoFilter(Query{Filters: []Filter{Where("status", OpNe, "rejected")}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := f["$and"]; !ok {
		t.Fatalf("expected $and, got %v", f)
	}

	empty, _ := mongoFilter(Query{})
	if len(empty) != 0 {
		t.Errorf("expected empty filter, got %v", empty)
	}
}
