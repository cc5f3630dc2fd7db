package lancedb

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/filter"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		set  filter.Set
		want string
	}{
		{"empty", nil, ""},
		{"single", filter.Set{filter.MustCondition("category", filter.Eq, "tech")}, "category = 'tech'"},
		{
			name: "multiple",
			set: filter.Set{
				filter.MustCondition("category", filter.Eq, "tech"),
				filter.MustCondition("year", filter.Gt, 2020),
				filter.MustCondition("score", filter.Lte, 0.5),
				filter.MustCondition("draft", filter.Ne, false),
			},
			want: "category = 'tech' AND year > 2020 AND score <= 0.5 AND draft != false",
		},
		{"like", filter.Set{filter.MustCondition("title", filter.Contains, "vec")}, "title LIKE '%vec%'"},
		{
			name: "like wildcards match literally",
			set:  filter.Set{filter.MustCondition("code", filter.Contains, `50%_a\b`)},
			want: `code LIKE '%50\%\_a\\b%' ESCAPE '\'`,
		},
		{"like with quote", filter.Set{filter.MustCondition("name", filter.Contains, "O'B")}, "name LIKE '%O''B%'"},
		{"in", filter.Set{filter.MustCondition("tag", filter.AnyOf, []any{"a", 2})}, "tag IN ('a', 2)"},
		{"quote escaping", filter.Set{filter.MustCondition("name", filter.Eq, "O'Brien")}, "name = 'O''Brien'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.set)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	var raw any
	if err := json.Unmarshal([]byte(`[
		{"id": 1, "vector": [1, 2, 3], "_distance": 0, "category": "tech"},
		{"embedding": [4, 5], "_vec": [9, 9, 9]},
		{"name": "no vector", "z": 2}
	]`), &raw); err != nil {
		t.Fatal(err)
	}

	points := Normalize(raw, query.NormalizeOptions{})
	if len(points) != 3 {
		t.Fatalf("len = %d", len(points))
	}
	if p := points[0]; p.ID != "1" || p.Z != 3 || p.Score == nil || *p.Score != 1 || p.Metadata["category"] != "tech" {
		t.Errorf("p0 = %+v", p)
	}
	if _, ok := points[0].Metadata["_distance"]; ok {
		t.Error("_distance must not be copied to metadata")
	}
	if p := points[1]; p.ID != "point_1" || p.X != 4 || p.Z != 0 || len(p.Vector) != 2 {
		t.Errorf("embedding column should win over _vec: %+v", p)
	}
	if _, ok := points[1].Metadata["_vec"]; ok {
		t.Error("_vec must not be copied to metadata")
	}
	if p := points[2]; p.Z != 2 || p.Score != nil {
		t.Errorf("p2 = %+v", p)
	}

	if got := Normalize(map[string]any{"rows": []any{}}, query.NormalizeOptions{}); len(got) != 0 {
		t.Errorf("object envelope is not a row list: %v", got)
	}
}

func TestBuildQuery(t *testing.T) {
	got, err := BuildQuery(query.Request{
		Vector: []float64{1},
		Filter: filter.Set{filter.MustCondition("year", filter.Gt, 2020)},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"vector": []float64{1}, "limit": 10, "where": "year > 2020"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v", got)
	}

	got, err = BuildQuery(query.Request{IDs: []string{"a", "b"}})
	if err != nil {
		t.Fatal(err)
	}
	if got["where"] != "id IN ('a', 'b')" || got["limit"] != 100 {
		t.Errorf("ids = %#v", got)
	}
}

type fakeTable struct {
	search *SearchRequest
	where  string
	limit  int
	rows   []map[string]any
	err    error
}

func (f *fakeTable) Search(_ context.Context, req SearchRequest) ([]map[string]any, error) {
	f.search = &req
	return f.rows, f.err
}

func (f *fakeTable) Scan(_ context.Context, where string, limit int) ([]map[string]any, error) {
	f.where, f.limit = where, limit
	return f.rows, f.err
}

func TestExecutor(t *testing.T) {
	ft := &fakeTable{rows: []map[string]any{{"id": "a", "vector": []float32{1, 2, 3}, "_distance": 1.0}}}

	points, err := NewExecutor(ft).Execute(context.Background(), `{"vector":[0.1],"where":"a = 1","limit":5}`)
	if err != nil {
		t.Fatal(err)
	}
	if ft.search == nil || ft.search.Limit != 5 || ft.search.Where != "a = 1" {
		t.Errorf("search = %+v", ft.search)
	}
	if len(points) != 1 || points[0].Y != 2 || *points[0].Score != 0.5 {
		t.Errorf("points = %+v", points)
	}

	ft = &fakeTable{}
	if _, err := NewExecutor(ft).Execute(context.Background(), `{"fts":"hello"}`); err != nil || ft.search.FullText != "hello" {
		t.Errorf("fts search = %+v, %v", ft.search, err)
	}

	ft = &fakeTable{}
	if _, err := NewExecutor(ft).Execute(context.Background(), `{"where":"x > 1"}`); err != nil || ft.where != "x > 1" || ft.limit != 100 {
		t.Errorf("scan = %q %d %v", ft.where, ft.limit, err)
	}

	ft = &fakeTable{err: errors.New("io")}
	if _, err := NewExecutor(ft).Execute(context.Background(), `{}`); !errors.Is(err, domain.ErrBackendFailure) {
		t.Errorf("expected ErrBackendFailure, got %v", err)
	}
}
