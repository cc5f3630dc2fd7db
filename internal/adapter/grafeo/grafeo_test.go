package grafeo

import (
	"context"
	"errors"
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
		{"single", filter.Set{filter.MustCondition("category", filter.Eq, "tech")}, "n.category = 'tech'"},
		{
			name: "multiple",
			set: filter.Set{
				filter.MustCondition("status", filter.Ne, "draft"),
				filter.MustCondition("year", filter.Gte, 2020),
				filter.MustCondition("title", filter.Contains, "vec"),
				filter.MustCondition("tag", filter.AnyOf, []any{"a", "b"}),
			},
			want: "n.status <> 'draft' AND n.year >= 2020 AND n.title CONTAINS 'vec' AND n.tag IN ['a', 'b']",
		},
		{"scalar in", filter.Set{filter.MustCondition("n", filter.AnyOf, 3)}, "n.n IN [3]"},
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
	raw := []any{
		map[string]any{"id": "a", "embedding": []any{1.0, 2.0, 3.0}, "kind": "doc"},
		map[string]any{"x": 1.0, "y": 2.0},
		42.0,
	}
	points := Normalize(raw, query.NormalizeOptions{})
	if len(points) != 3 {
		t.Fatalf("len = %d", len(points))
	}
	if p := points[0]; p.ID != "a" || p.Z != 3 || p.Metadata["kind"] != "doc" {
		t.Errorf("p0 = %+v", p)
	}
	if p := points[1]; p.ID != "point_1" || p.X != 1 || p.Y != 2 {
		t.Errorf("p1 = %+v", p)
	}
	if p := points[2]; p.ID != "point_2" || p.Metadata["data"] != 42.0 || p.X != 0 {
		t.Errorf("scalar record = %+v", p)
	}

	wrapped := map[string]any{"records": []any{map[string]any{"id": "w"}}}
	if got := Normalize(wrapped, query.NormalizeOptions{}); len(got) != 1 || got[0].ID != "w" {
		t.Errorf("records envelope = %+v", got)
	}
	if got := Normalize("nope", query.NormalizeOptions{}); len(got) != 0 {
		t.Errorf("scalar response = %+v", got)
	}
}

func TestBuildQuery(t *testing.T) {
	got, err := BuildQuery(query.Request{Filter: filter.Set{filter.MustCondition("year", filter.Gt, 2020)}})
	if err != nil {
		t.Fatal(err)
	}
	if want := "MATCH (n:Vector) WHERE n.year > 2020 RETURN n LIMIT 100"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got, err = BuildQuery(query.Request{Class: "Doc", IDs: []string{"a"}, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if want := "MATCH (n:Doc) WHERE n.id IN ['a'] RETURN n LIMIT 5"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if _, err := BuildQuery(query.Request{Vector: []float64{1}}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

type sessionFunc func(ctx context.Context, q string) (any, error)

func (f sessionFunc) Query(ctx context.Context, q string) (any, error) { return f(ctx, q) }

func TestExecutor(t *testing.T) {
	var got string
	s := sessionFunc(func(_ context.Context, q string) (any, error) {
		got = q
		return []map[string]any{{"id": "a"}}, nil
	})
	points, err := NewExecutor(s).Execute(context.Background(), "MATCH (n) RETURN n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "MATCH (n) RETURN n" || len(points) != 1 {
		t.Errorf("got %q, %v", got, points)
	}

	if _, err := NewExecutor(s).Execute(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}

	failing := sessionFunc(func(context.Context, string) (any, error) { return nil, errors.New("down") })
	if _, err := NewExecutor(failing).Execute(context.Background(), "MATCH (n) RETURN n"); !errors.Is(err, domain.ErrBackendFailure) {
		t.Errorf("expected ErrBackendFailure, got %v", err)
	}
}
