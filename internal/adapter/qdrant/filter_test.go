package qdrant

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/vecspace/internal/domain/filter"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		set  filter.Set
		want map[string]any
	}{
		{
			name: "empty",
			set:  nil,
			want: map[string]any{},
		},
		{
			name: "single condition is still wrapped",
			set:  filter.Set{filter.MustCondition("category", filter.Eq, "tech")},
			want: map[string]any{"must": []any{
				map[string]any{"key": "category", "match": map[string]any{"value": "tech"}},
			}},
		},
		{
			name: "range and text",
			set: filter.Set{
				filter.MustCondition("year", filter.Gte, 2020),
				filter.MustCondition("title", filter.Contains, "vector"),
			},
			want: map[string]any{"must": []any{
				map[string]any{"key": "year", "range": map[string]any{"gte": int64(2020)}},
				map[string]any{"key": "title", "match": map[string]any{"text": "vector"}},
			}},
		},
		{
			name: "scalar any-of is wrapped in a list",
			set:  filter.Set{filter.MustCondition("tag", filter.AnyOf, "a")},
			want: map[string]any{"must": []any{
				map[string]any{"key": "tag", "match": map[string]any{"any": []any{"a"}}},
			}},
		},
		{
			name: "not-equal is silently omitted",
			set: filter.Set{
				filter.MustCondition("status", filter.Ne, "draft"),
				filter.MustCondition("year", filter.Lt, 2000),
			},
			want: map[string]any{"must": []any{
				map[string]any{"key": "year", "range": map[string]any{"lt": int64(2000)}},
			}},
		},
		{
			name: "only not-equal yields an empty filter",
			set:  filter.Set{filter.MustCondition("status", filter.Ne, "draft")},
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.set)
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	set := filter.Set{filter.MustCondition("category", filter.Eq, "tech")}

	got, err := BuildQuery(query.Request{Vector: []float64{0.1, 0.2}, Filter: set})
	if err != nil {
		t.Fatal(err)
	}
	if got["limit"] != query.DefaultSimilarityLimit {
		t.Errorf("limit = %v", got["limit"])
	}
	if _, ok := got["vector"]; !ok {
		t.Error("similarity query must carry the vector")
	}
	if _, ok := got["filter"]; !ok {
		t.Error("filter missing")
	}

	got, err = BuildQuery(query.Request{IDs: []string{"1", "2"}, Vector: []float64{1}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, map[string]any{"ids": []string{"1", "2"}}) {
		t.Errorf("ids query = %#v", got)
	}

	got, err = BuildQuery(query.Request{})
	if err != nil {
		t.Fatal(err)
	}
	if got["limit"] != query.DefaultFetchLimit {
		t.Errorf("scroll limit = %v", got["limit"])
	}
	if f, ok := got["filter"].(map[string]any); !ok || len(f) != 0 {
		t.Errorf("scroll must carry an empty filter, got %#v", got["filter"])
	}
}
