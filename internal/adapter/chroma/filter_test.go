package chroma

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
		{"empty", nil, map[string]any{}},
		{
			name: "equality shorthand",
			set:  filter.Set{filter.MustCondition("category", filter.Eq, "tech")},
			want: map[string]any{"category": "tech"},
		},
		{
			name: "operator form",
			set:  filter.Set{filter.MustCondition("year", filter.Gt, 2020)},
			want: map[string]any{"year": map[string]any{"$gt": int64(2020)}},
		},
		{
			name: "text match coerced to equality",
			set:  filter.Set{filter.MustCondition("title", filter.Contains, "vec")},
			want: map[string]any{"title": "vec"},
		},
		{
			name: "multiple",
			set: filter.Set{
				filter.MustCondition("category", filter.Eq, "tech"),
				filter.MustCondition("tag", filter.AnyOf, "a"),
				filter.MustCondition("draft", filter.Ne, true),
			},
			want: map[string]any{"$and": []any{
				map[string]any{"category": "tech"},
				map[string]any{"tag": map[string]any{"$in": []any{"a"}}},
				map[string]any{"draft": map[string]any{"$ne": true}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.set)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	set := filter.Set{filter.MustCondition("category", filter.Eq, "tech")}

	got, err := BuildQuery(query.Request{Vector: []float64{1, 2}, Filter: set, Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"query_embeddings": [][]float64{{1, 2}},
		"n_results":        5,
		"where":            map[string]any{"category": "tech"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("similarity = %#v", got)
	}

	got, err = BuildQuery(query.Request{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, map[string]any{"limit": 100}) {
		t.Errorf("get all = %#v", got)
	}
}
