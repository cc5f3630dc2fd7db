package chroma

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/vecspace/internal/domain"
)

type fakeCollection struct {
	get   *GetRequest
	query *QueryRequest
	resp  map[string]any
	err   error
}

func (f *fakeCollection) Get(_ context.Context, req GetRequest) (map[string]any, error) {
	f.get = &req
	return f.resp, f.err
}

func (f *fakeCollection) Query(_ context.Context, req QueryRequest) (map[string]any, error) {
	f.query = &req
	return f.resp, f.err
}

func TestExecutor_Routing(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, f *fakeCollection)
	}{
		{"ids", `{"ids":["a"]}`, func(t *testing.T, f *fakeCollection) {
			if f.get == nil || len(f.get.IDs) != 1 {
				t.Errorf("get = %+v", f.get)
			}
		}},
		{"query", `{"query_embeddings":[[0.1,0.2]],"where":{"a":1}}`, func(t *testing.T, f *fakeCollection) {
			if f.query == nil || f.query.NResults != 10 || f.query.Where["a"] == nil {
				t.Errorf("query = %+v", f.query)
			}
		}},
		{"where", `{"where":{"a":1},"limit":7}`, func(t *testing.T, f *fakeCollection) {
			if f.get == nil || f.get.Limit != 7 || f.get.Where == nil {
				t.Errorf("get = %+v", f.get)
			}
		}},
		{"all", `{}`, func(t *testing.T, f *fakeCollection) {
			if f.get == nil || f.get.Limit != 100 || f.get.Where != nil {
				t.Errorf("get = %+v", f.get)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCollection{resp: map[string]any{"ids": []any{"a"}}}
			points, err := NewExecutor(f).Execute(context.Background(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if len(points) != 1 {
				t.Errorf("points = %v", points)
			}
			tt.check(t, f)
		})
	}
}

func TestExecutor_Errors(t *testing.T) {
	if _, err := NewExecutor(&fakeCollection{}).Execute(context.Background(), `[`); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	f := &fakeCollection{err: errors.New("boom")}
	if _, err := NewExecutor(f).Execute(context.Background(), `{}`); !errors.Is(err, domain.ErrBackendFailure) {
		t.Errorf("expected ErrBackendFailure, got %v", err)
	}
}
