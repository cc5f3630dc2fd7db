package weaviate

import (
	"context"
	"errors"
	"testing"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/kailas-cloud/vecspace/internal/domain"
)

type fakeRunner struct {
	got  string
	resp *models.GraphQLResponse
	err  error
}

func (f *fakeRunner) Run(_ context.Context, q string) (*models.GraphQLResponse, error) {
	f.got = q
	return f.resp, f.err
}

const getArticles = `{ Get { Article(limit: 2) { title _additional { id vector distance } } } }`

func TestExecutor_Execute(t *testing.T) {
	fr := &fakeRunner{resp: &models.GraphQLResponse{Data: map[string]models.JSONObject{
		"Get": map[string]any{"Article": []any{
			map[string]any{"title": "A", "_additional": map[string]any{"id": "u1", "distance": 0.5}},
		}},
	}}}

	points, err := NewExecutor(fr).Execute(context.Background(), getArticles)
	if err != nil {
		t.Fatal(err)
	}
	if fr.got != getArticles {
		t.Errorf("query not passed through: %q", fr.got)
	}
	if len(points) != 1 || points[0].ID != "u1" || *points[0].Score != 0.5 {
		t.Errorf("points = %+v", points)
	}
}

func TestExecutor_Errors(t *testing.T) {
	if _, err := NewExecutor(&fakeRunner{}).Execute(context.Background(), "not graphql {"); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}

	fr := &fakeRunner{resp: &models.GraphQLResponse{Errors: []*models.GraphQLError{{Message: "no such class"}}}}
	_, err := NewExecutor(fr).Execute(context.Background(), getArticles)
	if !errors.Is(err, domain.ErrBackendFailure) {
		t.Fatalf("expected ErrBackendFailure, got %v", err)
	}

	fr = &fakeRunner{err: errors.New("connection refused")}
	if _, err := NewExecutor(fr).Execute(context.Background(), getArticles); !errors.Is(err, domain.ErrBackendFailure) {
		t.Errorf("expected ErrBackendFailure, got %v", err)
	}
}
