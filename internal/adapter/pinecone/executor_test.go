package pinecone

import (
	"context"
	"errors"
	"testing"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/kailas-cloud/vecspace/internal/domain"
)

type fakeIndex struct {
	queried *pinecone.QueryByVectorValuesRequest
	fetched []string

	query *pinecone.QueryVectorsResponse
	fetch *pinecone.FetchVectorsResponse
	err   error
}

func (f *fakeIndex) QueryByVectorValues(_ context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error) {
	f.queried = in
	if f.err != nil {
		return nil, f.err
	}
	return f.query, nil
}

func (f *fakeIndex) FetchVectors(_ context.Context, ids []string) (*pinecone.FetchVectorsResponse, error) {
	f.fetched = ids
	if f.err != nil {
		return nil, f.err
	}
	return f.fetch, nil
}

func TestExecutor_Query(t *testing.T) {
	meta, err := structpb.NewStruct(map[string]any{"genre": "drama"})
	if err != nil {
		t.Fatal(err)
	}
	fi := &fakeIndex{query: &pinecone.QueryVectorsResponse{Matches: []*pinecone.ScoredVector{
		{Vector: &pinecone.Vector{Id: "v1", Values: []float32{1, 2, 3}, Metadata: meta}, Score: 0.5},
	}}}

	points, err := NewExecutor(fi, "", nil).Execute(context.Background(),
		`{"vector":[0.1,0.2,0.3],"limit":4,"filter":{"genre":{"$eq":"drama"}}}`)
	if err != nil {
		t.Fatal(err)
	}

	if fi.queried.TopK != 4 {
		t.Errorf("topK = %d, want the limit fallback", fi.queried.TopK)
	}
	if !fi.queried.IncludeValues || !fi.queried.IncludeMetadata {
		t.Error("values and metadata must be requested")
	}
	if fi.queried.MetadataFilter == nil || fi.queried.MetadataFilter.AsMap()["genre"] == nil {
		t.Errorf("filter = %v", fi.queried.MetadataFilter)
	}

	if len(points) != 1 {
		t.Fatalf("points = %v", points)
	}
	p := points[0]
	if p.ID != "v1" || p.X != 1 || p.Z != 3 || p.Metadata["genre"] != "drama" {
		t.Errorf("point = %+v", p)
	}
	if p.Score == nil || *p.Score != 0.5 {
		t.Errorf("score = %v", p.Score)
	}
}

func TestExecutor_DefaultTopK(t *testing.T) {
	fi := &fakeIndex{query: &pinecone.QueryVectorsResponse{}}
	if _, err := NewExecutor(fi, "", nil).Execute(context.Background(), `{"vector":[1]}`); err != nil {
		t.Fatal(err)
	}
	if fi.queried.TopK != 10 {
		t.Errorf("topK = %d, want 10", fi.queried.TopK)
	}
}

func TestExecutor_Fetch(t *testing.T) {
	fi := &fakeIndex{fetch: &pinecone.FetchVectorsResponse{Vectors: map[string]*pinecone.Vector{
		"b": {Id: "b", Values: []float32{0, 1, 0}},
		"a": {Id: "a", Values: []float32{1, 0, 0}},
	}}}

	points, err := NewExecutor(fi, "ns", nil).Execute(context.Background(), `{"ids":["a","b"],"namespace":"other"}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(fi.fetched) != 2 {
		t.Errorf("fetched = %v", fi.fetched)
	}
	if len(points) != 2 || points[0].ID != "a" || points[1].Y != 1 {
		t.Errorf("points = %+v", points)
	}
}

func TestExecutor_Errors(t *testing.T) {
	if _, err := NewExecutor(&fakeIndex{}, "", nil).Execute(context.Background(), `{"topK":3}`); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}

	fi := &fakeIndex{err: errors.New("quota")}
	if _, err := NewExecutor(fi, "", nil).Execute(context.Background(), `{"vector":[1]}`); !errors.Is(err, domain.ErrBackendFailure) {
		t.Errorf("expected ErrBackendFailure, got %v", err)
	}
}
