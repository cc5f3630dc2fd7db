package pinecone

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestNormalize_Matches(t *testing.T) {
	raw := decode(t, `{"matches":[
		{"id":"a","score":0.5,"values":[1,2,3,4],"metadata":{"genre":"drama","x":99}},
		{"score":0.25,"metadata":{"x":1,"y":2}}
	]}`)

	points := Normalize(raw, query.NormalizeOptions{})
	if len(points) != 2 {
		t.Fatalf("len = %d", len(points))
	}
	a := points[0]
	if a.ID != "a" || a.X != 1 || a.Y != 2 || a.Z != 3 || len(a.Vector) != 4 {
		t.Errorf("a = %+v", a)
	}
	if a.Metadata["genre"] != "drama" {
		t.Errorf("metadata = %v", a.Metadata)
	}
	if _, ok := a.Metadata["x"]; ok {
		t.Error("metadata x must not shadow the coordinate")
	}

	b := points[1]
	if b.ID != "point_1" || b.X != 1 || b.Y != 2 || b.Vector != nil {
		t.Errorf("b = %+v", b)
	}
	if b.Score == nil || *b.Score != 0.25 {
		t.Errorf("score = %v", b.Score)
	}
}

func TestNormalize_Fetch(t *testing.T) {
	raw := decode(t, `{"vectors":{
		"b":{"id":"b","values":[0,1,0]},
		"a":{"values":[1,0,0]}
	}}`)
	points := Normalize(raw, query.NormalizeOptions{})
	if len(points) != 2 || points[0].ID != "a" || points[1].ID != "b" {
		t.Fatalf("points = %+v", points)
	}
	if points[0].Score != nil {
		t.Error("fetched vectors carry no score")
	}
}

func TestNormalize_Malformed(t *testing.T) {
	for _, s := range []string{`{}`, `{"matches":null}`, `{"matches":"x"}`, `[]`, `{"vectors":[]}`} {
		if got := Normalize(decode(t, s), query.NormalizeOptions{}); len(got) != 0 {
			t.Errorf("%s: got %v", s, got)
		}
	}
}
