package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBackendsCmd(t *testing.T) {
	out, err := run(t, "", "backends")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"qdrant", "pinecone", "weaviate", "chroma", "lancedb", "grafeo"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %s:\n%s", name, out)
		}
	}
}

func TestFilterCmd(t *testing.T) {
	path := writeFile(t, "conditions.json", `[["category","=","tech"],["year",">",2020]]`)

	out, err := run(t, "", "filter", "lancedb", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "category = 'tech' AND year > 2020" {
		t.Errorf("lancedb = %q", out)
	}

	out, err = run(t, `[["tag",":",["a","b"]]]`, "filter", "pinecone", "-")
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("pinecone output is not JSON: %q", out)
	}
	if _, ok := got["tag"].(map[string]any)["$in"]; !ok {
		t.Errorf("pinecone = %v", got)
	}

	if _, err := run(t, `[["a","="]]`, "filter", "qdrant", "-"); err == nil {
		t.Error("expected error for malformed triple")
	}
	if _, err := run(t, `[]`, "filter", "milvus", "-"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNormalizeCmd(t *testing.T) {
	resp := `{"data":{"Get":{"Article":[{"title":"t","_additional":{"id":"u1","distance":0.25,"vector":[1,2,3]}}]}}}`

	out, err := run(t, resp, "normalize", "weaviate", "-", "--class-name", "Article")
	if err != nil {
		t.Fatal(err)
	}
	var points []map[string]any
	if err := json.Unmarshal([]byte(out), &points); err != nil {
		t.Fatalf("output is not a JSON list: %q", out)
	}
	if len(points) != 1 || points[0]["id"] != "u1" || points[0]["score"] != 0.75 || points[0]["title"] != "t" {
		t.Errorf("points = %v", points)
	}
}

func TestNeighborsCmd(t *testing.T) {
	path := writeFile(t, "points.json", `[{"id":"a","x":0},{"id":"b","x":1},{"id":"c","x":5}]`)

	out, err := run(t, "", "neighbors", path, "a", "--k", "1")
	if err != nil {
		t.Fatal(err)
	}
	var ns []map[string]any
	if err := json.Unmarshal([]byte(out), &ns); err != nil {
		t.Fatalf("output is not JSON: %q", out)
	}
	if len(ns) != 1 || ns[0]["id"] != "b" || ns[0]["distance"] != float64(1) {
		t.Errorf("neighbors = %v", ns)
	}

	out, err = run(t, "", "neighbors", path, "a", "--threshold", "2", "--k", "0")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, `"c"`) {
		t.Errorf("threshold not applied: %s", out)
	}

	if _, err := run(t, "", "neighbors", path, "a", "--metric", "hamming"); err == nil {
		t.Error("expected error for unknown metric")
	}
}
