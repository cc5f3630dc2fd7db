// Package backend is the static descriptor table of supported vector stores.
package backend

import "strings"

// Side says where the backend's client runs.
type Side string

const (
	// BrowserExecutable backends are reachable over plain HTTP from a browser.
	BrowserExecutable Side = "browser"
	// HostExecuted backends need a client owned by the host process.
	HostExecuted Side = "host"
)

// Backend names.
const (
	Qdrant   = "qdrant"
	Pinecone = "pinecone"
	Weaviate = "weaviate"
	Chroma   = "chroma"
	LanceDB  = "lancedb"
	Grafeo   = "grafeo"
)

// Descriptor is immutable metadata about one backend.
type Descriptor struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Side          Side   `json:"side"`
	QueryLanguage string `json:"query_language"`
	Example       string `json:"example"`
	Help          string `json:"help"`
}

var registry = []Descriptor{
	{
		Name: Qdrant, Title: "Qdrant", Side: BrowserExecutable, QueryLanguage: "json",
		Example: `{"vector": [...], "limit": 10}`,
		Help:    "JSON: vector, filter, limit, recommend, ids",
	},
	{
		Name: Pinecone, Title: "Pinecone", Side: BrowserExecutable, QueryLanguage: "json",
		Example: `{"vector": [...], "topK": 10}`,
		Help:    "JSON: vector, filter, topK, namespace",
	},
	{
		Name: Weaviate, Title: "Weaviate", Side: BrowserExecutable, QueryLanguage: "graphql",
		Example: "{ Get { Class(limit: 10) { ... } } }",
		Help:    "GraphQL with nearVector, nearText, where",
	},
	{
		Name: Chroma, Title: "Chroma", Side: HostExecuted, QueryLanguage: "dict",
		Example: `{"query_embeddings": [...], "n_results": 10}`,
		Help:    "Dict: query_embeddings, where, n_results",
	},
	{
		Name: LanceDB, Title: "LanceDB", Side: HostExecuted, QueryLanguage: "sql",
		Example: "category = 'tech' AND year > 2020",
		Help:    "SQL WHERE clause for filtering",
	},
	{
		Name: Grafeo, Title: "Grafeo", Side: HostExecuted, QueryLanguage: "grafeo",
		Example: "MATCH (n:Vector) RETURN n LIMIT 10",
		Help:    "Grafeo query language",
	},
}

var byName = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(registry))
	for _, d := range registry {
		m[d.Name] = d
	}
	return m
}()

// Canonical lowercases and trims a backend name.
func Canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the descriptor for name. The bool is false for unknown names.
func Lookup(name string) (Descriptor, bool) {
	d, ok := byName[Canonical(name)]
	return d, ok
}

// All returns every descriptor in registry order.
func All() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Names returns every backend name in registry order.
func Names() []string {
	out := make([]string, len(registry))
	for i, d := range registry {
		out[i] = d.Name
	}
	return out
}

// IsBrowserExecutable reports whether name is a known browser-side backend.
func IsBrowserExecutable(name string) bool {
	d, ok := Lookup(name)
	return ok && d.Side == BrowserExecutable
}

// IsHostExecuted reports whether name is a known host-side backend.
func IsHostExecuted(name string) bool {
	d, ok := Lookup(name)
	return ok && d.Side == HostExecuted
}

// Example returns the example query for name, or "" when unknown.
func Example(name string) string {
	d, _ := Lookup(name)
	return d.Example
}

// Help returns the query help text for name, or "" when unknown.
func Help(name string) string {
	d, _ := Lookup(name)
	return d.Help
}
