package backend

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		wantOK   bool
		wantSide Side
		wantLang string
	}{
		{"qdrant", true, BrowserExecutable, "json"},
		{"pinecone", true, BrowserExecutable, "json"},
		{"weaviate", true, BrowserExecutable, "graphql"},
		{"chroma", true, HostExecuted, "dict"},
		{"lancedb", true, HostExecuted, "sql"},
		{"grafeo", true, HostExecuted, "grafeo"},
		{" Qdrant ", true, BrowserExecutable, "json"},
		{"milvus", false, "", ""},
		{"", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Lookup(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if d.Side != tt.wantSide || d.QueryLanguage != tt.wantLang {
				t.Errorf("descriptor = %+v", d)
			}
		})
	}
}

func TestSidePredicates(t *testing.T) {
	if !IsBrowserExecutable("qdrant") || IsHostExecuted("qdrant") {
		t.Error("qdrant should be browser-executable only")
	}
	if !IsHostExecuted("lancedb") || IsBrowserExecutable("lancedb") {
		t.Error("lancedb should be host-executed only")
	}
	if IsBrowserExecutable("unknown") || IsHostExecuted("unknown") {
		t.Error("unknown backend must satisfy neither predicate")
	}
}

func TestExampleAndHelp(t *testing.T) {
	if Example("pinecone") != `{"vector": [...], "topK": 10}` {
		t.Errorf("Example(pinecone) = %q", Example("pinecone"))
	}
	if Help("grafeo") != "Grafeo query language" {
		t.Errorf("Help(grafeo) = %q", Help("grafeo"))
	}
	if Example("nope") != "" || Help("nope") != "" {
		t.Error("unknown backend must return empty strings")
	}
}

func TestNamesAndAll_RegistryOrder(t *testing.T) {
	want := []string{Qdrant, Pinecone, Weaviate, Chroma, LanceDB, Grafeo}
	names := Names()
	all := All()
	if len(names) != len(want) || len(all) != len(want) {
		t.Fatalf("len(names)=%d len(all)=%d", len(names), len(all))
	}
	for i := range want {
		if names[i] != want[i] || all[i].Name != want[i] {
			t.Errorf("position %d: names=%q all=%q, want %q", i, names[i], all[i].Name, want[i])
		}
	}

	all[0].Name = "mutated"
	if d, _ := Lookup("qdrant"); d.Name != "qdrant" {
		t.Error("All() must return a copy")
	}
}
