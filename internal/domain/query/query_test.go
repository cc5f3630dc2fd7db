package query

import "testing"

func TestRequestKindAndLimit(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantKind  Kind
		wantLimit int
	}{
		{"vector default", Request{Vector: []float64{1}}, Similarity, DefaultSimilarityLimit},
		{"vector explicit", Request{Vector: []float64{1}, Limit: 3}, Similarity, 3},
		{"ids win over vector", Request{Vector: []float64{1}, IDs: []string{"a"}}, ByIDs, DefaultFetchLimit},
		{"filter only", Request{}, FilterOnly, DefaultFetchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Kind(); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", got, tt.wantKind)
			}
			if got := tt.req.EffectiveLimit(); got != tt.wantLimit {
				t.Errorf("EffectiveLimit() = %d, want %d", got, tt.wantLimit)
			}
		})
	}
}
