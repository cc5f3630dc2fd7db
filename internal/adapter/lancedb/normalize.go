package lancedb

import (
	"github.com/kailas-cloud/vecspace/internal/adapter/pointconv"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

var rowOptions = pointconv.RowOptions{
	VectorKeys:  []string{"vector", "embedding", "embeddings", "_vec"},
	DistanceKey: "_distance",
}

// Normalize converts LanceDB result rows to canonical points. Score is
// 1 / (1 + _distance).
func Normalize(raw any, _ query.NormalizeOptions) []point.Point {
	switch rows := raw.(type) {
	case []any:
		return pointconv.Rows(rows, rowOptions)
	case []map[string]any:
		return pointconv.Rows(pointconv.Records(rows), rowOptions)
	}
	return nil
}
