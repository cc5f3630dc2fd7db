package grafeo

import (
	"github.com/kailas-cloud/vecspace/internal/adapter/pointconv"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

var rowOptions = pointconv.RowOptions{
	VectorKeys:  []string{"vector", "embedding"},
	KeepScalars: true,
}

// Normalize converts Grafeo query results to canonical points. Results are
// a record list, or an object wrapping it under "records" or "rows". Records
// that are not objects become {id: point_<i>, data: value}.
func Normalize(raw any, _ query.NormalizeOptions) []point.Point {
	return pointconv.Rows(records(raw), rowOptions)
}

func records(raw any) []any {
	switch r := raw.(type) {
	case []any:
		return r
	case []map[string]any:
		return pointconv.Records(r)
	case map[string]any:
		if list, ok := pointconv.FirstPresent(r, "records", "rows"); ok {
			return records(list)
		}
	}
	return nil
}
