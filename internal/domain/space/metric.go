// Package space is the brute-force distance and nearest-neighbor engine over
// canonical points. Every function is pure and leaves its inputs untouched.
package space

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/vecspace/internal/domain"
)

// Metric is a distance function. Smaller always means more similar.
type Metric string

// Supported metrics.
const (
	Euclidean  Metric = "euclidean"
	Manhattan  Metric = "manhattan"
	Cosine     Metric = "cosine"
	DotProduct Metric = "dot_product"
)

// ParseMetric resolves a metric name or alias. Empty means euclidean.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "euclidean", "l2":
		return Euclidean, nil
	case "manhattan", "l1":
		return Manhattan, nil
	case "cosine":
		return Cosine, nil
	case "dot_product", "dot":
		return DotProduct, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMetric, s)
}

// Between computes the metric over the common prefix of a and b. The zero
// Metric is euclidean; a value ParseMetric would reject yields NaN.
func (m Metric) Between(a, b []float64) float64 {
	n := min(len(a), len(b))
	a, b = a[:n], b[:n]

	switch m {
	case Manhattan:
		var sum float64
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	case Cosine:
		var dot, na, nb float64
		for i := range a {
			dot += a[i] * b[i]
			na += a[i] * a[i]
			nb += b[i] * b[i]
		}
		if na == 0 || nb == 0 {
			return 1.0
		}
		d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
		return math.Min(math.Max(d, 0), 2)
	case DotProduct:
		var dot float64
		for i := range a {
			dot += a[i] * b[i]
		}
		return -dot
	case Euclidean, "":
		var sum float64
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return math.Sqrt(sum)
	default:
		return math.NaN()
	}
}
