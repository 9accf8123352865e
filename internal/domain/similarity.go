package domain

import "math"

// Similarity scores two vectors under the named metric. Higher is better for
// every metric; euclidean distance is negated so ranking code can always sort
// descending. Mismatched lengths score -Inf and sink to the bottom.
func Similarity(metric string, a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.Inf(-1)
	}
	switch metric {
	case MetricEuclidean:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return -math.Sqrt(sum)
	case MetricDot:
		return dot(a, b)
	default: // cosine
		na := norm(a)
		nb := norm(b)
		if na == 0 || nb == 0 {
			return math.Inf(-1)
		}
		return dot(a, b) / (na * nb)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
