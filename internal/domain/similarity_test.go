package domain

import (
	"math"
	"testing"
)

func TestSimilarity_CosineIdentical(t *testing.T) {
	v := []float32{0.5, 0.5, 0.1}
	got := Similarity(MetricCosine, v, v)
	if math.Abs(got-1.0) > 1e-6 {
		t.Errorf("cosine of identical vectors should be 1, got %f", got)
	}
}

func TestSimilarity_CosineOrthogonal(t *testing.T) {
	got := Similarity(MetricCosine, []float32{1, 0}, []float32{0, 1})
	if math.Abs(got) > 1e-6 {
		t.Errorf("cosine of orthogonal vectors should be 0, got %f", got)
	}
}

func TestSimilarity_EuclideanCloserScoresHigher(t *testing.T) {
	q := []float32{1, 1}
	near := Similarity(MetricEuclidean, q, []float32{1, 1.1})
	far := Similarity(MetricEuclidean, q, []float32{5, 5})
	if near <= far {
		t.Errorf("nearer vector must score higher: near=%f far=%f", near, far)
	}
}

func TestSimilarity_Dot(t *testing.T) {
	got := Similarity(MetricDot, []float32{1, 2}, []float32{3, 4})
	if math.Abs(got-11) > 1e-6 {
		t.Errorf("expected dot product 11, got %f", got)
	}
}

func TestSimilarity_MismatchedLengthsSink(t *testing.T) {
	got := Similarity(MetricCosine, []float32{1, 2}, []float32{1})
	if !math.IsInf(got, -1) {
		t.Errorf("mismatched lengths should score -Inf, got %f", got)
	}
}

func TestSimilarity_ZeroVectorCosine(t *testing.T) {
	got := Similarity(MetricCosine, []float32{0, 0}, []float32{1, 1})
	if !math.IsInf(got, -1) {
		t.Errorf("zero vector cosine should score -Inf, got %f", got)
	}
}
