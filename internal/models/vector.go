// ABOUTME: Embedding vector helpers shared by the encoder, index and query path
// ABOUTME: All stored and query vectors must be unit-norm float32
package models

import (
	"fmt"
	"math"
)

// NormTolerance is the acceptable deviation from unit norm.
const NormTolerance = 1e-5

// Dot returns the inner product of two vectors. For unit-norm vectors this
// equals their cosine similarity. Mismatched lengths score zero.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

// NormalizeL2 scales v in place to unit length. A zero vector cannot be
// normalized and corrupts inner-product ranking, so it is an error.
func NormalizeL2(v []float32) error {
	n := Norm(v)
	if n == 0 {
		return fmt.Errorf("cannot normalize zero vector")
	}
	inv := 1 / n
	for i := range v {
		v[i] *= inv
	}
	return nil
}

// IsNormalized reports whether v has unit norm within NormTolerance.
func IsNormalized(v []float32) bool {
	return math.Abs(float64(Norm(v))-1) <= NormTolerance
}
