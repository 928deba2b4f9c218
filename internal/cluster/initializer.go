package cluster

import (
	"math/rand"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

// Initialization strategy names accepted by NewInitializer.
const (
	InitRandK    = "randk"
	InitKMeansPP = "kmeans++"
)

// Initializer seeds k centroids from the document vectors using the supplied
// entropy source. Implementations must not mutate the vectors.
type Initializer interface {
	Seed(vectors []Vector, k int, rng *rand.Rand) ([][]float64, error)
}

// NewInitializer resolves a strategy by name. Unknown names are an error, no
// default is substituted.
func NewInitializer(name string) (Initializer, error) {
	switch name {
	case InitRandK:
		return randKInitializer{}, nil
	case InitKMeansPP:
		return kmeansPPInitializer{}, nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "unknown init method %q", name)
	}
}

// randKInitializer draws k document indices uniformly at random, with
// replacement, and copies their vectors. Two centroids may start identical.
type randKInitializer struct{}

func (randKInitializer) Seed(vectors []Vector, k int, rng *rand.Rand) ([][]float64, error) {
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		docID := rng.Intn(len(vectors))
		centroids[c] = denseCopy(vectors[docID])
	}
	return centroids, nil
}

// kmeansPPInitializer picks the first centroid uniformly, then repeatedly
// samples documents with probability proportional to their squared distance
// to the nearest centroid chosen so far.
type kmeansPPInitializer struct{}

func (kmeansPPInitializer) Seed(vectors []Vector, k int, rng *rand.Rand) ([][]float64, error) {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, denseCopy(vectors[rng.Intn(len(vectors))]))

	weights := make([]float64, len(vectors))
	for len(centroids) < k {
		total := seedWeights(vectors, centroids, weights)
		docID := sampleDiscrete(rng, weights, total)
		centroids = append(centroids, denseCopy(vectors[docID]))
	}
	return centroids, nil
}

// seedWeights fills weights with each document's squared distance to its
// nearest existing centroid and returns the sum.
func seedWeights(vectors []Vector, centroids [][]float64, weights []float64) float64 {
	var total float64
	for docID, vec := range vectors {
		_, dist := nearestOf(vec, centroids)
		weights[docID] = dist
		total += dist
	}
	return total
}

// sampleDiscrete draws one index from the unnormalized distribution. Entries
// with zero weight are never selected. When every weight is zero, all
// documents coincide with an existing centroid and the draw falls back to
// uniform.
func sampleDiscrete(rng *rand.Rand, weights []float64, total float64) int {
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}

// nearestOf returns the index and squared distance of the closest centroid.
// Ties resolve to the lowest index.
func nearestOf(vec Vector, centroids [][]float64) (int, float64) {
	best := 0
	bestDist := squaredDistance(vec, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if dist := squaredDistance(vec, centroids[c]); dist < bestDist {
			best = c
			bestDist = dist
		}
	}
	return best, bestDist
}
