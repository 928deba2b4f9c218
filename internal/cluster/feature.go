// Package cluster implements K-Means clustering over weighted document
// vectors: feature construction, centroid seeding, the assignment/update
// iteration loop, top-terms reporting, and model persistence.
package cluster

import (
	"fmt"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

// Representation selects how document vectors are stored in memory.
type Representation string

const (
	// Dense materializes the full num_docs x num_terms matrix. This is the
	// dominant memory cost of a run.
	Dense Representation = "dense"
	// Sparse stores only nonzero weights per document. Same distance and
	// mean semantics as Dense without the full matrix.
	Sparse Representation = "sparse"
)

// TermWeight is one (term id, weight) pair of a weighted document, as
// produced by an external TF-IDF style transform.
type TermWeight struct {
	TermID int
	Weight float64
}

// Vocab is the vocabulary/statistics provider contract. Term ids are dense
// and zero-based.
type Vocab interface {
	NumTerms() int
	NumDocs() int
	TermText(termID int) string
}

// Vector is a read-only document vector over the vocabulary. Centroids are
// always dense; documents may be dense or sparse.
type Vector interface {
	// Len returns the vocabulary size.
	Len() int
	// At returns the weight of the given term, zero if absent.
	At(termID int) float64
	// ForEach visits every nonzero entry.
	ForEach(fn func(termID int, weight float64))
}

type denseVector []float64

func (v denseVector) Len() int { return len(v) }

func (v denseVector) At(termID int) float64 { return v[termID] }

func (v denseVector) ForEach(fn func(termID int, weight float64)) {
	for tid, w := range v {
		if w != 0 {
			fn(tid, w)
		}
	}
}

type sparseVector struct {
	numTerms int
	weights  map[int]float64
}

func (v *sparseVector) Len() int { return v.numTerms }

func (v *sparseVector) At(termID int) float64 { return v.weights[termID] }

func (v *sparseVector) ForEach(fn func(termID int, weight float64)) {
	for tid, w := range v.weights {
		fn(tid, w)
	}
}

// BuildVectors converts the sparse per-document weights into one vector per
// document. A term id outside [0, numTerms) indicates a broken provider
// contract and panics.
func BuildVectors(numTerms int, docs [][]TermWeight, repr Representation) ([]Vector, error) {
	switch repr {
	case Dense, Sparse:
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "unknown representation %q", repr)
	}

	vectors := make([]Vector, len(docs))
	for docID, weights := range docs {
		if repr == Dense {
			vec := make(denseVector, numTerms)
			for _, tw := range weights {
				checkTermID(tw.TermID, numTerms, docID)
				vec[tw.TermID] = tw.Weight
			}
			vectors[docID] = vec
			continue
		}
		vec := &sparseVector{
			numTerms: numTerms,
			weights:  make(map[int]float64, len(weights)),
		}
		for _, tw := range weights {
			checkTermID(tw.TermID, numTerms, docID)
			if tw.Weight != 0 {
				vec.weights[tw.TermID] = tw.Weight
			}
		}
		vectors[docID] = vec
	}
	return vectors, nil
}

func checkTermID(termID, numTerms, docID int) {
	if termID < 0 || termID >= numTerms {
		panic(fmt.Sprintf("cluster: term id %d out of range [0, %d) in document %d",
			termID, numTerms, docID))
	}
}

// squaredDistance returns the sum-of-squares (squared Euclidean) distance
// between a document vector and a dense centroid.
func squaredDistance(v Vector, centroid []float64) float64 {
	if vec, ok := v.(denseVector); ok {
		var total float64
		for tid, c := range centroid {
			diff := vec[tid] - c
			total += diff * diff
		}
		return total
	}
	var total float64
	for tid, c := range centroid {
		diff := v.At(tid) - c
		total += diff * diff
	}
	return total
}

// meanVector computes the element-wise mean of the given documents' vectors.
// The caller guarantees docIDs is non-empty.
func meanVector(vectors []Vector, docIDs []int, numTerms int) []float64 {
	mean := make([]float64, numTerms)
	for _, docID := range docIDs {
		vectors[docID].ForEach(func(termID int, weight float64) {
			mean[termID] += weight
		})
	}
	inv := 1 / float64(len(docIDs))
	for tid := range mean {
		mean[tid] *= inv
	}
	return mean
}

// denseCopy materializes any vector as a dense centroid slice.
func denseCopy(v Vector) []float64 {
	out := make([]float64, v.Len())
	v.ForEach(func(termID int, weight float64) {
		out[termID] = weight
	})
	return out
}
