// Package weighting turns raw term statistics into per-document term weights
// using the Okapi BM25 weighting scheme. Weights are non-negative and sparse:
// a term absent from a document has implicit weight zero.
package weighting

import (
	"math"

	"github.com/searchlabs/docluster/internal/indexer/index"
)

const (
	k1 = 1.2
	b  = 0.75
)

// TermWeight is one (term id, weight) pair of a weighted document.
type TermWeight struct {
	TermID int
	Weight float64
}

// Transform computes BM25 weights for every document in the index. The result
// is indexed by document id; each entry lists the document's nonzero weights
// in term-id order.
func Transform(idx *index.Index) [][]TermWeight {
	numDocs := idx.NumDocs()
	avgLen := idx.AvgDocLength()

	weighted := make([][]TermWeight, numDocs)
	for docID := 0; docID < numDocs; docID++ {
		counts := idx.TermCounts(docID)
		docLen := float64(idx.DocLength(docID))

		weights := make([]TermWeight, 0, len(counts))
		for _, tc := range counts {
			idf := computeIDF(int64(numDocs), int64(idx.DocFreq(tc.TermID)))
			tfNorm := computeTFNorm(float64(tc.Count), docLen, avgLen)
			weights = append(weights, TermWeight{
				TermID: tc.TermID,
				Weight: idf * tfNorm,
			})
		}
		weighted[docID] = weights
	}
	return weighted
}

func computeIDF(totalDocs int64, docFreq int64) float64 {
	numerator := float64(totalDocs) - float64(docFreq)
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

func computeTFNorm(termFreq float64, docLength float64, avgDocLength float64) float64 {
	if avgDocLength == 0 {
		return 0
	}
	lengthRatio := docLength / avgDocLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}
