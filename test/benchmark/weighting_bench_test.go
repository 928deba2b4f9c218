package benchmark

import (
	"fmt"
	"testing"

	"github.com/searchlabs/docluster/internal/indexer/index"
	"github.com/searchlabs/docluster/internal/indexer/tokenizer"
	"github.com/searchlabs/docluster/internal/weighting"
)

func buildIndex(numDocs int) *index.Index {
	tok := tokenizer.New(2)
	topics := []string{
		"kmeans clustering converges when document assignments stabilize",
		"bm25 weighting normalizes term frequency by document length",
		"vocabulary construction maps every stemmed term to a dense id",
		"centroid updates average the member vectors of each cluster",
	}
	idx := index.New()
	for i := 0; i < numDocs; i++ {
		idx.AddDocument(tok.Tokenize(topics[i%len(topics)]))
	}
	return idx
}

// BenchmarkIndexAdd measures per-document insert throughput into the
// vocabulary index.
func BenchmarkIndexAdd(b *testing.B) {
	tok := tokenizer.New(2)
	terms := tok.Tokenize(sampleTexts["medium"])
	idx := index.New()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.AddDocument(terms)
	}
}

// BenchmarkBM25Transform measures full-corpus weighting at various corpus
// sizes.
func BenchmarkBM25Transform(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	for _, numDocs := range sizes {
		idx := buildIndex(numDocs)
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				weights := weighting.Transform(idx)
				_ = weights
			}
		})
	}
}
