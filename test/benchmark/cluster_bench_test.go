package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/searchlabs/docluster/internal/cluster"
)

type benchVocab struct {
	numTerms int
	numDocs  int
}

func (v benchVocab) NumTerms() int { return v.numTerms }

func (v benchVocab) NumDocs() int { return v.numDocs }

func (v benchVocab) TermText(termID int) string {
	return fmt.Sprintf("term-%d", termID)
}

// groupedDocs synthesizes numDocs documents split across k well-separated
// groups, each group sharing one dominant term plus a few jittered tail
// terms so the vectors are not degenerate.
func groupedDocs(numDocs, numTerms, k int) (cluster.Vocab, [][]cluster.TermWeight) {
	rng := rand.New(rand.NewSource(7))
	docs := make([][]cluster.TermWeight, numDocs)
	for i := range docs {
		doc := []cluster.TermWeight{{TermID: i % k, Weight: 10}}
		for t := 0; t < 4; t++ {
			doc = append(doc, cluster.TermWeight{
				TermID: k + rng.Intn(numTerms-k),
				Weight: rng.Float64() * 0.2,
			})
		}
		docs[i] = doc
	}
	return benchVocab{numTerms: numTerms, numDocs: numDocs}, docs
}

// BenchmarkKMeansRun measures a full clustering run at various corpus sizes.
func BenchmarkKMeansRun(b *testing.B) {
	for _, numDocs := range []int{100, 1000, 5000} {
		vocab, docs := groupedDocs(numDocs, 200, 4)
		b.Run(fmt.Sprintf("docs_%d", numDocs), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				model := cluster.NewKMeans(vocab, docs, cluster.Options{
					Clusters:       4,
					MaxIters:       50,
					InitMethod:     cluster.InitKMeansPP,
					Representation: cluster.Dense,
					Parallelism:    1,
					Seed:           7,
				})
				if err := model.Initialize(context.Background()); err != nil {
					b.Fatal(err)
				}
				if _, err := model.Run(context.Background()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkKMeansParallelism compares the assignment step split across
// goroutine counts on a fixed corpus.
func BenchmarkKMeansParallelism(b *testing.B) {
	vocab, docs := groupedDocs(5000, 500, 8)
	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				model := cluster.NewKMeans(vocab, docs, cluster.Options{
					Clusters:       8,
					MaxIters:       50,
					InitMethod:     cluster.InitKMeansPP,
					Representation: cluster.Dense,
					Parallelism:    workers,
					Seed:           7,
				})
				if err := model.Initialize(context.Background()); err != nil {
					b.Fatal(err)
				}
				if _, err := model.Run(context.Background()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkKMeansRepresentation compares dense and sparse document vectors on
// a corpus where most term weights are zero.
func BenchmarkKMeansRepresentation(b *testing.B) {
	vocab, docs := groupedDocs(1000, 2000, 4)
	for _, repr := range []cluster.Representation{cluster.Dense, cluster.Sparse} {
		b.Run(string(repr), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				model := cluster.NewKMeans(vocab, docs, cluster.Options{
					Clusters:       4,
					MaxIters:       50,
					InitMethod:     cluster.InitKMeansPP,
					Representation: repr,
					Parallelism:    1,
					Seed:           7,
				})
				if err := model.Initialize(context.Background()); err != nil {
					b.Fatal(err)
				}
				if _, err := model.Run(context.Background()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
