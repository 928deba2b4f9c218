// Command modelinfo inspects persisted clustering model artifacts. It loads
// the <prefix>.docs, <prefix>.centroids, and <prefix>.clusters files, checks
// that their dimensions agree, and prints a per-cluster summary.
//
// Usage:
//
//	go run ./cmd/modelinfo -prefix kmeans-model [-terms 8]
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/searchlabs/docluster/internal/cluster"
	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

func main() {
	prefix := flag.String("prefix", "", "model artifact prefix")
	terms := flag.Int("terms", 0, "print this many top term weights per cluster")
	flag.Parse()

	if *prefix == "" {
		fmt.Fprintln(os.Stderr, "missing -prefix")
		flag.Usage()
		os.Exit(apperrors.ExitInvalidConfig)
	}

	if err := run(*prefix, *terms); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(apperrors.ProcessExitCode(err))
	}
}

func run(prefix string, terms int) error {
	docs, err := cluster.LoadMatrix(prefix + cluster.DocsSuffix)
	if err != nil {
		return err
	}
	centroids, err := cluster.LoadMatrix(prefix + cluster.CentroidsSuffix)
	if err != nil {
		return err
	}
	assignments, err := cluster.LoadAssignments(prefix + cluster.ClustersSuffix)
	if err != nil {
		return err
	}

	if len(assignments) != len(docs) {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
			"%d assignments for %d documents", len(assignments), len(docs))
	}
	if len(docs) > 0 && len(centroids) > 0 && len(docs[0]) != len(centroids[0]) {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
			"documents have %d terms, centroids have %d", len(docs[0]), len(centroids[0]))
	}

	sizes := make([]int, len(centroids))
	for docID, clusterID := range assignments {
		if clusterID < 0 || clusterID >= len(centroids) {
			return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
				"document %d assigned to unknown cluster %d", docID, clusterID)
		}
		sizes[clusterID]++
	}

	numTerms := 0
	if len(centroids) > 0 {
		numTerms = len(centroids[0])
	}
	fmt.Printf("model %s: %d documents, %d terms, %d clusters\n",
		prefix, len(docs), numTerms, len(centroids))
	for clusterID, size := range sizes {
		fmt.Printf("cluster %d: %d documents\n", clusterID, size)
		if terms > 0 {
			printTopWeights(centroids[clusterID], terms)
		}
	}
	return nil
}

// printTopWeights prints the highest centroid weights with their term ids.
// Term text lives in the index, not the artifacts, so only ids are shown.
func printTopWeights(centroid []float64, n int) {
	type entry struct {
		termID int
		weight float64
	}
	entries := make([]entry, len(centroid))
	for tid, w := range centroid {
		entries[tid] = entry{termID: tid, weight: w}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].weight != entries[j].weight {
			return entries[i].weight > entries[j].weight
		}
		return entries[i].termID < entries[j].termID
	})
	if n > len(entries) {
		n = len(entries)
	}
	for _, e := range entries[:n] {
		fmt.Printf("  term %d: %g\n", e.termID, e.weight)
	}
}
