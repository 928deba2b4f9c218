package cluster

import (
	"container/heap"
	"sort"
)

// TermScore pairs a term with its weight in a cluster's centroid.
type TermScore struct {
	TermID int     `json:"term_id"`
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// termHeap is a min-heap of TermScore by weight, ties broken toward higher
// term ids so the bounded selection keeps the lowest-id term on equal weight.
type termHeap []TermScore

func (h termHeap) Len() int { return len(h) }

func (h termHeap) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight < h[j].Weight
	}
	return h[i].TermID > h[j].TermID
}

func (h termHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *termHeap) Push(x any) { *h = append(*h, x.(TermScore)) }

func (h *termHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopTerms ranks a cluster's terms by centroid weight, descending, and
// returns the top n. It keeps a bounded min-heap of size n while scanning the
// vocabulary, so memory is O(n) rather than O(num_terms).
func (m *KMeans) TopTerms(clusterID, n int) []TermScore {
	if n <= 0 {
		return nil
	}
	centroid := m.centroids[clusterID]
	if n > len(centroid) {
		n = len(centroid)
	}

	h := make(termHeap, 0, n+1)
	for termID, weight := range centroid {
		heap.Push(&h, TermScore{TermID: termID, Weight: weight})
		if len(h) > n {
			heap.Pop(&h)
		}
	}

	out := make([]TermScore, len(h))
	copy(out, h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].TermID < out[j].TermID
	})
	for i := range out {
		out[i].Term = m.vocab.TermText(out[i].TermID)
	}
	return out
}

// PrintTopics logs the top numTerms terms of every cluster.
func (m *KMeans) PrintTopics(numTerms int) {
	for clusterID := 0; clusterID < m.opts.Clusters; clusterID++ {
		for rank, ts := range m.TopTerms(clusterID, numTerms) {
			m.logger.Info("topic term",
				"cluster", clusterID,
				"rank", rank+1,
				"term", ts.Term,
				"weight", ts.Weight,
			)
		}
	}
}
