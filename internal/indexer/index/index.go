// Package index builds an in-memory vocabulary and term-statistics index over
// a tokenized corpus. Term and document identifiers are dense and zero-based:
// term ids are assigned in first-seen order, document ids in insertion order.
package index

import "sort"

// TermCount is one (term id, occurrence count) pair within a document.
type TermCount struct {
	TermID int
	Count  int
}

// Index holds the vocabulary and per-document term statistics the weighting
// and clustering stages consume.
type Index struct {
	terms   []string
	termIDs map[string]int

	docTerms  [][]TermCount
	docFreq   []int
	docLength []int
	totalLen  int
}

func New() *Index {
	return &Index{
		termIDs: make(map[string]int),
	}
}

// AddDocument registers a tokenized document and returns its document id.
// Unseen terms extend the vocabulary.
func (idx *Index) AddDocument(terms []string) int {
	counts := make(map[int]int, len(terms))
	for _, term := range terms {
		tid, ok := idx.termIDs[term]
		if !ok {
			tid = len(idx.terms)
			idx.termIDs[term] = tid
			idx.terms = append(idx.terms, term)
			idx.docFreq = append(idx.docFreq, 0)
		}
		counts[tid]++
	}

	entry := make([]TermCount, 0, len(counts))
	for tid, count := range counts {
		entry = append(entry, TermCount{TermID: tid, Count: count})
		idx.docFreq[tid]++
	}
	sort.Slice(entry, func(i, j int) bool {
		return entry[i].TermID < entry[j].TermID
	})

	docID := len(idx.docTerms)
	idx.docTerms = append(idx.docTerms, entry)
	idx.docLength = append(idx.docLength, len(terms))
	idx.totalLen += len(terms)
	return docID
}

// NumTerms returns the vocabulary size.
func (idx *Index) NumTerms() int {
	return len(idx.terms)
}

// NumDocs returns the number of indexed documents.
func (idx *Index) NumDocs() int {
	return len(idx.docTerms)
}

// TermText resolves a term id to its display string.
func (idx *Index) TermText(termID int) string {
	return idx.terms[termID]
}

// TermID returns the id for a term text, or -1 if the term is unknown.
func (idx *Index) TermID(term string) int {
	if tid, ok := idx.termIDs[term]; ok {
		return tid
	}
	return -1
}

// TermCounts returns the per-term occurrence counts of a document, ordered by
// term id. The returned slice is owned by the index and must not be mutated.
func (idx *Index) TermCounts(docID int) []TermCount {
	return idx.docTerms[docID]
}

// DocFreq returns the number of documents containing the term.
func (idx *Index) DocFreq(termID int) int {
	return idx.docFreq[termID]
}

// DocLength returns the token count of a document.
func (idx *Index) DocLength(docID int) int {
	return idx.docLength[docID]
}

// AvgDocLength returns the mean token count across all documents.
func (idx *Index) AvgDocLength() float64 {
	if len(idx.docLength) == 0 {
		return 0
	}
	return float64(idx.totalLen) / float64(len(idx.docLength))
}
