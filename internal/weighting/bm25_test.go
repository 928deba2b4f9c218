package weighting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlabs/docluster/internal/indexer/index"
)

func buildIndex(t *testing.T, docs ...[]string) *index.Index {
	t.Helper()
	idx := index.New()
	for _, doc := range docs {
		idx.AddDocument(doc)
	}
	return idx
}

func TestTransformShape(t *testing.T) {
	idx := buildIndex(t,
		[]string{"apple", "apple", "banana"},
		[]string{"banana", "cherry"},
		[]string{"apple", "cherry"},
	)

	weighted := Transform(idx)
	require.Len(t, weighted, 3)
	require.Len(t, weighted[0], 2)
	require.Len(t, weighted[1], 2)
	require.Len(t, weighted[2], 2)

	for docID, weights := range weighted {
		for i, tw := range weights {
			assert.Greater(t, tw.Weight, 0.0, "doc %d entry %d", docID, i)
			if i > 0 {
				assert.Greater(t, tw.TermID, weights[i-1].TermID,
					"weights must be in term-id order")
			}
		}
	}
}

func TestRareTermOutweighsCommonTerm(t *testing.T) {
	idx := buildIndex(t,
		[]string{"apple", "apple", "banana"},
		[]string{"banana", "cherry"},
		[]string{"apple"},
	)
	weighted := Transform(idx)

	// In doc 1 both terms occur once in the same document, so the weight
	// difference comes from IDF alone: cherry appears in one document,
	// banana in two.
	banana := idx.TermID("banana")
	cherry := idx.TermID("cherry")
	var bananaW, cherryW float64
	for _, tw := range weighted[1] {
		switch tw.TermID {
		case banana:
			bananaW = tw.Weight
		case cherry:
			cherryW = tw.Weight
		}
	}
	assert.Greater(t, cherryW, bananaW)
}

func TestRepeatedTermGainsWeightSublinearly(t *testing.T) {
	idx := buildIndex(t,
		[]string{"apple", "apple", "apple", "banana"},
		[]string{"apple", "banana", "cherry", "durian"},
		[]string{"cherry"},
	)
	weighted := Transform(idx)

	apple := idx.TermID("apple")
	var tripleW, singleW float64
	for _, tw := range weighted[0] {
		if tw.TermID == apple {
			tripleW = tw.Weight
		}
	}
	for _, tw := range weighted[1] {
		if tw.TermID == apple {
			singleW = tw.Weight
		}
	}
	assert.Greater(t, tripleW, singleW)
	// BM25 term-frequency saturation keeps tf=3 well under 3x tf=1.
	assert.Less(t, tripleW, 3*singleW)
}

func TestTransformEmptyIndex(t *testing.T) {
	weighted := Transform(index.New())
	assert.Empty(t, weighted)
}
