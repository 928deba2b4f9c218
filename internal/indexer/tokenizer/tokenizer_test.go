package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeNormalizes(t *testing.T) {
	tok := New(2)

	terms := tok.Tokenize("The Documents, and searching INDEXES!")
	assert.Equal(t, []string{"document", "search", "index"}, terms)
}

func TestTokenizeDropsStopWordsAndShortTokens(t *testing.T) {
	tok := New(2)

	terms := tok.Tokenize("a cat is on the mat")
	assert.NotContains(t, terms, "a")
	assert.NotContains(t, terms, "is")
	assert.NotContains(t, terms, "on")
	assert.NotContains(t, terms, "the")
	assert.Contains(t, terms, "cat")
	assert.Contains(t, terms, "mat")
}

func TestTokenizeMinLength(t *testing.T) {
	tok := New(5)

	terms := tok.Tokenize("cat clustering dog")
	assert.Equal(t, []string{"cluster"}, terms)
}

func TestTokenizeKeepsDigits(t *testing.T) {
	tok := New(2)

	terms := tok.Tokenize("report 2024 covers q3")
	assert.Contains(t, terms, "2024")
	assert.Contains(t, terms, "q3")
}

func TestTokenizeEmpty(t *testing.T) {
	tok := New(2)

	assert.Empty(t, tok.Tokenize(""))
	assert.Empty(t, tok.Tokenize("   ,,, !!!"))
}

func TestStemSuffixes(t *testing.T) {
	cases := map[string]string{
		"documents":  "document",
		"searching":  "search",
		"indexes":    "index",
		"organized":  "organiz",
		"clusters":   "cluster",
		"relational": "relate",
	}
	for word, want := range cases {
		assert.Equal(t, want, stem(word), "stem(%q)", word)
	}
}
