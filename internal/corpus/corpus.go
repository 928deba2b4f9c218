// Package corpus reads line corpora from disk: one document per line in the
// main file, with optional .labels and .names sidecar files carrying one
// entry per document.
package corpus

import (
	"bufio"
	"fmt"
	"os"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

// Document is one corpus entry. Label and Name are empty when the sidecar
// files are absent.
type Document struct {
	ID    int
	Text  string
	Label string
	Name  string
}

// Corpus is an in-memory line corpus.
type Corpus struct {
	docs []Document
}

// Load reads the corpus at path along with any .labels and .names sidecars.
func Load(path string) (*Corpus, error) {
	texts, err := readLines(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.ErrCorpusNotFound,
				apperrors.ExitCorpus, "no corpus at %s", path)
		}
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}

	labels, err := readSidecar(path+".labels", len(texts))
	if err != nil {
		return nil, err
	}
	names, err := readSidecar(path+".names", len(texts))
	if err != nil {
		return nil, err
	}

	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Document{ID: i, Text: text}
		if labels != nil {
			docs[i].Label = labels[i]
		}
		if names != nil {
			docs[i].Name = names[i]
		}
	}
	return &Corpus{docs: docs}, nil
}

// Size returns the number of documents.
func (c *Corpus) Size() int {
	return len(c.docs)
}

// Documents returns all documents in id order.
func (c *Corpus) Documents() []Document {
	return c.docs
}

// Document returns the document with the given id.
func (c *Corpus) Document(id int) Document {
	return c.docs[id]
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// readSidecar reads an optional per-document file. A missing file is not an
// error; a line-count mismatch with the corpus is.
func readSidecar(path string, wantLines int) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sidecar %s: %w", path, err)
	}
	if len(lines) != wantLines {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
			"sidecar %s has %d lines, corpus has %d documents", path, len(lines), wantLines)
	}
	return lines, nil
}
