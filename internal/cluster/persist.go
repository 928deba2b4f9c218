package cluster

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

// Artifact suffixes produced by Save.
const (
	DocsSuffix      = ".docs"
	CentroidsSuffix = ".centroids"
	ClustersSuffix  = ".clusters"
)

// Save serializes the model to three files sharing the given prefix:
// <prefix>.docs (one line of term weights per document), <prefix>.centroids
// (one line per cluster), and <prefix>.clusters (doc_id cluster_id pairs).
// The engine never re-reads its own output; the loaders exist for external
// consumers and verification.
func (m *KMeans) Save(prefix string) error {
	if err := m.saveDocuments(prefix + DocsSuffix); err != nil {
		return err
	}
	if err := saveMatrix(prefix+CentroidsSuffix, m.centroids); err != nil {
		return err
	}
	return saveAssignments(prefix+ClustersSuffix, m.assignments)
}

func (m *KMeans) saveDocuments(path string) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		row := make([]float64, m.vocab.NumTerms())
		for _, vec := range m.vectors {
			for tid := range row {
				row[tid] = 0
			}
			vec.ForEach(func(termID int, weight float64) {
				row[termID] = weight
			})
			if err := writeRow(w, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveMatrix(path string, rows [][]float64) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		for _, row := range rows {
			if err := writeRow(w, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveAssignments(path string, assignments []int) error {
	return writeAtomic(path, func(w *bufio.Writer) error {
		for docID, clusterID := range assignments {
			if _, err := fmt.Fprintf(w, "%d %d\n", docID, clusterID); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRow(w *bufio.Writer, row []float64) error {
	for tid, weight := range row {
		if tid > 0 {
			if err := w.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(strconv.FormatFloat(weight, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// writeAtomic writes through a temp file and renames on success so a failed
// run never leaves a truncated artifact behind.
func writeAtomic(path string, fill func(w *bufio.Writer) error) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmpPath, err)
	}

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s: %w", tmpPath, err)
	}
	return nil
}

// LoadMatrix parses a .docs or .centroids artifact back into a weight
// matrix. All rows must have the same width.
func LoadMatrix(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var matrix [][]float64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		row := make([]float64, len(fields))
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
					"bad weight %q at row %d of %s", field, len(matrix), path)
			}
			row[i] = v
		}
		if len(matrix) > 0 && len(row) != len(matrix[0]) {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
				"row %d of %s has %d weights, expected %d", len(matrix), path, len(row), len(matrix[0]))
		}
		matrix = append(matrix, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return matrix, nil
}

// LoadAssignments parses a .clusters artifact back into the assignment
// table. Document ids must be the contiguous sequence 0..n-1.
func LoadAssignments(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var assignments []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var docID, clusterID int
		if _, err := fmt.Sscanf(scanner.Text(), "%d %d", &docID, &clusterID); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
				"bad assignment line %q in %s", scanner.Text(), path)
		}
		if docID != len(assignments) {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitInvalidInput,
				"unexpected doc id %d at line %d of %s", docID, len(assignments)+1, path)
		}
		assignments = append(assignments, clusterID)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return assignments, nil
}
