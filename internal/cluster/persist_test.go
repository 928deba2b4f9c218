package cluster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

func runAxisModel(t *testing.T, repr Representation) *KMeans {
	t.Helper()
	vocab, docs := axisDocs()
	opts := defaultOptions()
	opts.Representation = repr
	model := NewKMeans(vocab, docs, opts)
	require.NoError(t, model.Initialize(context.Background()))
	_, err := model.Run(context.Background())
	require.NoError(t, err)
	return model
}

func TestSaveRoundTrip(t *testing.T) {
	for _, repr := range []Representation{Dense, Sparse} {
		t.Run(string(repr), func(t *testing.T) {
			model := runAxisModel(t, repr)
			prefix := filepath.Join(t.TempDir(), "model")
			require.NoError(t, model.Save(prefix))

			docs, err := LoadMatrix(prefix + DocsSuffix)
			require.NoError(t, err)
			require.Len(t, docs, 4)
			for docID, row := range docs {
				require.Len(t, row, 2)
				for tid := range row {
					assert.Equal(t, model.vectors[docID].At(tid), row[tid])
				}
			}

			centroids, err := LoadMatrix(prefix + CentroidsSuffix)
			require.NoError(t, err)
			assert.Equal(t, model.centroids, centroids)

			assignments, err := LoadAssignments(prefix + ClustersSuffix)
			require.NoError(t, err)
			assert.Equal(t, model.Assignments(), assignments)
		})
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	model := runAxisModel(t, Dense)
	dir := t.TempDir()
	require.NoError(t, model.Save(filepath.Join(dir, "model")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasSuffix(entry.Name(), ".tmp"), entry.Name())
	}
	assert.Len(t, entries, 3)
}

func TestLoadMatrixRejectsBadWeight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.centroids")
	require.NoError(t, os.WriteFile(path, []byte("0.5 oops\n"), 0o644))

	_, err := LoadMatrix(path)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestLoadMatrixRejectsRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.docs")
	require.NoError(t, os.WriteFile(path, []byte("1 2 3\n1 2\n"), 0o644))

	_, err := LoadMatrix(path)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestLoadAssignmentsRejectsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gap.clusters")
	require.NoError(t, os.WriteFile(path, []byte("0 1\n2 0\n"), 0o644))

	_, err := LoadAssignments(path)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestLoadAssignments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ok.clusters")
	require.NoError(t, os.WriteFile(path, []byte("0 1\n1 0\n2 1\n"), 0o644))

	assignments, err := LoadAssignments(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1}, assignments)
}
