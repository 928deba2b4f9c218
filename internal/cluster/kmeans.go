package cluster

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
	"github.com/searchlabs/docluster/pkg/logger"
	"github.com/searchlabs/docluster/pkg/metrics"
)

// Model is a clustering model over weighted document vectors. Euclidean
// K-Means is the one concrete implementation; alternate distance metrics can
// provide their own.
type Model interface {
	Initialize(ctx context.Context) error
	Run(ctx context.Context) (*RunResult, error)
	Save(prefix string) error
}

// TerminalState describes how a run ended.
type TerminalState string

const (
	StateConverged      TerminalState = "converged"
	StateIterationLimit TerminalState = "iteration_limit"
)

// RunResult summarises a completed run.
type RunResult struct {
	State       TerminalState
	Iterations  int
	LastChanged int
	Duration    time.Duration
}

// Options holds the run parameters supplied by the configuration layer.
type Options struct {
	Clusters       int
	MaxIters       int
	InitMethod     string
	OutputTerms    int
	Representation Representation
	// Parallelism splits the assignment step across this many goroutines.
	// 1 runs fully synchronously.
	Parallelism int
	// Seed drives centroid initialization; zero seeds from the wall clock.
	Seed int64
	// Rand overrides Seed when set. Used by tests for reproducible seeding.
	Rand *rand.Rand
	// Metrics is optional; nil disables instrumentation.
	Metrics *metrics.Metrics
}

// KMeans clusters documents into a fixed number of groups by iteratively
// assigning each document to its nearest centroid (squared Euclidean
// distance) and recomputing centroids as member means.
type KMeans struct {
	vocab   Vocab
	weights [][]TermWeight
	opts    Options
	logger  *slog.Logger

	vectors     []Vector
	centroids   [][]float64
	assignments []int
	initialized bool
}

var _ Model = (*KMeans)(nil)

// NewKMeans creates a model over the given vocabulary and per-document term
// weights. weights[docID] lists the document's nonzero term weights.
func NewKMeans(vocab Vocab, weights [][]TermWeight, opts Options) *KMeans {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &KMeans{
		vocab:   vocab,
		weights: weights,
		opts:    opts,
		logger:  logger.WithComponent("kmeans"),
	}
}

// NumClusters returns k.
func (m *KMeans) NumClusters() int { return m.opts.Clusters }

// NumTerms returns the vocabulary size.
func (m *KMeans) NumTerms() int { return m.vocab.NumTerms() }

// NumDocs returns the corpus size.
func (m *KMeans) NumDocs() int { return m.vocab.NumDocs() }

// Assignments returns the document to cluster assignment table. Valid after
// Run; the returned slice is owned by the model.
func (m *KMeans) Assignments() []int { return m.assignments }

// Initialize validates the run parameters, builds the document vectors, and
// seeds the centroids. It runs exactly once per model.
func (m *KMeans) Initialize(ctx context.Context) error {
	numDocs := m.vocab.NumDocs()
	if m.opts.Clusters < 1 || m.opts.Clusters > numDocs {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, apperrors.ExitInvalidConfig,
			"clusters must be in [1, %d], got %d", numDocs, m.opts.Clusters)
	}
	if m.opts.MaxIters < 1 {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration, apperrors.ExitInvalidConfig,
			"maxIters must be positive, got %d", m.opts.MaxIters)
	}

	init, err := NewInitializer(m.opts.InitMethod)
	if err != nil {
		return err
	}

	vectors, err := BuildVectors(m.vocab.NumTerms(), m.weights, m.opts.Representation)
	if err != nil {
		return err
	}
	m.vectors = vectors
	if m.opts.Metrics != nil {
		m.opts.Metrics.DocsVectorizedTotal.Add(float64(len(vectors)))
	}
	m.logger.Info("document vectors built",
		"docs", numDocs,
		"terms", m.vocab.NumTerms(),
		"representation", string(m.opts.Representation),
	)

	rng := m.opts.Rand
	if rng == nil {
		seed := m.opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	centroids, err := init.Seed(m.vectors, m.opts.Clusters, rng)
	if err != nil {
		return err
	}
	m.centroids = centroids
	m.assignments = make([]int, numDocs)
	m.initialized = true
	m.logger.Info("centroids initialized",
		"clusters", len(centroids),
		"method", m.opts.InitMethod,
	)
	return nil
}

// Run alternates assignment and update steps until an assignment pass changes
// no documents or the iteration budget is exhausted. The model must be
// initialized first.
func (m *KMeans) Run(ctx context.Context) (*RunResult, error) {
	if !m.initialized {
		return nil, apperrors.New(apperrors.ErrInternal, apperrors.ExitInternal,
			"model used before initialization")
	}

	start := time.Now()
	result := &RunResult{State: StateIterationLimit}
	for iter := 1; iter <= m.opts.MaxIters; iter++ {
		changed, err := m.assignStep(ctx)
		if err != nil {
			return nil, err
		}
		if err := m.updateStep(iter); err != nil {
			return nil, err
		}

		result.Iterations = iter
		result.LastChanged = changed
		m.logger.Info("iteration complete", "iteration", iter, "changed", changed)
		if m.opts.Metrics != nil {
			m.opts.Metrics.IterationsTotal.Inc()
			m.opts.Metrics.AssignmentChanges.Observe(float64(changed))
		}

		if changed == 0 {
			result.State = StateConverged
			break
		}
	}

	result.Duration = time.Since(start)
	m.logger.Info("run finished",
		"state", string(result.State),
		"iterations", result.Iterations,
		"duration", result.Duration,
	)
	return result, nil
}

// assignStep assigns every document to its nearest centroid over all k
// clusters and returns the number of documents whose assignment changed.
func (m *KMeans) assignStep(ctx context.Context) (int, error) {
	if m.opts.Parallelism == 1 {
		return m.assignRange(0, len(m.vectors)), nil
	}

	// Centroids are read-only during the pass and each document's slot in
	// the assignment table is written by exactly one goroutine.
	g, _ := errgroup.WithContext(ctx)
	workers := m.opts.Parallelism
	if workers > len(m.vectors) {
		workers = len(m.vectors)
	}
	counts := make([]int, workers)
	chunk := (len(m.vectors) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo := w * chunk
		hi := min(lo+chunk, len(m.vectors))
		g.Go(func() error {
			counts[w] = m.assignRange(lo, hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	var changed int
	for _, c := range counts {
		changed += c
	}
	return changed, nil
}

func (m *KMeans) assignRange(lo, hi int) int {
	changed := 0
	for docID := lo; docID < hi; docID++ {
		nearest, _ := m.nearestCentroid(m.vectors[docID], len(m.centroids))
		if nearest != m.assignments[docID] {
			m.assignments[docID] = nearest
			changed++
		}
	}
	return changed
}

// nearestCentroid searches the first limit centroids and returns the index
// and squared distance of the closest, lowest index winning ties. The limit
// arity exists for kmeans++ seeding, which measures distance only against
// the centroids chosen so far; steady-state assignment passes k.
func (m *KMeans) nearestCentroid(vec Vector, limit int) (int, float64) {
	return nearestOf(vec, m.centroids[:limit])
}

// updateStep overwrites every centroid with the element-wise mean of its
// member vectors. A memberless cluster is terminal: continuing would carry a
// stale centroid and mask a degenerate seeding or parameter choice.
func (m *KMeans) updateStep(iter int) error {
	members := make([][]int, m.opts.Clusters)
	for docID, clusterID := range m.assignments {
		members[clusterID] = append(members[clusterID], docID)
	}

	for clusterID, docIDs := range members {
		if len(docIDs) == 0 {
			return apperrors.Newf(apperrors.ErrEmptyCluster, apperrors.ExitEmptyCluster,
				"cluster %d has no members at iteration %d", clusterID, iter)
		}
		m.centroids[clusterID] = meanVector(m.vectors, docIDs, m.vocab.NumTerms())
		m.logger.Debug("cluster updated", "cluster", clusterID, "docs", len(docIDs))
		if m.opts.Metrics != nil {
			m.opts.Metrics.ClusterSize.
				WithLabelValues(strconv.Itoa(clusterID)).
				Set(float64(len(docIDs)))
		}
	}
	return nil
}

// ClusterSizes returns the member count per cluster id.
func (m *KMeans) ClusterSizes() []int {
	sizes := make([]int, m.opts.Clusters)
	for _, clusterID := range m.assignments {
		sizes[clusterID]++
	}
	return sizes
}
