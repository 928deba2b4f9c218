// Package results publishes clustering output to Redis so serving systems
// can resolve a document's cluster, or a cluster's top terms, without
// re-reading the persisted artifact files.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/searchlabs/docluster/internal/cluster"
	"github.com/searchlabs/docluster/pkg/config"
	pkgredis "github.com/searchlabs/docluster/pkg/redis"
)

const keyPrefix = "docluster:"

// Publisher writes run results into Redis hashes keyed by run id.
type Publisher struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	logger *slog.Logger
}

// New creates a Publisher.
func New(client *pkgredis.Client, cfg config.RedisConfig) *Publisher {
	return &Publisher{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "results-publisher"),
	}
}

// PublishAssignments stores the doc->cluster table in one hash per run and
// points the corpus's "latest" key at it.
func (p *Publisher) PublishAssignments(ctx context.Context, runID string, assignments []int) error {
	key := AssignmentsKey(runID)
	fields := make(map[string]interface{}, len(assignments))
	for docID, clusterID := range assignments {
		fields[strconv.Itoa(docID)] = clusterID
	}
	if err := p.client.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("publishing assignments: %w", err)
	}
	if err := p.client.Expire(ctx, key, p.cfg.TTL); err != nil {
		return fmt.Errorf("setting assignments ttl: %w", err)
	}
	if err := p.client.Set(ctx, keyPrefix+"latest", runID, p.cfg.TTL); err != nil {
		return fmt.Errorf("updating latest run pointer: %w", err)
	}
	p.logger.Info("assignments published", "run_id", runID, "docs", len(assignments))
	return nil
}

// PublishTopTerms stores each cluster's ranked terms as a JSON hash field.
func (p *Publisher) PublishTopTerms(ctx context.Context, runID string, topTerms map[int][]cluster.TermScore) error {
	key := TopTermsKey(runID)
	fields := make(map[string]interface{}, len(topTerms))
	for clusterID, terms := range topTerms {
		data, err := json.Marshal(terms)
		if err != nil {
			return fmt.Errorf("marshaling top terms for cluster %d: %w", clusterID, err)
		}
		fields[strconv.Itoa(clusterID)] = data
	}
	if err := p.client.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("publishing top terms: %w", err)
	}
	if err := p.client.Expire(ctx, key, p.cfg.TTL); err != nil {
		return fmt.Errorf("setting top terms ttl: %w", err)
	}
	p.logger.Info("top terms published", "run_id", runID, "clusters", len(topTerms))
	return nil
}

// ClusterOf looks up one document's cluster from a published run.
func (p *Publisher) ClusterOf(ctx context.Context, runID string, docID int) (int, bool, error) {
	val, err := p.client.HGet(ctx, AssignmentsKey(runID), strconv.Itoa(docID))
	if err != nil {
		if pkgredis.IsNilError(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("looking up document %d: %w", docID, err)
	}
	clusterID, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("parsing cluster id %q: %w", val, err)
	}
	return clusterID, true, nil
}

// AssignmentsKey returns the Redis key of a run's assignment hash.
func AssignmentsKey(runID string) string {
	return keyPrefix + "run:" + runID + ":assignments"
}

// TopTermsKey returns the Redis key of a run's top-terms hash.
func TopTermsKey(runID string) string {
	return keyPrefix + "run:" + runID + ":topterms"
}
