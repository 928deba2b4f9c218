// Command kmeans runs the full document clustering pipeline: it reads a line
// corpus, builds the vocabulary index, computes BM25 term weights, clusters
// the documents with K-Means, reports top terms per cluster, and persists
// the model artifacts. Optional sinks push the results to PostgreSQL, Redis,
// and Kafka for the rest of the platform.
//
// Usage:
//
//	go run ./cmd/kmeans [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/searchlabs/docluster/internal/cluster"
	"github.com/searchlabs/docluster/internal/corpus"
	"github.com/searchlabs/docluster/internal/events"
	"github.com/searchlabs/docluster/internal/history"
	"github.com/searchlabs/docluster/internal/indexer/index"
	"github.com/searchlabs/docluster/internal/indexer/tokenizer"
	"github.com/searchlabs/docluster/internal/results"
	"github.com/searchlabs/docluster/internal/weighting"
	"github.com/searchlabs/docluster/pkg/config"
	apperrors "github.com/searchlabs/docluster/pkg/errors"
	"github.com/searchlabs/docluster/pkg/kafka"
	"github.com/searchlabs/docluster/pkg/logger"
	"github.com/searchlabs/docluster/pkg/metrics"
	"github.com/searchlabs/docluster/pkg/postgres"
	pkgredis "github.com/searchlabs/docluster/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperrors.ExitInvalidConfig)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(apperrors.ProcessExitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := fmt.Sprintf("%s-%d", cfg.KMeans.InitMethod, time.Now().UnixNano())
	ctx = logger.WithRunID(ctx, runID)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	if err := run(ctx, cfg, runID, m); err != nil {
		logger.FromContext(ctx).Error("clustering run failed", "error", err)
		if m != nil {
			m.RunsTotal.WithLabelValues("error").Inc()
		}
		os.Exit(apperrors.ProcessExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, runID string, m *metrics.Metrics) error {
	log := logger.FromContext(ctx)
	log.Info("starting clustering run",
		"corpus", cfg.Corpus.Path,
		"clusters", cfg.KMeans.Clusters,
		"init_method", cfg.KMeans.InitMethod,
	)

	var emitter *events.Emitter
	if cfg.Events.Enabled {
		emitter = events.NewEmitter(kafka.NewProducer(cfg.Events.Kafka))
		defer emitter.Close()
	}

	corp, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return err
	}
	log.Info("corpus loaded", "docs", corp.Size())

	tok := tokenizer.New(cfg.Indexer.MinTokenLength)
	idx := index.New()
	for _, doc := range corp.Documents() {
		idx.AddDocument(tok.Tokenize(doc.Text))
	}
	log.Info("index built", "docs", idx.NumDocs(), "terms", idx.NumTerms())

	weighted := weighting.Transform(idx)
	docs := make([][]cluster.TermWeight, len(weighted))
	for docID, weights := range weighted {
		docs[docID] = make([]cluster.TermWeight, len(weights))
		for i, tw := range weights {
			docs[docID][i] = cluster.TermWeight{TermID: tw.TermID, Weight: tw.Weight}
		}
	}

	model := cluster.NewKMeans(idx, docs, cluster.Options{
		Clusters:       cfg.KMeans.Clusters,
		MaxIters:       cfg.KMeans.MaxIters,
		InitMethod:     cfg.KMeans.InitMethod,
		OutputTerms:    cfg.KMeans.OutputTerms,
		Representation: cluster.Representation(cfg.KMeans.Representation),
		Parallelism:    cfg.KMeans.Parallelism,
		Seed:           cfg.KMeans.Seed,
		Metrics:        m,
	})
	if err := model.Initialize(ctx); err != nil {
		return err
	}

	emit(ctx, emitter, events.RunEvent{
		Type:       events.TypeRunStarted,
		RunID:      runID,
		Clusters:   cfg.KMeans.Clusters,
		InitMethod: cfg.KMeans.InitMethod,
		NumDocs:    idx.NumDocs(),
	})

	result, err := model.Run(ctx)
	if err != nil {
		emit(ctx, emitter, events.RunEvent{
			Type:       events.TypeRunFailed,
			RunID:      runID,
			Clusters:   cfg.KMeans.Clusters,
			InitMethod: cfg.KMeans.InitMethod,
			Error:      err.Error(),
		})
		return err
	}

	if cfg.KMeans.OutputTerms > 0 {
		model.PrintTopics(cfg.KMeans.OutputTerms)
	}

	if err := model.Save(cfg.KMeans.ModelPrefix); err != nil {
		return err
	}
	log.Info("model saved", "prefix", cfg.KMeans.ModelPrefix)

	if m != nil {
		m.RunsTotal.WithLabelValues(string(result.State)).Inc()
		m.RunDuration.Observe(result.Duration.Seconds())
	}

	if err := publishResults(ctx, cfg, runID, model); err != nil {
		return err
	}
	if err := saveHistory(ctx, cfg, runID, model, result); err != nil {
		return err
	}
	emit(ctx, emitter, events.RunEvent{
		Type:       events.TypeRunCompleted,
		RunID:      runID,
		Clusters:   cfg.KMeans.Clusters,
		InitMethod: cfg.KMeans.InitMethod,
		NumDocs:    idx.NumDocs(),
		Iterations: result.Iterations,
		Converged:  result.State == cluster.StateConverged,
	})

	log.Info("clustering run complete",
		"state", string(result.State),
		"iterations", result.Iterations,
	)
	return nil
}

// emit publishes a lifecycle event; failures are logged, not fatal, since
// the clustering output itself is unaffected.
func emit(ctx context.Context, emitter *events.Emitter, event events.RunEvent) {
	if emitter == nil {
		return
	}
	if err := emitter.Emit(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("run event publish failed",
			"type", event.Type,
			"error", err,
		)
	}
}

func publishResults(ctx context.Context, cfg *config.Config, runID string, model *cluster.KMeans) error {
	if !cfg.Results.Enabled {
		return nil
	}
	client, err := pkgredis.NewClient(cfg.Results.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	pub := results.New(client, cfg.Results.Redis)
	if err := pub.PublishAssignments(ctx, runID, model.Assignments()); err != nil {
		return err
	}
	if cfg.KMeans.OutputTerms > 0 {
		topTerms := make(map[int][]cluster.TermScore, model.NumClusters())
		for clusterID := 0; clusterID < model.NumClusters(); clusterID++ {
			topTerms[clusterID] = model.TopTerms(clusterID, cfg.KMeans.OutputTerms)
		}
		if err := pub.PublishTopTerms(ctx, runID, topTerms); err != nil {
			return err
		}
	}
	return nil
}

func saveHistory(ctx context.Context, cfg *config.Config, runID string, model *cluster.KMeans, result *cluster.RunResult) error {
	if !cfg.History.Enabled {
		return nil
	}
	db, err := postgres.Connect(ctx, cfg.History.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	store := history.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return store.SaveRun(ctx, history.RunSummary{
		RunID:        runID,
		Clusters:     model.NumClusters(),
		InitMethod:   cfg.KMeans.InitMethod,
		Iterations:   result.Iterations,
		Converged:    result.State == cluster.StateConverged,
		NumDocs:      model.NumDocs(),
		NumTerms:     model.NumTerms(),
		ClusterSizes: model.ClusterSizes(),
		ModelPrefix:  cfg.KMeans.ModelPrefix,
		Duration:     result.Duration.Seconds(),
		FinishedAt:   time.Now().UTC(),
	})
}
