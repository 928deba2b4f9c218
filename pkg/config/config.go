// Package config loads and validates pipeline configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Corpus, Indexer, KMeans, History, Results, Events, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/searchlabs/docluster/pkg/errors"
)

// Config is the top-level pipeline configuration.
type Config struct {
	Corpus  CorpusConfig  `yaml:"corpus"`
	Indexer IndexerConfig `yaml:"indexer"`
	KMeans  KMeansConfig  `yaml:"kmeans"`
	History HistoryConfig `yaml:"history"`
	Results ResultsConfig `yaml:"results"`
	Events  EventsConfig  `yaml:"events"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CorpusConfig locates the line corpus on disk.
type CorpusConfig struct {
	Path      string `yaml:"path"`
	ReadNames bool   `yaml:"readNames"`
}

// IndexerConfig controls text normalization during vocabulary construction.
type IndexerConfig struct {
	MinTokenLength int `yaml:"minTokenLength"`
}

// KMeansConfig holds the clustering run parameters. The zero seed means the
// run is seeded from the wall clock.
type KMeansConfig struct {
	MaxIters       int    `yaml:"maxIters"`
	Clusters       int    `yaml:"clusters"`
	InitMethod     string `yaml:"initMethod"`
	OutputTerms    int    `yaml:"outputTerms"`
	ModelPrefix    string `yaml:"modelPrefix"`
	Seed           int64  `yaml:"seed"`
	Representation string `yaml:"representation"`
	Parallelism    int    `yaml:"parallelism"`
}

// HistoryConfig enables persisting run summaries to PostgreSQL.
type HistoryConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ResultsConfig enables publishing assignments and top terms to Redis.
type ResultsConfig struct {
	Enabled bool        `yaml:"enabled"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	TTL      time.Duration `yaml:"ttl"`
}

// EventsConfig enables publishing run lifecycle events to Kafka.
type EventsConfig struct {
	Enabled bool        `yaml:"enabled"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Validate rejects parameter combinations the pipeline cannot run with.
// The k <= num_docs bound depends on the corpus and is checked at model
// initialization instead.
func (c *Config) Validate() error {
	k := c.KMeans
	if k.MaxIters < 1 {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "maxIters must be positive, got %d", k.MaxIters)
	}
	if k.Clusters < 1 {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "clusters must be positive, got %d", k.Clusters)
	}
	if k.InitMethod != "randk" && k.InitMethod != "kmeans++" {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "unknown init method %q", k.InitMethod)
	}
	if k.OutputTerms < 0 {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "outputTerms must be non-negative, got %d", k.OutputTerms)
	}
	if k.ModelPrefix == "" {
		return apperrors.New(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "modelPrefix must be set")
	}
	if k.Representation != "dense" && k.Representation != "sparse" {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "unknown representation %q", k.Representation)
	}
	if k.Parallelism < 1 {
		return apperrors.Newf(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "parallelism must be positive, got %d", k.Parallelism)
	}
	if c.Corpus.Path == "" {
		return apperrors.New(apperrors.ErrInvalidConfiguration,
			apperrors.ExitInvalidConfig, "corpus.path must be set")
	}
	return nil
}

// defaultConfig returns a Config with working defaults for local runs.
func defaultConfig() *Config {
	return &Config{
		Indexer: IndexerConfig{
			MinTokenLength: 2,
		},
		KMeans: KMeansConfig{
			MaxIters:       1000,
			Clusters:       2,
			InitMethod:     "kmeans++",
			OutputTerms:    8,
			ModelPrefix:    "kmeans-model",
			Seed:           0,
			Representation: "dense",
			Parallelism:    1,
		},
		History: HistoryConfig{
			Enabled: false,
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				Database:        "docluster",
				User:            "docluster",
				Password:        "localdev",
				SSLMode:         "disable",
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Results: ResultsConfig{
			Enabled: false,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				Password: "",
				DB:       0,
				PoolSize: 10,
				TTL:      24 * time.Hour,
			},
		},
		Events: EventsConfig{
			Enabled: false,
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "clustering-runs",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads DC_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DC_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("DC_KMEANS_MAX_ITERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.KMeans.MaxIters = n
		}
	}
	if v := os.Getenv("DC_KMEANS_CLUSTERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.KMeans.Clusters = n
		}
	}
	if v := os.Getenv("DC_KMEANS_INIT_METHOD"); v != "" {
		cfg.KMeans.InitMethod = v
	}
	if v := os.Getenv("DC_KMEANS_OUTPUT_TERMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.KMeans.OutputTerms = n
		}
	}
	if v := os.Getenv("DC_KMEANS_MODEL_PREFIX"); v != "" {
		cfg.KMeans.ModelPrefix = v
	}
	if v := os.Getenv("DC_KMEANS_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.KMeans.Seed = n
		}
	}
	if v := os.Getenv("DC_POSTGRES_HOST"); v != "" {
		cfg.History.Postgres.Host = v
	}
	if v := os.Getenv("DC_POSTGRES_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.Postgres.Port = n
		}
	}
	if v := os.Getenv("DC_POSTGRES_PASSWORD"); v != "" {
		cfg.History.Postgres.Password = v
	}
	if v := os.Getenv("DC_REDIS_ADDR"); v != "" {
		cfg.Results.Redis.Addr = v
	}
	if v := os.Getenv("DC_KAFKA_BROKERS"); v != "" {
		cfg.Events.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("DC_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("DC_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
