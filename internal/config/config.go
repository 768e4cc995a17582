// Package config loads tool configuration from an optional YAML file with
// BVS_* environment variable overrides, then validates the result.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the complete tool configuration.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Router    RouterConfig    `yaml:"router"`
	Eval      EvalConfig      `yaml:"eval"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DataConfig locates the corpus, labels, and telemetry database.
type DataConfig struct {
	CorpusPath string `yaml:"corpus_path"`
	LabelsPath string `yaml:"labels_path"`
	DBPath     string `yaml:"db_path"`
}

// RetrievalConfig holds the fixed retrieval constants.
type RetrievalConfig struct {
	// K is the default retrieval depth.
	K int `yaml:"k"`
	// K1 and B are the BM25 constants.
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
	// NGram is the character n-gram size for the vector proxy.
	NGram int `yaml:"ngram"`
	// Alpha is the hybrid keyword share; the vector share is 1-alpha.
	Alpha float64 `yaml:"alpha"`
	// RareDFThreshold marks terms with document frequency at or below it
	// as rare.
	RareDFThreshold int `yaml:"rare_df_threshold"`
}

// RouterConfig tunes the adaptive router.
type RouterConfig struct {
	LearningRate     float64 `yaml:"learning_rate"`
	StateKey         string  `yaml:"state_key"`
	FeatureCacheSize int     `yaml:"feature_cache_size"`
}

// EvalConfig tunes the evaluation loop.
type EvalConfig struct {
	// K is the retrieval depth per strategy during evaluation.
	K int `yaml:"k"`
	// HitWeight and ExactWeight combine hit@k and exact-match into the
	// per-strategy total.
	HitWeight   float64 `yaml:"hit_weight"`
	ExactWeight float64 `yaml:"exact_weight"`
	// Strict surfaces telemetry write failures as fatal errors.
	Strict bool `yaml:"strict"`
}

// LoggingConfig tunes structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the standard configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			CorpusPath: "data/corpus.jsonl",
			LabelsPath: "data/labels.jsonl",
			DBPath:     "runs/bvs.sqlite",
		},
		Retrieval: RetrievalConfig{
			K:               5,
			K1:              1.5,
			B:               0.75,
			NGram:           4,
			Alpha:           0.5,
			RareDFThreshold: 1,
		},
		Router: RouterConfig{
			LearningRate:     0.25,
			StateKey:         "router_state:v1",
			FeatureCacheSize: 4096,
		},
		Eval: EvalConfig{
			K:           5,
			HitWeight:   0.7,
			ExactWeight: 0.3,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist), applies env overrides, and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing config file is fine; defaults apply.
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies BVS_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BVS_CORPUS_PATH"); v != "" {
		c.Data.CorpusPath = v
	}
	if v := os.Getenv("BVS_LABELS_PATH"); v != "" {
		c.Data.LabelsPath = v
	}
	if v := os.Getenv("BVS_DB_PATH"); v != "" {
		c.Data.DBPath = v
	}
	if v := os.Getenv("BVS_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			c.Retrieval.K = k
		}
	}
	if v := os.Getenv("BVS_ALPHA"); v != "" {
		if a, err := strconv.ParseFloat(v, 64); err == nil {
			c.Retrieval.Alpha = a
		}
	}
	if v := os.Getenv("BVS_LEARNING_RATE"); v != "" {
		if lr, err := strconv.ParseFloat(v, 64); err == nil {
			c.Router.LearningRate = lr
		}
	}
	if v := os.Getenv("BVS_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Eval.Strict = b
		}
	}
	if v := os.Getenv("BVS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects configurations the retrieval core cannot honor.
func (c *Config) Validate() error {
	if c.Retrieval.K <= 0 {
		return fmt.Errorf("retrieval.k must be positive, got %d", c.Retrieval.K)
	}
	if c.Retrieval.K1 <= 0 {
		return fmt.Errorf("retrieval.k1 must be positive, got %v", c.Retrieval.K1)
	}
	if c.Retrieval.B < 0 || c.Retrieval.B > 1 {
		return fmt.Errorf("retrieval.b must be in [0,1], got %v", c.Retrieval.B)
	}
	if c.Retrieval.NGram < 2 {
		return fmt.Errorf("retrieval.ngram must be at least 2, got %d", c.Retrieval.NGram)
	}
	if c.Retrieval.Alpha < 0 || c.Retrieval.Alpha > 1 {
		return fmt.Errorf("retrieval.alpha must be in [0,1], got %v", c.Retrieval.Alpha)
	}
	if c.Retrieval.RareDFThreshold < 0 {
		return fmt.Errorf("retrieval.rare_df_threshold must not be negative, got %d", c.Retrieval.RareDFThreshold)
	}
	if c.Router.LearningRate <= 0 {
		return fmt.Errorf("router.learning_rate must be positive, got %v", c.Router.LearningRate)
	}
	if c.Eval.K <= 0 {
		return fmt.Errorf("eval.k must be positive, got %d", c.Eval.K)
	}
	if c.Eval.HitWeight < 0 || c.Eval.ExactWeight < 0 {
		return fmt.Errorf("eval score weights must not be negative")
	}
	if c.Eval.HitWeight+c.Eval.ExactWeight <= 0 {
		return fmt.Errorf("eval score weights must not both be zero")
	}
	return nil
}
