package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data/corpus.jsonl", cfg.Data.CorpusPath)
	assert.Equal(t, "runs/bvs.sqlite", cfg.Data.DBPath)
	assert.Equal(t, 5, cfg.Retrieval.K)
	assert.Equal(t, 1.5, cfg.Retrieval.K1)
	assert.Equal(t, 0.75, cfg.Retrieval.B)
	assert.Equal(t, 4, cfg.Retrieval.NGram)
	assert.Equal(t, 0.5, cfg.Retrieval.Alpha)
	assert.Equal(t, 1, cfg.Retrieval.RareDFThreshold)
	assert.Equal(t, 0.25, cfg.Router.LearningRate)
	assert.Equal(t, "router_state:v1", cfg.Router.StateKey)
	assert.Equal(t, 0.7, cfg.Eval.HitWeight)
	assert.Equal(t, 0.3, cfg.Eval.ExactWeight)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bvs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  corpus_path: fixtures/docs.jsonl
retrieval:
  k: 10
  alpha: 0.8
router:
  learning_rate: 0.1
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fixtures/docs.jsonl", cfg.Data.CorpusPath)
	assert.Equal(t, 10, cfg.Retrieval.K)
	assert.Equal(t, 0.8, cfg.Retrieval.Alpha)
	assert.Equal(t, 0.1, cfg.Router.LearningRate)
	// Untouched fields keep their defaults.
	assert.Equal(t, 0.75, cfg.Retrieval.B)
	assert.Equal(t, "data/labels.jsonl", cfg.Data.LabelsPath)
}

func TestLoad_EnvOverridesWinOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bvs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  k: 10\n"), 0o644))

	t.Setenv("BVS_K", "3")
	t.Setenv("BVS_DB_PATH", "/tmp/other.sqlite")
	t.Setenv("BVS_LEARNING_RATE", "0.5")
	t.Setenv("BVS_STRICT", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Retrieval.K)
	assert.Equal(t, "/tmp/other.sqlite", cfg.Data.DBPath)
	assert.Equal(t, 0.5, cfg.Router.LearningRate)
	assert.True(t, cfg.Eval.Strict)
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bvs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero k", func(c *Config) { c.Retrieval.K = 0 }},
		{"negative k1", func(c *Config) { c.Retrieval.K1 = -1 }},
		{"b above one", func(c *Config) { c.Retrieval.B = 1.5 }},
		{"ngram too small", func(c *Config) { c.Retrieval.NGram = 1 }},
		{"alpha out of range", func(c *Config) { c.Retrieval.Alpha = 1.2 }},
		{"negative rare threshold", func(c *Config) { c.Retrieval.RareDFThreshold = -1 }},
		{"zero learning rate", func(c *Config) { c.Router.LearningRate = 0 }},
		{"zero eval k", func(c *Config) { c.Eval.K = 0 }},
		{"negative score weight", func(c *Config) { c.Eval.HitWeight = -0.1 }},
		{"both score weights zero", func(c *Config) { c.Eval.HitWeight = 0; c.Eval.ExactWeight = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_BoundaryValuesAccepted(t *testing.T) {
	cfg := Default()
	cfg.Retrieval.Alpha = 0
	cfg.Retrieval.B = 1
	cfg.Retrieval.RareDFThreshold = 0
	assert.NoError(t, cfg.Validate())

	cfg.Retrieval.Alpha = 1
	cfg.Retrieval.B = 0
	assert.NoError(t, cfg.Validate())
}
