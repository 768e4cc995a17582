package cmd

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mick2004/beyond-vector-search/internal/config"
	"github.com/mick2004/beyond-vector-search/internal/corpus"
	"github.com/mick2004/beyond-vector-search/internal/feature"
	"github.com/mick2004/beyond-vector-search/internal/retriever"
	"github.com/mick2004/beyond-vector-search/internal/router"
	"github.com/mick2004/beyond-vector-search/internal/telemetry"
)

// app wires the retrieval core for one command invocation. Indices are built
// once here and are read-only afterwards.
type app struct {
	cfg      *config.Config
	docs     []corpus.Document
	docsByID map[string]corpus.Document
	labels   []corpus.QueryLabel
	stats    *corpus.Stats
	keyword  *retriever.Keyword
	vector   *retriever.Vector
	hybrid   *retriever.Hybrid
	router   *router.Router
	store    *telemetry.SQLiteStore
}

// buildApp loads config and data, opens the telemetry store, and constructs
// the retrievers and router. Corpus and labels load concurrently; everything
// downstream of construction stays sequential.
func buildApp(ctx context.Context, withLabels bool) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDB != "" {
		cfg.Data.DBPath = flagDB
	}

	a := &app{cfg: cfg}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := corpus.LoadCorpus(cfg.Data.CorpusPath)
		if err != nil {
			return err
		}
		a.docs = docs
		return nil
	})
	if withLabels {
		g.Go(func() error {
			labels, err := corpus.LoadLabels(cfg.Data.LabelsPath)
			if err != nil {
				return err
			}
			a.labels = labels
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.docsByID = corpus.ByID(a.docs)
	a.stats = corpus.BuildStats(a.docs, cfg.Retrieval.RareDFThreshold)
	a.keyword = retriever.NewKeyword(a.docs, a.stats, retriever.KeywordConfig{
		K1: cfg.Retrieval.K1,
		B:  cfg.Retrieval.B,
	})
	a.vector = retriever.NewVector(a.docs, retriever.VectorConfig{NGram: cfg.Retrieval.NGram})
	a.hybrid = retriever.NewHybrid(a.keyword, a.vector, retriever.HybridConfig{Alpha: cfg.Retrieval.Alpha})

	store, err := telemetry.OpenSQLite(cfg.Data.DBPath)
	if err != nil {
		return nil, err
	}
	a.store = store

	rtr, err := router.New(ctx, feature.NewExtractor(a.stats), store, router.Config{
		StateKey:         cfg.Router.StateKey,
		LearningRate:     cfg.Router.LearningRate,
		FeatureCacheSize: cfg.Router.FeatureCacheSize,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.router = rtr

	return a, nil
}

// searcherFor maps a strategy to its searcher.
func (a *app) searcherFor(strategy retriever.Strategy) (retriever.Searcher, error) {
	switch strategy {
	case retriever.StrategyKeyword:
		return a.keyword, nil
	case retriever.StrategyVector:
		return a.vector, nil
	case retriever.StrategyHybrid:
		return a.hybrid, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", strategy)
}

// Close releases the telemetry store.
func (a *app) Close() error {
	return a.store.Close()
}
