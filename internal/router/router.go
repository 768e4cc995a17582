// Package router picks a retrieval strategy per query from fixed feature
// heuristics plus learned bias weights, and adapts those weights from
// offline evaluation feedback via a bandit-style pairwise update.
package router

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mick2004/beyond-vector-search/internal/feature"
	"github.com/mick2004/beyond-vector-search/internal/retriever"
	"github.com/mick2004/beyond-vector-search/internal/telemetry"
)

// DefaultStateKey is the telemetry key router state is persisted under.
const DefaultStateKey = "router_state:v1"

// DefaultFeatureCacheSize bounds the per-query feature LRU cache.
const DefaultFeatureCacheSize = 4096

// Heuristic coefficients. IDs, digits, and rare terms favor exact keyword
// matching; in-vocabulary natural language favors the vector proxy.
const (
	coeffDigit      = 1.25
	coeffOOV        = 1.00
	coeffRare       = 1.25
	shortQueryBonus = 0.10
	shortQueryMax   = 3
	coeffVector     = 0.50
)

// Scores exposes the per-strategy decision breakdown for telemetry.
type Scores struct {
	HeuristicKeyword float64 `json:"heuristic_keyword"`
	HeuristicVector  float64 `json:"heuristic_vector"`
	HeuristicHybrid  float64 `json:"heuristic_hybrid"`
	ScoreKeyword     float64 `json:"score_keyword"`
	ScoreVector      float64 `json:"score_vector"`
	ScoreHybrid      float64 `json:"score_hybrid"`
}

// Totals carries the per-strategy evaluation totals fed into an update.
type Totals struct {
	Keyword float64
	Vector  float64
	Hybrid  float64
}

// Config tunes a Router.
type Config struct {
	// StateKey is the telemetry key for persisted state.
	StateKey string
	// LearningRate overrides the persisted learning rate when positive.
	LearningRate float64
	// FeatureCacheSize bounds the feature LRU cache.
	FeatureCacheSize int
}

// DefaultConfig returns the standard router configuration.
func DefaultConfig() Config {
	return Config{
		StateKey:         DefaultStateKey,
		FeatureCacheSize: DefaultFeatureCacheSize,
	}
}

// Router owns one State instance. Choose is a pure function of
// (query, current state); only UpdateFromPairwise mutates state, persisting
// after every change so the last successful write wins.
type Router struct {
	extractor *feature.Extractor
	store     telemetry.Store
	cfg       Config
	state     State
	cache     *lru.Cache[string, feature.Features]
}

// New creates a Router and loads its state from the telemetry sink. A
// missing or corrupt state record falls back to zero-initialized weights.
func New(ctx context.Context, extractor *feature.Extractor, store telemetry.Store, cfg Config) (*Router, error) {
	if extractor == nil {
		return nil, fmt.Errorf("feature extractor is required")
	}
	if store == nil {
		return nil, fmt.Errorf("telemetry store is required")
	}
	if cfg.StateKey == "" {
		cfg.StateKey = DefaultStateKey
	}
	cacheSize := cfg.FeatureCacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultFeatureCacheSize
	}
	cache, err := lru.New[string, feature.Features](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create feature cache: %w", err)
	}

	r := &Router{extractor: extractor, store: store, cfg: cfg, cache: cache}
	if err := r.LoadState(ctx); err != nil {
		return nil, err
	}
	if cfg.LearningRate > 0 {
		r.state.LearningRate = cfg.LearningRate
	}
	return r, nil
}

// State returns a copy of the current router state.
func (r *Router) State() State {
	return r.state
}

// LoadState reads persisted state from the telemetry sink. Missing or
// corrupt state yields zero weights.
func (r *Router) LoadState(ctx context.Context) error {
	data, found, err := r.store.GetState(ctx, r.cfg.StateKey)
	if err != nil {
		return fmt.Errorf("load router state: %w", err)
	}
	if !found {
		r.state = DefaultState()
		return nil
	}
	r.state = UnmarshalState(data)
	return nil
}

// SaveState persists the current state through the sink contract.
func (r *Router) SaveState(ctx context.Context) error {
	data, err := r.state.Marshal()
	if err != nil {
		return fmt.Errorf("marshal router state: %w", err)
	}
	if err := r.store.SetState(ctx, r.cfg.StateKey, data); err != nil {
		return fmt.Errorf("save router state: %w", err)
	}
	return nil
}

// Choose picks a strategy for the query. Empty and whitespace-only queries
// fall back to keyword with zero features. Tie policy: keyword wins ties
// over vector; hybrid wins only when it strictly exceeds both.
func (r *Router) Choose(query string) (retriever.Strategy, feature.Features, Scores) {
	if strings.TrimSpace(query) == "" {
		return retriever.StrategyKeyword, feature.Features{}, Scores{}
	}

	feats := r.features(query)

	hKeyword := coeffDigit*feats.DigitRatio +
		coeffOOV*feats.OOVRatio +
		coeffRare*feats.RareRatio
	if feats.NTokens <= shortQueryMax {
		hKeyword += shortQueryBonus
	}
	hVector := coeffVector * (1.0 - min(1.0, feats.OOVRatio+feats.RareRatio))
	// Hybrid heuristic is the midpoint of the other two.
	hHybrid := (hKeyword + hVector) / 2.0

	scores := Scores{
		HeuristicKeyword: hKeyword,
		HeuristicVector:  hVector,
		HeuristicHybrid:  hHybrid,
		ScoreKeyword:     hKeyword + r.state.WeightKeyword,
		ScoreVector:      hVector + r.state.WeightVector,
		ScoreHybrid:      hHybrid + r.state.WeightHybrid,
	}

	strategy := retriever.StrategyVector
	if scores.ScoreKeyword >= scores.ScoreVector {
		strategy = retriever.StrategyKeyword
	}
	if scores.ScoreHybrid > scores.ScoreKeyword && scores.ScoreHybrid > scores.ScoreVector {
		strategy = retriever.StrategyHybrid
	}

	return strategy, feats, scores
}

// features returns cached features for the query. The cache is keyed by the
// normalized query and is transparent: extraction is deterministic, so a
// cache hit and a fresh extraction are identical.
func (r *Router) features(query string) feature.Features {
	key := strings.ToLower(strings.TrimSpace(query))
	if feats, ok := r.cache.Get(key); ok {
		return feats
	}
	feats := r.extractor.Extract(query)
	r.cache.Add(key, feats)
	return feats
}

// UpdateFromPairwise applies the zero-sum bandit update: the strategy with
// the strictly highest total gains one learning-rate step and every other
// strategy loses one. When no strategy strictly beats all others the weights
// are left unchanged. State is persisted after every call.
func (r *Router) UpdateFromPairwise(ctx context.Context, totals Totals) error {
	if winner, ok := strictWinner(totals); ok {
		lr := r.state.LearningRate
		for _, s := range retriever.Strategies {
			delta := -lr
			if s == winner {
				delta = lr
			}
			switch s {
			case retriever.StrategyKeyword:
				r.state.WeightKeyword += delta
			case retriever.StrategyVector:
				r.state.WeightVector += delta
			case retriever.StrategyHybrid:
				r.state.WeightHybrid += delta
			}
		}
	}
	r.state.UpdateCount++
	return r.SaveState(ctx)
}

// strictWinner returns the strategy whose total strictly exceeds all others.
func strictWinner(totals Totals) (retriever.Strategy, bool) {
	switch {
	case totals.Keyword > totals.Vector && totals.Keyword > totals.Hybrid:
		return retriever.StrategyKeyword, true
	case totals.Vector > totals.Keyword && totals.Vector > totals.Hybrid:
		return retriever.StrategyVector, true
	case totals.Hybrid > totals.Keyword && totals.Hybrid > totals.Vector:
		return retriever.StrategyHybrid, true
	}
	return "", false
}
