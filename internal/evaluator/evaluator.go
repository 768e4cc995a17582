// Package evaluator scores every retrieval strategy against a labeled query
// set, drives the router's pairwise weight updates, and emits one run record
// per query to the telemetry sink. The loop is strictly sequential: given
// the same corpus, labels, and initial router state it reproduces the same
// weight trajectory.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mick2004/beyond-vector-search/internal/answer"
	"github.com/mick2004/beyond-vector-search/internal/corpus"
	"github.com/mick2004/beyond-vector-search/internal/retriever"
	"github.com/mick2004/beyond-vector-search/internal/router"
	"github.com/mick2004/beyond-vector-search/internal/telemetry"
)

// Score grades one strategy's output for one labeled query.
type Score struct {
	// HitAtK reports whether the expected doc_id appeared in the top-k.
	HitAtK bool `json:"hit_at_k"`
	// ExactMatch reports whether the templated answer equals the expected
	// answer after normalization.
	ExactMatch bool `json:"exact_match"`
	// Total is the weighted combination of the two.
	Total float64 `json:"total"`
}

// Weights combines hit@k and exact-match into a total score.
type Weights struct {
	Hit   float64
	Exact float64
}

// DefaultWeights returns the standard score weighting.
func DefaultWeights() Weights {
	return Weights{Hit: 0.7, Exact: 0.3}
}

// Config assembles an Evaluator.
type Config struct {
	Keyword retriever.Searcher
	Vector  retriever.Searcher
	Hybrid  retriever.Searcher
	Router  *router.Router
	Store   telemetry.Store
	Docs    map[string]corpus.Document
	Labels  []corpus.QueryLabel

	// K is the retrieval depth per strategy.
	K int
	// ScoreWeights combines hit@k and exact-match.
	ScoreWeights Weights
	// Strict surfaces telemetry write failures as fatal errors instead of
	// logging and swallowing them.
	Strict bool
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Now is the clock, overridable for deterministic tests.
	Now func() time.Time
}

// QueryResult is the per-query evaluation outcome.
type QueryResult struct {
	QueryID      string              `json:"query_id"`
	Query        string              `json:"query"`
	Chosen       retriever.Strategy  `json:"chosen"`
	ChosenTotal  float64             `json:"chosen_total"`
	KeywordTotal float64             `json:"keyword_total"`
	VectorTotal  float64             `json:"vector_total"`
	HybridTotal  float64             `json:"hybrid_total"`
	Regret       float64             `json:"regret"`
}

// Summary aggregates an evaluation pass.
type Summary struct {
	MeanScore   float64       `json:"mean_score"`
	N           int           `json:"n"`
	Skipped     int           `json:"skipped"`
	TotalRegret float64       `json:"total_regret"`
	State       router.State  `json:"router_state"`
	PerQuery    []QueryResult `json:"per_query"`
}

// Evaluator runs the offline feedback loop.
type Evaluator struct {
	cfg Config
}

// New validates the configuration and creates an Evaluator.
func New(cfg Config) (*Evaluator, error) {
	if cfg.Keyword == nil || cfg.Vector == nil || cfg.Hybrid == nil {
		return nil, fmt.Errorf("all three searchers are required")
	}
	if cfg.Router == nil {
		return nil, fmt.Errorf("router is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("telemetry store is required")
	}
	if cfg.K <= 0 {
		cfg.K = 5
	}
	if cfg.ScoreWeights == (Weights{}) {
		cfg.ScoreWeights = DefaultWeights()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Evaluator{cfg: cfg}, nil
}

// Run evaluates every labeled query in order. Labels referencing unknown
// documents are skipped with a telemetry warning rather than aborting the
// pass. Telemetry write failures are logged and swallowed unless strict
// mode is enabled.
func (e *Evaluator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	totalChosen := 0.0

	for _, label := range e.cfg.Labels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, ok := e.cfg.Docs[label.ExpectedDocID]; !ok {
			e.cfg.Logger.Warn("label references unknown document, skipping",
				slog.String("query_id", label.QueryID),
				slog.String("expected_doc_id", label.ExpectedDocID))
			summary.Skipped++
			if err := e.emit(ctx, telemetry.RunRecord{
				RunID:     uuid.NewString(),
				Timestamp: e.cfg.Now(),
				Query:     label.Query,
				Meta: map[string]any{
					"warning":         "unknown expected_doc_id",
					"query_id":        label.QueryID,
					"expected_doc_id": label.ExpectedDocID,
				},
			}); err != nil {
				return nil, err
			}
			continue
		}

		start := e.cfg.Now()
		topKeyword := e.cfg.Keyword.Search(label.Query, e.cfg.K)
		topVector := e.cfg.Vector.Search(label.Query, e.cfg.K)
		topHybrid := e.cfg.Hybrid.Search(label.Query, e.cfg.K)
		latency := e.cfg.Now().Sub(start)

		sKeyword := e.score(label, topKeyword)
		sVector := e.score(label, topVector)
		sHybrid := e.score(label, topHybrid)

		// Record what the router would pick right now, before feedback.
		chosen, feats, routeScores := e.cfg.Router.Choose(label.Query)
		chosenScore := sKeyword
		switch chosen {
		case retriever.StrategyVector:
			chosenScore = sVector
		case retriever.StrategyHybrid:
			chosenScore = sHybrid
		}

		best := max(sKeyword.Total, max(sVector.Total, sHybrid.Total))
		regret := best - chosenScore.Total
		totalChosen += chosenScore.Total

		if err := e.cfg.Router.UpdateFromPairwise(ctx, router.Totals{
			Keyword: sKeyword.Total,
			Vector:  sVector.Total,
			Hybrid:  sHybrid.Total,
		}); err != nil {
			if e.cfg.Strict {
				return nil, fmt.Errorf("update router state: %w", err)
			}
			e.cfg.Logger.Warn("router state write failed",
				slog.String("query_id", label.QueryID),
				slog.String("error", err.Error()))
		}

		if err := e.emit(ctx, telemetry.RunRecord{
			RunID:     uuid.NewString(),
			Timestamp: e.cfg.Now(),
			Query:     label.Query,
			Strategy:  string(chosen),
			Score:     chosenScore.Total,
			LatencyMS: latency.Milliseconds(),
			Meta: map[string]any{
				"eval":            true,
				"query_id":        label.QueryID,
				"expected_doc_id": label.ExpectedDocID,
				"features":        feats,
				"route_scores":    routeScores,
				"regret":          regret,
				"per_strategy_scores": map[string]Score{
					string(retriever.StrategyKeyword): sKeyword,
					string(retriever.StrategyVector):  sVector,
					string(retriever.StrategyHybrid):  sHybrid,
				},
				"top_doc_ids": map[string][]string{
					string(retriever.StrategyKeyword): docIDs(topKeyword),
					string(retriever.StrategyVector):  docIDs(topVector),
					string(retriever.StrategyHybrid):  docIDs(topHybrid),
				},
			},
		}); err != nil {
			return nil, err
		}

		summary.N++
		summary.TotalRegret += regret
		summary.PerQuery = append(summary.PerQuery, QueryResult{
			QueryID:      label.QueryID,
			Query:        label.Query,
			Chosen:       chosen,
			ChosenTotal:  chosenScore.Total,
			KeywordTotal: sKeyword.Total,
			VectorTotal:  sVector.Total,
			HybridTotal:  sHybrid.Total,
			Regret:       regret,
		})
	}

	if summary.N > 0 {
		summary.MeanScore = totalChosen / float64(summary.N)
	}
	summary.State = e.cfg.Router.State()
	return summary, nil
}

// score grades one strategy's top-k against the label.
func (e *Evaluator) score(label corpus.QueryLabel, topK []retriever.Result) Score {
	hit := false
	for _, r := range topK {
		if r.DocID == label.ExpectedDocID {
			hit = true
			break
		}
	}

	generated := answer.Generate(label.Query, topK, e.cfg.Docs)
	exact := normalizeAnswer(generated.Text) == normalizeAnswer(label.ExpectedAnswer)

	total := 0.0
	if hit {
		total += e.cfg.ScoreWeights.Hit
	}
	if exact {
		total += e.cfg.ScoreWeights.Exact
	}
	return Score{HitAtK: hit, ExactMatch: exact, Total: total}
}

// emit writes one run record, honoring strict mode.
func (e *Evaluator) emit(ctx context.Context, rec telemetry.RunRecord) error {
	if err := e.cfg.Store.AppendRun(ctx, rec); err != nil {
		if e.cfg.Strict {
			return fmt.Errorf("append run record: %w", err)
		}
		e.cfg.Logger.Warn("telemetry write failed",
			slog.String("query", rec.Query),
			slog.String("error", err.Error()))
	}
	return nil
}

// normalizeAnswer lowercases and collapses whitespace for exact-match
// comparison.
func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func docIDs(results []retriever.Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}
