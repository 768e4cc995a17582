package evaluator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mick2004/beyond-vector-search/internal/answer"
	"github.com/mick2004/beyond-vector-search/internal/corpus"
	"github.com/mick2004/beyond-vector-search/internal/feature"
	"github.com/mick2004/beyond-vector-search/internal/retriever"
	"github.com/mick2004/beyond-vector-search/internal/router"
	"github.com/mick2004/beyond-vector-search/internal/telemetry"
)

// stubSearcher returns a fixed result list for every query.
type stubSearcher struct {
	results []retriever.Result
}

func (s stubSearcher) Search(string, int) []retriever.Result {
	out := make([]retriever.Result, len(s.results))
	copy(out, s.results)
	return out
}

func evalFixtureDocs() []corpus.Document {
	return []corpus.Document{
		{ID: "d1", Title: "what counts as duplicate presentment", Text: "duplicate presentment occurs twice"},
		{ID: "d2", Title: "what counts as a chargeback", Text: "duplicate presentment chargeback policy"},
	}
}

func newEvalRouter(t *testing.T, store telemetry.Store) *router.Router {
	t.Helper()
	stats := corpus.BuildStats(evalFixtureDocs(), 1)
	r, err := router.New(context.Background(), feature.NewExtractor(stats), store, router.DefaultConfig())
	require.NoError(t, err)
	return r
}

func fixedClock() func() time.Time {
	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return base }
}

func TestNew_ValidatesConfig(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)
	stub := stubSearcher{}

	_, err := New(Config{Vector: stub, Hybrid: stub, Router: rtr, Store: store})
	assert.Error(t, err)

	_, err = New(Config{Keyword: stub, Vector: stub, Hybrid: stub, Store: store})
	assert.Error(t, err)

	_, err = New(Config{Keyword: stub, Vector: stub, Hybrid: stub, Router: rtr})
	assert.Error(t, err)
}

func TestRun_KeywordWinsMoveWeightsAndEmitRuns(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)
	docs := corpus.ByID(evalFixtureDocs())

	// Keyword always finds the expected document; the other strategies
	// find nothing, so keyword strictly wins every query.
	ev, err := New(Config{
		Keyword: stubSearcher{results: []retriever.Result{{DocID: "d1", Score: 1.0}}},
		Vector:  stubSearcher{},
		Hybrid:  stubSearcher{},
		Router:  rtr,
		Store:   store,
		Docs:    docs,
		Labels: []corpus.QueryLabel{
			{QueryID: "q1", Query: "what counts as duplicate presentment", ExpectedDocID: "d1"},
			{QueryID: "q2", Query: "what counts as duplicate presentment", ExpectedDocID: "d1"},
		},
		K:   5,
		Now: fixedClock(),
	})
	require.NoError(t, err)

	summary, err := ev.Run(context.Background())
	require.NoError(t, err)

	// Two zero-sum steps toward keyword at lr 0.25.
	assert.InDelta(t, 0.5, summary.State.WeightKeyword, 1e-12)
	assert.InDelta(t, -0.5, summary.State.WeightVector, 1e-12)
	assert.InDelta(t, -0.5, summary.State.WeightHybrid, 1e-12)
	assert.Equal(t, 2, summary.State.UpdateCount)

	require.Equal(t, 2, summary.N)
	assert.Zero(t, summary.Skipped)

	// Query 1: zero weights route to vector (total 0, regret 0.7).
	// Query 2: the first update already tips the tie to keyword (regret 0).
	require.Len(t, summary.PerQuery, 2)
	assert.Equal(t, retriever.StrategyVector, summary.PerQuery[0].Chosen)
	assert.InDelta(t, 0.7, summary.PerQuery[0].Regret, 1e-12)
	assert.Equal(t, retriever.StrategyKeyword, summary.PerQuery[1].Chosen)
	assert.InDelta(t, 0.0, summary.PerQuery[1].Regret, 1e-12)
	assert.InDelta(t, 0.35, summary.MeanScore, 1e-12)
	assert.InDelta(t, 0.7, summary.TotalRegret, 1e-12)

	// One run record per query with full decision context.
	runs := store.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, "vector", runs[0].Strategy)
	assert.Equal(t, "keyword", runs[1].Strategy)
	for _, rec := range runs {
		assert.NotEmpty(t, rec.RunID)
		assert.Equal(t, true, rec.Meta["eval"])
		assert.Contains(t, rec.Meta, "features")
		assert.Contains(t, rec.Meta, "route_scores")
		assert.Contains(t, rec.Meta, "per_strategy_scores")
		assert.Contains(t, rec.Meta, "top_doc_ids")
	}
}

func TestRun_ExactMatchAddsExactWeight(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)
	docs := corpus.ByID(evalFixtureDocs())
	results := []retriever.Result{{DocID: "d1", Score: 1.0}}
	query := "what counts as duplicate presentment"

	// The expected answer is exactly what the template produces for d1.
	expected := answer.Generate(query, results, docs).Text

	ev, err := New(Config{
		Keyword: stubSearcher{results: results},
		Vector:  stubSearcher{},
		Hybrid:  stubSearcher{},
		Router:  rtr,
		Store:   store,
		Docs:    docs,
		Labels: []corpus.QueryLabel{
			{QueryID: "q1", Query: query, ExpectedDocID: "d1", ExpectedAnswer: expected},
		},
		Now: fixedClock(),
	})
	require.NoError(t, err)

	summary, err := ev.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.PerQuery, 1)
	assert.InDelta(t, 1.0, summary.PerQuery[0].KeywordTotal, 1e-12)
}

func TestRun_UnknownExpectedDocSkipsWithWarning(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)

	ev, err := New(Config{
		Keyword: stubSearcher{},
		Vector:  stubSearcher{},
		Hybrid:  stubSearcher{},
		Router:  rtr,
		Store:   store,
		Docs:    corpus.ByID(evalFixtureDocs()),
		Labels: []corpus.QueryLabel{
			{QueryID: "q1", Query: "anything", ExpectedDocID: "ghost"},
		},
		Now: fixedClock(),
	})
	require.NoError(t, err)

	summary, err := ev.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.N)
	assert.Equal(t, 1, summary.Skipped)
	// Skipped labels never drive a weight update.
	assert.Zero(t, summary.State.UpdateCount)

	runs := store.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, "unknown expected_doc_id", runs[0].Meta["warning"])
	assert.Equal(t, "ghost", runs[0].Meta["expected_doc_id"])
}

func TestRun_StrictModeSurfacesSinkFailures(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)
	boom := errors.New("disk full")
	store.FailWrites = boom

	ev, err := New(Config{
		Keyword: stubSearcher{results: []retriever.Result{{DocID: "d1", Score: 1.0}}},
		Vector:  stubSearcher{},
		Hybrid:  stubSearcher{},
		Router:  rtr,
		Store:   store,
		Docs:    corpus.ByID(evalFixtureDocs()),
		Labels: []corpus.QueryLabel{
			{QueryID: "q1", Query: "what counts as duplicate presentment", ExpectedDocID: "d1"},
		},
		Strict: true,
		Now:    fixedClock(),
	})
	require.NoError(t, err)

	_, err = ev.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRun_NonStrictModeSwallowsSinkFailures(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)
	store.FailWrites = errors.New("disk full")

	ev, err := New(Config{
		Keyword: stubSearcher{results: []retriever.Result{{DocID: "d1", Score: 1.0}}},
		Vector:  stubSearcher{},
		Hybrid:  stubSearcher{},
		Router:  rtr,
		Store:   store,
		Docs:    corpus.ByID(evalFixtureDocs()),
		Labels: []corpus.QueryLabel{
			{QueryID: "q1", Query: "what counts as duplicate presentment", ExpectedDocID: "d1"},
		},
		Now: fixedClock(),
	})
	require.NoError(t, err)

	summary, err := ev.Run(context.Background())
	require.NoError(t, err)

	// The pass completes; in-memory weights still moved even though the
	// persist failed.
	assert.Equal(t, 1, summary.N)
	assert.InDelta(t, 0.25, summary.State.WeightKeyword, 1e-12)
	assert.Empty(t, store.Runs())
}

func TestRun_CanceledContextStops(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)

	ev, err := New(Config{
		Keyword: stubSearcher{},
		Vector:  stubSearcher{},
		Hybrid:  stubSearcher{},
		Router:  rtr,
		Store:   store,
		Docs:    corpus.ByID(evalFixtureDocs()),
		Labels: []corpus.QueryLabel{
			{QueryID: "q1", Query: "anything", ExpectedDocID: "d1"},
		},
		Now: fixedClock(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ev.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EmptyLabelSetYieldsEmptySummary(t *testing.T) {
	store := telemetry.NewMemoryStore()
	rtr := newEvalRouter(t, store)

	ev, err := New(Config{
		Keyword: stubSearcher{},
		Vector:  stubSearcher{},
		Hybrid:  stubSearcher{},
		Router:  rtr,
		Store:   store,
		Docs:    corpus.ByID(evalFixtureDocs()),
		Now:     fixedClock(),
	})
	require.NoError(t, err)

	summary, err := ev.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.N)
	assert.Zero(t, summary.MeanScore)
	assert.Empty(t, summary.PerQuery)
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, normalizeAnswer("  Five  Business\nDays. "), normalizeAnswer("five business days."))
	assert.NotEqual(t, normalizeAnswer("five days"), normalizeAnswer("six days"))
}
