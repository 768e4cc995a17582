package router

import (
	"encoding/json"

	"github.com/mick2004/beyond-vector-search/internal/retriever"
)

// DefaultLearningRate is the step size applied by pairwise updates when no
// rate is configured or persisted.
const DefaultLearningRate = 0.25

// State holds the learned per-strategy bias weights. It is owned exclusively
// by one Router instance and mutated only by UpdateFromPairwise. Weights are
// never clamped or decayed; unbounded drift is a known property of the
// update rule, kept intentionally.
type State struct {
	WeightKeyword float64 `json:"weight_keyword"`
	WeightVector  float64 `json:"weight_vector"`
	WeightHybrid  float64 `json:"weight_hybrid"`
	LearningRate  float64 `json:"learning_rate"`
	UpdateCount   int     `json:"update_count"`
}

// DefaultState returns zero weights with the default learning rate.
func DefaultState() State {
	return State{LearningRate: DefaultLearningRate}
}

// Weight returns the learned bias for a strategy.
func (s State) Weight(strategy retriever.Strategy) float64 {
	switch strategy {
	case retriever.StrategyKeyword:
		return s.WeightKeyword
	case retriever.StrategyVector:
		return s.WeightVector
	case retriever.StrategyHybrid:
		return s.WeightHybrid
	}
	return 0
}

// Marshal serializes the state for the telemetry sink's key-value contract.
func (s State) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalState decodes a persisted state blob. A corrupt blob or a
// non-positive learning rate falls back to DefaultState: weights are never
// silently fabricated, but a usable learning rate is always restored.
func UnmarshalState(data []byte) State {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultState()
	}
	if s.LearningRate <= 0 {
		s.LearningRate = DefaultLearningRate
	}
	if s.UpdateCount < 0 {
		s.UpdateCount = 0
	}
	return s
}
