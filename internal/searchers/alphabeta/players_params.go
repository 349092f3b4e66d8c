package alphabeta

import (
	"time"

	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/parameters"
	"github.com/janpfeifer/teekoGo/internal/searchers"
	"github.com/pkg/errors"
)

// NewFromParams creates an alpha-beta searcher for the given scorer, configured from the player
// parameters, which it consumes (pops).
//
// Parameters accepted: "max_depth" (int), "max_time" (time.Duration), "randomness" (float32) and
// "max_move_randomness" (int).
func NewFromParams(scorer ai.ValueScorer, params parameters.Params) (searchers.Searcher, error) {
	batchScorer, ok := scorer.(ai.BatchValueScorer)
	if !ok {
		batchScorer = ai.BatchValueScorerProxy{ValueScorer: scorer}
	}
	ab := New(batchScorer)

	maxDepth, err := parameters.PopParamOr(params, "max_depth", 0)
	if err != nil {
		return nil, err
	}
	maxTime, err := parameters.PopParamOr(params, "max_time", time.Duration(0))
	if err != nil {
		return nil, err
	}
	if maxDepth > 0 && maxTime > 0 {
		return nil, errors.Errorf("at most one of max_depth=%d and max_time=%s can be set for the ab searcher",
			maxDepth, maxTime)
	}
	if maxTime > 0 {
		ab.WithMaxTime(maxTime)
	} else if maxDepth > 0 {
		ab.WithMaxDepth(maxDepth)
	}

	randomness, err := parameters.PopParamOr(params, "randomness", float32(0))
	if err != nil {
		return nil, err
	}
	if randomness > 0 {
		ab.WithRandomness(randomness)
	}
	maxMoveRandomness, err := parameters.PopParamOr(params, "max_move_randomness", 0)
	if err != nil {
		return nil, err
	}
	if maxMoveRandomness > 0 {
		ab.WithMaxMoveRandomness(maxMoveRandomness)
	}
	return ab, nil
}
