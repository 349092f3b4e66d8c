package minimax

import (
	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/parameters"
	"github.com/janpfeifer/teekoGo/internal/searchers"
	"github.com/pkg/errors"
)

// NewFromParams builds a minimax searcher around the scorer, configured from the
// player parameters it consumes: "max_depth" (int).
func NewFromParams(scorer ai.ValueScorer, params parameters.Params) (searchers.Searcher, error) {
	batchScorer, ok := scorer.(ai.BatchValueScorer)
	if !ok {
		batchScorer = ai.BatchValueScorerProxy{ValueScorer: scorer}
	}
	maxDepth, err := parameters.PopParamOr(params, "max_depth", DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	if maxDepth < 1 {
		return nil, errors.Errorf("minimax requires max_depth >= 1, got max_depth=%d", maxDepth)
	}
	return New(batchScorer).WithMaxDepth(maxDepth), nil
}
