package mcts

import (
	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/parameters"
	"github.com/janpfeifer/teekoGo/internal/searchers"
	"github.com/pkg/errors"
)

// NewFromParams creates an MCTS searcher for the given scorer, configured from the player
// parameters, which it consumes (pops).
//
// Parameters accepted: "max_time" (time.Duration), "max_traverses", "min_traverses",
// "max_rand_depth" (ints), "c_puct", "temperature" and "policy_scale" (float32).
func NewFromParams(scorer ai.ValueScorer, params parameters.Params) (searchers.Searcher, error) {
	policyScorer, ok := scorer.(ai.PolicyScorer)
	if !ok {
		scale, err := parameters.PopParamOr(params, "policy_scale", float32(1))
		if err != nil {
			return nil, err
		}
		policyScorer = ai.NewPolicyProxy(scorer, scale)
	}
	mcts := New(policyScorer)
	var err error
	mcts.cPuct, err = parameters.PopParamOr(params, "c_puct", mcts.cPuct)
	if err != nil {
		return nil, err
	}
	if mcts.cPuct < 0 {
		return nil, errors.Errorf("negative c_puct value (%f given) not possible", mcts.cPuct)
	}
	mcts.maxTime, err = parameters.PopParamOr(params, "max_time", mcts.maxTime)
	if err != nil {
		return nil, err
	}
	mcts.maxTraverses, err = parameters.PopParamOr(params, "max_traverses", mcts.maxTraverses)
	if err != nil {
		return nil, err
	}
	mcts.minTraverses, err = parameters.PopParamOr(params, "min_traverses", mcts.minTraverses)
	if err != nil {
		return nil, err
	}
	if mcts.maxTime <= 0 && mcts.maxTraverses <= 0 {
		return nil, errors.Errorf("mcts requires at least one of max_time or max_traverses to be set")
	}
	mcts.temperature, err = parameters.PopParamOr(params, "temperature", mcts.temperature)
	if err != nil {
		return nil, err
	}
	mcts.maxRandDepth, err = parameters.PopParamOr(params, "max_rand_depth", mcts.maxRandDepth)
	if err != nil {
		return nil, err
	}
	return mcts, nil
}
