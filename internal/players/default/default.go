// Package _default registers the default AI player modules that can be included in any
// front-end for teekoGo.
//
// Importing it (for its side effects) registers:
//
//   - "ab": alpha-beta pruning search, e.g. "ab:max_depth=4,scorer=expert".
//   - "minimax": plain minimax search, e.g. "minimax:max_depth=3,scorer=easy".
//   - "mcts": Monte Carlo tree search, e.g. "mcts:max_time=3s".
//   - "random": uniformly random play.
//
// All modules accept a "scorer" parameter selecting the model that guides the search: one
// of the linear.PreTrained names or a path to a model file.
package _default

import (
	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/ai/linear"
	"github.com/janpfeifer/teekoGo/internal/parameters"
	"github.com/janpfeifer/teekoGo/internal/players"
	"github.com/janpfeifer/teekoGo/internal/searchers"
	"github.com/janpfeifer/teekoGo/internal/searchers/alphabeta"
	"github.com/janpfeifer/teekoGo/internal/searchers/mcts"
	"github.com/janpfeifer/teekoGo/internal/searchers/minimax"
	"github.com/janpfeifer/teekoGo/internal/state"
)

func init() {
	players.RegisterModule("ab", AlphaBeta{})
	players.RegisterModule("minimax", Minimax{})
	players.RegisterModule("mcts", MCTS{})
	players.RegisterModule("random", Random{})
}

// scorerFromParams pops the "scorer" parameter and returns the linear model it selects,
// or defaultScorer if the parameter is absent.
func scorerFromParams(params parameters.Params, defaultScorer ai.ValueScorer) (ai.ValueScorer, error) {
	scorer, err := linear.NewFromParams(params)
	if err != nil {
		return nil, err
	}
	if scorer == nil {
		scorer = defaultScorer
	}
	return scorer, nil
}

// AlphaBeta implements the "ab" module: alpha-beta pruning search guided by a linear model.
type AlphaBeta struct{}

// Assert AlphaBeta implements Module.
var _ players.Module = AlphaBeta{}

// NewPlayer implements players.Module.
func (AlphaBeta) NewPlayer(matchId string, playerNum state.PlayerNum, params parameters.Params) (players.Player, error) {
	scorer, err := scorerFromParams(params, linear.PreTrainedBest)
	if err != nil {
		return nil, err
	}
	searcher, err := alphabeta.NewFromParams(scorer, params)
	if err != nil {
		return nil, err
	}
	if err = players.ErrUnusedParams(params); err != nil {
		return nil, err
	}
	return players.NewSearcherScorer(searcher, scorer), nil
}

// Minimax implements the "minimax" module: plain fixed-depth search, no pruning. Its
// per-action scores make it the right base for a "randomness" setting.
type Minimax struct{}

// Assert Minimax implements Module.
var _ players.Module = Minimax{}

// NewPlayer implements players.Module.
func (Minimax) NewPlayer(matchId string, playerNum state.PlayerNum, params parameters.Params) (players.Player, error) {
	scorer, err := scorerFromParams(params, linear.PreTrainedBest)
	if err != nil {
		return nil, err
	}
	searcher, err := minimax.NewFromParams(scorer, params)
	if err != nil {
		return nil, err
	}
	randomness, err := parameters.PopParamOr(params, "randomness", float64(0))
	if err != nil {
		return nil, err
	}
	if randomness > 0 {
		searcher = searchers.NewRandomizedSearcher(searcher, randomness)
	}
	if err = players.ErrUnusedParams(params); err != nil {
		return nil, err
	}
	return players.NewSearcherScorer(searcher, scorer), nil
}

// MCTS implements the "mcts" module: Monte Carlo tree search with the linear model
// evaluating the leaves.
type MCTS struct{}

// Assert MCTS implements Module.
var _ players.Module = MCTS{}

// NewPlayer implements players.Module.
func (MCTS) NewPlayer(matchId string, playerNum state.PlayerNum, params parameters.Params) (players.Player, error) {
	scorer, err := scorerFromParams(params, linear.PreTrainedBest)
	if err != nil {
		return nil, err
	}
	searcher, err := mcts.NewFromParams(scorer, params)
	if err != nil {
		return nil, err
	}
	if err = players.ErrUnusedParams(params); err != nil {
		return nil, err
	}
	return players.NewSearcherScorer(searcher, scorer), nil
}

// Random implements the "random" module: a zero scorer under a high-randomness sampler,
// which plays uniformly among the legal actions.
type Random struct{}

// Assert Random implements Module.
var _ players.Module = Random{}

// NewPlayer implements players.Module.
func (Random) NewPlayer(matchId string, playerNum state.PlayerNum, params parameters.Params) (players.Player, error) {
	scorer, err := scorerFromParams(params, linear.PreTrainedZero)
	if err != nil {
		return nil, err
	}
	randomness, err := parameters.PopParamOr(params, "randomness", 1.0)
	if err != nil {
		return nil, err
	}
	if err = players.ErrUnusedParams(params); err != nil {
		return nil, err
	}
	batchScorer, ok := scorer.(ai.BatchValueScorer)
	if !ok {
		batchScorer = ai.BatchValueScorerProxy{ValueScorer: scorer}
	}
	searcher := searchers.NewRandomizedSearcher(minimax.New(batchScorer).WithMaxDepth(1), randomness)
	return players.NewSearcherScorer(searcher, scorer), nil
}
