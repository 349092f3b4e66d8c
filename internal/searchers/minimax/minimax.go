// Package minimax implements a plain fixed-depth minimax search, in negamax form.
//
// It explores every action to the same depth, so unlike alpha-beta pruning it returns
// meaningful scores for every action of the root board -- which makes it suitable to
// wrap with searchers.NewRandomizedSearcher.
package minimax

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/searchers"
	. "github.com/janpfeifer/teekoGo/internal/state"
	"k8s.io/klog/v2"
)

// Searcher implements the searchers.Searcher interface.
// It is used by players.SearcherScorer, along with the scorer, to implement an AI player (players.Player interface).
type Searcher struct {
	maxDepth int
	scorer   ai.BatchValueScorer
	stats    Stats
}

// Assert that Searcher implements searchers.Searcher.
var _ searchers.Searcher = (*Searcher)(nil)

// Stats stores running stats collected during the search: for benchmarking, monitoring and debugging purposes.
type Stats struct {
	// nodes "played" during search -- execution of an action in a board, following by the creation of the new board.
	nodes int

	// evals is the number of examples passed to the scorer. Notice end-game situations are not scored and don't
	// count here.
	evals int
}

// DefaultMaxDepth for search.
const DefaultMaxDepth = 3

// New returns a minimax based searchers.Searcher implementation.
//
// The one obligatory parameter is the scorer used for the search.
func New(scorer ai.BatchValueScorer) *Searcher {
	return &Searcher{
		scorer:   scorer,
		maxDepth: DefaultMaxDepth,
	}
}

// WithMaxDepth sets the max depth of search: the unit here are plies (ply singular). Each player
// playing counts as one ply. See https://en.wikipedia.org/wiki/Ply_(game_theory).
//
// The default is 3 (DefaultMaxDepth). Values < 1 are clamped to 1.
func (mm *Searcher) WithMaxDepth(maxDepth int) *Searcher {
	if maxDepth < 1 {
		maxDepth = 1
	}
	mm.maxDepth = maxDepth
	return mm
}

// String implements the Searcher interface.
func (mm *Searcher) String() string {
	return fmt.Sprintf("minimax(max_depth=%d)", mm.maxDepth)
}

// Search implements the Searcher interface.
//
// The returned actionsScores hold the fully searched score of every action of the board,
// from the point of view of the player moving next.
func (mm *Searcher) Search(b *Board) (bestAction Action, bestBoard *Board, bestScore float32, actionsScores []float32) {
	start := time.Now()
	actions := b.Derived.Actions
	newBoards, scores := executeAndScoreActions(b, mm.scorer)
	mm.stats.nodes += len(newBoards)
	mm.stats.evals += len(scores)

	// If there is a winning move there is nothing to search: take it (or one of them at random).
	bestActionIdx := -1
	winningMoves := 0
	for actionIdx, score := range scores {
		if score == ai.WinGameScore {
			winningMoves++
			if winningMoves == 1 || rand.Intn(winningMoves) == 0 {
				bestActionIdx = actionIdx
			}
		}
	}
	if winningMoves > 0 {
		return actions[bestActionIdx], newBoards[bestActionIdx], ai.WinGameScore, scores
	}

	for ii := range actions {
		if mm.maxDepth > 1 && !newBoards[ii].IsFinished() {
			// Runs minimax for the opponent player: the score is the negative of the opponent's score.
			scores[ii] = -mm.recursion(newBoards[ii], mm.maxDepth-1)
		}
	}
	bestActionIdx = 0
	for ii := 1; ii < len(scores); ii++ {
		if scores[ii] > scores[bestActionIdx] {
			bestActionIdx = ii
		}
	}

	if klog.V(2).Enabled() {
		elapsed := time.Since(start).Seconds()
		klog.Infof("Counts: %+v", mm.stats)
		klog.Infof("  nodes/s=%.1f, evals/s=%.1f", float64(mm.stats.nodes)/elapsed, float64(mm.stats.evals)/elapsed)
	}
	return actions[bestActionIdx], newBoards[bestActionIdx], scores[bestActionIdx], scores
}

// recursion returns the minimax score of the board for its next player, with depthLeft plies to go.
func (mm *Searcher) recursion(board *Board, depthLeft int) (bestScore float32) {
	newBoards, scores := executeAndScoreActions(board, mm.scorer)
	mm.stats.nodes += len(newBoards)
	mm.stats.evals += len(scores)

	for _, score := range scores {
		if score == ai.WinGameScore {
			// A winning move ends the search of this sub-tree.
			return ai.WinGameScore
		}
	}

	bestScore = float32(-math.MaxFloat32)
	for ii := range scores {
		if depthLeft > 1 && !newBoards[ii].IsFinished() {
			scores[ii] = -mm.recursion(newBoards[ii], depthLeft-1)
		}
		if scores[ii] > bestScore {
			bestScore = scores[ii]
		}
	}
	return
}

// executeAndScoreActions creates the boards after executing each of the board actions,
// and returns the new boards and their scores according to the given scorer.
//
// It returns without using the scorer if any of the actions lead to b.NextPlayer winning.
func executeAndScoreActions(board *Board, scorer ai.BatchValueScorer) (newBoards []*Board, scores []float32) {
	actions := board.Derived.Actions
	scores = make([]float32, len(actions))
	newBoards = make([]*Board, len(actions))

	// Pre-score actions that lead to end-game.
	boardsToScore := make([]*Board, 0, len(actions))
	hasWinning := 0
	for ii, action := range actions {
		newBoards[ii] = board.Act(action)
		if isEnd, score := ai.IsEndGameAndScore(newBoards[ii]); isEnd {
			// End game is treated differently.
			score = -score // Score for board.NextPlayer, not newBoards[ii].NextPlayer
			if score > 0.0 {
				hasWinning++
			}
			scores[ii] = score
		} else {
			boardsToScore = append(boardsToScore, newBoards[ii])
		}
	}

	// Player wins, no need to score the other actions.
	if hasWinning > 0 {
		return
	}

	if len(boardsToScore) > 0 {
		// Score non-game ending boards.
		scored := scorer.BatchScore(boardsToScore)
		scoredIdx := 0
		for ii := range scores {
			if !newBoards[ii].IsFinished() {
				// Score for board.NextPlayer, not newBoards[ii].NextPlayer, hence
				// we take the inverse here.
				scores[ii] = -scored[scoredIdx]
				scoredIdx++
			}
		}
	}
	return
}
