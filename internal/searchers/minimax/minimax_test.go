package minimax_test

import (
	"testing"

	"github.com/janpfeifer/teekoGo/internal/ai/linear"
	"github.com/janpfeifer/teekoGo/internal/searchers/alphabeta"
	"github.com/janpfeifer/teekoGo/internal/searchers/minimax"
	. "github.com/janpfeifer/teekoGo/internal/state"
	. "github.com/janpfeifer/teekoGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scorer = linear.PreTrainedBest

// blockingBoard returns a position where Black threatens to complete the square at b2:c3
// by moving d4 to c3, and White, to play, can only save the game by occupying c3.
func blockingBoard() *Board {
	board := BuildBoard([]PieceOnBoard{
		{Pos: Pos{1, 1}, Player: PlayerFirst},
		{Pos: Pos{1, 2}, Player: PlayerFirst},
		{Pos: Pos{2, 1}, Player: PlayerFirst},
		{Pos: Pos{3, 3}, Player: PlayerFirst},
		{Pos: Pos{2, 3}, Player: PlayerSecond},
		{Pos: Pos{0, 0}, Player: PlayerSecond},
		{Pos: Pos{0, 4}, Player: PlayerSecond},
		{Pos: Pos{4, 0}, Player: PlayerSecond},
	}, PlayerSecond)
	board.BuildDerived()
	return board
}

var blockingAction = Action{Move: true, SourcePos: Pos{2, 3}, TargetPos: Pos{2, 2}}

func TestEndGameMove(t *testing.T) {
	// Black completes the 2x2 square at b2:c3 by moving d4 to c3.
	board := BuildBoard([]PieceOnBoard{
		{Pos: Pos{1, 1}, Player: PlayerFirst},
		{Pos: Pos{1, 2}, Player: PlayerFirst},
		{Pos: Pos{2, 1}, Player: PlayerFirst},
		{Pos: Pos{3, 3}, Player: PlayerFirst},
		{Pos: Pos{0, 4}, Player: PlayerSecond},
		{Pos: Pos{2, 4}, Player: PlayerSecond},
		{Pos: Pos{4, 0}, Player: PlayerSecond},
		{Pos: Pos{4, 4}, Player: PlayerSecond},
	}, PlayerFirst)
	board.BuildDerived()
	PrintBoard(board)

	searcher := minimax.New(scorer).WithMaxDepth(3)
	action, nextBoard, score, _ := searcher.Search(board)
	want := Action{Move: true, SourcePos: Pos{3, 3}, TargetPos: Pos{2, 2}}
	assert.Equalf(t, want, action, "Wanted %s, got %s -> score=%.2f", want, action, score)
	assert.Equal(t, PlayerFirst, nextBoard.Winner())
	assert.Equal(t, float32(1), score)
}

func TestActionsScores(t *testing.T) {
	// Every action gets its definitive score: all the moves that fail to block the
	// threat lose outright.
	board := blockingBoard()
	searcher := minimax.New(scorer).WithMaxDepth(2)
	action, _, score, actionsScores := searcher.Search(board)
	require.Equal(t, board.NumActions(), len(actionsScores))
	assert.Equal(t, blockingAction, action)
	assert.Greater(t, score, float32(-1))
	for actionIdx, actionScore := range actionsScores {
		if board.Derived.Actions[actionIdx] == blockingAction {
			assert.Greater(t, actionScore, float32(-1))
		} else {
			assert.Equal(t, float32(-1), actionScore)
		}
	}
}

func TestAgreesWithAlphaBeta(t *testing.T) {
	// Pruning never changes the root choice or its score, only the work done.
	board := blockingBoard()
	mmAction, _, mmScore, _ := minimax.New(scorer).WithMaxDepth(3).Search(board)
	abAction, _, abScore, _ := alphabeta.New(scorer).WithMaxDepth(3).Search(board)
	assert.Equal(t, mmAction, abAction)
	assert.InDelta(t, mmScore, abScore, 1e-5)
	assert.Equal(t, blockingAction, mmAction)
}
