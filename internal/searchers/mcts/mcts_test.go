package mcts

import (
	"testing"

	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/parameters"
	. "github.com/janpfeifer/teekoGo/internal/state"
	. "github.com/janpfeifer/teekoGo/internal/state/statetest"
	"github.com/stretchr/testify/require"
)

// dummyScorer returns a 0 value score for all boards, and equal probability policy for all actions.
type dummyScorer struct{}

func (s *dummyScorer) PolicyScore(board *Board) []float32 {
	numActions := board.NumActions()
	policy := make([]float32, numActions)
	for ii := range policy {
		policy[ii] = 1.0 / float32(numActions)
	}
	return policy
}

func (s *dummyScorer) Score(board *Board) float32 {
	return 0
}

func (s *dummyScorer) String() string {
	return "dummyScorer"
}

var (
	_ ai.ValueScorer  = &dummyScorer{}
	_ ai.PolicyScorer = &dummyScorer{}
)

func buildTestMCTS(t *testing.T, config string) *Searcher {
	params := parameters.NewFromConfigString(config)
	searcher, err := NewFromParams(&dummyScorer{}, params)
	require.NoError(t, err)
	return searcher.(*Searcher)
}

func TestMctsSearcher_Search_EndGame(t *testing.T) {
	// Black can complete the 2x2 square at b2:c3 by moving d4 to c3.
	layout := []PieceOnBoard{
		{Pos: Pos{1, 1}, Player: PlayerFirst},
		{Pos: Pos{1, 2}, Player: PlayerFirst},
		{Pos: Pos{2, 1}, Player: PlayerFirst},
		{Pos: Pos{3, 3}, Player: PlayerFirst},
		{Pos: Pos{0, 4}, Player: PlayerSecond},
		{Pos: Pos{2, 4}, Player: PlayerSecond},
		{Pos: Pos{4, 0}, Player: PlayerSecond},
		{Pos: Pos{4, 4}, Player: PlayerSecond},
	}
	board := BuildBoard(layout, PlayerFirst)
	board.BuildDerived()
	PrintBoard(board)

	mcts := buildTestMCTS(t, "max_traverses=2000,min_traverses=10,temperature=0")
	winningAction := Action{Move: true, SourcePos: Pos{3, 3}, TargetPos: Pos{2, 2}}
	actionTaken, nextBoard, score, policy := mcts.SearchWithPolicy(board)
	PrintActions(board, actionTaken, policy)
	actionIdx := -1
	for idx, action := range board.Derived.Actions {
		if action == actionTaken {
			actionIdx = idx
			break
		}
	}
	require.Greater(t, actionIdx, -1)

	require.Equal(t, board.NumActions(), len(policy))
	var totalProb float32
	for _, prob := range policy {
		totalProb += prob
	}
	require.InDelta(t, float32(1), totalProb, 1e-4)
	require.Equal(t, winningAction, actionTaken)
	require.True(t, nextBoard.IsFinished())
	require.Equal(t, PlayerFirst, nextBoard.Winner())
	require.Greater(t, score, float32(0.95))
	require.Greater(t, policy[actionIdx], float32(0.95))
}

func TestNewFromParams(t *testing.T) {
	params := parameters.NewFromConfigString("max_time=5s,max_traverses=100,c_puct=1.5")
	searcher, err := NewFromParams(&dummyScorer{}, params)
	require.NoError(t, err)
	require.Empty(t, params)
	mcts := searcher.(*Searcher)
	require.Equal(t, 100, mcts.maxTraverses)
	require.Equal(t, float32(1.5), mcts.cPuct)

	// Negative exploration is rejected.
	params = parameters.NewFromConfigString("c_puct=-1")
	_, err = NewFromParams(&dummyScorer{}, params)
	require.Error(t, err)

	// Unlimited search is rejected.
	params = parameters.NewFromConfigString("max_time=0s,max_traverses=0")
	_, err = NewFromParams(&dummyScorer{}, params)
	require.Error(t, err)
}
