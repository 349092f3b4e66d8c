package state_test

import (
	"fmt"
	"testing"

	. "github.com/janpfeifer/teekoGo/internal/state"
	. "github.com/janpfeifer/teekoGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
)

func checkDraw(t *testing.T, b *Board, draw bool) {
	if b.Draw() != draw {
		t.Errorf("TestRepeats: board at move number %d wanted draw=%v, got draw=%v, repeats=%d",
			b.MoveNumber, draw, !draw, b.Derived.Repeats)
		printBoard(b)
	}
}

// repeatsLayout is a movement-phase position with no winning configuration in
// reach of the shuffled pieces.
var repeatsLayout = []PieceOnBoard{
	{Pos: Pos{0, 0}, Player: PlayerFirst},
	{Pos: Pos{0, 2}, Player: PlayerFirst},
	{Pos: Pos{4, 0}, Player: PlayerFirst},
	{Pos: Pos{4, 2}, Player: PlayerFirst},
	{Pos: Pos{0, 4}, Player: PlayerSecond},
	{Pos: Pos{2, 4}, Player: PlayerSecond},
	{Pos: Pos{4, 4}, Player: PlayerSecond},
	{Pos: Pos{2, 0}, Player: PlayerSecond},
}

// TestRepeats tests that a Board position repeated 3 times over gets marked as a draw.
func TestRepeats(t *testing.T) {
	b := BuildBoard(repeatsLayout, PlayerFirst)
	b.BuildDerived()
	printBoard(b)
	fmt.Println()

	// Each cycle shuffles one Black and one White piece out and back, returning
	// to the starting position.
	cycle := []Action{
		{Move: true, SourcePos: Pos{0, 0}, TargetPos: Pos{1, 1}},
		{Move: true, SourcePos: Pos{0, 4}, TargetPos: Pos{1, 4}},
		{Move: true, SourcePos: Pos{1, 1}, TargetPos: Pos{0, 0}},
		{Move: true, SourcePos: Pos{1, 4}, TargetPos: Pos{0, 4}},
	}
	for ii := 0; ii < 3; ii++ {
		for jj, action := range cycle {
			b = b.Act(action)
			fmt.Printf("Move %d (cycle %d), Player %d, Repeats: %d, Hash: %x\n",
				b.MoveNumber, ii, b.NextPlayer, b.Derived.Repeats, b.Derived.Hash)
			// The starting position recurs at the end of the third cycle for the
			// third time: only then the match is a draw.
			wantDraw := ii == 2 && jj == len(cycle)-1
			checkDraw(t, b, wantDraw)
		}
	}

	assert.True(t, b.IsFinished())
	assert.Equal(t, PlayerInvalid, b.Winner())
	assert.Equal(t, "current board position was repeated 3 times", b.FinishReason())
}

// TestBoardHash checks that the hash covers the position and the player to move,
// and ignores the path taken to reach it.
func TestBoardHash(t *testing.T) {
	b1 := NewBoard()
	b1 = b1.Act(Action{Move: false, TargetPos: Pos{0, 0}})
	b1 = b1.Act(Action{Move: false, TargetPos: Pos{4, 4}})
	b1 = b1.Act(Action{Move: false, TargetPos: Pos{0, 2}})

	// Same position reached in a different placement order.
	b2 := NewBoard()
	b2 = b2.Act(Action{Move: false, TargetPos: Pos{0, 2}})
	b2 = b2.Act(Action{Move: false, TargetPos: Pos{4, 4}})
	b2 = b2.Act(Action{Move: false, TargetPos: Pos{0, 0}})

	assert.Equal(t, b1.Derived.Hash, b2.Derived.Hash)
	assert.True(t, CompareBoards(b1, b2))

	// A different position hashes differently.
	b3 := b2.Act(Action{Move: false, TargetPos: Pos{4, 2}})
	assert.NotEqual(t, b2.Derived.Hash, b3.Derived.Hash)
	assert.False(t, CompareBoards(b2, b3))

	// The empty board with a different player to move is a different position.
	e1 := NewBoard()
	e2 := NewBoard()
	e2.NextPlayer = PlayerSecond
	e2.BuildDerived()
	assert.NotEqual(t, e1.Derived.Hash, e2.Derived.Hash)
}
