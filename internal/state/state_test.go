package state_test

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/janpfeifer/teekoGo/internal/state"
	. "github.com/janpfeifer/teekoGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ = fmt.Printf

// printBoard writes a compact rendering of the board to stdout, for debugging.
func printBoard(b *Board) {
	var sb strings.Builder
	for row := int8(0); row < BoardSize; row++ {
		for col := int8(0); col < BoardSize; col++ {
			player, hasPiece := b.PieceAt(Pos{row, col})
			switch {
			case !hasPiece:
				sb.WriteByte('.')
			case player == PlayerFirst:
				sb.WriteByte('X')
			default:
				sb.WriteByte('O')
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	fmt.Print(sb.String())
}

// listMovesFrom returns the sorted target positions of the move actions starting at pos.
func listMovesFrom(b *Board, pos Pos) []Pos {
	var moves []Pos
	for _, a := range b.Derived.Actions {
		if a.Move && a.SourcePos == pos {
			moves = append(moves, a.TargetPos)
		}
	}
	SortPositions(moves)
	return moves
}

func TestActionEqual(t *testing.T) {
	a1 := Action{Move: false, TargetPos: Pos{1, 1}}
	a2 := Action{Move: false, TargetPos: Pos{1, 1}, SourcePos: Pos{4, 4}}
	if !a1.Equal(a2) {
		t.Errorf("Expected %s and %s to be the same.", a1, a2)
	}

	a2 = Action{Move: false, TargetPos: Pos{1, 2}}
	if a1.Equal(a2) {
		t.Errorf("Expected %s and %s to be different.", a1, a2)
	}

	a2 = Action{Move: true, TargetPos: Pos{1, 1}}
	if a1.Equal(a2) {
		t.Errorf("Expected %s and %s to be different.", a1, a2)
	}

	a1 = Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{1, 1}}
	a2 = Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{1, 1}}
	if !a1.Equal(a2) {
		t.Errorf("Expected %s and %s to be the same.", a1, a2)
	}

	a2.SourcePos = Pos{3, 3}
	if a1.Equal(a2) {
		t.Errorf("Expected %s and %s to be different.", a1, a2)
	}
}

func TestNeighbours(t *testing.T) {
	// Corners have 3 neighbours, edges 5, interior positions 8.
	assert.Len(t, Pos{0, 0}.Neighbours(), 3)
	assert.Len(t, Pos{4, 4}.Neighbours(), 3)
	assert.Len(t, Pos{0, 2}.Neighbours(), 5)
	assert.Len(t, Pos{3, 0}.Neighbours(), 5)
	assert.Len(t, Pos{2, 2}.Neighbours(), 8)

	assert.True(t, Pos{2, 2}.IsAdjacent(Pos{1, 1}))
	assert.True(t, Pos{2, 2}.IsAdjacent(Pos{2, 3}))
	assert.False(t, Pos{2, 2}.IsAdjacent(Pos{2, 2}))
	assert.False(t, Pos{2, 2}.IsAdjacent(Pos{0, 2}))
	assert.False(t, Pos{0, 0}.IsAdjacent(Pos{4, 4}))
}

// TestPlacementPhase applies the 8 placements of a full placement phase, alternating
// players, checking the phase transition happens exactly after the 8th.
func TestPlacementPhase(t *testing.T) {
	b := NewBoard()
	require.Equal(t, PhasePlacement, b.Phase())
	require.Len(t, b.Derived.Actions, BoardSize*BoardSize)
	for _, action := range b.Derived.Actions {
		assert.Falsef(t, action.Move, "expected only placements on an empty board, got %s", action)
	}

	placements := []Pos{
		{0, 0}, {4, 0}, // Black, White, ...
		{0, 2}, {4, 2},
		{0, 4}, {4, 4},
		{2, 0}, {2, 4},
	}
	for ii, pos := range placements {
		require.Equalf(t, PhasePlacement, b.Phase(), "board should be in placement phase before placement %d", ii+1)
		wantPlayer := PlayerNum(ii % 2)
		require.Equal(t, wantPlayer, b.NextPlayer)
		b = b.Act(Action{Move: false, TargetPos: pos})
	}
	printBoard(b)

	// After exactly 8 placements (4 per player) the movement phase starts.
	assert.Equal(t, PhaseMovement, b.Phase())
	assert.Equal(t, uint8(TotalPiecesPerPlayer), b.NumPiecesOnBoard(PlayerFirst))
	assert.Equal(t, uint8(TotalPiecesPerPlayer), b.NumPiecesOnBoard(PlayerSecond))
	assert.Equal(t, uint8(0), b.Available(PlayerFirst))
	assert.Equal(t, uint8(0), b.Available(PlayerSecond))
	for _, action := range b.Derived.Actions {
		assert.Truef(t, action.Move, "expected only moves in the movement phase, got %s", action)
	}

	// Hand-counted moves: (0,0) has 3 empty neighbours, (0,2) 5, (0,4) 3 and (2,0) 5.
	assert.Equal(t, 16, b.NumActions())
	assert.Equal(t, []Pos{{0, 1}, {1, 0}, {1, 1}}, listMovesFrom(b, Pos{0, 0}))
	assert.Equal(t, []Pos{{0, 1}, {0, 3}, {1, 1}, {1, 2}, {1, 3}}, listMovesFrom(b, Pos{0, 2}))
}

func TestCheckAction(t *testing.T) {
	b := NewBoard()

	// Movement before all pieces are placed.
	err := b.CheckAction(Action{Move: true, SourcePos: Pos{0, 0}, TargetPos: Pos{1, 1}})
	require.ErrorContains(t, err, "still to place")

	// Off-board placement.
	err = b.CheckAction(Action{Move: false, TargetPos: Pos{5, 0}})
	require.ErrorContains(t, err, "outside the board")

	b = b.Act(Action{Move: false, TargetPos: Pos{2, 2}})

	// Placement onto an occupied cell.
	err = b.CheckAction(Action{Move: false, TargetPos: Pos{2, 2}})
	require.ErrorContains(t, err, "already occupied")

	// Valid placement gives no error.
	require.NoError(t, b.CheckAction(Action{Move: false, TargetPos: Pos{0, 0}}))

	// Movement-phase board.
	layout := []PieceOnBoard{
		{Pos: Pos{2, 2}, Player: PlayerFirst},
		{Pos: Pos{0, 0}, Player: PlayerFirst},
		{Pos: Pos{0, 4}, Player: PlayerFirst},
		{Pos: Pos{4, 0}, Player: PlayerFirst},
		{Pos: Pos{2, 3}, Player: PlayerSecond},
		{Pos: Pos{4, 4}, Player: PlayerSecond},
		{Pos: Pos{0, 2}, Player: PlayerSecond},
		{Pos: Pos{4, 2}, Player: PlayerSecond},
	}
	b = BuildBoard(layout, PlayerFirst)
	b.BuildDerived()
	printBoard(b)

	// A 9th placement is rejected.
	err = b.CheckAction(Action{Move: false, TargetPos: Pos{1, 1}})
	require.ErrorContains(t, err, "already on the board")

	// Occupied destination.
	err = b.CheckAction(Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{2, 3}})
	require.ErrorContains(t, err, "already occupied")

	// Non-adjacent destination.
	err = b.CheckAction(Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{4, 3}})
	require.ErrorContains(t, err, "not adjacent")

	// Moving a piece that is not there, or not yours.
	err = b.CheckAction(Action{Move: true, SourcePos: Pos{1, 1}, TargetPos: Pos{1, 2}})
	require.ErrorContains(t, err, "no piece at")
	err = b.CheckAction(Action{Move: true, SourcePos: Pos{2, 3}, TargetPos: Pos{1, 3}})
	require.ErrorContains(t, err, "belongs to White")

	// Valid move gives no error and is listed.
	validMove := Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{1, 2}}
	require.NoError(t, b.CheckAction(validMove))
	assert.True(t, b.IsValid(validMove))
	assert.False(t, b.IsValid(Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{4, 3}}))
	assert.False(t, b.IsValid(Action{Move: false, TargetPos: Pos{1, 1}}))

	// FindAction locates the valid move.
	idx := b.FindAction(validMove)
	assert.Equal(t, validMove, b.Derived.Actions[idx])
	idx = b.FindActionDeep(Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{1, 2}})
	assert.Equal(t, validMove, b.Derived.Actions[idx])
}

func TestActDoesNotMutate(t *testing.T) {
	layout := []PieceOnBoard{
		{Pos: Pos{2, 2}, Player: PlayerFirst},
		{Pos: Pos{0, 0}, Player: PlayerFirst},
		{Pos: Pos{0, 4}, Player: PlayerFirst},
		{Pos: Pos{4, 0}, Player: PlayerFirst},
		{Pos: Pos{2, 3}, Player: PlayerSecond},
		{Pos: Pos{4, 4}, Player: PlayerSecond},
		{Pos: Pos{0, 2}, Player: PlayerSecond},
		{Pos: Pos{4, 2}, Player: PlayerSecond},
	}
	b := BuildBoard(layout, PlayerFirst)
	b.BuildDerived()

	newB := b.Act(Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{1, 2}})

	// Receiver is untouched.
	assert.True(t, b.HasPiece(Pos{2, 2}))
	assert.False(t, b.HasPiece(Pos{1, 2}))
	assert.Equal(t, PlayerFirst, b.NextPlayer)
	assert.Equal(t, 1, b.MoveNumber)

	// New board reflects the move, with the turn flipped.
	assert.False(t, newB.HasPiece(Pos{2, 2}))
	player, hasPiece := newB.PieceAt(Pos{1, 2})
	assert.True(t, hasPiece)
	assert.Equal(t, PlayerFirst, player)
	assert.Equal(t, PlayerSecond, newB.NextPlayer)
	assert.Equal(t, 2, newB.MoveNumber)
	assert.Equal(t, uint8(TotalPiecesPerPlayer), newB.NumPiecesOnBoard(PlayerFirst))
}

// allLineWindows enumerates every four-in-a-line window of the board: 10 horizontal,
// 10 vertical and 8 diagonal.
func allLineWindows() [][]Pos {
	dirs := []Pos{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	var windows [][]Pos
	for row := int8(0); row < BoardSize; row++ {
		for col := int8(0); col < BoardSize; col++ {
			for _, dir := range dirs {
				end := Pos{row + (NumInLine-1)*dir[0], col + (NumInLine-1)*dir[1]}
				if !end.OnBoard() {
					continue
				}
				window := make([]Pos, 0, NumInLine)
				for ii := int8(0); ii < NumInLine; ii++ {
					window = append(window, Pos{row + ii*dir[0], col + ii*dir[1]})
				}
				windows = append(windows, window)
			}
		}
	}
	return windows
}

// allSquareWindows enumerates every 2x2 square of the board, by top-left corner.
func allSquareWindows() [][]Pos {
	var windows [][]Pos
	for row := int8(0); row < BoardSize-1; row++ {
		for col := int8(0); col < BoardSize-1; col++ {
			windows = append(windows, []Pos{
				{row, col}, {row, col + 1}, {row + 1, col}, {row + 1, col + 1},
			})
		}
	}
	return windows
}

// TestWinDetection verifies the win check identifies every four-in-a-line and
// four-in-a-square configuration, and nothing less.
func TestWinDetection(t *testing.T) {
	lines := allLineWindows()
	require.Len(t, lines, 28)
	squares := allSquareWindows()
	require.Len(t, squares, 16)

	for _, player := range []PlayerNum{PlayerFirst, PlayerSecond} {
		for _, window := range append(lines, squares...) {
			layout := make([]PieceOnBoard, 0, NumInLine)
			for _, pos := range window {
				layout = append(layout, PieceOnBoard{Pos: pos, Player: player})
			}
			b := BuildBoard(layout, 1-player)
			b.BuildDerived()
			require.Truef(t, b.Derived.Wins[player], "window %v should win for %s", window, player)
			require.Falsef(t, b.Derived.Wins[1-player], "window %v should not win for %s", window, 1-player)
			require.True(t, b.IsFinished())
			require.Equal(t, player, b.Winner())
			require.False(t, b.Draw())
			require.Equal(t, fmt.Sprintf("%s won", player), b.FinishReason())

			// Removing any one piece of the window breaks the win.
			for drop := range window {
				partial := make([]PieceOnBoard, 0, NumInLine-1)
				for ii, pos := range window {
					if ii != drop {
						partial = append(partial, PieceOnBoard{Pos: pos, Player: player})
					}
				}
				b := BuildBoard(partial, 1-player)
				b.BuildDerived()
				require.Falsef(t, b.Derived.Wins[player], "window %v without %s should not win", window, window[drop])
			}
		}
	}

	// Four pieces in no winning configuration.
	b := BuildBoard([]PieceOnBoard{
		{Pos: Pos{0, 0}, Player: PlayerFirst},
		{Pos: Pos{0, 2}, Player: PlayerFirst},
		{Pos: Pos{2, 0}, Player: PlayerFirst},
		{Pos: Pos{3, 3}, Player: PlayerFirst},
	}, PlayerSecond)
	b.BuildDerived()
	assert.False(t, b.Derived.Wins[PlayerFirst])
	assert.False(t, b.IsFinished())
	assert.Equal(t, PlayerInvalid, b.Winner())
	assert.Equal(t, "game not finished yet", b.FinishReason())
}

// TestWinByMove plays a short match to a win through the public Act path.
func TestWinByMove(t *testing.T) {
	layout := []PieceOnBoard{
		{Pos: Pos{1, 1}, Player: PlayerFirst},
		{Pos: Pos{1, 2}, Player: PlayerFirst},
		{Pos: Pos{2, 1}, Player: PlayerFirst},
		{Pos: Pos{3, 3}, Player: PlayerFirst},
		{Pos: Pos{0, 0}, Player: PlayerSecond},
		{Pos: Pos{0, 4}, Player: PlayerSecond},
		{Pos: Pos{4, 0}, Player: PlayerSecond},
		{Pos: Pos{4, 4}, Player: PlayerSecond},
	}
	b := BuildBoard(layout, PlayerFirst)
	b.BuildDerived()
	require.False(t, b.IsFinished())

	// Completing the 2x2 square at (1,1).
	b = b.Act(Action{Move: true, SourcePos: Pos{3, 3}, TargetPos: Pos{2, 2}})
	printBoard(b)
	assert.True(t, b.IsFinished())
	assert.Equal(t, PlayerFirst, b.Winner())
	assert.Equal(t, "Black won", b.FinishReason())
}

func TestMaxMoves(t *testing.T) {
	b := NewBoard()
	b.MaxMoves = 4
	b.BuildDerived()

	b = b.Act(Action{Move: false, TargetPos: Pos{0, 0}})
	require.False(t, b.IsFinished())
	b = b.Act(Action{Move: false, TargetPos: Pos{4, 4}})
	require.False(t, b.IsFinished())
	b = b.Act(Action{Move: false, TargetPos: Pos{0, 2}})

	// MoveNumber reached MaxMoves: a draw.
	assert.True(t, b.IsFinished())
	assert.True(t, b.Draw())
	assert.Equal(t, PlayerInvalid, b.Winner())
	assert.Equal(t, "max number of moves 4 was reached", b.FinishReason())
}

func BenchmarkCalcDerived(b *testing.B) {
	layout := []PieceOnBoard{
		{Pos: Pos{2, 2}, Player: PlayerFirst},
		{Pos: Pos{0, 0}, Player: PlayerFirst},
		{Pos: Pos{0, 4}, Player: PlayerFirst},
		{Pos: Pos{4, 0}, Player: PlayerFirst},
		{Pos: Pos{2, 3}, Player: PlayerSecond},
		{Pos: Pos{4, 4}, Player: PlayerSecond},
		{Pos: Pos{0, 2}, Player: PlayerSecond},
		{Pos: Pos{4, 2}, Player: PlayerSecond},
	}
	board := BuildBoard(layout, PlayerFirst)
	board.BuildDerived()
	action := Action{Move: true, SourcePos: Pos{2, 2}, TargetPos: Pos{1, 2}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		board.Act(action)
	}
}
