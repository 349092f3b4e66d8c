// Package statetest provides helper functions to create tests using Teeko state.
package statetest

import (
	"fmt"

	. "github.com/janpfeifer/teekoGo/internal/state"
)

// PieceOnBoard represents a position and ownership of a piece on the board.
type PieceOnBoard struct {
	Pos    Pos
	Player PlayerNum
}

// BuildBoard from a collection of pieces, with the given player moving next.
// Callers are expected to call Board.BuildDerived once the board is set up.
func BuildBoard(layout []PieceOnBoard, nextPlayer PlayerNum) (b *Board) {
	b = NewBoard()
	for _, p := range layout {
		b.PutPiece(p.Pos, p.Player)
	}
	b.NextPlayer = nextPlayer
	return
}

// PrintBoard writes a plain ASCII rendering of the board to stdout, for debugging tests.
// Use ui/cli for the interactive rendering.
func PrintBoard(b *Board) {
	fmt.Printf("Move #%d, %s to play:\n", b.MoveNumber, b.NextPlayer)
	for row := int8(0); row < BoardSize; row++ {
		fmt.Printf("  %d ", row+1)
		for col := int8(0); col < BoardSize; col++ {
			switch b.CellAt(Pos{row, col}).Owner() {
			case PlayerFirst:
				fmt.Print(" X ")
			case PlayerSecond:
				fmt.Print(" O ")
			default:
				fmt.Print(" . ")
			}
		}
		fmt.Println()
	}
	fmt.Println("     a  b  c  d  e")
}

// PrintActions lists the actions available on the board, each with its probability from
// policy (if not nil), marking the chosen one.
func PrintActions(b *Board, chosen Action, policy []float32) {
	for actionIdx, action := range b.Derived.Actions {
		marker := " "
		if action == chosen {
			marker = "*"
		}
		if policy != nil {
			fmt.Printf("  %s %s: %.2f%%\n", marker, action, 100*policy[actionIdx])
		} else {
			fmt.Printf("  %s %s\n", marker, action)
		}
	}
}
