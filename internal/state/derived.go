// Package state holds information about a game state.
//
// This file holds the function that orchestrates the building of information
// derived from the game state: valid actions, end of game conditions, repeats and
// useful information for the UI.
package state

import (
	"fmt"
	"log"
)

// MaxBoardRepeats after which a draw is issued.
const MaxBoardRepeats = 3

// NumInLine pieces aligned (or forming a square) needed to win.
const NumInLine = 4

// Derived holds information that is generated from the Board state.
type Derived struct {
	// Repeats is the number of times this exact same position has been seen earlier in the match.
	Repeats uint8

	// Hash of the Board. Usually unique, but not guaranteed.
	// It does not cover the previous states of the match.
	Hash uint64

	// Information about both players.
	NumPiecesOnBoard [NumPlayers]uint8
	Wins             [NumPlayers]bool // If both players win, it is a draw.

	PlayersActions [NumPlayers][]Action

	// Actions of the next player to move (shortcut to PlayersActions[NextPlayer]).
	Actions []Action

	// nextBoards are the cached generated boards for all possible actions taken.
	// If set, it has the same length as Actions.
	//
	// It is returned by Board.TakeAllActions.
	nextBoards []*Board
}

// Action describes a placement or a move. For placements (`Move == false`) only
// TargetPos is meaningful: a new piece of the acting player enters the board there.
// Moves relocate the piece at SourcePos to the adjacent TargetPos.
type Action struct {
	// If not Move, it's a placement action.
	Move                 bool
	SourcePos, TargetPos Pos
}

// String implements fmt.Stringer.
func (a Action) String() string {
	if a.Move {
		return fmt.Sprintf("Move %s->%s", a.SourcePos, a.TargetPos)
	}
	return fmt.Sprintf("Place in %s", a.TargetPos)
}

// Equal compares whether two actions are the same.
func (a Action) Equal(a2 Action) bool {
	if a.Move != a2.Move || !a.TargetPos.Equal(a2.TargetPos) {
		return false
	}
	if !a.Move {
		return true
	}
	return a.SourcePos == a2.SourcePos
}

// BuildDerived rebuilds information derived from the board.
func (b *Board) BuildDerived() {
	// Reset Derived.
	b.Derived = nil
	derived := &Derived{}
	b.Derived = derived

	derived.Hash = b.boardHash()
	derived.Repeats = b.CountRepeats()

	// Per player info.
	for p := PlayerNum(0); p < NumPlayers; p++ {
		derived.NumPiecesOnBoard[p] = b.onBoard[p]
		derived.PlayersActions[p] = b.ValidActions(p)
	}
	derived.Actions = derived.PlayersActions[b.NextPlayer]
	derived.Wins = b.endGame()
}

// ValidActions returns the list of valid actions for given player.
// For the NextPlayer the list of actions is pre-cached in Derived.
//
// The list is never empty: while the player has pieces to place there is always an
// empty cell, and in the movement phase any four pieces boxed in with no empty
// neighbour would already form a winning square.
func (b *Board) ValidActions(player PlayerNum) []Action {
	actions := make([]Action, 0, BoardSize*BoardSize)
	if b.Available(player) > 0 {
		return b.addPlacementActions(player, actions)
	}
	return b.addMoveActions(player, actions)
}

// addPlacementActions adds a placement action for every empty cell.
func (b *Board) addPlacementActions(player PlayerNum, actions []Action) []Action {
	for pos := range AllPositionsIter() {
		if !b.HasPiece(pos) {
			actions = append(actions, Action{Move: false, TargetPos: pos})
		}
	}
	return actions
}

// addMoveActions adds a move action for every empty neighbour of every piece of the player.
func (b *Board) addMoveActions(player PlayerNum, actions []Action) []Action {
	for _, srcPos := range b.PlayerPositions(player) {
		for tgtPos := range b.EmptyNeighboursIter(srcPos) {
			actions = append(actions, Action{Move: true, SourcePos: srcPos, TargetPos: tgtPos})
		}
	}
	return actions
}

// FindAction finds the index to the given action. It assumes the action is the exact same value,
// that is, it is a shallow comparison.
func (b *Board) FindAction(action Action) int {
	for ii, action2 := range b.Derived.Actions {
		if action == action2 {
			return ii
		}
	}
	log.Panicf("Action %s chosen not found. Available: %v", action, b.Derived.Actions)
	return -1
}

// FindActionDeep like FindAction finds the index to the given action. But it does a deep-comparison, so
// the action may have been generated separately from the actions of the board.
func (b *Board) FindActionDeep(action Action) int {
	for ii, action2 := range b.Derived.Actions {
		if action.Equal(action2) {
			return ii
		}
	}
	log.Panicf("Action %s chosen not found. Available: %v", action, b.Derived.Actions)
	return -1
}

// Act takes the given action for the b.NextPlayer player and returns a new board (the
// receiver is never changed).
//
// It DOES NOT CHECK that the action is valid (it can be useful for testing),
// and leaves that to the UI to handle -- see CheckAction and IsValid.
//
// It also updates the derived information by calling `BuildDerived()`.
func (b *Board) Act(action Action) (newB *Board) {
	newB = b.Clone()
	if !action.Move {
		newB.PutPiece(action.TargetPos, newB.NextPlayer)
	} else {
		player := newB.RemovePiece(action.SourcePos)
		newB.PutPiece(action.TargetPos, player)
	}
	if b.Derived != nil {
		newB.PreviousBoards = &HashNode{Hash: b.Derived.Hash, Prev: b.PreviousBoards}
	}
	newB.NextPlayer = 1 - newB.NextPlayer
	newB.MoveNumber++
	newB.BuildDerived()
	return
}

// TakeAllActions returns the boards generated by taking all actions available to current player.
func (b *Board) TakeAllActions() []*Board {
	if b.Derived == nil {
		b.BuildDerived()
	}
	d := b.Derived
	if d.nextBoards != nil {
		return d.nextBoards
	}
	d.nextBoards = make([]*Board, len(d.Actions))
	for actionIdx, action := range d.Actions {
		d.nextBoards[actionIdx] = b.Act(action)
	}
	return d.nextBoards
}

// ClearNextBoardsCache drops the boards cached by TakeAllActions, releasing any
// trailing search tree to the garbage collector.
func (b *Board) ClearNextBoardsCache() {
	if b.Derived != nil {
		b.Derived.nextBoards = nil
	}
}

// IsValid if given action is listed as a valid one.
func (b *Board) IsValid(action Action) bool {
	for _, validAction := range b.Derived.Actions {
		if action == validAction {
			return true
		}
	}
	return false
}

// winDirections are the four scan directions of the line check. Scanning every
// anchor position towards increasing rows (and either column direction for the
// diagonals) visits each possible line exactly once.
var winDirections = [4]Pos{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// squareDeltas are the offsets of a 2x2 square from its top-left corner.
var squareDeltas = [4]Pos{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

// endGame returns, for each player, whether they completed a winning
// configuration: NumInLine pieces in a row, column or diagonal, or a 2x2 square.
// Both players winning is a draw, which is also the outcome once MaxMoves is reached.
func (b *Board) endGame() (wins [NumPlayers]bool) {
	if b.MoveNumber > b.MaxMoves {
		// After MaxMoves is reached, the game is considered a draw.
		wins = [NumPlayers]bool{true, true}
		return
	}
	for pos := range b.OccupiedPositionsIter() {
		player, _ := b.PieceAt(pos)
		if wins[player] {
			continue
		}
		if b.lineWinFrom(pos, player) || b.squareWinFrom(pos, player) {
			wins[player] = true
		}
	}
	return
}

// lineWinFrom checks for a line of NumInLine pieces of the player starting at pos,
// along each of the winDirections.
func (b *Board) lineWinFrom(pos Pos, player PlayerNum) bool {
	for _, dir := range winDirections {
		count := 0
		for ii := int8(0); ii < NumInLine; ii++ {
			p := Pos{pos[0] + ii*dir[0], pos[1] + ii*dir[1]}
			if !p.OnBoard() || b.CellAt(p).Owner() != player {
				break
			}
			count++
		}
		if count == NumInLine {
			return true
		}
	}
	return false
}

// squareWinFrom checks whether pos is the top-left corner of a 2x2 square of the player.
func (b *Board) squareWinFrom(pos Pos, player PlayerNum) bool {
	if pos[0]+1 >= BoardSize || pos[1]+1 >= BoardSize {
		return false
	}
	for _, delta := range squareDeltas {
		p := Pos{pos[0] + delta[0], pos[1] + delta[1]}
		if b.CellAt(p).Owner() != player {
			return false
		}
	}
	return true
}

// NumActions available to the next player.
func (b *Board) NumActions() int {
	return len(b.Derived.Actions)
}

// IsFinished returns whether the board represents a finished match.
// It depends on Derived.
func (b *Board) IsFinished() bool {
	return b.Derived.Repeats >= MaxBoardRepeats || b.Derived.Wins[0] || b.Derived.Wins[1] || b.MoveNumber >= b.MaxMoves
}

// FinishReason returns a description of why the match finished, for display.
func (b *Board) FinishReason() string {
	if !b.IsFinished() {
		return "game not finished yet"
	}
	if b.Winner() != PlayerInvalid {
		return fmt.Sprintf("%s won", b.Winner())
	}
	if b.Derived.Repeats >= MaxBoardRepeats {
		return fmt.Sprintf("current board position was repeated %d times", MaxBoardRepeats)
	}
	if b.MoveNumber >= b.MaxMoves {
		return fmt.Sprintf("max number of moves %d was reached", b.MaxMoves)
	}
	if b.Derived.Wins[0] && b.Derived.Wins[1] {
		return "both players completed a winning configuration at the same time"
	}
	return "unknown reason!?"
}

// Draw returns whether the match finished without a winner.
func (b *Board) Draw() bool {
	return b.IsFinished() && b.Derived.Wins[0] == b.Derived.Wins[1]
}

// Winner returns the player that wins on the current board.
// If it is a Draw or the match is not finished, return PlayerInvalid.
func (b *Board) Winner() PlayerNum {
	if !b.IsFinished() || b.Draw() {
		return PlayerInvalid
	}
	if b.Derived.Wins[0] {
		return PlayerFirst
	}
	return PlayerSecond
}
