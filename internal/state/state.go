package state

import (
	"fmt"
	"iter"
	"sort"

	"github.com/janpfeifer/teekoGo/internal/generics"
	"github.com/pkg/errors"
)

const (
	// NumPlayers currently limited to 2.
	NumPlayers = 2

	// BoardSize of each side of the square board: positions are the 25 intersections.
	BoardSize = 5

	// NumNeighbors of an interior position: orthogonal plus diagonal.
	NumNeighbors = 8

	// TotalPiecesPerPlayer each player places before the movement phase starts.
	TotalPiecesPerPlayer = 4

	// DefaultMaxMoves after which the game is considered a draw.
	DefaultMaxMoves = 200
)

// PlayerNum is either 0 or 1, corresponding to the first player to move (Black) or the
// second player to move (White).
type PlayerNum uint8

const (
	PlayerFirst PlayerNum = iota
	PlayerSecond

	// PlayerInvalid represents an invalid PlayerNum.
	PlayerInvalid
)

// PlayerNames indexed by PlayerNum.
var PlayerNames = [NumPlayers]string{"Black", "White"}

// String implements fmt.Stringer.
func (p PlayerNum) String() string {
	if p >= NumPlayers {
		return "InvalidPlayer"
	}
	return PlayerNames[p]
}

// Phase of the match: each player first places their pieces, and only then starts
// moving them around.
type Phase uint8

const (
	PhasePlacement Phase = iota
	PhaseMovement
)

// String implements fmt.Stringer.
func (phase Phase) String() string {
	if phase == PhasePlacement {
		return "placement"
	}
	return "movement"
}

// Cell encodes the contents of one position of the board: empty or a piece of one
// of the players. Teeko pieces are undifferentiated, so the owner is all there is
// to encode.
type Cell uint8

// CellEmpty is the zero value of Cell.
const CellEmpty Cell = 0

// CellForPlayer returns the cell contents for a piece of the given player.
func CellForPlayer(player PlayerNum) Cell {
	return Cell(player) + 1
}

// HasPiece returns whether there is a piece on the cell.
func (c Cell) HasPiece() bool {
	return c != CellEmpty
}

// Owner returns the player owning the piece on the cell, or PlayerInvalid if empty.
func (c Cell) Owner() PlayerNum {
	if c == CellEmpty {
		return PlayerInvalid
	}
	return PlayerNum(c - 1)
}

// Pos packages the row, col of a position.
type Pos [2]int8

// AbsInt8 returns the absolute value of an int8.
func AbsInt8(x int8) int8 {
	y := x >> 7
	return (x ^ y) - y
}

// Row coordinate of the position.
func (pos Pos) Row() int8 {
	return pos[0]
}

// Col coordinate of the position.
func (pos Pos) Col() int8 {
	return pos[1]
}

// OnBoard returns whether the position is within the board limits.
func (pos Pos) OnBoard() bool {
	return pos[0] >= 0 && pos[0] < BoardSize && pos[1] >= 0 && pos[1] < BoardSize
}

// Distance returns the manhattan distance of two positions.
func (pos Pos) Distance(pos2 Pos) int {
	return int(AbsInt8(pos[0]-pos2[0])) + int(AbsInt8(pos[1]-pos2[1]))
}

// IsAdjacent returns whether pos2 is one of the up-to-8 neighbours of pos: one step
// away orthogonally or diagonally.
func (pos Pos) IsAdjacent(pos2 Pos) bool {
	if pos == pos2 {
		return false
	}
	return AbsInt8(pos[0]-pos2[0]) <= 1 && AbsInt8(pos[1]-pos2[1]) <= 1
}

// Equal returns whether positions are the same.
func (pos Pos) Equal(pos2 Pos) bool {
	return pos == pos2
}

// String returns the algebraic form of the position, column letter first: "a1" is the
// top-left corner, "e5" the bottom-right. Off-board positions print numerically.
func (pos Pos) String() string {
	if !pos.OnBoard() {
		return fmt.Sprintf("(%d, %d)", pos[0], pos[1])
	}
	return fmt.Sprintf("%c%d", 'a'+pos[1], pos[0]+1)
}

// neighbourRelPositions lists the 8 directions in scan order.
var neighbourRelPositions = [NumNeighbors]Pos{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// neighboursTable caches the on-board neighbours of every position: corners have 3,
// edges 5 and interior positions 8.
var neighboursTable [BoardSize][BoardSize][]Pos

func init() {
	for row := int8(0); row < BoardSize; row++ {
		for col := int8(0); col < BoardSize; col++ {
			neighbours := make([]Pos, 0, NumNeighbors)
			for _, relPos := range neighbourRelPositions {
				pos := Pos{row + relPos[0], col + relPos[1]}
				if pos.OnBoard() {
					neighbours = append(neighbours, pos)
				}
			}
			neighboursTable[row][col] = neighbours
		}
	}
}

// Neighbours returns the on-board neighbour positions of the reference position.
// The returned slice is shared and must not be modified.
func (pos Pos) Neighbours() []Pos {
	return neighboursTable[pos[0]][pos[1]]
}

// NeighboursIter iterates over the on-board neighbour positions of the reference position.
func (pos Pos) NeighboursIter() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		for _, neighbour := range neighboursTable[pos[0]][pos[1]] {
			if !yield(neighbour) {
				return
			}
		}
	}
}

// AllPositionsIter iterates over the 25 positions of the board in row-major order.
func AllPositionsIter() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		for row := int8(0); row < BoardSize; row++ {
			for col := int8(0); col < BoardSize; col++ {
				if !yield(Pos{row, col}) {
					return
				}
			}
		}
	}
}

// SortPositions sorts according to row first and then col.
func SortPositions(positions []Pos) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i][0] != positions[j][0] {
			return positions[i][0] < positions[j][0]
		}
		return positions[i][1] < positions[j][1]
	})
}

// FilterPositionSlices filters the given positions according to the given filter.
// It destroys the contents of the provided slice and reuses the allocated space
// for the returned slice.
func FilterPositionSlices(positions []Pos, filter func(pos Pos) bool) (filtered []Pos) {
	filtered = positions[:0]
	for _, pos := range positions {
		if filter(pos) {
			filtered = append(filtered, pos)
		}
	}
	return
}

// PosStrings converts a slice of positions to their string representations.
func PosStrings(positions []Pos) []string {
	strs := make([]string, len(positions))
	for ii, pos := range positions {
		strs[ii] = fmt.Sprint(pos)
	}
	return strs
}

// Board is a compact representation of the game state. It's compact to allow fast/cheap
// search on the space, by creating clones of it.
// Use it through methods that decode the packaged data.
type Board struct {
	cells                [BoardSize][BoardSize]Cell
	onBoard              [NumPlayers]uint8
	MoveNumber, MaxMoves int
	NextPlayer           PlayerNum

	// PreviousBoards chains the hashes of the earlier positions of the match,
	// used to detect repeats.
	PreviousBoards *HashNode

	// Derived information is regenerated after each move.
	Derived *Derived
}

// NewBoard creates a new empty board, Black to move.
func NewBoard() *Board {
	board := &Board{
		MoveNumber: 1,
		MaxMoves:   DefaultMaxMoves,
		NextPlayer: PlayerFirst,
	}
	board.BuildDerived()
	return board
}

// Clone makes a deep copy of the board, with Derived cleared.
func (b *Board) Clone() *Board {
	newB := &Board{}
	*newB = *b
	newB.Derived = nil
	return newB
}

// OpponentPlayer returns the player that is not the next one to play.
func (b *Board) OpponentPlayer() PlayerNum {
	return 1 - b.NextPlayer
}

// CellAt returns the contents of the given position.
func (b *Board) CellAt(pos Pos) Cell {
	return b.cells[pos[0]][pos[1]]
}

// HasPiece returns whether there is a piece on the given position of the board.
func (b *Board) HasPiece(pos Pos) bool {
	return b.cells[pos[0]][pos[1]].HasPiece()
}

// PieceAt returns the player owning the piece at the given position, if any.
func (b *Board) PieceAt(pos Pos) (player PlayerNum, hasPiece bool) {
	cell := b.cells[pos[0]][pos[1]]
	return cell.Owner(), cell.HasPiece()
}

// PutPiece adds a piece of the given player to the given empty board position. It
// doesn't validate the move, see CheckAction.
func (b *Board) PutPiece(pos Pos, player PlayerNum) {
	b.cells[pos[0]][pos[1]] = CellForPlayer(player)
	b.onBoard[player]++
}

// RemovePiece removes the piece at the given position and returns its owner.
func (b *Board) RemovePiece(pos Pos) (player PlayerNum) {
	player = b.cells[pos[0]][pos[1]].Owner()
	b.cells[pos[0]][pos[1]] = CellEmpty
	b.onBoard[player]--
	return
}

// NumPiecesOnBoard placed so far by the given player.
func (b *Board) NumPiecesOnBoard(player PlayerNum) uint8 {
	return b.onBoard[player]
}

// Available returns how many pieces the given player still has to place.
func (b *Board) Available(player PlayerNum) uint8 {
	return TotalPiecesPerPlayer - b.onBoard[player]
}

// TotalPiecesOnBoard for both players.
func (b *Board) TotalPiecesOnBoard() int8 {
	return int8(b.onBoard[0] + b.onBoard[1])
}

// Phase the match is in: placement until both players have all their pieces on the
// board (8 placements in total), movement from then on.
func (b *Board) Phase() Phase {
	if b.onBoard[PlayerFirst] == TotalPiecesPerPlayer && b.onBoard[PlayerSecond] == TotalPiecesPerPlayer {
		return PhaseMovement
	}
	return PhasePlacement
}

// OccupiedPositions returns all the positions with pieces, in row-major order.
func (b *Board) OccupiedPositions() []Pos {
	positions := make([]Pos, 0, b.TotalPiecesOnBoard())
	for pos := range b.OccupiedPositionsIter() {
		positions = append(positions, pos)
	}
	return positions
}

// OccupiedPositionsIter iterates over all positions with pieces, in row-major order.
func (b *Board) OccupiedPositionsIter() iter.Seq[Pos] {
	return func(yield func(Pos) bool) {
		for pos := range AllPositionsIter() {
			if b.HasPiece(pos) {
				if !yield(pos) {
					return
				}
			}
		}
	}
}

// PlayerPositions returns the positions of the given player's pieces, in row-major order.
func (b *Board) PlayerPositions(player PlayerNum) []Pos {
	positions := make([]Pos, 0, TotalPiecesPerPlayer)
	for pos := range AllPositionsIter() {
		if b.CellAt(pos).Owner() == player {
			positions = append(positions, pos)
		}
	}
	return positions
}

// OccupiedNeighbours returns the neighbour positions holding pieces.
func (b *Board) OccupiedNeighbours(pos Pos) (positions []Pos) {
	positions = append(positions, pos.Neighbours()...)
	positions = FilterPositionSlices(positions, func(p Pos) bool { return b.HasPiece(p) })
	return
}

// OccupiedNeighboursIter iterates over the occupied neighbours.
func (b *Board) OccupiedNeighboursIter(pos Pos) iter.Seq[Pos] {
	return generics.IterFilter(pos.NeighboursIter(), func(p Pos) bool { return b.HasPiece(p) })
}

// EmptyNeighbours returns the neighbour positions without pieces.
func (b *Board) EmptyNeighbours(pos Pos) (positions []Pos) {
	positions = append(positions, pos.Neighbours()...)
	positions = FilterPositionSlices(positions, func(p Pos) bool { return !b.HasPiece(p) })
	return
}

// EmptyNeighboursIter iterates over the empty neighbours.
func (b *Board) EmptyNeighboursIter(pos Pos) iter.Seq[Pos] {
	return generics.IterFilter(pos.NeighboursIter(), func(p Pos) bool { return !b.HasPiece(p) })
}

// PlayerNeighbours returns the neighbour positions occupied by pieces of the given player.
func (b *Board) PlayerNeighbours(player PlayerNum, pos Pos) (positions []Pos) {
	positions = append(positions, pos.Neighbours()...)
	positions = FilterPositionSlices(positions, func(p Pos) bool {
		return b.CellAt(p).Owner() == player
	})
	return
}

// FriendlyNeighbours returns the neighbour positions occupied by pieces of b.NextPlayer.
func (b *Board) FriendlyNeighbours(pos Pos) []Pos {
	return b.PlayerNeighbours(b.NextPlayer, pos)
}

// OpponentNeighbours returns the neighbour positions occupied by opponents of b.NextPlayer.
func (b *Board) OpponentNeighbours(pos Pos) []Pos {
	return b.PlayerNeighbours(b.OpponentPlayer(), pos)
}

// EnumeratePieces calls cb for every piece on the board, in row-major order.
func (b *Board) EnumeratePieces(cb func(player PlayerNum, pos Pos)) {
	for pos := range b.OccupiedPositionsIter() {
		player, _ := b.PieceAt(pos)
		cb(player, pos)
	}
}

// CheckAction verifies the action is legal for b.NextPlayer on the current board and
// returns a user-facing error if not. IsValid is the cheap boolean form used by
// the engine; CheckAction gives the reason, for the UIs.
func (b *Board) CheckAction(action Action) error {
	if !action.TargetPos.OnBoard() {
		return errors.Errorf("position %s is outside the board", action.TargetPos)
	}
	if b.HasPiece(action.TargetPos) {
		return errors.Errorf("cell %s is already occupied", action.TargetPos)
	}
	if !action.Move {
		if b.Available(b.NextPlayer) == 0 {
			return errors.Errorf("all %d pieces are already on the board, move one instead", TotalPiecesPerPlayer)
		}
		return nil
	}
	if b.Available(b.NextPlayer) > 0 {
		return errors.Errorf("%d piece(s) still to place before moving", b.Available(b.NextPlayer))
	}
	if !action.SourcePos.OnBoard() {
		return errors.Errorf("position %s is outside the board", action.SourcePos)
	}
	player, hasPiece := b.PieceAt(action.SourcePos)
	if !hasPiece {
		return errors.Errorf("no piece at %s", action.SourcePos)
	}
	if player != b.NextPlayer {
		return errors.Errorf("the piece at %s belongs to %s", action.SourcePos, player)
	}
	if !action.SourcePos.IsAdjacent(action.TargetPos) {
		return errors.Errorf("%s is not adjacent to %s", action.TargetPos, action.SourcePos)
	}
	return nil
}
