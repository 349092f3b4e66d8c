// Package features implements the board features shared by the AI scorers.
//
// Every feature is computed relative to the player moving next: the "Opp"
// variants refer to the other player. The individual heuristics follow the
// evaluation terms of the shipped difficulty tiers, see internal/ai/linear for
// the weight blends that combine them.
package features

import (
	"fmt"
	"log"

	"github.com/janpfeifer/teekoGo/internal/generics"
	. "github.com/janpfeifer/teekoGo/internal/state"
)

// BoardId represent an enum of board features. Those are like "global" features for the game.
type BoardId uint8

// FeatureSetter is the signature of a feature setter. f is the slice where to store the
// results.
type FeatureSetter func(b *Board, def *BoardSpec, f []float32)

const (
	// IdNumOnBoard represents how many pieces of the player have been placed so far.
	IdNumOnBoard BoardId = iota
	IdOpponentNumOnBoard

	// IdCentralControl sums max(0, 3 - manhattan distance to the center cell) over
	// the player's pieces.
	IdCentralControl
	IdOpponentCentralControl

	// IdMobility counts the empty neighbours over all the player's pieces, i.e. the
	// number of distinct moves available in the movement phase.
	IdMobility
	IdOpponentMobility

	// IdNearVictory counts the almost-complete winning configurations anchored at the
	// player's pieces: line windows with 3 pieces and at least one empty cell, and
	// 2x2 squares with 3 pieces and one empty cell (squares are seen from each of
	// their pieces, so a single one counts up to 3 times).
	IdNearVictory
	IdOpponentNearVictory

	// IdThreatLines counts the line windows holding exactly 3 of the player's pieces
	// and exactly one empty cell: the configurations a blocking move must answer.
	IdThreatLines
	IdOpponentThreatLines

	// IdThreatSquares counts the 2x2 squares holding 3 or more of the player's pieces.
	IdThreatSquares
	IdOpponentThreatSquares

	// IdConnectivity sums the sizes of the 8-connected groups of the player's pieces,
	// skipping isolated pieces.
	IdConnectivity
	IdOpponentConnectivity

	// IdCornerPieces counts the player's pieces sitting on the four corners.
	IdCornerPieces
	IdOpponentCornerPieces

	// IdAlignment is a graded score of partial alignments: runs of 2 score 1, runs of
	// 3 score 5, runs of 4 score 10, plus 3 per fully owned 2x2 square.
	IdAlignment
	IdOpponentAlignment

	// IdMovesToDraw represents the number of moves till a draw due to running out of moves. Max to 10.
	IdMovesToDraw

	// IdNumFeatureIds defined -- this must always be the last enum.
	IdNumFeatureIds
)

// BoardSpec includes the board feature name, dimension and index in the concatenation of features.
type BoardSpec struct {
	Id   BoardId
	Name string
	Dim  int

	// VecIndex refers to the index in the concatenated feature vector.
	VecIndex int
	Setter   FeatureSetter
}

var (
	// BoardSpecs enumerates in order the features extracted by FeatureVector.
	// The VecIndex attribute is properly set during the package initialization.
	// The "Opp" prefix refers to the opponent version of the feature.
	BoardSpecs = [IdNumFeatureIds]BoardSpec{
		{IdNumOnBoard, "NumOnBoard", 1, 0, fNumOnBoard},
		{IdOpponentNumOnBoard, "OppNumOnBoard", 1, 0, fNumOnBoard},

		{IdCentralControl, "CentralControl", 1, 0, fCentralControl},
		{IdOpponentCentralControl, "OppCentralControl", 1, 0, fCentralControl},

		{IdMobility, "Mobility", 1, 0, fMobility},
		{IdOpponentMobility, "OppMobility", 1, 0, fMobility},

		{IdNearVictory, "NearVictory", 1, 0, fNearVictory},
		{IdOpponentNearVictory, "OppNearVictory", 1, 0, fNearVictory},

		{IdThreatLines, "ThreatLines", 1, 0, fThreatLines},
		{IdOpponentThreatLines, "OppThreatLines", 1, 0, fThreatLines},

		{IdThreatSquares, "ThreatSquares", 1, 0, fThreatSquares},
		{IdOpponentThreatSquares, "OppThreatSquares", 1, 0, fThreatSquares},

		{IdConnectivity, "Connectivity", 1, 0, fConnectivity},
		{IdOpponentConnectivity, "OppConnectivity", 1, 0, fConnectivity},

		{IdCornerPieces, "CornerPieces", 1, 0, fCornerPieces},
		{IdOpponentCornerPieces, "OppCornerPieces", 1, 0, fCornerPieces},

		{IdAlignment, "Alignment", 1, 0, fAlignment},
		{IdOpponentAlignment, "OppAlignment", 1, 0, fAlignment},

		{IdMovesToDraw, "MovesToDraw", 1, 0, fMovesToDraw},
	}

	// BoardFeaturesDim is the dimension of all board features concatenated, set during package
	// initialization.
	BoardFeaturesDim int
)

func init() {
	// Updates the indices of BoardSpecs, and sets BoardFeaturesDim.
	BoardFeaturesDim = 0
	for ii := range BoardSpecs {
		if BoardSpecs[ii].Id != BoardId(ii) {
			log.Fatalf("features.BoardSpecs index %d for %s doesn't match constant.",
				ii, BoardSpecs[ii].Name)
		}
		BoardSpecs[ii].VecIndex = BoardFeaturesDim
		BoardFeaturesDim += BoardSpecs[ii].Dim
	}
}

// LabeledExample can be used for training.
type LabeledExample struct {
	Features []float32
	Label    float32
}

// MakeLabeledExample builds a LabeledExample from the board and the final score
// attributed to it.
func MakeLabeledExample(board *Board, label float32) LabeledExample {
	return LabeledExample{FeatureVector(board), label}
}

// FeatureVector calculates the feature vector, of length BoardFeaturesDim, for the given
// board. Values are relative to b.NextPlayer.
func FeatureVector(b *Board) (f []float32) {
	f = make([]float32, BoardFeaturesDim)
	for ii := range BoardSpecs {
		featDef := &BoardSpecs[ii]
		featDef.Setter(b, featDef, f)
	}
	return
}

// PrettyPrintFeatures prints the feature values labeled by their spec names.
func PrettyPrintFeatures(f []float32) {
	for ii := range BoardSpecs {
		def := &BoardSpecs[ii]
		fmt.Printf("\t%s: ", def.Name)
		if def.Dim == 1 {
			fmt.Printf("%.2f", f[def.VecIndex])
		} else {
			fmt.Printf("%v", f[def.VecIndex:def.VecIndex+def.Dim])
		}
		fmt.Println()
	}
}

// lineDirections are the four window scan directions: along rows, columns and the
// two diagonals. Combined with every piece as an anchor they cover each window
// that could complete a line win.
var lineDirections = [4]Pos{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// squareCellDeltas are the cells of a 2x2 square relative to its top-left corner.
var squareCellDeltas = [4]Pos{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

// squareOriginDeltas are the top-left corners of the 2x2 squares containing a position.
var squareOriginDeltas = [4]Pos{{0, 0}, {0, -1}, {-1, 0}, {-1, -1}}

// centerPos of the board.
var centerPos = Pos{BoardSize / 2, BoardSize / 2}

func fNumOnBoard(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentNumOnBoard {
		player = b.OpponentPlayer()
	}
	f[def.VecIndex] = float32(b.NumPiecesOnBoard(player))
}

func fCentralControl(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentCentralControl {
		player = b.OpponentPlayer()
	}
	total := 0
	for _, pos := range b.PlayerPositions(player) {
		if value := 3 - pos.Distance(centerPos); value > 0 {
			total += value
		}
	}
	f[def.VecIndex] = float32(total)
}

func fMobility(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentMobility {
		player = b.OpponentPlayer()
	}
	count := 0
	for _, pos := range b.PlayerPositions(player) {
		count += len(b.EmptyNeighbours(pos))
	}
	f[def.VecIndex] = float32(count)
}

func fNearVictory(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentNearVictory {
		player = b.OpponentPlayer()
	}
	count := 0
	for _, pos := range b.PlayerPositions(player) {
		for _, dir := range lineDirections {
			pieces, empties := scanLineWindow(b, pos, dir, player)
			if pieces == NumInLine-1 && empties >= 1 {
				count++
			}
		}
		count += nearWinSquares(b, pos, player)
	}
	f[def.VecIndex] = float32(count)
}

func fThreatLines(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentThreatLines {
		player = b.OpponentPlayer()
	}
	count := 0
	for _, pos := range b.PlayerPositions(player) {
		for _, dir := range lineDirections {
			pieces, empties := scanLineWindow(b, pos, dir, player)
			if pieces == NumInLine-1 && empties == 1 {
				count++
			}
		}
	}
	f[def.VecIndex] = float32(count)
}

func fThreatSquares(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentThreatSquares {
		player = b.OpponentPlayer()
	}
	count := 0
	for row := int8(0); row+1 < BoardSize; row++ {
		for col := int8(0); col+1 < BoardSize; col++ {
			pieces := 0
			for _, delta := range squareCellDeltas {
				if b.CellAt(Pos{row + delta.Row(), col + delta.Col()}).Owner() == player {
					pieces++
				}
			}
			if pieces >= 3 {
				count++
			}
		}
	}
	f[def.VecIndex] = float32(count)
}

func fConnectivity(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentConnectivity {
		player = b.OpponentPlayer()
	}
	visited := generics.MakeSet[Pos](TotalPiecesPerPlayer)
	total := 0
	for _, pos := range b.PlayerPositions(player) {
		if visited.Has(pos) {
			continue
		}
		if size := connectedGroupSize(b, pos, player, visited); size > 1 {
			total += size
		}
	}
	f[def.VecIndex] = float32(total)
}

func fCornerPieces(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentCornerPieces {
		player = b.OpponentPlayer()
	}
	count := 0
	for _, corner := range cornerPositions {
		if b.CellAt(corner).Owner() == player {
			count++
		}
	}
	f[def.VecIndex] = float32(count)
}

func fAlignment(b *Board, def *BoardSpec, f []float32) {
	player := b.NextPlayer
	if def.Id == IdOpponentAlignment {
		player = b.OpponentPlayer()
	}
	score := 0
	for _, pos := range b.PlayerPositions(player) {
		for _, dir := range lineDirections {
			switch runLength(b, pos, dir, player) {
			case 2:
				score += 1
			case 3:
				score += 5
			case NumInLine:
				score += 10
			}
		}
		if fullSquareAt(b, pos, player) {
			score += 3
		}
	}
	f[def.VecIndex] = float32(score)
}

func fMovesToDraw(b *Board, def *BoardSpec, f []float32) {
	idx := def.VecIndex
	f[idx] = float32(b.MaxMoves - b.MoveNumber + 1)
	if f[idx] > 10 {
		f[idx] = 10
	}
}

// cornerPositions of the board.
var cornerPositions = [4]Pos{
	{0, 0}, {0, BoardSize - 1}, {BoardSize - 1, 0}, {BoardSize - 1, BoardSize - 1}}

// scanLineWindow walks up to NumInLine cells from pos along dir, stopping at the
// board edge, and counts the player's pieces and the empty cells seen. Windows
// truncated by the edge see fewer than NumInLine cells and can never qualify as
// near-wins.
func scanLineWindow(b *Board, pos, dir Pos, player PlayerNum) (pieces, empties int) {
	for ii := int8(0); ii < NumInLine; ii++ {
		p := Pos{pos.Row() + ii*dir.Row(), pos.Col() + ii*dir.Col()}
		if !p.OnBoard() {
			break
		}
		owner, hasPiece := b.PieceAt(p)
		if !hasPiece {
			empties++
		} else if owner == player {
			pieces++
		}
	}
	return
}

// nearWinSquares counts the 2x2 squares containing pos that hold exactly 3 of the
// player's pieces and one empty cell.
func nearWinSquares(b *Board, pos Pos, player PlayerNum) (count int) {
	for _, originDelta := range squareOriginDeltas {
		origin := Pos{pos.Row() + originDelta.Row(), pos.Col() + originDelta.Col()}
		if origin.Row() < 0 || origin.Col() < 0 ||
			origin.Row()+1 >= BoardSize || origin.Col()+1 >= BoardSize {
			continue
		}
		pieces, empties := 0, 0
		for _, delta := range squareCellDeltas {
			owner, hasPiece := b.PieceAt(Pos{origin.Row() + delta.Row(), origin.Col() + delta.Col()})
			if !hasPiece {
				empties++
			} else if owner == player {
				pieces++
			}
		}
		if pieces == 3 && empties == 1 {
			count++
		}
	}
	return
}

// runLength counts the consecutive pieces of the player starting at pos along dir,
// up to NumInLine.
func runLength(b *Board, pos, dir Pos, player PlayerNum) int {
	run := 1
	for ii := int8(1); ii < NumInLine; ii++ {
		p := Pos{pos.Row() + ii*dir.Row(), pos.Col() + ii*dir.Col()}
		if !p.OnBoard() || b.CellAt(p).Owner() != player {
			break
		}
		run++
	}
	return run
}

// fullSquareAt reports whether pos is the top-left corner of a 2x2 square fully
// owned by the player.
func fullSquareAt(b *Board, pos Pos, player PlayerNum) bool {
	if pos.Row()+1 >= BoardSize || pos.Col()+1 >= BoardSize {
		return false
	}
	for _, delta := range squareCellDeltas {
		if b.CellAt(Pos{pos.Row() + delta.Row(), pos.Col() + delta.Col()}).Owner() != player {
			return false
		}
	}
	return true
}

// connectedGroupSize flood-fills the 8-connected group of the player's pieces
// containing pos, marking every piece it reaches in visited.
func connectedGroupSize(b *Board, pos Pos, player PlayerNum, visited generics.Set[Pos]) int {
	visited.Insert(pos)
	size := 1
	for _, neighbour := range b.PlayerNeighbours(player, pos) {
		if !visited.Has(neighbour) {
			size += connectedGroupSize(b, neighbour, player, visited)
		}
	}
	return size
}
