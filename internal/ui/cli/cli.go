// Package cli implements a command-line UI for the game.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/janpfeifer/teekoGo/internal/players"
	. "github.com/janpfeifer/teekoGo/internal/state"
	"github.com/janpfeifer/teekoGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// cellWidth of each board cell drawn, not counting the separator.
const cellWidth = 3

var ansiFilter = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// displayWidth of s removes its color/control sequences and returns the length of what is left.
func displayWidth(s string) int {
	return len(ansiFilter.ReplaceAllString(s, ""))
}

func printCentered(block string) {
	lines := strings.Split(block, "\n")
	terminalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	blockWidth := 0
	for _, line := range lines {
		if len(line) > blockWidth {
			blockWidth = displayWidth(line)
		}
	}
	indent := (terminalWidth - blockWidth) / 2
	if indent < 0 {
		indent = 0
	}
	for _, line := range lines {
		if len(line) == 0 {
			fmt.Println()
			continue
		}
		fmt.Printf("%s%s\n", strings.Repeat(" ", indent), line)
	}
}

// UI implements the terminal interface for a match: board rendering and the input loop.
type UI struct {
	color, clearScreen bool
	reader             *bufio.Reader
}

var (
	placementParser = regexp.MustCompile(`^([a-e])\s*([1-5])$`)
	moveParser      = regexp.MustCompile(`^([a-e])\s*([1-5])[\s,-]+([a-e])\s*([1-5])$`)

	parsingErrorMsg = "failed to read command 3 times"

	// ErrQuit is returned when the user asks to leave the match.
	ErrQuit = errors.New("match interrupted by the user")
)

func New(color bool, clearScreen bool) *UI {
	return &UI{
		color:       color,
		clearScreen: clearScreen,
		reader:      bufio.NewReader(os.Stdin),
	}
}

// parsePos converts the matched column letter and row digit to a position.
func parsePos(colLetter, rowDigit string) Pos {
	return Pos{int8(rowDigit[0] - '1'), int8(colLetter[0] - 'a')}
}

// Run plays a match on the terminal until the end and returns the final board.
// A nil entry in aiPlayers means the corresponding seat is played by a human; with both
// entries set the match is only watched.
func (ui *UI) Run(ctx context.Context, board *Board, aiPlayers [NumPlayers]players.Player) (*Board, error) {
	watching := aiPlayers[PlayerFirst] != nil && aiPlayers[PlayerSecond] != nil
	for !board.IsFinished() {
		if err := ctx.Err(); err != nil {
			return board, err
		}
		aiPlayer := aiPlayers[board.NextPlayer]
		if aiPlayer == nil {
			newBoard, err := ui.RunNextMove(board)
			if err != nil {
				return board, err
			}
			board = newBoard
			continue
		}

		// AI plays.
		if watching {
			ui.Print(board, false)
			fmt.Print("\t")
		}
		ui.PrintSpacedPlayer(board)
		spinner := spinning.New(ctx)
		action, newBoard, score, _ := aiPlayer.Play(board)
		spinner.Done()
		fmt.Printf(" plays %s (score=%.3f)\n", action, score)
		board = newBoard
	}

	ui.Print(board, false)
	ui.PrintWinner(board)
	ui.PrintThinkTimes(aiPlayers)
	return board, nil
}

// RunNextMove prompts the human next player for one action and returns the board after
// it is taken.
func (ui *UI) RunNextMove(board *Board) (*Board, error) {
	for {
		ui.Print(board, true)
		fmt.Println()
		action, err := ui.ReadCommand(board)
		if err != nil && err.Error() == parsingErrorMsg {
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrQuit) {
				log.Printf("RunNextMove() failed: %s", err)
			}
			return board, err
		}
		board = board.Act(action)
		break
	}
	return board, nil
}

// ReadCommand reads one action for the next player from stdin.
//
// Placements are entered as the target cell ("c3"), movements as source and target
// ("b3 c4", "b3-c4" also accepted). "help" lists the available actions and "quit"
// leaves the match (returned as ErrQuit). After 3 unparseable or invalid inputs it
// gives up, so the board can be re-printed.
func (ui *UI) ReadCommand(b *Board) (action Action, err error) {
	// ANSI escape codes for:
	// - \033[30;45;2m: dark text on a magenta (purple-ish) background
	// - \033[39;49;0m: reset all attributes to defaults
	const (
		inputAreaColor = "\033[30;45;2m"        // Purplish background
		inputAreaReset = "\033[39;49;0m\033[0K" // Reset color and clear to the end-of-line.
		inputWidth     = 14                     // Width of the input area
	)

	for numErrs := 0; numErrs < 3; {
		fmt.Print("    ")
		ui.PrintPlayer(b)
		fmt.Print(" action > ")

		// Print "input area" in purple, and move the cursor back to the beginning of the input area.
		fmt.Printf("%s%s", inputAreaColor, strings.Repeat(" ", inputWidth))
		fmt.Printf("\033[%dD", inputWidth-1) // Left 1 char padding.

		var text string
		text, err = ui.reader.ReadString('\n')
		fmt.Printf(inputAreaReset) // We don't want the purple color to leak.
		if err != nil {
			return
		}
		text = strings.ToLower(strings.TrimSpace(text))

		switch text {
		case "help", "h", "?":
			fmt.Println()
			ui.printHelp(b)
			continue
		case "quit", "exit", "q":
			err = ErrQuit
			return
		}

		if matches := placementParser.FindStringSubmatch(text); len(matches) == 3 {
			action = Action{Move: false, TargetPos: parsePos(matches[1], matches[2])}
		} else if matches := moveParser.FindStringSubmatch(text); len(matches) == 5 {
			action = Action{
				Move:      true,
				SourcePos: parsePos(matches[1], matches[2]),
				TargetPos: parsePos(matches[3], matches[4]),
			}
		} else {
			fmt.Printf("    * Failed to parse %q, type \"help\" to see how to enter your action.\n", text)
			numErrs++
			continue
		}

		if checkErr := b.CheckAction(action); checkErr != nil {
			fmt.Printf("    * Sorry, %v.\n", checkErr)
			numErrs++
			continue
		}
		err = nil
		return
	}
	err = errors.New(parsingErrorMsg)
	return
}

// printHelp explains the input syntax and lists what can be played now.
func (ui *UI) printHelp(b *Board) {
	if b.Phase() == PhasePlacement {
		fmt.Println("  - Type the cell to place a piece in, column letter first: e.g. \"c3\".")
	} else {
		fmt.Println("  - Type the cell of the piece to move and where to move it: e.g. \"b3 c4\" (or \"b3-c4\").")
		fmt.Println("    Pieces move to any free neighbouring cell, including diagonals.")
	}
	fmt.Println("  - \"quit\" concedes and leaves the match.")
	ui.printActions(b)
	fmt.Println()
}

// Print the board and the match situation. If includeAvailableActions, it also lists what
// the next player can play, allowing them to answer the prompt.
func (ui *UI) Print(board *Board, includeAvailableActions bool) {
	if board.Derived == nil {
		log.Fatal("Called UI.Print(board), with board without Derived set.")
	}
	if ui.clearScreen {
		fmt.Print("\033c")
	}
	if ui.color {
		fmt.Print("\033[37;03;1m")
	}
	fmt.Printf("\nMove #%d (%s phase)%s\n\n", board.MoveNumber, board.Phase(), ui.colorEnd())

	ui.PrintBoard(board)
	fmt.Println()
	if board.Phase() == PhasePlacement {
		ui.PrintAvailablePieces(board)
	}

	if !board.IsFinished() {
		if includeAvailableActions {
			fmt.Println()
			ui.PrintPlayer(board)
			fmt.Println(" turn to play")
			ui.printActions(board)
		} else {
			fmt.Print("\tTurn to play: ")
			ui.PrintPlayer(board)
			fmt.Println()
		}
	}
}

// PrintPlayer prints the colored name of the next player to move.
func (ui *UI) PrintPlayer(board *Board) {
	fmt.Printf("%s%s Player%s", ui.colorStart(board.NextPlayer), board.NextPlayer, ui.colorEnd())
}

// PrintSpacedPlayer is like PrintPlayer, but includes a left-space for the first player,
// so they all use the same width.
func (ui *UI) PrintSpacedPlayer(board *Board) {
	if board.NextPlayer == PlayerFirst {
		fmt.Print(" ")
	}
	ui.PrintPlayer(board)
}

// PrintAvailablePieces prints how many pieces each player still has to place.
func (ui *UI) PrintAvailablePieces(board *Board) {
	for _, player := range []PlayerNum{PlayerFirst, PlayerSecond} {
		space := ""
		if player == PlayerFirst {
			space = " "
		}
		fmt.Printf("%s%s%s Player%s off-board: %d piece(s)\n",
			space, ui.colorStart(player), player, ui.colorEnd(), board.Available(player))
	}
}

// PrintBoard prints the 5x5 board, centered on the terminal.
func (ui *UI) PrintBoard(board *Board) {
	var buf bytes.Buffer

	// Column letters header, centered over the cells.
	_, _ = fmt.Fprint(&buf, "    ")
	for col := int8(0); col < BoardSize; col++ {
		_, _ = fmt.Fprintf(&buf, " %c  ", 'a'+col)
	}
	_, _ = fmt.Fprintln(&buf)

	ui.printGridLine(&buf)
	for row := int8(0); row < BoardSize; row++ {
		_, _ = fmt.Fprintf(&buf, " %d ", row+1)
		for col := int8(0); col < BoardSize; col++ {
			_, _ = fmt.Fprint(&buf, "|")
			ui.printCell(&buf, board, Pos{row, col})
		}
		_, _ = fmt.Fprintln(&buf, "|")
		ui.printGridLine(&buf)
	}
	printCentered(buf.String())
}

func (ui *UI) printGridLine(w io.Writer) {
	_, _ = fmt.Fprintf(w, "   %s+\n", strings.Repeat("+"+strings.Repeat("-", cellWidth), BoardSize))
}

func (ui *UI) printCell(w io.Writer, board *Board, pos Pos) {
	player, hasPiece := board.PieceAt(pos)
	if !hasPiece {
		_, _ = fmt.Fprint(w, strings.Repeat(" ", cellWidth))
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s %s", ui.colorStart(player), pieceGlyphs[player], ui.colorEnd())
}

// pieceGlyphs indexed by PlayerNum.
var pieceGlyphs = [NumPlayers]string{"X", "O"}

// colorStart returns the ANSI sequence for the player's color: Black plays on red,
// White on cyan.
func (ui *UI) colorStart(player PlayerNum) string {
	if !ui.color {
		return ""
	}
	if player == PlayerFirst {
		return "\033[30;41;1m"
	}
	return "\033[30;46;1m"
}

func (ui *UI) colorEnd() string {
	if !ui.color {
		return ""
	}
	return "\033[39;49;0m"
}

// printActions summarizes the available actions of the next player.
func (ui *UI) printActions(b *Board) {
	fmt.Print("- Available actions:\n")
	if b.Phase() == PhasePlacement {
		ui.printPlacementActions(b)
		return
	}
	ui.printMoveActions(b)
}

func (ui *UI) printPlacementActions(b *Board) {
	examplePos := b.Derived.Actions[0].TargetPos
	fmt.Printf("  - Place a piece in any free cell: type e.g. '%s'.\n", examplePos)
}

func (ui *UI) printMoveActions(b *Board) {
	// Group target positions by source position.
	moves := make(map[Pos][]Pos)
	for _, action := range b.Derived.Actions {
		moves[action.SourcePos] = append(moves[action.SourcePos], action.TargetPos)
	}
	srcPositions := make([]Pos, 0, len(moves))
	for srcPos := range moves {
		srcPositions = append(srcPositions, srcPos)
	}
	SortPositions(srcPositions)

	var exampleSrcPos, exampleTgtPos Pos
	for ii, srcPos := range srcPositions {
		tgtPositions := moves[srcPos]
		SortPositions(tgtPositions)
		if ii == 0 {
			exampleSrcPos = srcPos
			exampleTgtPos = tgtPositions[0]
		}
		fmt.Printf("  - Move %s to one of [%s]\n", srcPos, strings.Join(PosStrings(tgtPositions), ", "))
	}
	fmt.Printf("    Example: type '%s %s' to move %s to %s.\n",
		exampleSrcPos, exampleTgtPos, exampleSrcPos, exampleTgtPos)
}

// PrintWinner prints the end-of-match banner.
func (ui *UI) PrintWinner(b *Board) {
	winner := b.Winner()
	fmt.Println()
	if winner == PlayerInvalid {
		printCentered(
			lipgloss.NewStyle().
				Background(lipgloss.Color("13")).
				Foreground(lipgloss.Color("0")).
				Padding(1, 2).
				Render(fmt.Sprintf("*** DRAW: %s! ***", b.FinishReason())))
	} else {
		printCentered(fmt.Sprintf("%s *** %s PLAYER WINS (%s)! Congratulations! *** %s\n",
			ui.colorStart(winner), strings.ToUpper(winner.String()), b.FinishReason(), ui.colorEnd()))
	}
	fmt.Println()
}

// PrintThinkTimes prints the accumulated think time of the AI players, if any.
func (ui *UI) PrintThinkTimes(aiPlayers [NumPlayers]players.Player) {
	for playerNum, aiPlayer := range aiPlayers {
		searcherScorer, ok := aiPlayer.(*players.SearcherScorer)
		if !ok {
			continue
		}
		fmt.Printf("%s%s Player%s AI thought for %s in total.\n",
			ui.colorStart(PlayerNum(playerNum)), PlayerNum(playerNum), ui.colorEnd(),
			searcherScorer.ThinkTime())
	}
}
