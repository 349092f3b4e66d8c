// Command teeko plays Teeko matches on the terminal: human vs AI (default),
// human vs human (--hotseat) or AI vs AI (--watch).
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/teekoGo/internal/players"
	_ "github.com/janpfeifer/teekoGo/internal/players/default"
	. "github.com/janpfeifer/teekoGo/internal/state"
	"github.com/janpfeifer/teekoGo/internal/ui/cli"
	"github.com/janpfeifer/teekoGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagHotseat   = flag.Bool("hotseat", false, "Hotseat match: human vs human.")
	flagWatch     = flag.Bool("watch", false, "Watch mode: AI vs AI playing.")
	flagFirst     = flag.String("first", "random", "Color the human plays, and hence who moves first: \"black\", \"white\" or \"random\".")
	flagAIConfig  = flag.String("ai", players.DefaultPlayerConfig, "AI configuration to play against.")
	flagAIConfig2 = flag.String("ai2", players.DefaultPlayerConfig, "Second AI configuration, playing White when watching AI vs AI with --watch.")
	flagMaxMoves  = flag.Int("max_moves", DefaultMaxMoves, "Max moves before the match is considered a draw.")

	// aiPlayers: if nil, it's a human playing.
	aiPlayers = [NumPlayers]players.Player{nil, nil}

	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagMaxMoves <= 0 {
		klog.Fatalf("Invalid --max_moves=%d", *flagMaxMoves)
	}

	// Capture Control+C.
	var cancel func()
	globalCtx, cancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(cancel, 3*time.Second)
	defer cancel()

	createPlayers()

	board := NewBoard()
	board.MaxMoves = *flagMaxMoves
	ui := cli.New(true, false)

	_, err := ui.Run(globalCtx, board, aiPlayers)
	if err != nil {
		if errors.Is(err, cli.ErrQuit) || errors.Is(err, context.Canceled) {
			fmt.Println("Match interrupted, see you next time!")
			return
		}
		klog.Exitf("Failed to run match: %+v", err)
	}
	for _, aiPlayer := range aiPlayers {
		if aiPlayer != nil {
			aiPlayer.Finalize()
		}
	}
}

// createPlayers fills in aiPlayers according to the flags. A nil entry is a human seat.
func createPlayers() {
	if *flagHotseat && *flagWatch {
		klog.Fatalf("--hotseat and --watch cannot be used together")
	}
	if *flagHotseat {
		// Both players are human, nothing to do.
		return
	}

	matchId := uuid.NewString()
	if *flagWatch {
		aiPlayers[PlayerFirst] = must.M1(players.New(matchId, PlayerFirst, *flagAIConfig))
		aiPlayers[PlayerSecond] = must.M1(players.New(matchId, PlayerSecond, *flagAIConfig2))
		return
	}

	// Human vs AI: find the color the human plays.
	var humanPlayerNum PlayerNum
	switch strings.ToLower(*flagFirst) {
	case "black":
		humanPlayerNum = PlayerFirst
	case "white":
		humanPlayerNum = PlayerSecond
	case "random", "":
		humanPlayerNum = PlayerNum(rand.IntN(NumPlayers))
	default:
		exceptions.Panicf("invalid --first=%q, only valid values are \"black\", \"white\" or \"random\"",
			*flagFirst)
	}
	aiPlayerNum := 1 - humanPlayerNum
	aiPlayers[aiPlayerNum] = must.M1(players.New(matchId, aiPlayerNum, *flagAIConfig))
	fmt.Printf("You play %s, the AI (%s) plays %s.\n",
		humanPlayerNum, aiPlayers[aiPlayerNum], aiPlayerNum)
}
