// Command arena runs AI-vs-AI Teeko tournaments in parallel and tallies the outcome.
//
// The two contenders are given as player configuration strings, either in a YAML file
// (--config) or directly with --p1/--p2. Seats swap every other match, so both play
// Black the same number of times.
package main

import (
	"context"
	"flag"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"github.com/janpfeifer/teekoGo/internal/config"
	"github.com/janpfeifer/teekoGo/internal/players"
	_ "github.com/janpfeifer/teekoGo/internal/players/default"
	"github.com/janpfeifer/teekoGo/internal/profilers"
	"github.com/janpfeifer/teekoGo/internal/state"
	"github.com/janpfeifer/teekoGo/internal/ui/spinning"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

var (
	flagConfig      = flag.String("config", "", "YAML file with the arena configuration. The flags below override its values.")
	flagPlayer1     = flag.String("p1", "", "1st player configuration, e.g. \"ab:max_depth=3\".")
	flagPlayer2     = flag.String("p2", "", "2nd player configuration, e.g. \"mcts:max_time=1s\".")
	flagNumMatches  = flag.Int("matches", 0, "Number of matches to play.")
	flagParallelism = flag.Int("parallelism", 0, "How many matches to play simultaneously. Defaults to GOMAXPROCS.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	cfg := must.M1(config.Load(*flagConfig))
	if *flagPlayer1 != "" {
		cfg.Player1 = *flagPlayer1
	}
	if *flagPlayer2 != "" {
		cfg.Player2 = *flagPlayer2
	}
	if *flagNumMatches > 0 {
		cfg.Matches = *flagNumMatches
	}
	if *flagParallelism > 0 {
		cfg.Parallelism = *flagParallelism
	}

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	// Profilers: HTTP profiler server and CPU profile.
	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	must.M(runMatches(globalCtx, cfg))
}

// Results of the tournament so far. Matches finish concurrently, hence the mutex.
// Wins and draws are indexed by the AI (0 for --p1, 1 for --p2), independently of the
// seat it took in each particular match.
type Results struct {
	mu                   sync.Mutex
	start                time.Time
	winsAs1st, winsAs2nd [2]int
	draws                [2]int
	totalMoves           int
	thinkTime            [2]time.Duration
	played, total        int
}

func (r *Results) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Played %d of %d: ", r.played, r.total))
	for aiIdx := range 2 {
		parts = append(parts,
			fmt.Sprintf("AI-%d: %d wins (as Black: %d, as White: %d) / ",
				aiIdx+1, r.winsAs1st[aiIdx]+r.winsAs2nd[aiIdx],
				r.winsAs1st[aiIdx], r.winsAs2nd[aiIdx]))
	}
	parts = append(parts, fmt.Sprintf("%d draws - ", r.draws[0]+r.draws[1]))
	parts = append(parts, time.Since(r.start).Round(time.Second).String())
	parts = append(parts, "\x1b[0K")
	return strings.Join(parts, "")
}

// printFinalTable with the tally of the tournament.
func (r *Results) printFinalTable(configs [2]string) {
	avgMoves := 0.0
	if r.played > 0 {
		avgMoves = float64(r.totalMoves) / float64(r.played)
	}
	fmt.Printf("\nResults after %d matches (%.1f moves per match on average, in %s):\n\n",
		r.played, avgMoves, time.Since(r.start).Round(time.Second))
	fmt.Printf("  %-4s  %-40s %6s %9s %9s %7s %12s\n",
		"", "Player", "Wins", "As Black", "As White", "Draws", "Think time")
	for aiIdx := range 2 {
		fmt.Printf("  AI-%d  %-40s %6d %9d %9d %7d %12s\n",
			aiIdx+1, fmt.Sprintf("%q", configs[aiIdx]),
			r.winsAs1st[aiIdx]+r.winsAs2nd[aiIdx], r.winsAs1st[aiIdx], r.winsAs2nd[aiIdx],
			r.draws[aiIdx], r.thinkTime[aiIdx].Round(time.Millisecond))
	}
	fmt.Printf("\n  Draws are tallied under the AI that played Black in the match.\n")
}

// aiIdxForSeat maps a seat of the given match back to the AI index (0 for --p1,
// 1 for --p2). AI-1 plays Black on even matches, White on odd ones.
func aiIdxForSeat(matchIdx int, seat state.PlayerNum) int {
	if matchIdx%2 == 1 {
		return 1 - int(seat)
	}
	return int(seat)
}

func runMatches(ctx context.Context, cfg *config.Config) error {
	configs := [state.NumPlayers]string{cfg.Player1, cfg.Player2}
	r := &Results{
		start: time.Now(),
		total: cfg.Matches,
	}
	var wg errgroup.Group
	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	wg.SetLimit(parallelism)
	fmt.Printf("Teeko arena: %q vs %q, %d matches, parallelism=%d\n",
		cfg.Player1, cfg.Player2, cfg.Matches, parallelism)
	fmt.Printf("\r%s", r)

	for matchIdx := range r.total {
		wg.Go(func() error {
			var matchConfigs [state.NumPlayers]string
			for seat := range state.NumPlayers {
				matchConfigs[seat] = configs[aiIdxForSeat(matchIdx, state.PlayerNum(seat))]
			}
			winner, numMoves, thinkTimes, err := runMatch(ctx, cfg, matchConfigs)
			if err != nil || ctx.Err() != nil {
				return err
			}

			// Record the result.
			r.mu.Lock()
			defer r.mu.Unlock()
			if winner == state.PlayerInvalid {
				r.draws[aiIdxForSeat(matchIdx, state.PlayerFirst)]++
			} else {
				aiIdx := aiIdxForSeat(matchIdx, winner)
				if winner == state.PlayerFirst {
					r.winsAs1st[aiIdx]++
				} else {
					r.winsAs2nd[aiIdx]++
				}
			}
			r.totalMoves += numMoves
			for seat := range state.NumPlayers {
				r.thinkTime[aiIdxForSeat(matchIdx, state.PlayerNum(seat))] += thinkTimes[seat]
			}
			r.played++
			fmt.Printf("\r%s", r)
			return nil
		})
	}
	err := wg.Wait()
	fmt.Printf("\r%s", r)
	fmt.Println()
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
		return nil
	}
	if err != nil {
		return err
	}
	r.printFinalTable(configs)
	return nil
}

// runMatch plays one match between the given player configurations -- index 0 plays
// Black. It returns the winning seat (PlayerInvalid on a draw), the number of moves
// played and the think time per seat.
func runMatch(ctx context.Context, cfg *config.Config, configs [state.NumPlayers]string) (
	winner state.PlayerNum, numMoves int, thinkTimes [state.NumPlayers]time.Duration, err error) {
	winner = state.PlayerInvalid
	if ctx.Err() != nil {
		// Tournament already interrupted.
		return
	}
	matchId := uuid.NewString()
	if klog.V(1).Enabled() {
		klog.Infof("Starting match %s: %q (Black) vs %q (White)",
			matchId, configs[state.PlayerFirst], configs[state.PlayerSecond])
		defer func() {
			klog.Infof("Finished match %s after %d moves, winner=%s", matchId, numMoves, winner)
		}()
	}

	var aiPlayers [state.NumPlayers]players.Player
	for seat, playerConfig := range configs {
		aiPlayers[seat], err = players.New(matchId, state.PlayerNum(seat), playerConfig)
		if err != nil {
			return
		}
	}

	board := state.NewBoard()
	board.MaxMoves = cfg.MaxMoves
	for !board.IsFinished() {
		if ctx.Err() != nil {
			klog.V(1).Infof("Match %s interrupted: %s", matchId, ctx.Err())
			return
		}
		player := aiPlayers[board.NextPlayer]
		if klog.V(2).Enabled() {
			klog.Infof("Match %s: %s to play move #%d (#valid actions=%d)",
				matchId, board.NextPlayer, board.MoveNumber, len(board.Derived.Actions))
		}
		_, nextBoard, _, _ := player.Play(board)
		board.ClearNextBoardsCache()
		board = nextBoard
	}

	numMoves = board.MoveNumber - 1
	winner = board.Winner()
	for seat, player := range aiPlayers {
		if searcherScorer, ok := player.(*players.SearcherScorer); ok {
			thinkTimes[seat] = searcherScorer.ThinkTime()
		}
		player.Finalize()
	}
	return
}
