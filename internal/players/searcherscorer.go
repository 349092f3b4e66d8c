package players

import (
	"fmt"
	"time"

	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/searchers"
	. "github.com/janpfeifer/teekoGo/internal/state"
	"k8s.io/klog/v2"
)

// SearcherScorer is the standard set up for an AI: a searcher and the scorer guiding it.
// It implements the Player interface and accumulates the time spent thinking, which
// front-ends report at the end of a match.
type SearcherScorer struct {
	Searcher searchers.Searcher
	Scorer   ai.ValueScorer

	thinkTime time.Duration
}

// NewSearcherScorer creates a Player out of the searcher and the scorer that guides it.
func NewSearcherScorer(searcher searchers.Searcher, scorer ai.ValueScorer) *SearcherScorer {
	return &SearcherScorer{Searcher: searcher, Scorer: scorer}
}

// Assert that SearcherScorer is a Player.
var _ Player = &SearcherScorer{}

// Play implements the Player interface: it chooses an action given a Board.
func (s *SearcherScorer) Play(b *Board) (
	action Action, board *Board, score float32, actionsScores []float32) {
	start := time.Now()
	action, board, score, actionsScores = s.Searcher.Search(b)
	s.thinkTime += time.Since(start)
	if klog.V(2).Enabled() {
		klog.Infof("Move #%d: AI (%s) playing %s, score=%.3f",
			b.MoveNumber, s.Scorer, action, score)
	}
	return
}

// String implements fmt.Stringer.
func (s *SearcherScorer) String() string {
	return fmt.Sprintf("%s/%s", s.Searcher, s.Scorer)
}

// ThinkTime accumulated by the player during the match so far.
func (s *SearcherScorer) ThinkTime() time.Duration {
	return s.thinkTime
}

// Finalize is called at the end of a match.
func (s *SearcherScorer) Finalize() {
	if klog.V(1).Enabled() {
		klog.Infof("Player (%s/%s) finalized after %s thinking", s.Searcher, s.Scorer, s.thinkTime)
	}
	s.Scorer = nil
	s.Searcher = nil
}
