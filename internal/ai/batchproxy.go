package ai

import (
	"github.com/janpfeifer/teekoGo/internal/generics"
	. "github.com/janpfeifer/teekoGo/internal/state"
)

// BatchValueScorerProxy is a trivial implementation of a BatchValueScorer, with no efficiency gains.
type BatchValueScorerProxy struct {
	ValueScorer
}

// BatchScore calls Score for each board of the batch.
func (s BatchValueScorerProxy) BatchScore(boards []*Board) (scores []float32) {
	scores = generics.SliceMap(boards, func(board *Board) float32 {
		return s.Score(board)
	})
	return
}

func (s BatchValueScorerProxy) String() string {
	return s.ValueScorer.String()
}

// Assert BatchValueScorerProxy implements BatchValueScorer
var _ BatchValueScorer = &BatchValueScorerProxy{}
