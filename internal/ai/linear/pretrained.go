package linear

import (
	"log"
	"slices"

	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/features"
	"github.com/janpfeifer/teekoGo/internal/generics"
	"github.com/janpfeifer/teekoGo/internal/parameters"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Embedded pre-trained linear models, one per difficulty tier.

// presetLogitScale scales the handcrafted tier weights below before they are applied.
// The weights are kept on the readable integer-ish scale of classic Teeko evaluation
// functions; raw, their logits would saturate the tanh squashing to exactly ±1 in
// float32, collapsing the ordering between moves. tanh is monotonic, so the scale
// changes no preference between boards.
const presetLogitScale = float32(1.0 / 256.0)

// newPreset builds a Scorer from handcrafted weights, scaled by presetLogitScale.
func newPreset(weights ...float32) *Scorer {
	for ii := range weights {
		weights[ii] *= presetLogitScale
	}
	return NewWithWeights(weights...)
}

var (
	// PreTrainedEasy plays a greedy game centered on the middle of the board.
	PreTrainedEasy = newPreset(
		// NumOnBoard / OppNumOnBoard
		0, 0,
		// CentralControl / OppCentralControl
		15, 0,
		// Mobility / OppMobility
		1.5, -1.5,
		// NearVictory / OppNearVictory
		5, 0,
		// ThreatLines / OppThreatLines
		0, 0,
		// ThreatSquares / OppThreatSquares
		0, 0,
		// Connectivity / OppConnectivity
		0, 0,
		// CornerPieces / OppCornerPieces
		0, 0,
		// Alignment / OppAlignment
		0, 0,
		// MovesToDraw
		0,
		// Bias: *Must always be last*
		0,
	).WithName("easy")

	// PreTrainedMedium values mobility and almost-complete configurations over
	// board center.
	PreTrainedMedium = newPreset(
		// NumOnBoard / OppNumOnBoard
		0, 0,
		// CentralControl / OppCentralControl
		2, 0,
		// Mobility / OppMobility
		5.5, -5.5,
		// NearVictory / OppNearVictory
		15, 0,
		// ThreatLines / OppThreatLines
		0, 0,
		// ThreatSquares / OppThreatSquares
		0, 0,
		// Connectivity / OppConnectivity
		0, 0,
		// CornerPieces / OppCornerPieces
		0, 0,
		// Alignment / OppAlignment
		0, 0,
		// MovesToDraw
		0,
		// Bias: *Must always be last*
		0,
	).WithName("medium")

	// PreTrainedHard shares the medium weights -- the hard tier differs by
	// searching deeper, see players/default.
	PreTrainedHard = PreTrainedMedium.Clone().WithName("hard")

	// PreTrainedExpert adds defense: opponent threats weigh heavily against a
	// position, and loosely connected or cornered pieces are penalized.
	PreTrainedExpert = newPreset(
		// NumOnBoard / OppNumOnBoard
		0, 0,
		// CentralControl / OppCentralControl
		2.5, 0,
		// Mobility / OppMobility
		6, -6,
		// NearVictory / OppNearVictory
		17, 0,
		// ThreatLines / OppThreatLines
		0, -110,
		// ThreatSquares / OppThreatSquares
		0, -165,
		// Connectivity / OppConnectivity
		4, 0,
		// CornerPieces / OppCornerPieces
		-5, 0,
		// Alignment / OppAlignment
		1, 0,
		// MovesToDraw
		0,
		// Bias: *Must always be last*
		0,
	).WithName("expert")

	// PreTrainedZero scores every board 0. Searchers wrapping it degrade to
	// uniformly random play.
	PreTrainedZero = NewWithWeights(make([]float32, features.BoardFeaturesDim+1)...).WithName("zero")

	// PreTrainedBest is an alias to the current best linear model.
	PreTrainedBest = PreTrainedExpert.Clone().WithName("best")

	// PreTrained maps the preset names accepted in player configurations to their models.
	PreTrained = map[string]*Scorer{
		"easy":   PreTrainedEasy,
		"medium": PreTrainedMedium,
		"hard":   PreTrainedHard,
		"expert": PreTrainedExpert,
		"zero":   PreTrainedZero,
		"best":   PreTrainedBest,
	}
)

func init() {
	for name, scorer := range PreTrained {
		if scorer.NumFeatures() != features.BoardFeaturesDim {
			log.Fatalf("linear.PreTrained[%q] has %d weights (+1 bias), but features.BoardFeaturesDim=%d",
				name, scorer.NumFeatures(), features.BoardFeaturesDim)
		}
	}
}

// NewFromParams returns the linear scorer selected by the "scorer" parameter, otherwise
// it returns nil (and no error).
// The parameter takes one of the PreTrained names ("easy", "medium", "hard", "expert",
// "zero", "best") or a path to a model file, which is loaded -- or created, bootstrapped
// from PreTrainedBest, if it doesn't exist yet.
func NewFromParams(params parameters.Params) (ai.ValueScorer, error) {
	if _, found := params["scorer"]; !found {
		return nil, nil
	}
	modelName, err := parameters.PopParamOr(params, "scorer", "best")
	if err != nil {
		return nil, err
	}
	selected, found := PreTrained[modelName]
	if !found {
		selected, err = LoadOrCreate(modelName)
		if err != nil {
			err = errors.WithMessagef(err, "failed to load model \"scorer=%s\" (known pre-trained models: %v)",
				modelName, slices.Collect(generics.SortedKeys(PreTrained)))
			return nil, err
		}
	}

	klog.V(1).Infof("Linear model %s with %d features", selected, selected.NumFeatures())
	return selected, nil
}
