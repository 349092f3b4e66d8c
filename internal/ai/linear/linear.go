// Package linear implements a pure Go linear scorer that can be used to play as well as
// training -- it defines its own gradient for that, and can be used for a simple SGD.
package linear

import (
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/janpfeifer/teekoGo/internal/ai"
	"github.com/janpfeifer/teekoGo/internal/features"
	. "github.com/janpfeifer/teekoGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Scorer is a linear model (one weight per feature + bias) on the feature set.
// It implements ai.ValueScorer.
type Scorer struct {
	weights []float32
	name    string

	// LearningRate to use when training the linear model and L2Reg to use.
	LearningRate, L2Reg float32

	// GradientL2Clip clips the gradient to this l2 length before applying.
	GradientL2Clip float32

	// Linearize training.
	muLearning sync.Mutex

	// NumSteps to do gradient descent when Learn is called.
	NumSteps int

	// FileName where to save/load the model from.
	FileName string
	muSave   sync.Mutex
}

// NewWithWeights creates a new Scorer with the given weights.
// Ownership of the weights is transferred.
func NewWithWeights(weights ...float32) *Scorer {
	return &Scorer{
		weights:        weights,
		LearningRate:   0.01,
		L2Reg:          1e-3,
		GradientL2Clip: 10.0,
		NumSteps:       1,
	}
}

var (
	// Assert Scorer is an ai.ValueScorer and an ai.BatchValueScorer
	_ ai.ValueScorer      = (*Scorer)(nil)
	_ ai.BatchValueScorer = (*Scorer)(nil)
)

// WithName sets the name of the scorer and returns itself.
func (s *Scorer) WithName(name string) *Scorer {
	s.name = name
	return s
}

// Clone returns a copy of the Scorer that shares no mutable state with the original:
// one can be trained without affecting the other.
func (s *Scorer) Clone() *Scorer {
	c := NewWithWeights(slices.Clone(s.weights)...)
	c.name = s.name
	c.LearningRate = s.LearningRate
	c.L2Reg = s.L2Reg
	c.GradientL2Clip = s.GradientL2Clip
	c.NumSteps = s.NumSteps
	return c
}

// String implements fmt.Stringer and ai.ValueScorer.
func (s *Scorer) String() string {
	if s.name == "" {
		return "linear"
	}
	return "linear/" + s.name
}

func (s *Scorer) logitScore(features []float32) float32 {
	// Sum start with bias.
	sum := s.weights[len(s.weights)-1]

	// Dot product of weights and features.
	if len(s.weights)-1 != len(features) {
		log.Panicf("Features dimension is %d, but weights dimension is %d (+1 bias)",
			len(features), len(s.weights)-1)
	}
	for ii, feature := range features {
		sum += feature * s.weights[ii]
	}
	return sum
}

// Score implements ai.ValueScorer.
func (s *Scorer) Score(board *Board) float32 {
	return s.ScoreFeatures(features.FeatureVector(board))
}

// ScoreFeatures is like Score, but it takes the raw features as input.
func (s *Scorer) ScoreFeatures(rawFeatures []float32) float32 {
	logit := s.logitScore(rawFeatures)
	return ai.SquashScore(logit)
}

// BatchScore implements ai.BatchValueScorer.
func (s *Scorer) BatchScore(boards []*Board) (scores []float32) {
	scores = make([]float32, len(boards))
	for ii, board := range boards {
		scores[ii] = s.Score(board)
	}
	return
}

// NumFeatures the model takes as input -- it has one weight per feature plus the bias term.
func (s *Scorer) NumFeatures() int {
	return len(s.weights) - 1
}

// l2RegularizationLoss is the regularization term for the loss.
func (s *Scorer) l2RegularizationLoss() float32 {
	if s.L2Reg == 0 {
		return 0
	}
	sum := float32(0)
	for _, param := range s.weights {
		sum += param * param
	}
	return sum * s.L2Reg
}

// Learn trains the model with the new boards and its labels.
// It returns the loss.
func (s *Scorer) Learn(boards []*Board, boardLabels []float32) (loss float32) {
	s.muLearning.Lock()
	defer s.muLearning.Unlock()

	// Build features.
	boardFeatures := make([][]float32, len(boards))
	for boardIdx, board := range boards {
		boardFeatures[boardIdx] = features.FeatureVector(board)
	}
	return s.lockedLearnFromFeatures(boardFeatures, boardLabels)
}

// lockedLearnFromFeatures uses as input a batch of feature vectors (as opposed to the raw boards)
// It assumes s.muLearning is already locked.
func (s *Scorer) lockedLearnFromFeatures(boardFeatures [][]float32, boardLabels []float32) (loss float32) {
	// Loop over steps.
	grad := make([]float32, len(s.weights))
	for range s.NumSteps {
		s.calculateGradient(boardFeatures, boardLabels, grad)

		// Clip gradient.
		if s.GradientL2Clip > 0 {
			clipL2(grad, s.GradientL2Clip)
		}

		// Apply gradient with the learning rate.
		for ii := range grad {
			s.weights[ii] -= s.LearningRate * grad[ii]
		}
	}
	return s.lossFromFeatures(boardFeatures, boardLabels)
}

// calculateGradient of the MSE (MeanSquaredError) loss:
//
//	  x, x_i: input (features) and x term i
//	  w, w_i: weights, and weight term i
//	  b: bias term of the model
//	  score: tanh(w*x+b)
//	Loss = (label - score)^2/N
//	  dLoss/dw_i = (2*(score-label)*d(score)/dw_i)/N
//	  dLoss/db = (2*(score-label)*d(score)/db)/N
//	  d(score)/dw_i = (1-score^2)*x_i
//	  d(score)/db = (1-score^2)
func (s *Scorer) calculateGradient(inputs [][]float32, labels []float32, gradient []float32) {
	for i := range gradient {
		gradient[i] = 0
	}
	N := float32(len(inputs))
	for exampleIdx, x := range inputs {
		score := s.ScoreFeatures(x)
		c := 2 * (score - labels[exampleIdx]) * (1 - score*score)
		for i, x_i := range x {
			// dLoss/dw_i
			gradient[i] += c * x_i
		}
		// gradient of the bias term (the last)
		gradient[len(gradient)-1] += c
	}

	// Take the mean:
	for ii := range gradient {
		gradient[ii] /= N
	}
	if s.L2Reg > 0 {
		// L2 regularization
		for ii := range s.weights {
			gradient[ii] += 2 * s.weights[ii] * s.L2Reg
		}
	}
}

// Loss returns the loss of the model given the labels.
func (s *Scorer) Loss(boards []*Board, boardLabels []float32) (loss float32) {
	// Build features.
	boardFeatures := make([][]float32, len(boards))
	for boardIdx, board := range boards {
		boardFeatures[boardIdx] = features.FeatureVector(board)
	}
	return s.lossFromFeatures(boardFeatures, boardLabels)
}

// lossFromFeatures calculates the loss after the boards have been converted to features (x).
func (s *Scorer) lossFromFeatures(boardFeatures [][]float32, boardLabels []float32) (loss float32) {
	for boardIdx, x := range boardFeatures {
		// MSE (MeanSquaredLoss):
		//     x, x_i: input (features) and x term i
		//     w, w_i: weights, and weight term i
		//     b: bias term of the model
		//     score: tanh(w*x+b)
		//   Loss = (label - score)^2/N + L2Reg(w) + L2Reg(b)
		score := s.ScoreFeatures(x)
		diff := boardLabels[boardIdx] - score
		loss += diff * diff
	}
	N := float32(len(boardLabels))
	loss /= N
	loss += s.l2RegularizationLoss()
	return
}

func l2Len(vec []float32) float32 {
	total := float32(0.0)
	for _, value := range vec {
		total += value * value
	}
	return float32(math.Sqrt(float64(total)))
}

// clipL2 clips the L2 length of the vector.
func clipL2(vec []float32, maxLen float32) {
	l2 := l2Len(vec)
	if l2 > maxLen {
		ratio := maxLen / l2
		for ii := range vec {
			vec[ii] *= ratio
		}
	}
}

// Save model to s.FileName.
func (s *Scorer) Save() error {
	s.muSave.Lock()
	defer s.muSave.Unlock()

	if s.FileName == "" {
		klog.Errorf("Linear model not saved, because no file name was specified")
		return nil
	}

	// Rename existing file, if it exists.
	file := s.FileName
	if _, err := os.Stat(file); err == nil {
		err = os.Rename(file, file+"~")
		if err != nil {
			return errors.Wrapf(err, "failed to rename %s to %s", s.FileName, s.FileName+"~")
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", s.FileName)
	}

	valuesStr := make([]string, len(s.weights))
	for ii, value := range s.weights {
		valuesStr[ii] = fmt.Sprintf("%g", value)
	}
	allValues := strings.Join(valuesStr, "\n")

	err := os.WriteFile(s.FileName, []byte(allValues), 0777)
	if err != nil {
		return errors.Wrapf(err, "failed to save %s", s.FileName)
	}
	return nil
}

// Cache of linear models read from disk.
var (
	cacheLinearScorers = map[string]*Scorer{}
	muCache            sync.Mutex
)

// LoadOrCreate model from fileName or create a new one, bootstrapped from PreTrainedBest.
// It stores the reference of the loaded or created model in a cache, that is reused if attempting to load
// the same fileName.
func LoadOrCreate(fileName string) (*Scorer, error) {
	if fileName == "" {
		return PreTrainedBest, nil
	}

	muCache.Lock()
	defer muCache.Unlock()
	if cached, ok := cacheLinearScorers[fileName]; ok {
		klog.V(1).Infof("Using cache for model '%s'", fileName)
		return cached, nil
	}

	_, err := os.Stat(fileName)
	if os.IsNotExist(err) {
		// Make fresh copy of PreTrainedBest
		s := PreTrainedBest.Clone().WithName(fileName)
		s.FileName = fileName
		klog.V(1).Infof("New model created for %s has %d features", fileName, s.NumFeatures())
		cacheLinearScorers[fileName] = s
		return s, nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "LoadOrCreate failed to read file %s", fileName)
	}
	valuesStr := strings.Split(string(data), "\n")
	weights := make([]float32, 0, len(valuesStr))
	for lineNum, valueStr := range valuesStr {
		valueStr = strings.TrimSpace(valueStr)
		if valueStr == "" || strings.HasPrefix(valueStr, "#") || strings.HasPrefix(valueStr, "//") {
			// Skip empty lines and comments.
			continue
		}
		f64, err := strconv.ParseFloat(valueStr, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "LoadOrCreate failed to parse value in file %s, at line number #%d",
				fileName, lineNum+1)
		}
		weights = append(weights, float32(f64))
	}
	if len(weights) != features.BoardFeaturesDim+1 {
		return nil, errors.Errorf("model file %s has %d weights, expected %d features + 1 bias",
			fileName, len(weights), features.BoardFeaturesDim)
	}
	s := NewWithWeights(weights...).WithName(fileName)
	s.FileName = fileName
	cacheLinearScorers[fileName] = s
	return s, nil
}
