// Package mcts is a Monte Carlo Tree Search implementation of searchers.Searcher for
// the Alpha-Zero algorithm.
//
// References used, since the original paper doesn't actually provide the formulas:
//
//   - https://suragnair.github.io/posts/alphazero.html by Surag Nair
//   - Paper here: https://github.com/suragnair/alpha-zero-general/blob/master/pretrained_models/writeup.pdf
//   - https://web.stanford.edu/class/archive/cs/cs221/cs221.1196/sections/Section5.pdf
//
// AlphaZero original paper -- that mostly talks about its successes but not the actual
// formula:
//
//   - Mastering Chess and Shogi by Self-Play with a General Reinforcement Learning Algorithm
//     https://arxiv.org/abs/1712.01815
package mcts

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/teekoGo/internal/ai"
	. "github.com/janpfeifer/teekoGo/internal/state"
	"k8s.io/klog/v2"

	"github.com/janpfeifer/teekoGo/internal/searchers"
	"github.com/janpfeifer/teekoGo/internal/ui/cli"
)

// Searcher implements the searchers.Searcher interface using Monte Carlo Tree Search.
type Searcher struct {
	// maxTime defines the maximum time to spend thinking.
	// Either maxTime or maxTraverses must be defined.
	maxTime time.Duration

	// maxTraverses, minTraverses define the limit number of traverses to do during the search, if not zero.
	// Either maxTime or maxTraverses must be defined.
	maxTraverses, minTraverses int

	// cPuct is the degree of exploration of alpha-zero.
	cPuct float32

	// temperature (usually represented as the greek letter τ) is an exponent applied
	// to the counts used in the policy distribution (π) formula. If set to zero, it will
	// always take the best estimate action. AlphaZero Go uses 1 for the first 30 moves.
	// Larger values will make the play more random.
	temperature float32

	// maxRandDepth defines the move (in plies) after which temperature is disabled and
	// it simply takes the best move, as opposed to randomly sampling the policy distribution.
	// A value <= 0 means there is no maxRandDepth.
	maxRandDepth int

	// PolicyScorer used to expand nodes during the search.
	scorer ai.PolicyScorer
}

// Assert that Searcher implements searchers.Searcher.
var _ searchers.Searcher = (*Searcher)(nil)

// Default configuration used by New.
const (
	DefaultMaxTime      = 30 * time.Second
	DefaultMaxTraverses = 300
	DefaultMinTraverses = 10
	DefaultCPuct        = float32(1.1)
	DefaultTemperature  = float32(1.0)
	DefaultMaxRandDepth = 25
)

// New returns an MCTS searcher using the given scorer to evaluate the leaf nodes.
//
// If the scorer doesn't implement ai.PolicyScorer, actions priors are derived from the
// values of the following board positions, see ai.NewPolicyProxy.
//
// See methods Searcher.With... for the optional configurations.
func New(scorer ai.ValueScorer) *Searcher {
	policyScorer, ok := scorer.(ai.PolicyScorer)
	if !ok {
		policyScorer = ai.NewPolicyProxy(scorer, 1)
	}
	return &Searcher{
		scorer:       policyScorer,
		maxTime:      DefaultMaxTime,
		maxTraverses: DefaultMaxTraverses,
		minTraverses: DefaultMinTraverses,
		cPuct:        DefaultCPuct,
		temperature:  DefaultTemperature,
		maxRandDepth: DefaultMaxRandDepth,
	}
}

// WithMaxTime limits the time spent thinking per move, once minTraverses have been done.
// Set to 0 to disable it, in which case maxTraverses must be set.
func (mcts *Searcher) WithMaxTime(maxTime time.Duration) *Searcher {
	mcts.maxTime = maxTime
	return mcts
}

// WithMaxTraversals limits the number of traverses per search.
// Set to 0 to disable it, in which case maxTime must be set.
func (mcts *Searcher) WithMaxTraversals(maxTraverses int) *Searcher {
	mcts.maxTraverses = maxTraverses
	return mcts
}

// WithTemperature sets the exponent applied to the visit counts when sampling the action
// to play. 0 makes the choice greedy.
func (mcts *Searcher) WithTemperature(temperature float32) *Searcher {
	mcts.temperature = temperature
	return mcts
}

// String implements the Searcher interface.
func (mcts *Searcher) String() string {
	return fmt.Sprintf("mcts(max_time=%s, max_traverses=%d)", mcts.maxTime, mcts.maxTraverses)
}

type matchStats struct {
	// Number of cache nodes generated during search: used for performance measures.
	numCacheNodes int
}

// cacheNode holds information about the possible actions of a board.
type cacheNode struct {
	// Board, actions, children boards and children base scores.
	board *Board

	// actionsProbs are the model actions probabilities.
	actionsProbs []float32

	// Children cacheNodes.
	cacheNodes []*cacheNode

	// N is the count per action of which paths have been traversed.
	N []int

	// sumN holds the sum of all values of N.
	sumN int

	// sumScores of the score of taking the corresponding action at the current board.
	// If N[a] > 0, we have $Q(s, a) = sumScores[a]/N[a]$.
	sumScores []float32
}

// newCacheNode for the given board position and updated matchStats.
//
// It panics if the scorer breaks the policy contract: probabilities must be non-negative
// and sum to 1 over the board's actions.
func (mcts *Searcher) newCacheNode(b *Board, stats *matchStats) *cacheNode {
	if b.IsFinished() {
		exceptions.Panicf("can't create cacheNode for a finished board state")
	}
	numActions := len(b.Derived.Actions)
	cn := &cacheNode{
		board:      b,
		cacheNodes: make([]*cacheNode, numActions),
		N:          make([]int, numActions),
		sumScores:  make([]float32, numActions),
	}
	if stats != nil {
		stats.numCacheNodes++
	}
	cn.actionsProbs = mcts.scorer.PolicyScore(b)

	// Sanity check:
	var sumProbs float32
	for _, prob := range cn.actionsProbs {
		if prob < 0 {
			mcts.logPolicyViolation(cn)
			exceptions.Panicf("scorer %s returned negative probability %g for board position", mcts.scorer, prob)
		}
		sumProbs += prob
	}
	if math.Abs(float64(sumProbs-1.0)) > 1e-3 {
		mcts.logPolicyViolation(cn)
		exceptions.Panicf("scorer %s returned probabilities summing to %g != 1.0", mcts.scorer, sumProbs)
	}

	return cn
}

func (mcts *Searcher) logPolicyViolation(cn *cacheNode) {
	ui := cli.New(true, false)
	fmt.Println()
	ui.PrintBoard(cn.board)
	fmt.Printf("Available actions: %v\n", cn.board.Derived.Actions)
	fmt.Printf("Probabilities: %v\n", cn.actionsProbs)
}

// searchSubtree rooted on cn, expanding one board.
//
// It returns the new sampled score for the "next player" (to play) of cacheNode's board.
//
// Notice it doesn't return the score estimate (Q) of all samples in the sub-tree, but simply
// the score of the individual new sample (the value returned by the scorer on the leaf-node
// of the recursion).
//
// This is the core of the AlphaZero/MCTS algorithm, based on the estimated
// upper bounds of each possible action.
func (mcts *Searcher) searchSubtree(cn *cacheNode, stats *matchStats) (score float32) {
	// Find the action with the best upper confidence (U in the description).
	bestAction := -1
	bestUpperConfidence := float32(math.Inf(-1))
	globalFactor := mcts.cPuct * float32(math.Sqrt(float64(cn.sumN)))
	for actionIdx, numVisits := range cn.N {
		var Q float32 // 0 if we haven't subsampled it yet.
		if numVisits > 0 {
			Q = cn.sumScores[actionIdx] / float32(numVisits)
		}
		upperConfidence := Q + globalFactor*cn.actionsProbs[actionIdx]/float32(1+numVisits)
		if upperConfidence > bestUpperConfidence {
			bestAction = actionIdx
			bestUpperConfidence = upperConfidence
		}
	}

	// For the first time an action is considered, just get the plain score estimate
	// for the new board.
	if cn.N[bestAction] == 0 {
		// Notice TakeAllActions is cached in the board.
		newBoard := cn.board.TakeAllActions()[bestAction]
		if isEnd, endScore := ai.IsEndGameAndScore(newBoard); isEnd {
			score = -endScore
		} else {
			score = -mcts.scorer.Score(newBoard)
		}
		cn.N[bestAction] = 1
		cn.sumN++
		cn.sumScores[bestAction] += score
		return
	}

	// If not the first time we sample the action, make sure we have a corresponding
	// cacheNode for it, expanding the tree.
	if cn.cacheNodes[bestAction] == nil {
		newBoard := cn.board.TakeAllActions()[bestAction]
		if isEnd, endScore := ai.IsEndGameAndScore(newBoard); isEnd {
			// Return immediately and don't create a cacheNode.
			score = -endScore
			cn.N[bestAction]++
			cn.sumN++
			cn.sumScores[bestAction] += score
			return
		}

		cn.cacheNodes[bestAction] = mcts.newCacheNode(newBoard, stats)
	}

	// Recursively sample value of the best action.
	score = -mcts.searchSubtree(cn.cacheNodes[bestAction], stats)
	cn.sumScores[bestAction] += score
	cn.N[bestAction]++
	cn.sumN++
	return
}

// Search implements the searchers.Searcher API.
//
// It returns the expected best action, board, and score estimate of the given best action.
// The actionsScores returned are always nil: the search estimates a visits distribution, not
// a score per action -- see SearchWithPolicy.
func (mcts *Searcher) Search(board *Board) (action Action, nextBoard *Board, score float32, actionsScores []float32) {
	action, nextBoard, score, _ = mcts.searchImpl(board, false)
	return
}

// SearchWithPolicy searches and also returns the policy (actions probabilities) derived from
// the visit counts of the search.
func (mcts *Searcher) SearchWithPolicy(board *Board) (action Action, nextBoard *Board, score float32, policy []float32) {
	return mcts.searchImpl(board, true)
}

func (mcts *Searcher) searchImpl(board *Board, withPolicy bool) (action Action, nextBoard *Board, score float32, policy []float32) {
	if mcts.maxTime <= 0 && mcts.maxTraverses <= 0 {
		exceptions.Panicf("mcts requires at least one of max_time or max_traverses to be set")
	}
	var stats matchStats
	rootCacheNode := mcts.newCacheNode(board, &stats)

	// Keep sampling until the time is over.
	numTraverses := 0
	startTime := time.Now()
	for {
		mcts.searchSubtree(rootCacheNode, &stats)
		numTraverses++

		if mcts.maxTraverses > 0 && numTraverses >= mcts.maxTraverses {
			break
		}
		if mcts.minTraverses > 0 && numTraverses < mcts.minTraverses {
			continue
		}
		if mcts.maxTime > 0 && time.Since(startTime) > mcts.maxTime {
			break
		}
	}
	elapsed := time.Since(startTime)

	// Log performance.
	if klog.V(1).Enabled() {
		cacheNodeRate := float64(stats.numCacheNodes) / elapsed.Seconds()
		klog.Infof("Search at move #%d: %d traverses, %.2f nodes/s", board.MoveNumber, numTraverses, cacheNodeRate)
	}

	bestActionIdx := mcts.selectAction(rootCacheNode)
	action = board.Derived.Actions[bestActionIdx]
	nextBoard = board.TakeAllActions()[bestActionIdx]
	score = rootCacheNode.sumScores[bestActionIdx] / float32(rootCacheNode.N[bestActionIdx])
	if withPolicy {
		policy = mcts.derivedPolicy(rootCacheNode)
	}
	return
}

func pow32(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

// selectAction given the root of the MCTS expanded search.
// If temperature is 0, or maxRandDepth is reached, it is greedy.
// Otherwise, it picks randomly from a probability distribution based on the number of visits of
// each sub-tree.
func (mcts *Searcher) selectAction(rootCacheNode *cacheNode) int {
	board := rootCacheNode.board
	if mcts.temperature == 0 || (mcts.maxRandDepth > 0 && board.MoveNumber > mcts.maxRandDepth) {
		// Greedily pick best action and its estimate.
		bestActionIdx, mostVisits := -1, -1
		for actionIdx, nVisits := range rootCacheNode.N {
			if nVisits > mostVisits {
				mostVisits = nVisits
				bestActionIdx = actionIdx
			}
		}
		return bestActionIdx
	}

	// Calculate policy probability distribution based on visits (not the one returned by the model)
	numActions := len(rootCacheNode.N)
	actionsProbs := make([]float32, numActions)
	temp := mcts.temperature
	for actionIdx, nVisits := range rootCacheNode.N {
		actionsProbs[actionIdx] = float32(nVisits) / float32(rootCacheNode.sumN)
		if temp != 1 {
			actionsProbs[actionIdx] = pow32(actionsProbs[actionIdx], 1/temp)
		}
	}
	// Normalize probabilities
	if temp != 1 {
		sumProbs := float32(0)
		for _, prob := range actionsProbs {
			sumProbs += prob
		}
		for actionIdx, prob := range actionsProbs {
			actionsProbs[actionIdx] = prob / sumProbs
		}
	}
	// Pick random action from probability distribution.
	r := rand.Float32()
	sumProb := float32(0.0)
	for actionIdx, prob := range actionsProbs {
		sumProb += prob
		if r <= sumProb {
			return actionIdx
		}
	}
	// Due to rounding errors we may get here, in this case return the last visited action.
	for actionIdx := numActions - 1; actionIdx >= 0; actionIdx-- {
		if rootCacheNode.N[actionIdx] > 0 {
			return actionIdx
		}
	}
	return numActions - 1
}

// derivedPolicy returns the policy used for learning, based on root cacheNode.
func (mcts *Searcher) derivedPolicy(rootCacheNode *cacheNode) []float32 {
	numActions := len(rootCacheNode.N)
	actionsProbs := make([]float32, numActions)
	for actionIdx, nVisits := range rootCacheNode.N {
		actionsProbs[actionIdx] = float32(nVisits) / float32(rootCacheNode.sumN)
	}
	return actionsProbs
}
