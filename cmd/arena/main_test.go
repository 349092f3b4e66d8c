package main

import (
	"testing"

	"github.com/janpfeifer/teekoGo/internal/state"
	"github.com/stretchr/testify/assert"
)

func TestSeatSwapping(t *testing.T) {
	// Over an even number of matches each AI plays Black exactly half the time.
	const numMatches = 10
	var matchesAsBlack [2]int
	for matchIdx := range numMatches {
		black := aiIdxForSeat(matchIdx, state.PlayerFirst)
		white := aiIdxForSeat(matchIdx, state.PlayerSecond)
		assert.NotEqual(t, black, white)
		matchesAsBlack[black]++
	}
	assert.Equal(t, numMatches/2, matchesAsBlack[0])
	assert.Equal(t, numMatches/2, matchesAsBlack[1])
}
