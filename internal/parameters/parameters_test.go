package parameters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfigString(t *testing.T) {
	params := NewFromConfigString("max_depth=3,randomness=0.1,use_cache,name=a=b")
	assert.Equal(t, Params{
		"max_depth":  "3",
		"randomness": "0.1",
		"use_cache":  "",
		"name":       "a=b",
	}, params)

	// Empty configs parse to empty params.
	assert.Empty(t, NewFromConfigString(""))
}

func TestParamsString(t *testing.T) {
	params := NewFromConfigString("max_depth=3,use_cache,randomness=0.1")
	assert.Equal(t, "max_depth=3,randomness=0.1,use_cache", params.String())
}

func TestGetParamOr(t *testing.T) {
	params := NewFromConfigString("max_depth=3,randomness=0.25,max_time=5s,verbose,quiet=false")

	maxDepth, err := GetParamOr(params, "max_depth", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, maxDepth)

	// Missing keys yield the default.
	missing, err := GetParamOr(params, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, missing)

	randomness, err := GetParamOr(params, "randomness", float32(0))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, randomness, 1e-6)

	maxTime, err := GetParamOr(params, "max_time", time.Duration(0))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, maxTime)

	// A bool key without value is true.
	verbose, err := GetParamOr(params, "verbose", false)
	require.NoError(t, err)
	assert.True(t, verbose)

	quiet, err := GetParamOr(params, "quiet", true)
	require.NoError(t, err)
	assert.False(t, quiet)
}

func TestGetParamOrErrors(t *testing.T) {
	params := NewFromConfigString("max_depth=abc,max_time=fast,flag=maybe")

	_, err := GetParamOr(params, "max_depth", 1)
	assert.ErrorContains(t, err, "max_depth")

	_, err = GetParamOr(params, "max_time", time.Second)
	assert.ErrorContains(t, err, "max_time")

	_, err = GetParamOr(params, "flag", false)
	assert.ErrorContains(t, err, "flag")
}

func TestPopParamOr(t *testing.T) {
	params := NewFromConfigString("max_depth=3,randomness=0.1")
	maxDepth, err := PopParamOr(params, "max_depth", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, maxDepth)

	// The key is consumed, only randomness remains.
	assert.Len(t, params, 1)
	assert.NotContains(t, params, "max_depth")

	// Popping a missing key returns the default and changes nothing.
	value, err := PopParamOr(params, "max_depth", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Len(t, params, 1)
}
