// Package players provides a factory of AI players from configuration strings.
// It also allows player providers ("modules") to register themselves.
package players

import (
	"slices"
	"strings"

	"github.com/janpfeifer/teekoGo/internal/generics"
	"github.com/janpfeifer/teekoGo/internal/parameters"
	. "github.com/janpfeifer/teekoGo/internal/state"
	"github.com/pkg/errors"
)

// Player is anything that is able to play the game.
type Player interface {
	// Play returns the action chosen, the next board position (after the action is taken)
	// and optionally the scores the player estimated for each of the board's actions.
	Play(board *Board) (action Action, nextBoard *Board, score float32, actionsScores []float32)

	// Finalize is called at the end of a match.
	Finalize()
}

// Module must implement NewPlayer, called at the start of a match.
// matchId is an opaque id (front-ends use uuids), unique among matches, but Module.NewPlayer
// may be called twice for the same matchId, for different players, when self-playing.
type Module interface {
	NewPlayer(matchId string, playerNum PlayerNum, params parameters.Params) (Player, error)
}

// moduleRegistration is a reference to the module and its name.
type moduleRegistration struct {
	Module
	Name string
}

var (
	// Registered external modules.
	keywordToModules = make(map[string]moduleRegistration)
)

// RegisterModule so it can be used by any of the front-ends to play Teeko.
func RegisterModule(name string, module Module) {
	keywordToModules[name] = moduleRegistration{Name: name, Module: module}
}

var (
	// DefaultPlayerConfig is used if no configuration was given to the AI. The value may be changed by the
	// front-end built.
	DefaultPlayerConfig = "ab:max_depth=3"
)

// New creates a new AI player given the configuration string.
//
// Args:
//
//	matchId: opaque id of the match the player is going to play, used for logging.
//	playerNum: seat the new player takes.
//	config: the module name, optionally followed by a colon (":") and a comma-separated list of
//		parameters with optional values associated, e.g.: "ab", "ab:max_depth=4,scorer=expert",
//		"mcts:max_time=3s". If empty, the default is given by DefaultPlayerConfig.
//
// More details on the config are dependent on the module used.
func New(matchId string, playerNum PlayerNum, config string) (Player, error) {
	if config == "" {
		config = DefaultPlayerConfig
	}

	// Find moduleName.
	moduleName := config
	if moduleSplit := strings.Index(config, ":"); moduleSplit != -1 {
		moduleName = config[:moduleSplit]
		config = config[moduleSplit+1:]
	} else {
		config = ""
	}
	module, ok := keywordToModules[moduleName]
	if !ok {
		return nil, errors.Errorf("unknown AI player %q, registered ones: %s",
			moduleName, strings.Join(slices.Collect(generics.SortedKeys(keywordToModules)), ", "))
	}

	params := parameters.NewFromConfigString(config)
	player, err := module.NewPlayer(matchId, playerNum, params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create AI player %q", moduleName)
	}
	return player, nil
}

// ErrUnusedParams returns an error listing the parameters left in params: modules call it
// after popping the parameters they know about.
func ErrUnusedParams(params parameters.Params) error {
	if len(params) == 0 {
		return nil
	}
	return errors.Errorf("unknown AI parameters \"%s\" passed", strings.Join(generics.KeysSlice(params), "\", \""))
}
