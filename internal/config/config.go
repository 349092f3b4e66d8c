// Package config loads the arena tournament configuration from a YAML file.
package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

// Config of an arena tournament: which AIs play, how many matches and how they run.
type Config struct {
	// Player1, Player2 are AI player configuration strings, see players.New.
	Player1 string `yaml:"player1" env-default:"ab:max_depth=3"`
	Player2 string `yaml:"player2" env-default:"random"`

	// Matches to play in total. Seats swap every other match, so both players
	// get to start.
	Matches int `yaml:"matches" env-default:"100"`

	// Parallelism limits how many matches run concurrently. 0 takes GOMAXPROCS.
	Parallelism int `yaml:"parallelism" env-default:"0"`

	// MaxMoves per match before declaring a draw.
	MaxMoves int `yaml:"max-moves" env-default:"200"`
}

// Load the configuration from the YAML file in path.
// An empty path loads the defaults.
func Load(path string) (*Config, error) {
	config := &Config{}
	if path == "" {
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, errors.Wrap(err, "failed to load default configuration")
		}
		return config, nil
	}
	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, errors.Wrapf(err, "unable to load config file %q", path)
	}
	return config, nil
}
