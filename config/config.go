package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/meta"
	"ismcts/searcher"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	Human  = "human"
	Random = "random"
)

// Experiments lists the values accepted for Config.Experiment; empty plays
// a plain session.
var Experiments = []string{"", "throughput"}

var ErrInvalidConfig = errors.New("invalid config")

// Config holds everything needed to run a session of games. Fields left
// empty in a YAML file keep their defaults.
type Config struct {
	Players    []metrics.AgentConfig `yaml:"players"`
	Tricks     int                   `yaml:"tricks"`
	Rounds     int                   `yaml:"rounds"`
	Games      int                   `yaml:"games"`
	Seed       uint64                `yaml:"seed"` // 0 for a random seed
	Out        string                `yaml:"out"`  // CSV directory, empty to skip
	LogLevel   string                `yaml:"log_level"`
	Verbose    bool                  `yaml:"verbose"`
	Experiment string                `yaml:"experiment"`
}

// Default returns a session with one human against two search agents.
func Default() *Config {
	return &Config{
		Players:  Players(meta.PLAYERS, DefaultAgent()),
		Tricks:   meta.TRICKS,
		Rounds:   meta.ROUNDS,
		Games:    meta.GAMES,
		LogLevel: meta.LOG_LEVEL,
	}
}

// DefaultAgent returns the search settings used for seats that do not
// override them.
func DefaultAgent() metrics.AgentConfig {
	return metrics.AgentConfig{
		Type:             searcher.ByTrickValue.String(),
		Determinizations: meta.DETERMINIZATIONS,
		Descents:         meta.DESCENTS,
		Workers:          meta.WORKERS,
		Duration:         meta.DURATION,
		Exploration:      searcher.DefaultExploration,
	}
}

// Players builds one seat per agent type, numbering the configs from 1.
func Players(types []string, base metrics.AgentConfig) []metrics.AgentConfig {
	players := make([]metrics.AgentConfig, len(types))
	for i, t := range types {
		players[i] = base
		players[i].ID = i + 1
		players[i].Type = t
	}
	return players
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.Decode(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges YAML data into c. Seats given in the data inherit the
// default search settings for the fields they leave out.
func (c *Config) Decode(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var seats struct {
		Players []yaml.Node `yaml:"players"`
	}
	if err := yaml.Unmarshal(data, &seats); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if seats.Players == nil {
		return nil
	}
	c.Players = make([]metrics.AgentConfig, len(seats.Players))
	for i, node := range seats.Players {
		c.Players[i] = DefaultAgent()
		if err := node.Decode(&c.Players[i]); err != nil {
			return fmt.Errorf("%w: player %d: %v", ErrInvalidConfig, i+1, err)
		}
		c.Players[i].ID = i + 1
	}
	return nil
}

// Validate reports the first setting that cannot produce a playable game.
func (c *Config) Validate() error {
	if len(c.Players) < 2 || len(c.Players) > 4 {
		return fmt.Errorf("%w: %d players, want 2 to 4", ErrInvalidConfig, len(c.Players))
	}
	if c.Tricks < 1 || len(c.Players)*c.Tricks > len(game.Deck()) {
		return fmt.Errorf("%w: %d players cannot be dealt %d cards each from a %d card deck",
			ErrInvalidConfig, len(c.Players), c.Tricks, len(game.Deck()))
	}
	if c.Rounds < 1 {
		return fmt.Errorf("%w: %d rounds", ErrInvalidConfig, c.Rounds)
	}
	if c.Games < 1 {
		return fmt.Errorf("%w: %d games", ErrInvalidConfig, c.Games)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if !slices.Contains(Experiments, c.Experiment) {
		return fmt.Errorf("%w: unknown experiment %q", ErrInvalidConfig, c.Experiment)
	}
	for _, p := range c.Players {
		if err := validateAgent(p); err != nil {
			return fmt.Errorf("%w: player %d: %v", ErrInvalidConfig, p.ID, err)
		}
	}
	return nil
}

func validateAgent(a metrics.AgentConfig) error {
	switch a.Type {
	case Human, Random:
		return nil
	}
	if _, err := searcher.ParsePolicy(a.Type); err != nil {
		return fmt.Errorf("unknown agent type %q", a.Type)
	}
	if a.Determinizations <= 0 && a.Duration <= 0 {
		return errors.New("search needs determinizations or a duration")
	}
	if a.Descents < 1 || a.Workers < 1 {
		return errors.New("descents and workers must be positive")
	}
	if a.Exploration < 0 || a.Temperature < 0 {
		return errors.New("exploration and temperature must not be negative")
	}
	return nil
}

// SearchOptions translates a search agent config into searcher options.
func SearchOptions(a metrics.AgentConfig, seed uint64) ([]searcher.Option, error) {
	policy, err := searcher.ParsePolicy(a.Type)
	if err != nil {
		return nil, err
	}
	options := []searcher.Option{
		searcher.WithPolicy(policy),
		searcher.WithDescents(a.Descents),
		searcher.WithWorkers(a.Workers),
		searcher.WithExploration(a.Exploration),
		searcher.WithMetrics(metrics.NewCollector()),
	}
	if a.Determinizations > 0 {
		options = append(options, searcher.WithDeterminizations(a.Determinizations))
	}
	if a.Duration > 0 {
		options = append(options, searcher.WithDuration(a.Duration))
	}
	if seed != 0 {
		options = append(options, searcher.WithSeed(seed))
	}
	return options, nil
}

// Humans counts the seats played by a person.
func (c *Config) Humans() int {
	n := 0
	for _, p := range c.Players {
		if p.Type == Human {
			n++
		}
	}
	return n
}

// Budget describes a search agent's limit for logging.
func Budget(a metrics.AgentConfig) string {
	switch {
	case a.Determinizations > 0 && a.Duration > 0:
		return fmt.Sprintf("%dx%d within %v", a.Determinizations, a.Descents, a.Duration)
	case a.Duration > 0:
		return a.Duration.String()
	default:
		return fmt.Sprintf("%dx%d", a.Determinizations, a.Descents)
	}
}
