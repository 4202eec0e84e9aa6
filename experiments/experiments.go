package experiments

import (
	"context"
	"fmt"
	"io"
	"math"

	"ismcts/config"
	"ismcts/engine"
	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

// Session is the outcome of a series of games between the same seats.
type Session struct {
	Wins        map[int]int // Player -> games won
	GameRecords []metrics.GameRecord
	MoveRecords []metrics.MoveRecord
}

// Console is where human seats read their cards and see the table.
type Console struct {
	In  io.Reader
	Out io.Writer
}

// RunSession plays cfg.Games games. Every game is dealt from its own seed,
// derived from cfg.Seed, so a seeded session can be replayed.
func RunSession(ctx context.Context, cfg *config.Config, console Console) (*Session, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	rng := rand.New(rand.NewSource(seed))

	session := &Session{Wins: make(map[int]int, len(cfg.Players))}
	for _, p := range cfg.Players {
		session.Wins[p.ID] = 0
	}

	// Human seats share one reader across all games
	var human engine.Agent
	if cfg.Humans() > 0 {
		human = engine.NewHumanAgent(console.In, console.Out)
	}

	log.Info().Msgf("starting session of %d games with %d players", cfg.Games, len(cfg.Players))
	for i := 1; i <= cfg.Games; i++ {
		log.Info().Msgf("starting game %d of %d...", i, cfg.Games)

		agents, err := createAgents(cfg, rng, human, console.Out)
		if err != nil {
			return session, err
		}
		e, err := engine.LocalEngine(agents, engine.Config{Tricks: cfg.Tricks, Rounds: cfg.Rounds, Seed: nonZero(rng)})
		if err != nil {
			return session, err
		}

		winners, gameMetric, moveMetrics, err := e.Run(ctx)
		if err != nil {
			return session, fmt.Errorf("game %d: %w", i, err)
		}

		agentIDs := make([]int, len(cfg.Players))
		for seat, p := range cfg.Players {
			agentIDs[seat] = p.ID
		}
		session.GameRecords = append(session.GameRecords, metrics.GameRecord{
			ID:         i,
			Agents:     agentIDs,
			GameMetric: gameMetric,
		})
		for _, mm := range moveMetrics {
			session.MoveRecords = append(session.MoveRecords, metrics.MoveRecord{
				Game:       i,
				MoveMetric: mm,
			})
		}
		for _, p := range winners {
			session.Wins[int(p)]++
		}

		log.Info().Msgf("completed game %d with winners %v, winning counts %v", i, winners, countsBySeat(session.Wins, len(cfg.Players)))
	}
	log.Info().Msg("completed session")
	return session, nil
}

// Store writes the session's agent configs and records as CSV under dir.
func Store(dir string, configs []metrics.AgentConfig, session *Session) (string, error) {
	writer, err := metrics.NewWriter(dir)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(session.GameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(session.MoveRecords); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}

func createAgents(cfg *config.Config, rng *rand.Rand, human engine.Agent, out io.Writer) ([]engine.Agent, error) {
	agents := make([]engine.Agent, len(cfg.Players))
	for i, c := range cfg.Players {
		switch c.Type {
		case config.Human:
			agents[i] = human
		case config.Random:
			agents[i] = engine.NewRandomAgent(nonZero(rng))
		default:
			options, err := config.SearchOptions(c, nonZero(rng))
			if err != nil {
				return nil, fmt.Errorf("player %d: %w", c.ID, err)
			}
			var search *searcher.ISMCTS[game.Card]
			if c.Temperature > 0 {
				agent := engine.NewSamplingAgent(c.Temperature, nonZero(rng), options...)
				search, agents[i] = agent.Search, agent
			} else {
				agent := engine.NewSearchAgent(options...)
				search, agents[i] = agent.Search, agent
			}
			if cfg.Verbose && out != nil {
				search.SetReporter(searcher.WriterReporter[game.Card](out, false))
			}
		}
	}
	return agents, nil
}

func nonZero(rng *rand.Rand) uint64 {
	for {
		if v := rng.Uint64(); v != 0 {
			return v
		}
	}
}

func countsBySeat(wins map[int]int, players int) []int {
	counts := make([]int, players)
	for p := 1; p <= players; p++ {
		counts[p-1] = wins[p]
	}
	return counts
}
