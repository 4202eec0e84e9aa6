package experiments

import (
	"context"
	"fmt"

	"ismcts/config"
	"ismcts/experiments/metrics"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// WorkerCounts are the parallel configurations compared by RunThroughput.
var WorkerCounts = []int{1, 2, 4, 8}

// Throughput is the search speed measured for one worker count.
type Throughput struct {
	Workers         int
	Moves           int
	EpisodesPerMove float64
	EpisodesStd     float64
	Wins            int // Games won by the parallel seat
	Games           int
}

// RunThroughput seats a search agent with an increasing number of workers
// against copies of the first search seat of cfg and measures how many
// episodes each search completes. Searches should be bound by a duration
// for the numbers to be comparable.
func RunThroughput(ctx context.Context, cfg *config.Config) ([]Throughput, *Session, error) {
	base, err := firstSearchSeat(cfg.Players)
	if err != nil {
		return nil, nil, err
	}

	all := &Session{Wins: map[int]int{}}
	var results []Throughput
	log.Info().Msgf("starting throughput experiment with budget %s...", config.Budget(base))

	for mi, workers := range WorkerCounts {
		types := make([]string, len(cfg.Players))
		for i := range types {
			types[i] = base.Type
		}
		matchup := *cfg
		matchup.Players = config.Players(types, base)
		matchup.Players[0].Workers = workers

		log.Info().Msgf("starting matchup %d of %d with %d workers...", mi+1, len(WorkerCounts), workers)
		session, err := RunSession(ctx, &matchup, Console{})
		if err != nil {
			return results, all, fmt.Errorf("matchup with %d workers: %w", workers, err)
		}

		result := measure(workers, session)
		results = append(results, result)
		log.Info().
			Int("workers", workers).
			Float64("episodes_per_move", result.EpisodesPerMove).
			Int("wins", result.Wins).
			Msgf("completed matchup %d of %d", mi+1, len(WorkerCounts))

		for p, w := range session.Wins {
			all.Wins[p] += w
		}
		offset := len(all.GameRecords)
		for _, r := range session.GameRecords {
			r.ID += offset
			all.GameRecords = append(all.GameRecords, r)
		}
		for _, r := range session.MoveRecords {
			r.Game += offset
			all.MoveRecords = append(all.MoveRecords, r)
		}
	}
	log.Info().Msg("completed throughput experiment")
	return results, all, nil
}

func measure(workers int, session *Session) Throughput {
	var episodes []float64
	for _, r := range session.MoveRecords {
		if r.Player == 1 {
			episodes = append(episodes, float64(r.Episodes))
		}
	}
	result := Throughput{
		Workers: workers,
		Moves:   len(episodes),
		Wins:    session.Wins[1],
		Games:   len(session.GameRecords),
	}
	switch len(episodes) {
	case 0:
	case 1:
		result.EpisodesPerMove = episodes[0]
	default:
		result.EpisodesPerMove, result.EpisodesStd = stat.MeanStdDev(episodes, nil)
	}
	return result
}

func firstSearchSeat(players []metrics.AgentConfig) (metrics.AgentConfig, error) {
	for _, p := range players {
		if p.Type != config.Human && p.Type != config.Random {
			return p, nil
		}
	}
	return metrics.AgentConfig{}, fmt.Errorf("%w: throughput experiment needs a search agent", config.ErrInvalidConfig)
}
