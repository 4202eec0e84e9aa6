package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

type localEngine struct {
	state  *game.State
	agents []Agent
	rng    *rand.Rand
}

// LocalEngine deals a new game for one agent per seat. Seat p is played by
// agents[p-1].
func LocalEngine(agents []Agent, cfg Config) (Engine, error) {
	if len(agents) < 2 {
		return nil, ErrTooFewAgents
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	rng := rand.New(rand.NewSource(seed))

	state, err := game.NewState(len(agents), cfg.Tricks, cfg.Rounds, rng)
	if err != nil {
		return nil, err
	}
	return &localEngine{
		state:  state,
		agents: agents,
		rng:    rng,
	}, nil
}

// Run executes the entire game loop, dealing between rounds, until the game
// is over.
func (e *localEngine) Run(ctx context.Context) ([]searcher.Player, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: int(e.state.Starter),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("player %d is starting, trump is %c", e.state.ToMove, e.state.Trump)

	step := 1
	for !e.state.GameOver() {
		if err := ctx.Err(); err != nil {
			return nil, gameMetric, moveMetrics, err
		}
		if step > MaxMoves {
			return nil, gameMetric, moveMetrics, ErrMaxMoves
		}

		if len(e.state.LegalMoves()) == 0 {
			e.logRound()
			if err := e.state.Deal(e.rng); err != nil {
				return nil, gameMetric, moveMetrics, fmt.Errorf("dealing round %d: %w", e.state.Round+1, err)
			}
			log.Info().Msgf("round %d dealt, trump is %c", e.state.Round, e.state.Trump)
			continue
		}

		player := e.state.ToMove
		agent := e.agents[player-1]
		card, searchMetric, err := agent.FindMove(ctx, e.state.Copy())
		if err != nil {
			return nil, gameMetric, moveMetrics, fmt.Errorf("player %d: %w", player, err)
		}
		if err := e.state.Play(card); err != nil {
			return nil, gameMetric, moveMetrics, fmt.Errorf("player %d: %w", player, err)
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Round:        e.state.Round,
			Player:       int(player),
			SearchMetric: searchMetric,
		})
		log.Debug().
			Int("step", step).
			Int("player", int(player)).
			Str("card", card.String()).
			Msg("card played")
		step++
	}
	e.logRound()

	winners := e.state.Winners()
	for _, p := range winners {
		gameMetric.Winners = append(gameMetric.Winners, int(p))
	}
	gameMetric.Rounds = e.state.Round
	gameMetric.TotalMoves = step - 1
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)

	log.Info().Msgf("game over after %d rounds, winners %v", e.state.Round, winners)
	return winners, gameMetric, moveMetrics, nil
}

func (e *localEngine) logRound() {
	event := log.Info().Int("round", e.state.Round)
	for p := 1; p <= e.state.Players; p++ {
		event = event.Int(fmt.Sprintf("p%d", p), e.state.Tricks(searcher.Player(p)))
	}
	event.Msg("round finished, tricks taken")
}
