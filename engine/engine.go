package engine

import (
	"context"
	"errors"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher"
)

const MaxMoves = 10000

var (
	ErrTooFewAgents = errors.New("need at least two agents")
	ErrMaxMoves     = errors.New("game did not finish within the move limit")
)

type Engine interface {
	// Run plays a game till it is over or a max number of moves is reached
	Run(ctx context.Context) (winners []searcher.Player, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}

// Agent chooses a card for the player to move. Agents only ever see a copy
// of the table state.
type Agent interface {
	FindMove(ctx context.Context, state *game.State) (game.Card, metrics.SearchMetric, error)
}

// Config describes the game an engine deals.
type Config struct {
	Tricks int
	Rounds int
	Seed   uint64 // 0 draws a random seed
}
