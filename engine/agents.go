package engine

import (
	"context"
	"math"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/searcher"

	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

// SearchAgent plays the move an ISMCTS search recommends.
type SearchAgent struct {
	Search *searcher.ISMCTS[game.Card]
}

func NewSearchAgent(options ...searcher.Option) *SearchAgent {
	return &SearchAgent{Search: searcher.NewISMCTS[game.Card](options...)}
}

func (a *SearchAgent) FindMove(ctx context.Context, state *game.State) (game.Card, metrics.SearchMetric, error) {
	return a.Search.Search(ctx, state)
}

// RandomAgent plays a uniformly random legal card.
type RandomAgent struct {
	rng *rand.Rand
}

func NewRandomAgent(seed uint64) *RandomAgent {
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	return &RandomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *RandomAgent) FindMove(_ context.Context, state *game.State) (game.Card, metrics.SearchMetric, error) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return game.Card{}, metrics.SearchMetric{}, searcher.ErrNoMoves
	}
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{}, nil
}

// SamplingAgent searches like SearchAgent but plays a card drawn from the
// root visit counts raised to 1/Temperature, for varied self-play.
type SamplingAgent struct {
	Search      *searcher.ISMCTS[game.Card]
	Temperature float64
	rng         *rand.Rand
}

func NewSamplingAgent(temperature float64, seed uint64, options ...searcher.Option) *SamplingAgent {
	if seed == 0 {
		seed = frand.Uint64n(math.MaxUint64)
	}
	return &SamplingAgent{
		Search:      searcher.NewISMCTS[game.Card](options...),
		Temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *SamplingAgent) FindMove(ctx context.Context, state *game.State) (game.Card, metrics.SearchMetric, error) {
	best, metric, err := a.Search.Search(ctx, state)
	if err != nil || a.Temperature <= 0 {
		return best, metric, err
	}
	children := a.Search.Root().Children()
	weights := adjustTemperature(children, a.Temperature)
	move, _ := children[sample(weights, a.rng)].Move()
	return move, metric, nil
}

// adjustTemperature returns each child's visit count to the power of
// 1/temperature, normalised to sum to one.
func adjustTemperature[M comparable](children []*searcher.Node[M], temperature float64) []float64 {
	exponent := 1.0 / temperature
	sum := 0.0
	weights := make([]float64, len(children))
	for i, child := range children {
		weights[i] = math.Pow(float64(child.Visits()), exponent)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

func sample(weights []float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if sampled < cumulative {
			return i
		}
	}
	return len(weights) - 1 // Rounding errors
}
