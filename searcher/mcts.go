package searcher

import (
	"context"
	"fmt"
	"math"
	"time"

	"ismcts/experiments/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"
)

type Option func(s *settings)

type settings struct {
	determinizations int
	descents         int
	workers          int
	duration         time.Duration
	policy           Policy
	exploration      float64
	rng              *rand.Rand
	metrics          metrics.Collector
}

// ISMCTS searches a single tree across many determinizations of the hidden
// information. The tree is rebuilt on every Search.
type ISMCTS[M comparable] struct {
	settings
	reporter Reporter[M]
	root     *Node[M]
}

// WithDeterminizations sets how many randomized worlds are sampled per search.
func WithDeterminizations(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.determinizations = n
		}
	}
}

// WithDescents sets how many tree descents run on each determinization.
func WithDescents(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.descents = n
		}
	}
}

// WithWorkers grows n independent trees in parallel and merges them.
func WithWorkers(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithDuration bounds the wall-clock time of a search. The bound is only
// checked between episodes.
func WithDuration(duration time.Duration) Option {
	return func(s *settings) {
		if duration > 0 {
			s.duration = duration
		}
	}
}

func WithPolicy(policy Policy) Option {
	return func(s *settings) {
		s.policy = policy
	}
}

// WithExploration sets the UCB constant used by ByWinRate.
func WithExploration(c float64) Option {
	return func(s *settings) {
		s.exploration = math.Max(0, c)
	}
}

func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(s *settings) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(s *settings) {
		if collector != nil {
			s.metrics = collector
		}
	}
}

func NewISMCTS[M comparable](options ...Option) *ISMCTS[M] {
	m := &ISMCTS[M]{ // Default values
		settings: settings{
			descents:    1,
			workers:     1,
			policy:      ByTrickValue,
			exploration: DefaultExploration,
			metrics:     metrics.NewDummyCollector(),
		},
	}
	for _, option := range options {
		option(&m.settings)
	}
	if m.determinizations <= 0 && m.duration <= 0 {
		panic("Must specify search determinizations or duration")
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(frand.Uint64n(math.MaxUint64)))
	}
	return m
}

// SetReporter installs a hook called with the tree after every search.
func (m *ISMCTS[M]) SetReporter(reporter Reporter[M]) {
	m.reporter = reporter
}

// Root returns the tree of the last search, nil before the first one.
func (m *ISMCTS[M]) Root() *Node[M] {
	return m.root
}

// Search returns the most visited move at state for the player to move.
func (m *ISMCTS[M]) Search(ctx context.Context, state State[M]) (M, metrics.SearchMetric, error) {
	var none M
	if len(state.LegalMoves()) == 0 {
		return none, metrics.SearchMetric{}, ErrNoMoves
	}

	if m.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.duration)
		defer cancel()
	}

	m.metrics.Start(m.workers, m.descents, m.policy.String())
	root, stopped, err := m.buildTree(ctx, state)
	if err != nil {
		return none, metrics.SearchMetric{}, err
	}
	m.root = root
	metric := m.metrics.Complete(root.Size(), stopped)

	best := root.MostVisited()
	if best == nil {
		return none, metric, fmt.Errorf("search stopped before the first episode: %w", context.Cause(ctx))
	}

	if stopped && m.determinizations > 0 {
		log.Warn().Msgf("search stopped early after %d of %d determinizations", metric.Determinizations, m.determinizations)
	}
	log.Debug().
		Int("determinizations", metric.Determinizations).
		Int("episodes", metric.Episodes).
		Int("tree_size", metric.TreeSize).
		Dur("duration", metric.Duration).
		Str("move", fmt.Sprint(best.move)).
		Msg("search complete")

	if m.reporter != nil {
		m.reporter(root)
	}
	return best.move, metric, nil
}

func (m *ISMCTS[M]) buildTree(ctx context.Context, state State[M]) (*Node[M], bool, error) {
	budgets := splitBudget(m.determinizations, m.workers)
	if m.workers == 1 {
		return m.grow(ctx, state, budgets[0], m.rng)
	}

	// Worker seeds are drawn up front so results only depend on the seed
	roots := make([]*Node[M], m.workers)
	stops := make([]bool, m.workers)
	states := make([]State[M], m.workers)
	rngs := make([]*rand.Rand, m.workers)
	for i := range roots {
		states[i] = state.Clone()
		rngs[i] = rand.New(rand.NewSource(m.rng.Uint64()))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range roots {
		i := i
		g.Go(func() error {
			root, stopped, err := m.grow(gctx, states[i], budgets[i], rngs[i])
			roots[i], stops[i] = root, stopped
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	stopped := false
	for i, other := range roots {
		stopped = stopped || stops[i]
		if i > 0 {
			merge(roots[0], other)
		}
	}
	return roots[0], stopped, nil
}

// splitBudget shares total determinizations across workers; a negative
// budget means no limit other than the context.
func splitBudget(total, workers int) []int {
	budgets := make([]int, workers)
	for i := range budgets {
		if total <= 0 {
			budgets[i] = -1
			continue
		}
		budgets[i] = total / workers
		if i < total%workers {
			budgets[i]++
		}
	}
	return budgets
}

// grow runs budget determinizations of state on a fresh tree. It reports
// whether ctx ended the search before the budget was spent.
func (m *ISMCTS[M]) grow(ctx context.Context, state State[M], budget int, rng *rand.Rand) (*Node[M], bool, error) {
	root := NewRoot[M](m.policy)
	observer := state.PlayerToMove()

	for i := 0; budget < 0 || i < budget; i++ {
		determinized := state.CloneAndRandomize(observer, rng)
		m.metrics.AddDeterminization()

		for j := 0; j < m.descents; j++ {
			if ctx.Err() != nil {
				return root, true, nil
			}
			if err := m.simulate(root, determinized.Clone(), rng); err != nil {
				return root, false, err
			}
			m.metrics.AddEpisode()
		}
	}
	return root, false, nil
}

func (m *ISMCTS[M]) simulate(root *Node[M], state State[M], rng *rand.Rand) error {
	node, err := m.selectThenExpand(root, state, rng)
	if err != nil {
		return err
	}
	if err := rollout(state, m.policy, rng); err != nil {
		return err
	}
	backup(node, state)
	return nil
}

// selectThenExpand descends while the node is fully expanded and the state
// non-terminal, then adds one child for a random untried move. It plays the
// moves on state as it goes.
func (m *ISMCTS[M]) selectThenExpand(root *Node[M], state State[M], rng *rand.Rand) (*Node[M], error) {
	node := root
	moves := state.LegalMoves()
	for len(moves) > 0 && len(node.UntriedMoves(moves)) == 0 {
		child, err := node.SelectChild(moves, m.exploration)
		if err != nil {
			return nil, err
		}
		if err := state.Play(child.move); err != nil {
			return nil, fmt.Errorf("playing selected move %v: %w", child.move, err)
		}
		node = child
		moves = state.LegalMoves()
	}

	untried := node.UntriedMoves(moves)
	if len(untried) == 0 { // Terminal in this determinization
		return node, nil
	}
	move := untried[rng.Intn(len(untried))]
	player := state.PlayerToMove()
	if err := state.Play(move); err != nil {
		return nil, fmt.Errorf("playing expanded move %v: %w", move, err)
	}
	return node.AddChild(move, player), nil
}

func rollout[M comparable](state State[M], policy Policy, rng *rand.Rand) error {
	switch policy {
	case ByTrickValue:
		// Until the current round ends
		for moves := state.LegalMoves(); len(moves) > 0; moves = state.LegalMoves() {
			if err := playRandom(state, moves, rng); err != nil {
				return err
			}
		}
		return nil
	case ByWinRate:
		// Until the whole game ends, dealing new rounds on the way
		for !state.GameOver() {
			moves := state.LegalMoves()
			if len(moves) == 0 {
				if err := deal(state, rng); err != nil {
					return err
				}
				continue
			}
			if err := playRandom(state, moves, rng); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidPolicy, int(policy))
	}
}

func playRandom[M comparable](state State[M], moves []M, rng *rand.Rand) error {
	move := moves[rng.Intn(len(moves))]
	if err := state.Play(move); err != nil {
		return fmt.Errorf("playing rollout move %v: %w", move, err)
	}
	return nil
}

func deal[M comparable](state State[M], rng *rand.Rand) error {
	dealer, ok := state.(Dealer)
	if !ok {
		return ErrStalled
	}
	if err := dealer.Deal(rng); err != nil {
		return fmt.Errorf("dealing next round: %w", err)
	}
	if len(state.LegalMoves()) == 0 && !state.GameOver() {
		return ErrStalled
	}
	return nil
}

func backup[M comparable](newNode *Node[M], terminal State[M]) {
	node := newNode
	for node != nil {
		node.Update(terminal)
		node = node.parent
	}
}
