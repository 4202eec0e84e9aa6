package searcher

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"ismcts/experiments/metrics"

	"github.com/stretchr/testify/require"
)

func TestNewISMCTS(t *testing.T) {
	t.Run("requires a budget", func(t *testing.T) {
		require.Panics(t, func() { NewISMCTS[int]() })
		require.NotPanics(t, func() { NewISMCTS[int](WithDuration(time.Second)) })
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		m := NewISMCTS[int](WithDeterminizations(5), WithDescents(-1), WithWorkers(0), WithExploration(-2))
		require.Equal(t, 1, m.descents)
		require.Equal(t, 1, m.workers)
		require.Zero(t, m.exploration)
		require.Equal(t, ByTrickValue, m.policy)
		require.NotNil(t, m.rng)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("single move game", func(t *testing.T) {
		m := NewISMCTS[int](WithDeterminizations(1), WithPolicy(ByWinRate), WithSeed(1))
		move, _, err := m.Search(ctx, newMockState([]int{1}, 1, 1))
		require.NoError(t, err)
		require.Equal(t, 1, move)

		root := m.Root()
		require.Len(t, root.Children(), 1)
		child := root.Children()[0]
		require.Equal(t, 1, child.Visits())
		require.Equal(t, WIN, child.Wins(), "Player 1 picked the only point")
	})

	t.Run("every episode visits one root child", func(t *testing.T) {
		for _, policy := range []Policy{ByTrickValue, ByWinRate} {
			m := NewISMCTS[int](WithDeterminizations(30), WithDescents(2), WithPolicy(policy), WithSeed(3))
			_, _, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 4, 1))
			require.NoError(t, err)

			root := m.Root()
			sum := 0
			for _, child := range root.Children() {
				sum += child.Visits()
			}
			require.Equal(t, 60, sum, "Policy %v", policy)
			require.Equal(t, 60, root.Visits())
		}
	})

	t.Run("node statistics stay bounded", func(t *testing.T) {
		for _, workers := range []int{1, 4} {
			m := NewISMCTS[int](WithDeterminizations(200), WithPolicy(ByWinRate), WithSeed(5), WithWorkers(workers))
			_, _, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 5, 2))
			require.NoError(t, err)
			require.Equal(t, 1, m.Root().Avails(), "Root is never selected")

			walk(m.Root(), func(n *Node[int]) {
				if n.Parent() == nil {
					return
				}
				require.GreaterOrEqual(t, n.Wins(), 0.0)
				require.LessOrEqual(t, n.Wins(), float64(n.Visits()))
				require.LessOrEqual(t, n.Visits(), n.Avails(), "Merged trees keep every availability")
				require.Less(t, n.TrickValue(), float64(n.Visits())+1e-9)
			})
		}
	})

	t.Run("same seed same decision", func(t *testing.T) {
		for _, workers := range []int{1, 3} {
			search := func() (int, map[int]float64) {
				m := NewISMCTS[int](WithDeterminizations(50), WithDescents(3), WithWorkers(workers), WithSeed(11))
				move, _, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 6, 1))
				require.NoError(t, err)
				return move, m.Root().VisitPolicy()
			}
			move1, visits1 := search()
			move2, visits2 := search()
			require.Equal(t, move1, move2, "Workers %d", workers)
			require.Equal(t, visits1, visits2, "Workers %d", workers)
		}
	})

	t.Run("no exploration exploits the best move", func(t *testing.T) {
		m := NewISMCTS[int](WithDeterminizations(200), WithPolicy(ByWinRate), WithExploration(0), WithSeed(2))
		move, _, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 2, 1))
		require.NoError(t, err)
		require.Equal(t, 2, move, "Picking 2 first can never lose")

		best := m.Root().MostVisited()
		rate := best.Wins() / float64(best.Visits())
		for _, child := range m.Root().Children() {
			require.GreaterOrEqual(t, rate, child.Wins()/float64(child.Visits()))
		}
	})

	t.Run("rolling out over several rounds", func(t *testing.T) {
		m := NewISMCTS[int](WithDeterminizations(40), WithPolicy(ByWinRate), WithSeed(8))
		_, _, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 2, 3))
		require.NoError(t, err)
		require.Equal(t, 40, m.Root().Visits())
	})

	t.Run("leaving the input state untouched", func(t *testing.T) {
		state := newMockState([]int{0, 1, 2}, 4, 2)
		before := state.Clone()
		m := NewISMCTS[int](WithDeterminizations(20), WithPolicy(ByWinRate), WithSeed(4))
		_, _, err := m.Search(ctx, state)
		require.NoError(t, err)
		require.Equal(t, before, State[int](state))
	})

	t.Run("reporting the tree", func(t *testing.T) {
		var out bytes.Buffer
		m := NewISMCTS[int](WithDeterminizations(20), WithSeed(4))
		m.SetReporter(WriterReporter[int](&out, false))
		_, _, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 3, 1))
		require.NoError(t, err)
		require.Equal(t, 3, strings.Count(out.String(), "\n"), "One line per root child")
	})
}

func TestSearchErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no legal moves", func(t *testing.T) {
		state := newMockState([]int{1}, 1, 1)
		require.NoError(t, state.Play(1))
		m := NewISMCTS[int](WithDeterminizations(1))
		_, _, err := m.Search(ctx, state)
		require.ErrorIs(t, err, ErrNoMoves)
	})

	t.Run("round ends without a new deal", func(t *testing.T) {
		state := newMockState([]int{0, 1}, 2, 2)
		state.stuck = true
		m := NewISMCTS[int](WithDeterminizations(5), WithPolicy(ByWinRate))
		_, _, err := m.Search(ctx, state)
		require.ErrorIs(t, err, ErrStalled)
	})

	t.Run("trick value rollouts stop at the round end", func(t *testing.T) {
		state := newMockState([]int{0, 1}, 2, 2)
		state.stuck = true
		m := NewISMCTS[int](WithDeterminizations(5), WithPolicy(ByTrickValue))
		_, _, err := m.Search(ctx, state)
		require.NoError(t, err, "Never needs to deal")
	})

	t.Run("cancelled before the first episode", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		m := NewISMCTS[int](WithDeterminizations(5), WithWorkers(2))
		_, _, err := m.Search(cancelled, newMockState([]int{0, 1}, 2, 1))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestSearchBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("parallel workers share the budget", func(t *testing.T) {
		m := NewISMCTS[int](
			WithDeterminizations(40),
			WithDescents(2),
			WithWorkers(4),
			WithSeed(6),
			WithMetrics(metrics.NewCollector()),
		)
		_, metric, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 4, 1))
		require.NoError(t, err)

		require.Equal(t, 80, m.Root().Visits())
		sum := 0
		for _, child := range m.Root().Children() {
			sum += child.Visits()
		}
		require.Equal(t, 80, sum)
		require.Equal(t, 4, metric.Workers)
		require.Equal(t, 40, metric.Determinizations)
		require.Equal(t, 80, metric.Episodes)
		require.Equal(t, "tricks", metric.Policy)
		require.Equal(t, m.Root().Size(), metric.TreeSize)
		require.False(t, metric.StoppedEarly)
	})

	t.Run("time bound search", func(t *testing.T) {
		m := NewISMCTS[int](WithDuration(20*time.Millisecond), WithSeed(6), WithMetrics(metrics.NewCollector()))
		_, metric, err := m.Search(ctx, newMockState([]int{0, 1, 2}, 6, 1))
		require.NoError(t, err)
		require.True(t, metric.StoppedEarly)
		require.Positive(t, metric.Episodes)
		require.Equal(t, metric.Episodes, m.Root().Visits())
	})

	t.Run("splitting determinizations", func(t *testing.T) {
		require.Equal(t, []int{4, 3, 3}, splitBudget(10, 3))
		require.Equal(t, []int{1, 1, 0}, splitBudget(2, 3))
		require.Equal(t, []int{-1, -1}, splitBudget(0, 2))
	})
}
