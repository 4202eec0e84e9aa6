package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// visited adds a child for move with fixed statistics.
func visited(n *Node[int], move int, visits int, wins, trickValue float64) *Node[int] {
	child := n.AddChild(move, 1)
	child.visits = visits
	child.avails = visits
	child.wins = wins
	child.trickValue = trickValue
	return child
}

func TestUntriedMoves(t *testing.T) {
	root := NewRoot[int](ByWinRate)
	root.AddChild(1, 1)
	root.AddChild(2, 1)

	t.Run("some moves untried", func(t *testing.T) {
		require.Equal(t, []int{3}, root.UntriedMoves([]int{1, 2, 3}))
	})

	t.Run("every legal move tried", func(t *testing.T) {
		require.Empty(t, root.UntriedMoves([]int{2, 1}))
		require.Empty(t, root.UntriedMoves([]int{1}), "Tried moves missing from legal do not matter")
	})

	t.Run("leaf node", func(t *testing.T) {
		leaf := NewRoot[int](ByWinRate)
		require.Equal(t, []int{4, 5}, leaf.UntriedMoves([]int{4, 5}))
	})
}

func TestSelectChild(t *testing.T) {
	t.Run("highest win rate with no exploration", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		visited(root, 1, 4, 1, 0)
		best := visited(root, 2, 4, 3, 0)
		visited(root, 3, 4, 2, 0)

		child, err := root.SelectChild([]int{1, 2, 3}, 0)
		require.NoError(t, err)
		require.Same(t, best, child)
	})

	t.Run("highest trick value", func(t *testing.T) {
		root := NewRoot[int](ByTrickValue)
		visited(root, 1, 2, 2, 0.2)
		best := visited(root, 2, 2, 0, 0.9)

		child, err := root.SelectChild([]int{1, 2}, DefaultExploration)
		require.NoError(t, err)
		require.Same(t, best, child, "Trick value ignores wins")
	})

	t.Run("first child wins ties", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		first := visited(root, 1, 3, 1, 0)
		visited(root, 2, 3, 1, 0)

		child, err := root.SelectChild([]int{1, 2}, DefaultExploration)
		require.NoError(t, err)
		require.Same(t, first, child)
	})

	t.Run("only legal children are candidates", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		illegal := visited(root, 1, 10, 10, 0)
		legal := visited(root, 2, 10, 0, 0)

		child, err := root.SelectChild([]int{2, 3}, 0)
		require.NoError(t, err)
		require.Same(t, legal, child)
		require.Equal(t, 10, illegal.avails, "Illegal child is not available")
		require.Equal(t, 11, legal.avails)
	})

	t.Run("every legal child becomes available", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		a := visited(root, 1, 1, 1, 0)
		b := visited(root, 2, 1, 0, 0)

		_, err := root.SelectChild([]int{1, 2}, 0)
		require.NoError(t, err)
		require.Equal(t, 2, a.avails)
		require.Equal(t, 2, b.avails, "Losing candidate is counted too")
	})

	t.Run("exploration favours rarely visited children", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		visited(root, 1, 100, 60, 0).avails = 200
		rare := visited(root, 2, 1, 0, 0)
		rare.avails = 200

		child, err := root.SelectChild([]int{1, 2}, DefaultExploration)
		require.NoError(t, err)
		require.Same(t, rare, child)
	})

	t.Run("errors", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		_, err := root.SelectChild([]int{1}, 0)
		require.ErrorIs(t, err, ErrNoCandidates, "No children")

		visited(root, 1, 1, 0, 0)
		_, err = root.SelectChild([]int{2}, 0)
		require.ErrorIs(t, err, ErrNoCandidates, "No legal children")

		root.AddChild(2, 1)
		_, err = root.SelectChild([]int{1, 2}, 0)
		require.ErrorIs(t, err, ErrUnvisited)

		bad := NewRoot[int](Policy(9))
		_, err = bad.SelectChild([]int{1}, 0)
		require.ErrorIs(t, err, ErrInvalidPolicy, "Policy is checked before children")

		visited(bad, 1, 1, 0, 0)
		_, err = bad.SelectChild([]int{1}, 0)
		require.ErrorIs(t, err, ErrInvalidPolicy)
	})
}

func TestAddChild(t *testing.T) {
	root := NewRoot[int](ByTrickValue)
	child := root.AddChild(7, 2)

	move, ok := child.Move()
	require.True(t, ok)
	require.Equal(t, 7, move)
	player, ok := child.PlayerJustMoved()
	require.True(t, ok)
	require.Equal(t, Player(2), player)
	require.Same(t, root, child.Parent())
	require.Equal(t, ByTrickValue, child.Policy(), "Children inherit the policy")
	require.Equal(t, 0, child.Visits())
	require.Equal(t, 1, child.Avails())
	require.Equal(t, []*Node[int]{child}, root.Children())

	_, ok = root.Move()
	require.False(t, ok, "Root has no move")
	_, ok = root.PlayerJustMoved()
	require.False(t, ok)
}

func TestUpdate(t *testing.T) {
	t.Run("accumulating results", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		child := root.AddChild(1, 1)
		results := []float64{1, 0, 1, 1, 0}
		for _, r := range results {
			child.Update(fixedResult{result: r, tricks: 3, inRound: 5})
		}

		require.Equal(t, 5, child.Visits())
		require.Equal(t, 3.0, child.Wins())
		require.Equal(t, 15, child.Tricks())
		require.InDelta(t, 5*3.0/6.0, child.TrickValue(), 1e-9)
		require.LessOrEqual(t, child.Wins(), float64(child.Visits()))
	})

	t.Run("root only counts visits", func(t *testing.T) {
		root := NewRoot[int](ByWinRate)
		root.Update(fixedResult{result: 1, tricks: 2, inRound: 2})

		require.Equal(t, 1, root.Visits())
		require.Zero(t, root.Wins())
		require.Zero(t, root.Tricks())
		require.Zero(t, root.TrickValue())
	})

	t.Run("trick value stays below one", func(t *testing.T) {
		child := NewRoot[int](ByTrickValue).AddChild(1, 1)
		child.Update(fixedResult{tricks: 4, inRound: 4})
		require.Less(t, child.TrickValue(), 1.0)
	})
}

func TestTreeQueries(t *testing.T) {
	root := NewRoot[int](ByWinRate)
	a := visited(root, 1, 3, 1, 0)
	b := visited(root, 2, 5, 4, 0)
	visited(root, 3, 5, 0, 0)
	a.AddChild(4, 2)

	t.Run("child by move", func(t *testing.T) {
		require.Same(t, b, root.Child(2))
		require.Nil(t, root.Child(9))
	})

	t.Run("most visited prefers the earliest on ties", func(t *testing.T) {
		require.Same(t, b, root.MostVisited())
		require.Nil(t, a.Child(4).MostVisited())
	})

	t.Run("size", func(t *testing.T) {
		require.Equal(t, 5, root.Size())
	})

	t.Run("visit policy", func(t *testing.T) {
		require.Equal(t, map[int]float64{1: 3.0 / 13, 2: 5.0 / 13, 3: 5.0 / 13}, root.VisitPolicy())
		require.Empty(t, a.Child(4).VisitPolicy())
	})

	t.Run("printing", func(t *testing.T) {
		require.Equal(t, "[M:root W/S/V/A: -/-/   0/   1]", root.String())
		require.Equal(t, "[M:2 W/S/V/A: 0.800/0.0/   5/   5]", b.String())
	})
}
