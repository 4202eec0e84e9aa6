package searcher

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	root := NewRoot[int](ByWinRate)
	root.visits = 4
	shared := visited(root, 1, 3, 2, 0.5)
	visited(shared, 5, 1, 1, 0.1)

	other := NewRoot[int](ByWinRate)
	other.visits = 6
	otherShared := visited(other, 1, 2, 1, 0.25)
	visited(otherShared, 5, 2, 0, 0.2)
	visited(otherShared, 6, 1, 1, 0.3)
	adopted := visited(other, 2, 4, 4, 1)

	merge(root, other)

	require.Equal(t, 10, root.Visits())
	require.Equal(t, 1, root.Avails(), "Root availability is not merged")
	require.Len(t, root.Children(), 2)

	require.Equal(t, 5, shared.Visits())
	require.Equal(t, 5, shared.Avails())
	require.Equal(t, 3.0, shared.Wins())
	require.InDelta(t, 0.75, shared.TrickValue(), 1e-12)
	require.Equal(t, 3, shared.Child(5).Visits(), "Matching grandchildren are merged")
	require.NotNil(t, shared.Child(6), "New grandchildren are adopted")
	require.Same(t, shared, shared.Child(6).Parent())

	require.Same(t, adopted, root.Child(2))
	require.Same(t, root, adopted.Parent())
	require.Empty(t, other.Children(), "Other tree is emptied")
}

func TestReport(t *testing.T) {
	root := NewRoot[int](ByWinRate)
	root.visits = 3
	a := visited(root, 1, 2, 1, 0)
	visited(a, 3, 1, 0, 0)
	visited(root, 2, 1, 1, 0)

	t.Run("children only", func(t *testing.T) {
		var out bytes.Buffer
		WriterReporter[int](&out, false)(root)
		require.Equal(t,
			"[M:1 W/S/V/A: 0.500/0.0/   2/   2]\n[M:2 W/S/V/A: 1.000/0.0/   1/   1]\n",
			out.String())
	})

	t.Run("whole tree", func(t *testing.T) {
		var out bytes.Buffer
		WriterReporter[int](&out, true)(root)
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 4)
		require.True(t, strings.HasPrefix(lines[0], "[M:root"))
		require.True(t, strings.HasPrefix(lines[1], "| [M:1"))
		require.True(t, strings.HasPrefix(lines[2], "| | [M:3"))
		require.True(t, strings.HasPrefix(lines[3], "| [M:2"))
	})
}
