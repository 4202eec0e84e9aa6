package searcher

import (
	"fmt"
	"math"

	"ismcts/utils"
)

// Node is a node of the information set tree. wins, tricks and trickValue
// are always from the viewpoint of the player who just moved into the node.
type Node[M comparable] struct {
	move       M
	parent     *Node[M] // nil for the root, never owning
	children   []*Node[M]
	player     Player
	policy     Policy
	visits     int
	avails     int
	wins       float64
	tricks     int
	trickValue float64
}

// NewRoot returns a root node: no move, no parent and no player. Nothing
// selects the root, so visits <= avails only holds below it.
func NewRoot[M comparable](policy Policy) *Node[M] {
	return &Node[M]{
		policy: policy,
		avails: 1,
	}
}

// UntriedMoves returns the elements of legal for which n has no child.
func (n *Node[M]) UntriedMoves(legal []M) []M {
	tried := make([]M, len(n.children))
	for i, child := range n.children {
		tried[i] = child.move
	}

	untried := make([]M, 0, len(legal))
	for _, move := range legal {
		if !utils.Contains(tried, move) {
			untried = append(untried, move)
		}
	}
	return untried
}

// SelectChild picks the child maximising the policy score among the
// children whose move is in legal. Every legal child has its availability
// incremented, whichever one is picked.
func (n *Node[M]) SelectChild(legal []M, exploration float64) (*Node[M], error) {
	if !n.policy.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, int(n.policy))
	}

	candidates := make([]*Node[M], 0, len(n.children))
	for _, child := range n.children {
		if utils.Contains(legal, child.move) {
			candidates = append(candidates, child)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	var best *Node[M]
	maxScore := math.Inf(-1)
	for _, child := range candidates {
		s, err := score(n.policy, child, exploration)
		if err != nil {
			return nil, err
		}
		if best == nil || s > maxScore {
			maxScore = s
			best = child
		}
	}

	// Easier to count availability here than during backpropagation
	for _, child := range candidates {
		child.avails++
	}

	return best, nil
}

// AddChild appends a new child for move, made by player, and returns it.
// Callers only pass untried moves.
func (n *Node[M]) AddChild(move M, player Player) *Node[M] {
	child := &Node[M]{
		move:   move,
		parent: n,
		player: player,
		policy: n.policy,
		avails: 1,
	}
	n.children = append(n.children, child)
	return child
}

// Update records one finished rollout ending in terminal.
func (n *Node[M]) Update(terminal State[M]) {
	n.visits++
	if n.parent == nil { // Root has no player to credit
		return
	}

	n.wins += terminal.Result(n.player)
	tricks := terminal.Tricks(n.player)
	n.tricks += tricks
	// +1 keeps the value strictly below 1
	n.trickValue += float64(tricks) / float64(terminal.TricksInRound()+1)
}

// Move returns the move leading to n; ok is false for the root.
func (n *Node[M]) Move() (move M, ok bool) {
	return n.move, n.parent != nil
}

// PlayerJustMoved returns the player whose move produced n; ok is false for
// the root.
func (n *Node[M]) PlayerJustMoved() (player Player, ok bool) {
	return n.player, n.parent != nil
}

func (n *Node[M]) Parent() *Node[M]     { return n.parent }
func (n *Node[M]) Children() []*Node[M] { return n.children }
func (n *Node[M]) Policy() Policy       { return n.policy }
func (n *Node[M]) Visits() int          { return n.visits }
func (n *Node[M]) Avails() int          { return n.avails }
func (n *Node[M]) Wins() float64        { return n.wins }
func (n *Node[M]) Tricks() int          { return n.tricks }
func (n *Node[M]) TrickValue() float64  { return n.trickValue }

// Child returns the child reached by move, or nil.
func (n *Node[M]) Child(move M) *Node[M] {
	for _, child := range n.children {
		if child.move == move {
			return child
		}
	}
	return nil
}

// MostVisited returns the child with the most visits, the earliest expanded
// one on ties, or nil when n has no children.
func (n *Node[M]) MostVisited() *Node[M] {
	var best *Node[M]
	for _, child := range n.children {
		if best == nil || child.visits > best.visits {
			best = child
		}
	}
	return best
}

// Size counts n and all of its descendants.
func (n *Node[M]) Size() int {
	size := 1
	for _, child := range n.children {
		size += child.Size()
	}
	return size
}

// VisitPolicy returns each child's share of the children's visits.
func (n *Node[M]) VisitPolicy() map[M]float64 {
	total := 0
	for _, child := range n.children {
		total += child.visits
	}
	policy := make(map[M]float64, len(n.children))
	if total == 0 {
		return policy
	}
	for _, child := range n.children {
		policy[child.move] = float64(child.visits) / float64(total)
	}
	return policy
}

func (n *Node[M]) String() string {
	var label any = n.move
	if n.parent == nil {
		label = "root"
	}
	if n.visits == 0 {
		return fmt.Sprintf("[M:%v W/S/V/A: -/-/%4d/%4d]", label, n.visits, n.avails)
	}
	v := float64(n.visits)
	return fmt.Sprintf("[M:%v W/S/V/A: %.3f/%.1f/%4d/%4d]",
		label, n.wins/v, float64(n.tricks)/v, n.visits, n.avails)
}
