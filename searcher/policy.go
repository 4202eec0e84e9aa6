package searcher

import (
	"fmt"
	"math"
)

// ucb computes q/n + c*sqrt(ln(avails)/n). The availability count replaces
// the parent visit count of plain UCT, so siblings that are rarely legal are
// not penalised for it.
func ucb(q float64, visits int, avails int, c float64) float64 {
	if visits == 0 { // Prevent division by zero
		panic("cannot compute UCB: 0 visits")
	}
	n := float64(visits)
	return q/n + c*math.Sqrt(math.Log(float64(avails))/n)
}

// score rates child from the viewpoint of the player who made its move.
func score[M comparable](policy Policy, child *Node[M], exploration float64) (float64, error) {
	if child.visits == 0 {
		return 0, fmt.Errorf("%w: move %v", ErrUnvisited, child.move)
	}

	switch policy {
	case ByTrickValue:
		return ucb(child.trickValue, child.visits, child.avails, TrickExploration), nil
	case ByWinRate:
		return ucb(child.wins, child.visits, child.avails, exploration), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidPolicy, int(policy))
	}
}
