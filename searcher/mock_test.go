package searcher

import (
	"errors"
	"slices"

	"golang.org/x/exp/rand"
)

// mockState is a two player picking game without hidden information.
// Players alternate picking a number from options until each round has had
// plays picks; the player with the larger total over all rounds wins.
type mockState struct {
	options []int
	plays   int
	played  int
	round   int
	rounds  int
	toMove  Player
	totals  [3]int
	picks   [3]int // Current round
	stuck   bool   // Deal never starts a new round
}

func newMockState(options []int, plays, rounds int) *mockState {
	return &mockState{
		options: options,
		plays:   plays,
		round:   1,
		rounds:  rounds,
		toMove:  1,
	}
}

func (s *mockState) Clone() State[int] {
	c := *s
	c.options = slices.Clone(s.options)
	return &c
}

func (s *mockState) CloneAndRandomize(_ Player, _ *rand.Rand) State[int] {
	return s.Clone()
}

func (s *mockState) PlayerToMove() Player { return s.toMove }

func (s *mockState) LegalMoves() []int {
	if s.played >= s.plays {
		return nil
	}
	return slices.Clone(s.options)
}

func (s *mockState) Play(move int) error {
	if !slices.Contains(s.LegalMoves(), move) {
		return errors.New("illegal move")
	}
	s.totals[s.toMove] += move
	s.picks[s.toMove] += move
	s.played++
	s.toMove = 3 - s.toMove
	return nil
}

func (s *mockState) Result(p Player) float64 {
	if s.totals[p] > s.totals[3-p] {
		return WIN
	}
	return LOSS
}

func (s *mockState) Tricks(p Player) int { return s.picks[p] }

func (s *mockState) TricksInRound() int {
	return s.plays * slices.Max(s.options)
}

func (s *mockState) GameOver() bool {
	return s.played >= s.plays && s.round >= s.rounds
}

func (s *mockState) Deal(_ *rand.Rand) error {
	if s.GameOver() {
		return errors.New("game over")
	}
	if s.stuck {
		return nil
	}
	s.round++
	s.played = 0
	s.picks = [3]int{}
	return nil
}

// fixedResult is a terminal state reporting constant rewards.
type fixedResult struct {
	result  float64
	tricks  int
	inRound int
}

func (s fixedResult) Clone() State[int]                                   { return s }
func (s fixedResult) CloneAndRandomize(_ Player, _ *rand.Rand) State[int] { return s }
func (s fixedResult) PlayerToMove() Player                                { return 1 }
func (s fixedResult) LegalMoves() []int                                   { return nil }
func (s fixedResult) Play(_ int) error                                    { return errors.New("terminal") }
func (s fixedResult) Result(_ Player) float64                             { return s.result }
func (s fixedResult) Tricks(_ Player) int                                 { return s.tricks }
func (s fixedResult) TricksInRound() int                                  { return s.inRound }
func (s fixedResult) GameOver() bool                                      { return true }

// walk calls f on every node of the tree below root, root included.
func walk[M comparable](root *Node[M], f func(*Node[M])) {
	f(root)
	for _, child := range root.children {
		walk(child, f)
	}
}
