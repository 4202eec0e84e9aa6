package searcher

import (
	"errors"

	"golang.org/x/exp/rand"
)

// Player identifies a seat in the game. The searcher never interprets it
// beyond passing it back to the State.
type Player int

// State is one fully determined instantiation of a game. Any game that aims
// to be searchable by ISMCTS implements it. Play mutates the receiver; the
// search only ever plays on copies obtained from Clone or CloneAndRandomize.
type State[M comparable] interface {
	// Clone returns an independent deep copy.
	Clone() State[M]
	// CloneAndRandomize returns a deep copy in which all information hidden
	// from observer is redrawn consistently with what observer has seen.
	CloneAndRandomize(observer Player, rng *rand.Rand) State[M]
	PlayerToMove() Player
	// LegalMoves returns the moves playable now. An empty slice ends the
	// current round, not necessarily the game.
	LegalMoves() []M
	Play(move M) error
	// Result is the terminal reward (0 or 1) for player.
	Result(player Player) float64
	// Tricks is the secondary, game specific reward for player.
	Tricks(player Player) int
	TricksInRound() int
	GameOver() bool
}

// Dealer is implemented by states whose game spans several rounds. Rollouts
// under ByWinRate call Deal when a round ends before the game is over.
type Dealer interface {
	Deal(rng *rand.Rand) error
}

// Policy selects the statistic that drives child selection and the rollout
// termination rule.
type Policy int

const (
	// ByTrickValue maximises the normalised trick value and rolls out to the
	// end of the current round.
	ByTrickValue Policy = iota
	// ByWinRate maximises the binary win rate and rolls out to game over.
	ByWinRate
)

func (p Policy) valid() bool {
	return p == ByTrickValue || p == ByWinRate
}

func (p Policy) String() string {
	switch p {
	case ByTrickValue:
		return "tricks"
	case ByWinRate:
		return "wins"
	default:
		return "unknown"
	}
}

// ParsePolicy maps the player type names "tricks" and "wins" to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "tricks":
		return ByTrickValue, nil
	case "wins":
		return ByWinRate, nil
	}
	return 0, ErrInvalidPolicy
}

// Hyperparameters

const DefaultExploration = 0.7 // ~sqrt(2)/2
const TrickExploration = 0.5   // Fixed exploration weight of ByTrickValue

const WIN = 1.0
const LOSS = 0.0

var (
	ErrInvalidPolicy = errors.New("invalid selection policy")
	ErrNoCandidates  = errors.New("no legal child to select")
	ErrUnvisited     = errors.New("candidate child has no visits")
	ErrNoMoves       = errors.New("root state has no legal moves")
	ErrStalled       = errors.New("round ended but game is not over and state cannot deal")
)

// Reporter observes the finished tree once per completed search.
type Reporter[M comparable] func(root *Node[M])
