package game

import (
	"fmt"
	"slices"
	"strings"

	"ismcts/searcher"
	"ismcts/utils"

	"golang.org/x/exp/rand"
)

// TrickPlay is one card laid in the current trick.
type TrickPlay struct {
	Player searcher.Player
	Card   Card
}

// State is a simplified bridge: a knockout-whist style trick game where the
// trump suit of each deal is drawn at random. Odd seats play against even
// seats; after every round the side that took fewer tricks loses the round
// (the even side on ties). Players are numbered 1..Players, slices indexed
// by player keep index 0 unused.
type State struct {
	Players        int
	ToMove         searcher.Player
	Starter        searcher.Player
	TricksPerRound int
	Rounds         int
	Round          int // Current round, 1-based once dealt
	Over           bool
	Hands          [][]Card
	Discards       []Card // Cards played in earlier tricks of this round
	Trick          []TrickPlay
	Trump          Suit
	Taken          []int // Tricks taken this round
	RoundsWon      [2]int
}

// NewState deals the first round of a game with a random first player.
func NewState(players, tricks, rounds int, rng *rand.Rand) (*State, error) {
	if players < 2 || players > 4 {
		return nil, fmt.Errorf("%w: %d players, want 2 to 4", ErrInvalidSetup, players)
	}
	if tricks < 1 || players*tricks > len(Deck()) {
		return nil, fmt.Errorf("%w: %d players cannot hold %d cards each from a %d card deck",
			ErrInvalidSetup, players, tricks, len(Deck()))
	}
	if rounds < 1 {
		return nil, fmt.Errorf("%w: %d rounds", ErrInvalidSetup, rounds)
	}

	s := &State{
		Players:        players,
		TricksPerRound: tricks,
		Rounds:         rounds,
		Hands:          make([][]Card, players+1),
		Taken:          make([]int, players+1),
	}
	s.ToMove = searcher.Player(rng.Intn(players) + 1)
	s.Starter = s.ToMove
	if err := s.Deal(rng); err != nil {
		return nil, err
	}
	return s, nil
}

// Deal starts the next round: fresh hands, a random trump suit and cleared
// trick counts. The winner of the last trick keeps the lead.
func (s *State) Deal(rng *rand.Rand) error {
	if s.Over {
		return ErrGameOver
	}
	if s.Round > 0 && len(s.Hands[s.ToMove]) > 0 {
		return ErrRoundInProgress
	}

	s.Round++
	s.Discards = nil
	s.Trick = nil
	s.Taken = make([]int, s.Players+1)

	deck := Deck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	for p := 1; p <= s.Players; p++ {
		s.Hands[p] = slices.Clone(deck[:s.TricksPerRound])
		deck = deck[s.TricksPerRound:]
	}
	s.Trump = Suits[rng.Intn(len(Suits))]
	return nil
}

func (s *State) Copy() *State {
	hands := make([][]Card, len(s.Hands))
	for i, hand := range s.Hands {
		hands[i] = slices.Clone(hand)
	}

	return &State{
		Players:        s.Players,
		ToMove:         s.ToMove,
		Starter:        s.Starter,
		TricksPerRound: s.TricksPerRound,
		Rounds:         s.Rounds,
		Round:          s.Round,
		Over:           s.Over,
		Hands:          hands,
		Discards:       slices.Clone(s.Discards),
		Trick:          slices.Clone(s.Trick),
		Trump:          s.Trump,
		Taken:          slices.Clone(s.Taken),
		RoundsWon:      s.RoundsWon,
	}
}

func (s *State) Clone() searcher.State[Card] {
	return s.Copy()
}

// CloneAndRandomize re-deals every card the observer has not seen to the
// other players, keeping their hand sizes. The observer sees their own
// hand, the current trick and remembers the discards.
func (s *State) CloneAndRandomize(observer searcher.Player, rng *rand.Rand) searcher.State[Card] {
	st := s.Copy()

	seen := slices.Clone(st.Hands[observer])
	seen = append(seen, st.Discards...)
	for _, play := range st.Trick {
		seen = append(seen, play.Card)
	}

	unseen := make([]Card, 0, len(Deck()))
	for _, card := range Deck() {
		if !utils.Contains(seen, card) {
			unseen = append(unseen, card)
		}
	}
	rng.Shuffle(len(unseen), func(i, j int) {
		unseen[i], unseen[j] = unseen[j], unseen[i]
	})

	for p := 1; p <= st.Players; p++ {
		if searcher.Player(p) == observer {
			continue
		}
		n := len(s.Hands[p])
		st.Hands[p] = slices.Clone(unseen[:n])
		unseen = unseen[n:]
	}
	return st
}

func (s *State) PlayerToMove() searcher.Player {
	return s.ToMove
}

// LegalMoves lets the leader play any card; followers must follow suit when
// they can.
func (s *State) LegalMoves() []Card {
	if s.Over {
		return nil
	}
	hand := s.Hands[s.ToMove]
	if len(s.Trick) == 0 {
		return slices.Clone(hand)
	}

	lead := s.Trick[0].Card.Suit
	inSuit := make([]Card, 0, len(hand))
	for _, card := range hand {
		if card.Suit == lead {
			inSuit = append(inSuit, card)
		}
	}
	if len(inSuit) > 0 {
		return inSuit
	}
	return slices.Clone(hand)
}

func (s *State) Play(card Card) error {
	if !utils.Contains(s.LegalMoves(), card) {
		return fmt.Errorf("%w: %v by player %d", ErrIllegalMove, card, s.ToMove)
	}

	s.Trick = append(s.Trick, TrickPlay{Player: s.ToMove, Card: card})
	s.Hands[s.ToMove] = utils.Remove(s.Hands[s.ToMove], card)

	if len(s.Trick) < s.Players {
		s.ToMove = s.nextPlayer(s.ToMove)
		return nil
	}

	winner := s.trickWinner()
	s.Taken[winner]++
	for _, play := range s.Trick {
		s.Discards = append(s.Discards, play.Card)
	}
	s.Trick = nil
	s.ToMove = winner

	if len(s.Hands[winner]) == 0 {
		s.endRound()
	}
	return nil
}

func (s *State) nextPlayer(p searcher.Player) searcher.Player {
	return p%searcher.Player(s.Players) + 1
}

// trickWinner is the highest trump if any was played, otherwise the highest
// card of the suit led.
func (s *State) trickWinner() searcher.Player {
	best := s.Trick[0]
	for _, play := range s.Trick[1:] {
		if beats(play.Card, best.Card, s.Trump) {
			best = play
		}
	}
	return best.Player
}

func beats(card, best Card, trump Suit) bool {
	switch {
	case card.Suit == best.Suit:
		return card.Rank > best.Rank
	case card.Suit == trump:
		return true
	default:
		return false
	}
}

func (s *State) endRound() {
	odd, even := s.TeamTricks(1), s.TeamTricks(2)
	if odd < even {
		s.RoundsWon[team(2)]++
	} else {
		s.RoundsWon[team(1)]++
	}
	if s.Round >= s.Rounds {
		s.Over = true
	}
}

func team(p searcher.Player) int {
	return int(p) % 2
}

// TeamTricks sums the tricks taken this round by p and p's partners.
func (s *State) TeamTricks(p searcher.Player) int {
	total := 0
	for q := 1; q <= s.Players; q++ {
		if team(searcher.Player(q)) == team(p) {
			total += s.Taken[q]
		}
	}
	return total
}

// Result is 1 when p's side has won more finished rounds than the other
// side (the odd side on ties), 0 otherwise or before any round finished.
func (s *State) Result(p searcher.Player) float64 {
	mine, theirs := s.RoundsWon[team(p)], s.RoundsWon[1-team(p)]
	if mine+theirs == 0 {
		return searcher.LOSS
	}
	if mine > theirs || (mine == theirs && team(p) == team(1)) {
		return searcher.WIN
	}
	return searcher.LOSS
}

func (s *State) Tricks(p searcher.Player) int {
	return s.Taken[p]
}

func (s *State) TricksInRound() int {
	return s.TricksPerRound
}

func (s *State) GameOver() bool {
	return s.Over
}

// Winners lists the players whose side won.
func (s *State) Winners() []searcher.Player {
	var winners []searcher.Player
	for p := 1; p <= s.Players; p++ {
		if s.Result(searcher.Player(p)) == searcher.WIN {
			winners = append(winners, searcher.Player(p))
		}
	}
	return winners
}

// SortedHand returns p's hand grouped by suit, ascending rank.
func (s *State) SortedHand(p searcher.Player) []Card {
	hand := slices.Clone(s.Hands[p])
	slices.SortFunc(hand, func(a, b Card) int {
		if a.Suit != b.Suit {
			return strings.IndexByte("CDHS", byte(a.Suit)) - strings.IndexByte("CDHS", byte(b.Suit))
		}
		return a.Rank - b.Rank
	})
	return hand
}

// Describe renders the table from viewer's seat; the hand is shown only
// when it is viewer's turn.
func (s *State) Describe(viewer searcher.Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "P%d : [", s.ToMove)
	for i, play := range s.Trick {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "P%d:%v", play.Player, play.Card)
	}
	b.WriteString("] | ")
	if s.ToMove == viewer {
		for i, card := range s.SortedHand(viewer) {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(card.String())
		}
	}
	fmt.Fprintf(&b, " | Trump: %c | Scores: %d", s.Trump, s.Taken[s.ToMove])
	return b.String()
}

func (s *State) String() string {
	return s.Describe(0)
}
