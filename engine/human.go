package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ismcts/experiments/metrics"
	"ismcts/game"
	"ismcts/utils"

	"github.com/muesli/termenv"
)

// HumanAgent asks a person for every card. Lines are read from in and the
// table is printed to out; unparsable or illegal cards are asked again.
type HumanAgent struct {
	scanner *bufio.Scanner
	w       io.Writer
	out     *termenv.Output
}

func NewHumanAgent(in io.Reader, out io.Writer) *HumanAgent {
	return &HumanAgent{
		scanner: bufio.NewScanner(in),
		w:       out,
		out:     termenv.NewOutput(out),
	}
}

func (a *HumanAgent) FindMove(ctx context.Context, state *game.State) (game.Card, metrics.SearchMetric, error) {
	legal := state.LegalMoves()
	fmt.Fprintln(a.w, state.Describe(state.ToMove))
	fmt.Fprintf(a.w, "Hand: %s\n", a.renderHand(state, legal))

	for {
		if err := ctx.Err(); err != nil {
			return game.Card{}, metrics.SearchMetric{}, err
		}
		fmt.Fprint(a.w, "Card to play: ")
		if !a.scanner.Scan() {
			if err := a.scanner.Err(); err != nil {
				return game.Card{}, metrics.SearchMetric{}, fmt.Errorf("reading card: %w", err)
			}
			return game.Card{}, metrics.SearchMetric{}, io.ErrUnexpectedEOF
		}

		card, err := game.ParseCard(a.scanner.Text())
		if err != nil {
			fmt.Fprintln(a.w, a.warn(err.Error()))
			continue
		}
		if !utils.Contains(legal, card) {
			fmt.Fprintln(a.w, a.warn(fmt.Sprintf("%v is not a legal card", card)))
			continue
		}
		return card, metrics.SearchMetric{}, nil
	}
}

// renderHand prints red suits in red and legal cards in bold. Colour is
// dropped automatically when out is not a terminal.
func (a *HumanAgent) renderHand(state *game.State, legal []game.Card) string {
	hand := state.SortedHand(state.ToMove)
	parts := make([]string, len(hand))
	for i, card := range hand {
		style := a.out.String(card.String())
		if card.Suit == game.Hearts || card.Suit == game.Diamonds {
			style = style.Foreground(termenv.ANSIRed)
		}
		if utils.Contains(legal, card) {
			style = style.Bold()
		}
		parts[i] = style.String()
	}
	return strings.Join(parts, " ")
}

func (a *HumanAgent) warn(msg string) string {
	return a.out.String(msg).Foreground(termenv.ANSIYellow).String()
}
