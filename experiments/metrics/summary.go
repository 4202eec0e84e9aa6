package metrics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the outcome of a series of games.
type Summary struct {
	Games       int
	Wins        map[int]int     // Player -> games won
	WinRates    map[int]float64 // Player -> share of games won
	MeanWinRate float64
	StdWinRate  float64
}

// Summarize computes per player win rates and their spread. Players that
// never won must still appear in wins with a zero count.
func Summarize(wins map[int]int, games int) Summary {
	s := Summary{
		Games:    games,
		Wins:     wins,
		WinRates: make(map[int]float64, len(wins)),
	}
	if games == 0 || len(wins) == 0 {
		return s
	}

	rates := make([]float64, 0, len(wins))
	for _, p := range s.Players() {
		rate := float64(wins[p]) / float64(games)
		s.WinRates[p] = rate
		rates = append(rates, rate)
	}
	if len(rates) == 1 {
		s.MeanWinRate = rates[0]
		return s
	}
	s.MeanWinRate, s.StdWinRate = stat.MeanStdDev(rates, nil)
	return s
}

// Players returns the players in ascending order.
func (s Summary) Players() []int {
	players := make([]int, 0, len(s.Wins))
	for p := range s.Wins {
		players = append(players, p)
	}
	sort.Ints(players)
	return players
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d games\n", s.Games)
	for _, p := range s.Players() {
		fmt.Fprintf(&b, "player %d: %d wins (%.1f%%)\n", p, s.Wins[p], 100*s.WinRates[p])
	}
	fmt.Fprintf(&b, "win rate mean %.3f, std %.3f", s.MeanWinRate, s.StdWinRate)
	return b.String()
}

// GameLengths returns the mean and standard deviation of moves per game.
func GameLengths(records []GameRecord) (mean, std float64) {
	if len(records) == 0 {
		return 0, 0
	}
	lengths := make([]float64, len(records))
	for i, r := range records {
		lengths[i] = float64(r.TotalMoves)
	}
	if len(lengths) == 1 {
		return lengths[0], 0
	}
	return stat.MeanStdDev(lengths, nil)
}
