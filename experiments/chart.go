package experiments

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"ismcts/experiments/metrics"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// PlotThroughput renders episodes per move against worker count as an HTML
// page.
func PlotThroughput(w io.Writer, results []Throughput) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Search throughput",
			Subtitle: "episodes per move by worker count",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	workers := make([]string, len(results))
	episodes := make([]opts.LineData, len(results))
	for i, r := range results {
		workers[i] = strconv.Itoa(r.Workers)
		episodes[i] = opts.LineData{Value: r.EpisodesPerMove}
	}
	line.SetXAxis(workers).AddSeries("episodes per move", episodes)

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

// WriteChart renders plot into the file at path.
func WriteChart(path string, plot func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart: %w", err)
	}
	defer f.Close()
	if err := plot(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// PlotWins renders each player's share of games won as an HTML page.
func PlotWins(w io.Writer, summary metrics.Summary) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Win rates",
			Subtitle: fmt.Sprintf("%d games", summary.Games),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	players := summary.Players()
	names := make([]string, len(players))
	rates := make([]opts.BarData, len(players))
	for i, p := range players {
		names[i] = fmt.Sprintf("player %d", p)
		rates[i] = opts.BarData{Value: summary.WinRates[p]}
	}
	bar.SetXAxis(names).AddSeries("win rate", rates)

	page := components.NewPage()
	page.AddCharts(bar)
	return page.Render(w)
}
