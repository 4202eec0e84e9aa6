package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"ismcts/config"
	"ismcts/experiments"
	"ismcts/experiments/metrics"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("session failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	stdout := colorable.NewColorableStdout()
	for _, p := range cfg.Players {
		if p.Type == config.Human || p.Type == config.Random {
			log.Info().Msgf("player %d: %s", p.ID, p.Type)
			continue
		}
		log.Info().Msgf("player %d: %s search, budget %s, %d workers", p.ID, p.Type, config.Budget(p), p.Workers)
	}

	var session *experiments.Session
	var plot func(io.Writer) error
	switch cfg.Experiment {
	case "":
		var err error
		session, err = experiments.RunSession(ctx, cfg, experiments.Console{In: os.Stdin, Out: stdout})
		if err != nil {
			return err
		}
		summary := metrics.Summarize(session.Wins, cfg.Games)
		plot = func(w io.Writer) error { return experiments.PlotWins(w, summary) }
		fmt.Fprintln(stdout, "--------------------------------------------")
		fmt.Fprintln(stdout, summary)
		mean, std := metrics.GameLengths(session.GameRecords)
		fmt.Fprintf(stdout, "moves per game %.1f ± %.1f\n", mean, std)
		fmt.Fprintln(stdout, "--------------------------------------------")
	case "throughput":
		results, all, err := experiments.RunThroughput(ctx, cfg)
		if err != nil {
			return err
		}
		session = all
		plot = func(w io.Writer) error { return experiments.PlotThroughput(w, results) }
		for _, r := range results {
			fmt.Fprintf(stdout, "%3d workers: %8.1f ± %.1f episodes per move, %d of %d games won\n",
				r.Workers, r.EpisodesPerMove, r.EpisodesStd, r.Wins, r.Games)
		}
	default:
		return fmt.Errorf("%w: unknown experiment %q", config.ErrInvalidConfig, cfg.Experiment)
	}

	if cfg.Out == "" {
		return nil
	}
	dir, err := experiments.Store(cfg.Out, cfg.Players, session)
	if err != nil {
		return err
	}
	if err := experiments.WriteChart(filepath.Join(dir, "chart.html"), plot); err != nil {
		return err
	}
	log.Info().Msgf("records written to %s", dir)
	return nil
}

// parseFlags loads the optional config file, then applies the flags that
// were set on the command line.
func parseFlags(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("ismcts", flag.ContinueOnError)
	path := fs.String("config", "", "YAML config file")
	players := fs.String("players", "", "Comma separated agent per seat: human, random, tricks or wins")
	tricks := fs.Int("tricks", 0, "Cards dealt to each player per round")
	rounds := fs.Int("rounds", 0, "Rounds per game")
	games := fs.Int("games", 0, "Number of games to play")
	seed := fs.Uint64("seed", 0, "Seed for a reproducible session")
	determinizations := fs.Int("determinizations", 0, "Determinizations per search")
	descents := fs.Int("descents", 0, "Descents per determinization")
	workers := fs.Int("workers", 0, "Goroutines growing trees in parallel")
	duration := fs.Duration("duration", 0, "Time budget of a search")
	exploration := fs.Float64("exploration", 0, "Exploration constant of the wins policy")
	temperature := fs.Float64("temperature", 0, "Sample moves by visit share sharpened by this temperature, 0 plays the most visited")
	out := fs.String("out", "", "Directory for CSV records")
	logLevel := fs.String("log-level", "", "Log level")
	verbose := fs.Bool("verbose", false, "Print root statistics after every search")
	experiment := fs.String("experiment", "", "Experiment to run instead of a session: throughput")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "players":
			types := strings.Split(*players, ",")
			for i := range types {
				types[i] = strings.TrimSpace(types[i])
			}
			base := config.DefaultAgent()
			for _, p := range cfg.Players {
				if p.Type != config.Human && p.Type != config.Random {
					base = p
					break
				}
			}
			cfg.Players = config.Players(types, base)
		case "tricks":
			cfg.Tricks = *tricks
		case "rounds":
			cfg.Rounds = *rounds
		case "games":
			cfg.Games = *games
		case "seed":
			cfg.Seed = *seed
		case "out":
			cfg.Out = *out
		case "log-level":
			cfg.LogLevel = *logLevel
		case "verbose":
			cfg.Verbose = *verbose
		case "experiment":
			cfg.Experiment = *experiment
		}
	})
	// Search settings apply to every seat, after the seats are known
	fs.Visit(func(f *flag.Flag) {
		for i := range cfg.Players {
			p := &cfg.Players[i]
			switch f.Name {
			case "determinizations":
				p.Determinizations = *determinizations
			case "descents":
				p.Descents = *descents
			case "workers":
				p.Workers = *workers
			case "duration":
				p.Duration = *duration
			case "exploration":
				p.Exploration = *exploration
			case "temperature":
				p.Temperature = *temperature
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        colorable.NewColorableStderr(),
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		TimeFormat: time.TimeOnly,
	})
}
