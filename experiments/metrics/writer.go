package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AgentConfig describes the agent sitting in one seat.
type AgentConfig struct {
	ID               int           `yaml:"-"`
	Type             string        `yaml:"type"` // tricks, wins, random or human
	Determinizations int           `yaml:"determinizations"`
	Descents         int           `yaml:"descents"`
	Workers          int           `yaml:"workers"`
	Duration         time.Duration `yaml:"duration"`
	Exploration      float64       `yaml:"exploration"`
	Temperature      float64       `yaml:"temperature"` // > 0 samples moves by visit share
}

type GameRecord struct {
	ID     int
	Agents []int // AgentConfig.ID per seat
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of dir named by the current timestamp.
func NewWriter(dir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "type", "determinizations", "descents", "workers", "duration", "exploration", "temperature"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			config.Type,
			strconv.Itoa(config.Determinizations),
			strconv.Itoa(config.Descents),
			strconv.Itoa(config.Workers),
			config.Duration.String(),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			strconv.FormatFloat(config.Temperature, 'f', -1, 64),
		}
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agents", "starting_player", "winners", "rounds", "total_moves", "start_time", "end_time", "duration"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.ID),
			joinInts(record.Agents),
			strconv.Itoa(record.StartingPlayer),
			joinInts(record.Winners),
			strconv.Itoa(record.Rounds),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "round", "player", "policy", "workers", "duration",
		"determinizations", "episodes", "descents", "tree_size", "stopped_early"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Round),
			strconv.Itoa(record.Player),
			record.Policy,
			strconv.Itoa(record.Workers),
			record.Duration.String(),
			strconv.Itoa(record.Determinizations),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Descents),
			strconv.Itoa(record.TreeSize),
			strconv.FormatBool(record.StoppedEarly),
		}
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}
