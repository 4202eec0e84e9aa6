package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Workers          int
	Duration         time.Duration
	Determinizations int
	Episodes         int
	Descents         int
	Policy           string
	TreeSize         int
	StoppedEarly     bool
}

type MoveMetric struct {
	Step   int
	Round  int
	Player int // Seat number
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winners        []int
	Rounds         int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(workers, descents int, policy string)
	AddDeterminization()
	AddEpisode()
	Complete(treeSize int, stoppedEarly bool) SearchMetric
}

type collector struct {
	workers          int
	descents         int
	policy           string
	startTime        time.Time
	determinizations atomic.Int32
	episodes         atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(workers, descents int, policy string) {
	m.startTime = time.Now()
	m.workers = workers
	m.descents = descents
	m.policy = policy
	m.determinizations.Store(0)
	m.episodes.Store(0)
}

func (m *collector) AddDeterminization() {
	m.determinizations.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete(treeSize int, stoppedEarly bool) SearchMetric {
	return SearchMetric{
		Workers:          m.workers,
		Duration:         time.Since(m.startTime),
		Determinizations: int(m.determinizations.Load()),
		Episodes:         int(m.episodes.Load()),
		Descents:         m.descents,
		Policy:           m.policy,
		TreeSize:         treeSize,
		StoppedEarly:     stoppedEarly,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(workers, descents int, policy string) {}
func (m *dummyCollector) AddDeterminization()                       {}
func (m *dummyCollector) AddEpisode()                               {}
func (m *dummyCollector) Complete(treeSize int, stoppedEarly bool) SearchMetric {
	return SearchMetric{}
}
