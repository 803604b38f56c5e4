package obs

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryRecorder keeps observations in process memory. It is the default
// recorder and the one tests use.
type MemoryRecorder struct {
	mu sync.RWMutex

	runs         map[uuid.UUID]Run
	transactions map[uuid.UUID][]TransactionRow
	series       map[uuid.UUID][]SeriesPoint
	stats        map[uuid.UUID]map[string]float64
}

func NewMemory() *MemoryRecorder {
	return &MemoryRecorder{
		runs:         make(map[uuid.UUID]Run),
		transactions: make(map[uuid.UUID][]TransactionRow),
		series:       make(map[uuid.UUID][]SeriesPoint),
		stats:        make(map[uuid.UUID]map[string]float64),
	}
}

func (m *MemoryRecorder) SaveRun(ctx context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; ok {
		return fmt.Errorf("run %s already saved", run.ID)
	}
	m.runs[run.ID] = run
	return nil
}

func (m *MemoryRecorder) SaveTransactions(ctx context.Context, runID uuid.UUID, rows []TransactionRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[runID] = append(m.transactions[runID], rows...)
	return nil
}

func (m *MemoryRecorder) SaveSeries(ctx context.Context, runID uuid.UUID, points []SeriesPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[runID] = append(m.series[runID], points...)
	return nil
}

func (m *MemoryRecorder) SaveStats(ctx context.Context, runID uuid.UUID, stats map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved, ok := m.stats[runID]
	if !ok {
		saved = make(map[string]float64, len(stats))
		m.stats[runID] = saved
	}
	for k, v := range stats {
		saved[k] = v
	}
	return nil
}

// Run returns a saved run by ID.
func (m *MemoryRecorder) Run(id uuid.UUID) (Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	return run, ok
}

// Transactions returns the rows saved for a run.
func (m *MemoryRecorder) Transactions(runID uuid.UUID) []TransactionRow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]TransactionRow, len(m.transactions[runID]))
	copy(out, m.transactions[runID])
	return out
}

// Series returns the points saved for a run.
func (m *MemoryRecorder) Series(runID uuid.UUID) []SeriesPoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SeriesPoint, len(m.series[runID]))
	copy(out, m.series[runID])
	return out
}

// Stats returns the stats saved for a run.
func (m *MemoryRecorder) Stats(runID uuid.UUID) map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]float64, len(m.stats[runID]))
	for k, v := range m.stats[runID] {
		out[k] = v
	}
	return out
}
