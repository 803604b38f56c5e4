package obs

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run identifies one simulation run; every persisted row carries its ID.
type Run struct {
	ID        uuid.UUID
	Seed      int64
	Horizon   int64
	CreatedAt time.Time
}

func NewRun(seed, horizon int64) Run {
	return Run{ID: uuid.New(), Seed: seed, Horizon: horizon, CreatedAt: time.Now().UTC()}
}

// TransactionRow is a flattened transaction for persistence.
type TransactionRow struct {
	MarketID int
	Price    int64
	Quantity int
	ExecTime int64
}

// SeriesPoint is one point of a named per-market time series.
type SeriesPoint struct {
	MarketID int
	Name     string
	Time     int64
	Value    float64
}

// Recorder persists the observations of one run.
type Recorder interface {
	SaveRun(ctx context.Context, run Run) error
	SaveTransactions(ctx context.Context, runID uuid.UUID, rows []TransactionRow) error
	SaveSeries(ctx context.Context, runID uuid.UUID, points []SeriesPoint) error
	SaveStats(ctx context.Context, runID uuid.UUID, stats map[string]float64) error
}
