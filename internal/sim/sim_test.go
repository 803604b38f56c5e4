package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egtaonline/market-sim/internal/config"
	"github.com/egtaonline/market-sim/internal/market"
	"github.com/egtaonline/market-sim/internal/obs"
)

func smallConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 42
	cfg.Horizon = 2000
	cfg.SIPDelay = 50
	cfg.Markets = []config.MarketConfig{
		{ClearInterval: 0, TickSize: 1, QuoteDelay: 10, TransactionDelay: 10},
		{ClearInterval: 250, PricingWeight: 0.5, TickSize: 1, QuoteDelay: 10, TransactionDelay: 10},
	}
	cfg.Agents.Num = 20
	cfg.Agents.ArrivalRate = 0.1
	return cfg
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Horizon = 0
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, market.ErrIllegalConfiguration)
}

func TestWiring(t *testing.T) {
	s, err := New(smallConfig(), nil)
	require.NoError(t, err)

	require.Len(t, s.Markets(), 2)
	assert.True(t, s.Markets()[0].Market.Continuous())
	assert.False(t, s.Markets()[1].Market.Continuous())
	assert.Len(t, s.Agents(), 20)
}

func TestRunProducesActivity(t *testing.T) {
	s, err := New(smallConfig(), nil)
	require.NoError(t, err)
	s.Run()

	total := 0
	for _, setup := range s.Markets() {
		total += len(setup.Market.Transactions())
		for _, tr := range setup.Market.Transactions() {
			assert.Positive(t, tr.Quantity)
			assert.Positive(t, int64(tr.Price))
		}
	}
	assert.Positive(t, total, "background flow trades somewhere over the horizon")
}

func TestProcessorsLagMarkets(t *testing.T) {
	s, err := New(smallConfig(), nil)
	require.NoError(t, err)
	s.Run()

	for _, setup := range s.Markets() {
		// Everything generated before horizon-delay is visible by the end, so
		// the delayed view can only be missing the tail.
		assert.LessOrEqual(t, len(setup.Transactions.Transactions()), len(setup.Market.Transactions()))
	}
}

func TestSameSeedSameRun(t *testing.T) {
	runOnce := func() []market.Transaction {
		s, err := New(smallConfig(), nil)
		require.NoError(t, err)
		s.Run()
		var all []market.Transaction
		for _, setup := range s.Markets() {
			all = append(all, setup.Market.Transactions()...)
		}
		return all
	}

	a, b := runOnce(), runOnce()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Price, b[i].Price)
		assert.Equal(t, a[i].Quantity, b[i].Quantity)
		assert.Equal(t, a[i].ExecTime, b[i].ExecTime)
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	run := func(seed int64) int {
		cfg := smallConfig()
		cfg.Seed = seed
		s, err := New(cfg, nil)
		require.NoError(t, err)
		s.Run()
		total := 0
		for _, setup := range s.Markets() {
			for _, tr := range setup.Market.Transactions() {
				total += int(tr.Price) * tr.Quantity
			}
		}
		return total
	}

	assert.NotEqual(t, run(1), run(2))
}

func TestRecord(t *testing.T) {
	s, err := New(smallConfig(), nil)
	require.NoError(t, err)
	s.Run()

	rec := obs.NewMemory()
	run := obs.NewRun(42, 2000)
	require.NoError(t, s.Record(context.Background(), rec, run))

	saved, ok := rec.Run(run.ID)
	require.True(t, ok)
	assert.Equal(t, int64(42), saved.Seed)
	assert.NotEmpty(t, rec.Transactions(run.ID))
	assert.NotEmpty(t, rec.Series(run.ID))
	assert.NotEmpty(t, rec.Stats(run.ID))
}
