package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egtaonline/market-sim/internal/market"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
seed: 99
horizon: 5000
markets:
  - clear_interval: 1000
    pricing_weight: 0.5
    tick_size: 5
    quote_delay: 25
agents:
  num: 10
  arrival_rate: 0.1
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, int64(5000), cfg.Horizon)
	require.Len(t, cfg.Markets, 1)
	assert.Equal(t, int64(1000), cfg.Markets[0].ClearInterval)
	assert.Equal(t, int64(25), cfg.Markets[0].QuoteDelay)
	assert.Equal(t, 10, cfg.Agents.Num)

	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Fundamental, cfg.Fundamental)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero horizon", mutate: func(c *Config) { c.Horizon = 0 }},
		{name: "negative sip delay", mutate: func(c *Config) { c.SIPDelay = -1 }},
		{name: "zero sample interval", mutate: func(c *Config) { c.SampleInterval = 0 }},
		{name: "kappa above one", mutate: func(c *Config) { c.Fundamental.Kappa = 2 }},
		{name: "shock prob negative", mutate: func(c *Config) { c.Fundamental.ShockProb = -0.5 }},
		{name: "no markets", mutate: func(c *Config) { c.Markets = nil }},
		{name: "negative clear interval", mutate: func(c *Config) { c.Markets[0].ClearInterval = -5 }},
		{name: "bad pricing weight", mutate: func(c *Config) {
			c.Markets[0].ClearInterval = 100
			c.Markets[0].PricingWeight = 1.5
		}},
		{name: "zero tick size", mutate: func(c *Config) { c.Markets[0].TickSize = 0 }},
		{name: "negative quote delay", mutate: func(c *Config) { c.Markets[0].QuoteDelay = -1 }},
		{name: "negative agents", mutate: func(c *Config) { c.Agents.Num = -1 }},
		{name: "agents without arrivals", mutate: func(c *Config) {
			c.Agents.Num = 5
			c.Agents.ArrivalRate = 0
		}},
		{name: "inverted shade range", mutate: func(c *Config) {
			c.Agents.MinShade = 10
			c.Agents.MaxShade = 5
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), market.ErrIllegalConfiguration)
		})
	}
}

func TestPricingWeightIgnoredForContinuous(t *testing.T) {
	cfg := Default()
	cfg.Markets[0].ClearInterval = 0
	cfg.Markets[0].PricingWeight = 7 // never consulted for a continuous market
	assert.NoError(t, cfg.Validate())
}
