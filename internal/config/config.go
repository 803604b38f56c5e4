// Package config loads and validates simulation parameters from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/egtaonline/market-sim/internal/market"
)

/*
YAML config example:
seed: 42
horizon: 10000
sip_delay: 100
sample_interval: 100
db_conn_str: ""
fundamental:
  kappa: 0.05
  mean: 100000
  shock_var: 1000000
  shock_prob: 1.0
markets:
  - clear_interval: 0
    tick_size: 1
    quote_delay: 50
    transaction_delay: 50
  - clear_interval: 1000
    pricing_weight: 0.5
    tick_size: 1
agents:
  num: 66
  arrival_rate: 0.075
  min_shade: 0
  max_shade: 1000
  private_value_var: 100000000
*/

type Config struct {
	Seed           int64  `yaml:"seed"`
	Horizon        int64  `yaml:"horizon"`
	SIPDelay       int64  `yaml:"sip_delay"`
	SampleInterval int64  `yaml:"sample_interval"`
	DBConnStr      string `yaml:"db_conn_str"`

	Fundamental FundamentalConfig `yaml:"fundamental"`
	Markets     []MarketConfig    `yaml:"markets"`
	Agents      AgentConfig       `yaml:"agents"`
}

type FundamentalConfig struct {
	Kappa     float64 `yaml:"kappa"`
	Mean      float64 `yaml:"mean"`
	ShockVar  float64 `yaml:"shock_var"`
	ShockProb float64 `yaml:"shock_prob"`
}

type MarketConfig struct {
	ClearInterval    int64   `yaml:"clear_interval"`
	PricingWeight    float64 `yaml:"pricing_weight"`
	TickSize         int64   `yaml:"tick_size"`
	QuoteDelay       int64   `yaml:"quote_delay"`
	TransactionDelay int64   `yaml:"transaction_delay"`
}

type AgentConfig struct {
	Num             int     `yaml:"num"`
	ArrivalRate     float64 `yaml:"arrival_rate"`
	MinShade        float64 `yaml:"min_shade"`
	MaxShade        float64 `yaml:"max_shade"`
	PrivateValueVar float64 `yaml:"private_value_var"`
}

// Default returns a runnable single-market configuration.
func Default() Config {
	return Config{
		Seed:           1,
		Horizon:        10000,
		SIPDelay:       100,
		SampleInterval: 100,
		Fundamental: FundamentalConfig{
			Kappa:     0.05,
			Mean:      100000,
			ShockVar:  1e6,
			ShockProb: 1.0,
		},
		Markets: []MarketConfig{
			{ClearInterval: 0, TickSize: 1, QuoteDelay: 0, TransactionDelay: 0},
		},
		Agents: AgentConfig{
			Num:             66,
			ArrivalRate:     0.075,
			MinShade:        0,
			MaxShade:        1000,
			PrivateValueVar: 1e8,
		},
	}
}

// Load reads a YAML config file. Fields absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run.
func (c Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon %d must be positive: %w", c.Horizon, market.ErrIllegalConfiguration)
	}
	if c.SIPDelay < 0 {
		return fmt.Errorf("sip_delay %d must be non-negative: %w", c.SIPDelay, market.ErrIllegalConfiguration)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval %d must be positive: %w", c.SampleInterval, market.ErrIllegalConfiguration)
	}
	if c.Fundamental.Kappa < 0 || c.Fundamental.Kappa > 1 {
		return fmt.Errorf("fundamental kappa %v must be in [0, 1]: %w", c.Fundamental.Kappa, market.ErrIllegalConfiguration)
	}
	if c.Fundamental.ShockProb < 0 || c.Fundamental.ShockProb > 1 {
		return fmt.Errorf("fundamental shock_prob %v must be in [0, 1]: %w", c.Fundamental.ShockProb, market.ErrIllegalConfiguration)
	}
	if c.Fundamental.ShockVar < 0 {
		return fmt.Errorf("fundamental shock_var %v must be non-negative: %w", c.Fundamental.ShockVar, market.ErrIllegalConfiguration)
	}
	if len(c.Markets) == 0 {
		return fmt.Errorf("at least one market is required: %w", market.ErrIllegalConfiguration)
	}
	for i, m := range c.Markets {
		if m.ClearInterval < 0 {
			return fmt.Errorf("market %d: clear_interval %d must be non-negative: %w", i, m.ClearInterval, market.ErrIllegalConfiguration)
		}
		if m.ClearInterval > 0 && (m.PricingWeight < 0 || m.PricingWeight > 1) {
			return fmt.Errorf("market %d: pricing_weight %v must be in [0, 1]: %w", i, m.PricingWeight, market.ErrIllegalConfiguration)
		}
		if m.TickSize <= 0 {
			return fmt.Errorf("market %d: tick_size %d must be positive: %w", i, m.TickSize, market.ErrIllegalConfiguration)
		}
		if m.QuoteDelay < 0 || m.TransactionDelay < 0 {
			return fmt.Errorf("market %d: delays must be non-negative: %w", i, market.ErrIllegalConfiguration)
		}
	}
	if c.Agents.Num < 0 {
		return fmt.Errorf("agents num %d must be non-negative: %w", c.Agents.Num, market.ErrIllegalConfiguration)
	}
	if c.Agents.Num > 0 && c.Agents.ArrivalRate <= 0 {
		return fmt.Errorf("agents arrival_rate %v must be positive: %w", c.Agents.ArrivalRate, market.ErrIllegalConfiguration)
	}
	if c.Agents.MinShade > c.Agents.MaxShade {
		return fmt.Errorf("agents min_shade %v exceeds max_shade %v: %w", c.Agents.MinShade, c.Agents.MaxShade, market.ErrIllegalConfiguration)
	}
	if c.Agents.PrivateValueVar < 0 {
		return fmt.Errorf("agents private_value_var %v must be non-negative: %w", c.Agents.PrivateValueVar, market.ErrIllegalConfiguration)
	}
	return nil
}
