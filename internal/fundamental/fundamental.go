// Package fundamental computes the stochastic fundamental-value process that
// background agents base their valuations on.
package fundamental

import (
	"fmt"
	"math/rand"

	"github.com/egtaonline/market-sim/internal/event"
	"github.com/egtaonline/market-sim/internal/market"
	"github.com/egtaonline/market-sim/internal/rands"
)

// Process is a mean-reverting Gaussian jump process with random access by
// TimeStamp. Values are generated lazily and memoized, so querying time t
// draws exactly the ticks up to t, in order — two runs with the same seed
// and the same maximum query see the identical path.
//
// In a tick without a jump (probability 1-shockProb) the value carries over
// unchanged; mean reversion applies only in jump ticks.
type Process struct {
	kappa     float64
	mean      float64
	shockVar  float64
	shockProb float64
	rand      *rand.Rand

	values []float64
}

// New builds a process. kappa is the mean-reversion rate in [0, 1];
// shockProb is the per-tick jump probability in [0, 1].
func New(kappa float64, mean market.Price, shockVar, shockProb float64, r *rand.Rand) (*Process, error) {
	if kappa < 0 || kappa > 1 {
		return nil, fmt.Errorf("mean-reversion rate %v outside [0, 1]: %w", kappa, market.ErrIllegalConfiguration)
	}
	if shockProb < 0 || shockProb > 1 {
		return nil, fmt.Errorf("shock probability %v outside [0, 1]: %w", shockProb, market.ErrIllegalConfiguration)
	}
	p := &Process{
		kappa:     kappa,
		mean:      float64(mean),
		shockVar:  shockVar,
		shockProb: shockProb,
		rand:      r,
	}
	// Stochastic initial condition.
	p.values = append(p.values, rands.Gaussian(r, p.mean, p.shockVar))
	return p, nil
}

// ValueAt returns the fundamental value at t, clamped at zero. Immediate
// (and any negative time) reads the initial condition.
func (p *Process) ValueAt(t event.TimeStamp) market.Price {
	index := int(t)
	if index < 0 {
		index = 0
	}
	p.extendTo(index)
	v := p.values[index]
	if v < 0 {
		return 0
	}
	return market.Price(v + 0.5)
}

func (p *Process) extendTo(index int) {
	for i := len(p.values); i <= index; i++ {
		prev := p.values[i-1]
		if p.shockProb == 1 || p.rand.Float64() < p.shockProb {
			next := rands.Gaussian(p.rand, p.mean*p.kappa+(1-p.kappa)*prev, p.shockVar)
			p.values = append(p.values, next)
		} else {
			p.values = append(p.values, prev)
		}
	}
}
