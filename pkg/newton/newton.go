// Package newton implements the warm-started Newton-Raphson driver that
// resolves nonlinear devices once per audio sample, per §4.6.
package newton

import (
	"github.com/petereon/pedaler-core/pkg/device"
	"github.com/petereon/pedaler-core/pkg/matrix"
)

// Config tunes the iteration.
type Config struct {
	MaxIter int
	Tol     float64 // volts
}

// DefaultConfig matches §4.6's defaults.
func DefaultConfig() Config {
	return Config{MaxIter: 50, Tol: 1e-4}
}

// Result reports how a single sample's solve went, for the RuntimeWarning
// counters of §7. A sample never fails outright: Singular means the
// output was zeroed, NonConverged means the last iterate was accepted
// anyway.
type Result struct {
	Singular     bool
	NonConverged bool
}

// Driver holds the warm-start state across samples. It performs no
// allocation once constructed.
type Driver struct {
	cfg   Config
	xPrev []float64
}

// New builds a driver for a system of the given dimension.
func New(cfg Config, dim int) *Driver {
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 50
	}
	if cfg.Tol <= 0 {
		cfg.Tol = 1e-4
	}
	return &Driver{cfg: cfg, xPrev: make([]float64, dim)}
}

// Reset zeroes the warm-start state, for use after Circuit.Finalize or a
// Simulator-level Reset.
func (d *Driver) Reset() {
	for i := range d.xPrev {
		d.xPrev[i] = 0
	}
}

// Step solves one sample: if nonlinear is empty it factors and solves
// once; otherwise it runs the warm-started iteration of §4.6. sys must
// already be sized to the circuit's dimension. On return sys.X() holds
// the accepted solution (all zero if Result.Singular).
func (d *Driver) Step(sys *matrix.System, devices []device.Stamper, nonlinear []device.Nonlinear, dt float64) Result {
	if len(nonlinear) == 0 {
		sys.Clear()
		for _, dev := range devices {
			dev.Stamp(sys, dt)
		}
		if err := sys.Factor(); err != nil {
			return d.accept(sys, true)
		}
		if err := sys.Solve(); err != nil {
			return d.accept(sys, true)
		}
		copy(d.xPrev, sys.X())
		return Result{}
	}

	for k := 0; k < d.cfg.MaxIter; k++ {
		for _, nl := range nonlinear {
			nl.Relinearize(d.xPrev)
		}

		sys.Clear()
		for _, dev := range devices {
			dev.Stamp(sys, dt)
		}
		if err := sys.Factor(); err != nil {
			return d.accept(sys, true)
		}
		if err := sys.Solve(); err != nil {
			return d.accept(sys, true)
		}

		x := sys.X()
		delta := 0.0
		for i, v := range x {
			diff := v - d.xPrev[i]
			if diff < 0 {
				diff = -diff
			}
			if diff > delta {
				delta = diff
			}
		}
		copy(d.xPrev, x)
		if delta < d.cfg.Tol {
			return Result{}
		}
	}
	return Result{NonConverged: true}
}

// accept handles the singular-matrix path: zero the output, leave the
// warm-start history untouched so history-bearing devices are unaffected.
func (d *Driver) accept(sys *matrix.System, singular bool) Result {
	x := sys.X()
	for i := range x {
		x[i] = 0
	}
	return Result{Singular: singular}
}
