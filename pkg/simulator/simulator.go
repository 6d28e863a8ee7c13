// Package simulator implements the per-sample orchestration of §4.9: it
// owns the matrix, the Newton driver and the warm-started history that
// must survive across samples, and exposes the block/embedded API of
// §6.2.
package simulator

import (
	"github.com/pkg/errors"

	"github.com/petereon/pedaler-core/pkg/circuit"
	"github.com/petereon/pedaler-core/pkg/matrix"
	"github.com/petereon/pedaler-core/pkg/newton"
)

// Config tunes the Newton driver. The fluent With* methods return a new
// value rather than mutating the receiver, the Go-idiomatic rendering of
// original_source's builder pattern.
type Config struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultConfig matches §4.6's defaults, sourced from newton.DefaultConfig
// so the two packages can't drift apart.
func DefaultConfig() Config {
	nc := newton.DefaultConfig()
	return Config{MaxIterations: nc.MaxIter, Tolerance: nc.Tol}
}

func (c Config) WithMaxIterations(n int) Config {
	c.MaxIterations = n
	return c
}

func (c Config) WithTolerance(tol float64) Config {
	c.Tolerance = tol
	return c
}

// Warnings tallies the RuntimeWarning counters of §7. Both are
// monotonically increasing for the lifetime of the Simulator.
type Warnings struct {
	NonConvergence uint64
	Singular       uint64
}

// Simulator runs one built Circuit at a fixed sample rate. All buffers
// are allocated in New/WithConfig; Step and ProcessBlock never allocate.
type Simulator struct {
	circuit *circuit.Circuit
	sys     *matrix.System
	driver  *newton.Driver

	sampleRate float64
	dt         float64

	input float64

	xPrevSolve []float64 // last sample's solve (zeroed after a singular one), read by digital-effect Prepare

	warnings Warnings
}

// New builds a Simulator with DefaultConfig.
func New(c *circuit.Circuit, sampleRate float64) (*Simulator, error) {
	return WithConfig(c, sampleRate, DefaultConfig())
}

// WithConfig builds a Simulator with an explicit Newton configuration.
func WithConfig(c *circuit.Circuit, sampleRate float64, cfg Config) (*Simulator, error) {
	if sampleRate <= 0 {
		return nil, errors.New("simulator: sample rate must be positive")
	}
	c.Finalize(sampleRate)

	s := &Simulator{
		circuit:    c,
		sys:        matrix.New(c.Dim),
		driver:     newton.New(newton.Config{MaxIter: cfg.MaxIterations, Tol: cfg.Tolerance}, c.Dim),
		sampleRate: sampleRate,
		dt:         1.0 / sampleRate,
		xPrevSolve: make([]float64, c.Dim),
	}
	return s, nil
}

// Reset clears the Newton driver's warm-start history and the last
// solved sample Prepare/Relinearize read from. It does not touch any
// device's own state (a capacitor's charge, a delay line's buffer) —
// only the Simulator-level bookkeeping between samples. Warnings are
// untouched, since they tally the Simulator's whole lifetime rather
// than any one run.
func (s *Simulator) Reset() {
	for i := range s.xPrevSolve {
		s.xPrevSolve[i] = 0
	}
	s.driver.Reset()
}

// SetInput latches the next sample V_IN will carry.
func (s *Simulator) SetInput(sample float32) {
	s.input = float64(sample)
}

// Step advances the circuit by one sample and returns V_out, per the
// seven-step sequence of §4.9.
func (s *Simulator) Step() float32 {
	s.circuit.VIn.SetValue(s.input)

	s.circuit.LFOBank.Advance(s.sampleRate)
	for _, r := range s.circuit.Resistors {
		if r.Mod == nil {
			continue
		}
		if osc := s.circuit.LFOBank.Find(r.Mod.LFOID); osc != nil {
			r.REff = r.RBase * (1 + r.Mod.Depth*r.Mod.Range*osc.Value())
		}
	}

	s.circuit.PrepareEffects(s.xPrevSolve)

	result := s.driver.Step(s.sys, s.circuit.Devices, s.circuit.Nonlinear, s.dt)
	if result.Singular {
		s.warnings.Singular++
	}
	if result.NonConverged {
		s.warnings.NonConvergence++
	}

	x := s.sys.X()
	if !result.Singular {
		for _, cap := range s.circuit.Capacitors {
			cap.UpdateHistory(x)
		}
		for _, l := range s.circuit.Inductors {
			l.UpdateHistory(x)
		}
	}
	copy(s.xPrevSolve, x)

	return float32(s.sys.NodeVoltage(s.circuit.OutputNodeIdx))
}

// ProcessBlock processes min(len(input), len(output)) samples.
func (s *Simulator) ProcessBlock(input []float32, output []float32) {
	n := len(input)
	if len(output) < n {
		n = len(output)
	}
	for i := 0; i < n; i++ {
		s.SetInput(input[i])
		output[i] = s.Step()
	}
}

// NodeVoltage is a diagnostic read of any named node's last-solved
// voltage. "0" and "GND" always resolve to ground, per §6.2/§8 invariant
// 1.
func (s *Simulator) NodeVoltage(name string) (float64, bool) {
	id, ok := s.circuit.NodeIndex[name]
	if !ok {
		return 0, false
	}
	if id == 0 {
		return 0, true
	}
	return s.sys.NodeVoltage(id - 1), true
}

// SampleRate returns the rate this Simulator was built for.
func (s *Simulator) SampleRate() float32 {
	return float32(s.sampleRate)
}

// Warnings returns the accumulated RuntimeWarning counters.
func (s *Simulator) Warnings() Warnings {
	return s.warnings
}
