package circuit

import (
	"github.com/petereon/pedaler-core/pkg/device"
	"github.com/petereon/pedaler-core/pkg/digital"
	"github.com/petereon/pedaler-core/pkg/lfo"
)

// effectBinding ties a digital effect's Prepare call to the matrix row
// whose previously solved voltage feeds it, for the simulator's
// one-sample-lag integration step.
type effectBinding struct {
	inputNode int
	prepare   func(float64)
}

// pendingDelay and pendingReverb carry a digital-effect spec through to
// Finalize, which needs the sample rate Build does not have.
type pendingDelay struct {
	spec DelaySpec
	dev  *device.InCircuitDelay
}

type pendingReverb struct {
	spec ReverbSpec
	dev  *device.InCircuitReverb
}

// Circuit is the runnable, immutable compilation of a Description: a
// fixed node/branch numbering, the concrete device stampers that
// populate the matrix every sample, and the handles a Simulator needs
// to drive modulation, digital effects and I/O.
type Circuit struct {
	Dim int // N+M, the matrix dimension
	N   int // node count, excluding ground
	M   int // branch count

	NodeIndex map[string]int // name -> 1-based id (0 means ground)

	Devices   []device.Stamper
	Nonlinear []device.Nonlinear

	Resistors  []*device.Resistor
	Capacitors []*device.Capacitor
	Inductors  []*device.Inductor

	VIn *device.VoltageSource

	OutputNodeIdx int // matrix row of the output node

	LFOBank *lfo.Bank

	Effects []effectBinding

	pendingDelays  []pendingDelay
	pendingReverbs []pendingReverb
	finalized      bool
}

// Finalize completes construction of any digital effect devices, which
// need the sample rate to size their delay buffers. The sample rate is
// not known until a Simulator is built around this Circuit. Finalize is
// idempotent.
func (c *Circuit) Finalize(sampleRate float64) {
	if c.finalized {
		return
	}
	c.finalized = true
	for _, pd := range c.pendingDelays {
		// PrepareEffects always reads one sample behind the solve it
		// feeds (it runs on xPrevSolve, §4.9), adding a sample of
		// latency on top of the line's own tap. Shortening the tap by
		// one sample cancels that pipeline lag so the in-circuit delay's
		// total latency matches Time*sampleRate exactly.
		tap := pd.spec.Time*sampleRate - 1
		if tap < 0 {
			tap = 0
		}
		pd.dev.Line = digital.NewLine(pd.spec.TimeMax, tap, sampleRate, pd.spec.Mix, pd.spec.Feedback)
	}
	for _, pr := range c.pendingReverbs {
		pr.dev.Reverb = digital.NewReverb(digital.Params{
			Size:     pr.spec.Size,
			Decay:    pr.spec.Decay,
			Damping:  pr.spec.Damping,
			Mix:      pr.spec.Mix,
			Predelay: pr.spec.Predelay,
		}, sampleRate)
	}
}

// HasNonlinear reports whether any device in the circuit requires
// Newton-Raphson iteration.
func (c *Circuit) HasNonlinear() bool {
	return len(c.Nonlinear) > 0
}

// PrepareEffects runs the one-sample-lag step of §4.9 for every digital
// effect, using the previous sample's solved node voltages.
func (c *Circuit) PrepareEffects(xPrev []float64) {
	for _, e := range c.Effects {
		prev := 0.0
		if e.inputNode >= 0 {
			prev = xPrev[e.inputNode]
		}
		e.prepare(prev)
	}
}
