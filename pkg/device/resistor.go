package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// Resistor stamps a fixed conductance between two nodes, optionally
// modulated each sample by an LFO before stamping.
type Resistor struct {
	Name string
	N1   int
	N2   int

	RBase float64
	REff  float64 // recomputed each sample by the modulation updater; equals RBase when unmodulated

	Mod *Modulation // nil if this resistor is not modulated
}

// Modulation binds a resistor's effective value to an LFO's current
// output. R_eff = R_base*(1 + depth*range*lfo_value), per §4.9 step 3.
type Modulation struct {
	LFOID string
	Depth float64
	Range float64
}

// NewResistor constructs a resistor stamping between node indices n1/n2
// (use Ground for either terminal tied to ground).
func NewResistor(name string, n1, n2 int, value float64) *Resistor {
	return &Resistor{Name: name, N1: n1, N2: n2, RBase: value, REff: value}
}

func (r *Resistor) Stamp(sys *matrix.System, dt float64) {
	g := 1.0 / r.REff
	sys.Add(r.N1, r.N1, g)
	sys.Add(r.N2, r.N2, g)
	sys.Add(r.N1, r.N2, -g)
	sys.Add(r.N2, r.N1, -g)
}

func (r *Resistor) UpdateHistory(x []float64) {}

func (r *Resistor) HasNonlinear() bool { return false }
