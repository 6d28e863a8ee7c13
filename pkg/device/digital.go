package device

import (
	"github.com/petereon/pedaler-core/pkg/digital"
	"github.com/petereon/pedaler-core/pkg/matrix"
)

// InCircuitDelay wraps a digital.Line so it can participate in the MNA
// solve, per §4.8's "in-circuit integration": it is stamped as an ideal
// voltage source at its output node, driven by a value computed one
// sample earlier from the (already solved) input node's voltage.
type InCircuitDelay struct {
	Name        string
	InputNode   int
	OutputNode  int
	Branch      int
	Line        *digital.Line
	lastDriven  float64
}

func NewInCircuitDelay(name string, inputNode, outputNode, branch int, line *digital.Line) *InCircuitDelay {
	return &InCircuitDelay{Name: name, InputNode: inputNode, OutputNode: outputNode, Branch: branch, Line: line}
}

// Prepare is called once per sample, before the matrix is cleared, with
// the previous sample's solved input-node voltage. It advances the
// delay line's own state and records the value this device will stamp
// as a voltage source for the sample now being solved.
func (d *InCircuitDelay) Prepare(prevInputVoltage float64) {
	d.lastDriven = d.Line.Process(prevInputVoltage)
}

func (d *InCircuitDelay) Stamp(sys *matrix.System, dt float64) {
	sys.Add(d.OutputNode, d.Branch, 1)
	sys.Add(d.Branch, d.OutputNode, 1)
	sys.AddRHS(d.Branch, d.lastDriven)
}

func (d *InCircuitDelay) UpdateHistory(x []float64) {}

func (d *InCircuitDelay) HasNonlinear() bool { return false }

// InCircuitReverb is the same integration pattern wrapping a
// digital.Reverb.
type InCircuitReverb struct {
	Name       string
	InputNode  int
	OutputNode int
	Branch     int
	Reverb     *digital.Reverb
	lastDriven float64
}

func NewInCircuitReverb(name string, inputNode, outputNode, branch int, reverb *digital.Reverb) *InCircuitReverb {
	return &InCircuitReverb{Name: name, InputNode: inputNode, OutputNode: outputNode, Branch: branch, Reverb: reverb}
}

func (r *InCircuitReverb) Prepare(prevInputVoltage float64) {
	r.lastDriven = r.Reverb.Process(prevInputVoltage)
}

func (r *InCircuitReverb) Stamp(sys *matrix.System, dt float64) {
	sys.Add(r.OutputNode, r.Branch, 1)
	sys.Add(r.Branch, r.OutputNode, 1)
	sys.AddRHS(r.Branch, r.lastDriven)
}

func (r *InCircuitReverb) UpdateHistory(x []float64) {}

func (r *InCircuitReverb) HasNonlinear() bool { return false }
