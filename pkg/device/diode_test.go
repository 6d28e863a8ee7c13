package device

import (
	"math"
	"testing"

	"github.com/petereon/pedaler-core/pkg/matrix"
)

// A diode fed through a series resistor from a fixed voltage should
// converge to an operating point satisfying the Shockley law exactly,
// and should land in the plausible silicon forward-drop range rather
// than at some runaway or clamped extreme.
func TestDiodeConvergesToShockleyOperatingPoint(t *testing.T) {
	const dt = 1.0 / 48000.0
	const R = 10000.0
	const vsrc = 5.0
	model := &DiodeModel{Is: 1e-9, N: 1.0, Vf: 0.7}

	// row 0: source node. row 1: anode node. row 2: V1 branch.
	sys := matrix.New(3)
	r := NewResistor("R1", 0, 1, R)
	d := NewDiode("D1", 1, Ground, model)
	v := NewVoltageSource("V1", 0, Ground, 2, DC, vsrc)

	xPrev := make([]float64, 3)
	for iter := 0; iter < 100; iter++ {
		d.Relinearize(xPrev)
		sys.Clear()
		r.Stamp(sys, dt)
		d.Stamp(sys, dt)
		v.Stamp(sys, dt)
		if err := sys.Factor(); err != nil {
			t.Fatalf("factor at iteration %d: %v", iter, err)
		}
		if err := sys.Solve(); err != nil {
			t.Fatalf("solve at iteration %d: %v", iter, err)
		}
		x := sys.X()
		delta := 0.0
		for i, val := range x {
			if dv := math.Abs(val - xPrev[i]); dv > delta {
				delta = dv
			}
		}
		copy(xPrev, x)
		if delta < 1e-9 {
			break
		}
	}

	vAnode := xPrev[1]
	if vAnode < 0.4 || vAnode > 0.8 {
		t.Fatalf("expected a silicon-like forward drop in [0.4, 0.8], got %v", vAnode)
	}

	iResistor := (xPrev[0] - vAnode) / R
	nvt := model.N * ThermalVoltage
	iDiode := model.Is * (math.Exp(vAnode/nvt) - 1)
	if rel := math.Abs(iResistor-iDiode) / iResistor; rel > 1e-4 {
		t.Fatalf("KCL violated at converged point: i_R=%v i_D=%v", iResistor, iDiode)
	}
}
