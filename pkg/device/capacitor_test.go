package device

import (
	"math"
	"testing"

	"github.com/petereon/pedaler-core/pkg/matrix"
)

// A capacitor charged through a series resistor from a fixed voltage
// source should settle near the source voltage after many time
// constants, verifying the trapezoidal companion model end to end.
func TestCapacitorRCChargeSettles(t *testing.T) {
	const dt = 1.0 / 48000.0
	const R = 1000.0
	const C = 1e-6
	const vsrc = 5.0

	// row 0: source node (driven directly by V1). row 1: charge node.
	// row 2: V1's branch current.
	sys := matrix.New(3)
	r := NewResistor("R1", 0, 1, R)
	c := NewCapacitor("C1", 1, Ground, C)
	v := NewVoltageSource("V1", 0, Ground, 2, DC, vsrc)

	for i := 0; i < 50000; i++ {
		sys.Clear()
		r.Stamp(sys, dt)
		c.Stamp(sys, dt)
		v.Stamp(sys, dt)
		if err := sys.Factor(); err != nil {
			t.Fatalf("factor at step %d: %v", i, err)
		}
		if err := sys.Solve(); err != nil {
			t.Fatalf("solve at step %d: %v", i, err)
		}
		c.UpdateHistory(sys.X())
	}

	if math.Abs(c.vPrev-vsrc) > 1e-3 {
		t.Fatalf("expected capacitor to settle near %v, got %v", vsrc, c.vPrev)
	}
}

func TestCapacitorHistoryRecoversAppliedVoltage(t *testing.T) {
	const dt = 1.0 / 48000.0
	c := NewCapacitor("C1", 0, Ground, 1e-6)
	x := []float64{0.25}
	c.dt = dt
	c.UpdateHistory(x)
	if c.vPrev != 0.25 {
		t.Fatalf("expected vPrev to track the solved node voltage, got %v", c.vPrev)
	}
}
