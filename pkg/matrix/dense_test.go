package matrix

import "testing"

// A two-node resistive divider: node 0 is V_IN via branch 2, node 1 is
// the midpoint between two equal resistors to ground.
func buildDivider(vin float64) *System {
	s := New(3) // rows 0,1 = nodes; row 2 = V_IN branch
	s.Clear()

	g := 1.0 / 10000.0
	// R1 between node 0 (in) and node 1 (out)
	s.Add(0, 0, g)
	s.Add(0, 1, -g)
	s.Add(1, 0, -g)
	s.Add(1, 1, g)
	// R2 between node 1 (out) and ground
	s.Add(1, 1, g)

	// V_IN source: node0 - ground = vin, branch row 2
	s.Add(0, 2, 1)
	s.Add(2, 0, 1)
	s.AddRHS(2, vin)

	return s
}

func TestSolveVoltageDivider(t *testing.T) {
	s := buildDivider(1.0)
	if err := s.Factor(); err != nil {
		t.Fatalf("factor: %v", err)
	}
	if err := s.Solve(); err != nil {
		t.Fatalf("solve: %v", err)
	}
	if got := s.NodeVoltage(1); got < 0.4999 || got > 0.5001 {
		t.Fatalf("expected midpoint ~0.5, got %v", got)
	}
}

func TestNodeVoltageGroundIsZero(t *testing.T) {
	s := New(2)
	if v := s.NodeVoltage(-1); v != 0 {
		t.Fatalf("ground voltage must be 0, got %v", v)
	}
}

func TestAddIgnoresNegativeIndices(t *testing.T) {
	s := New(2)
	s.Add(-1, 0, 5)
	s.Add(0, -1, 5)
	s.AddRHS(-1, 5)
	for _, v := range []float64{s.Get(0, 0), s.z[0]} {
		if v != 0 {
			t.Fatalf("stamping to ground must be a no-op, got %v", v)
		}
	}
}

func TestFactorDetectsSingular(t *testing.T) {
	s := New(2)
	s.Clear()
	// row 1 is all zero: singular
	s.Add(0, 0, 1)
	if err := s.Factor(); err != ErrSingular {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
}
