package device

import (
	"math"
	"testing"
)

// Kirchhoff's current law must hold at the linearized operating point
// for every set of node voltages: Ic + Ib + Ie == 0, both in the
// per-voltage coefficients and in the equivalent-current terms, since
// the emitter row is built as the negative sum of the other two.
func TestBJTLinearizationSatisfiesKCL(t *testing.T) {
	model := &BJTModel{Bf: 100, Br: 1, Is: 1e-12, N: 1.0, Va: 0}
	q := NewBJT("Q1", 0, 1, 2, model, NPN)

	xPrev := []float64{0.0, 0.65, 0.0} // Vc=0, Vb=0.65, Ve=0 -> forward-biased
	q.Relinearize(xPrev)

	for i := 0; i < 3; i++ {
		sum := q.coefC[i] + q.coefB[i] + q.coefE[i]
		if math.Abs(sum) > 1e-9 {
			t.Fatalf("KCL violated on coefficient %d: %v", i, sum)
		}
	}
	if sum := q.eqC + q.eqB + q.eqE; math.Abs(sum) > 1e-9 {
		t.Fatalf("KCL violated on equivalent current terms: %v", sum)
	}
}

// A PNP device relinearized at the mirror-image operating point of an
// NPN device must produce exactly sign-flipped currents, per §4.4's
// PNP sign-flip rule.
func TestBJTPNPSignFlip(t *testing.T) {
	model := &BJTModel{Bf: 100, Br: 1, Is: 1e-12, N: 1.0, Va: 0}
	npn := NewBJT("Q1", 0, 1, 2, model, NPN)
	pnp := NewBJT("Q2", 0, 1, 2, model, PNP)

	// Vb is mirrored around Ve/Vc so both devices see the same forward
	// junction bias once the polarity sign is applied.
	npn.Relinearize([]float64{0.0, 0.65, 0.0})
	pnp.Relinearize([]float64{0.0, -0.65, 0.0})

	if math.Abs(npn.eqC+pnp.eqC) > 1e-12 {
		t.Fatalf("expected PNP Ic_eq to mirror NPN's, got %v vs %v", npn.eqC, pnp.eqC)
	}
	if math.Abs(npn.eqB+pnp.eqB) > 1e-12 {
		t.Fatalf("expected PNP Ib_eq to mirror NPN's, got %v vs %v", npn.eqB, pnp.eqB)
	}
}
