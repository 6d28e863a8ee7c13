package device

import (
	"testing"

	"github.com/petereon/pedaler-core/pkg/matrix"
)

func TestResistorDefaultsEffectiveToBase(t *testing.T) {
	r := NewResistor("R1", 0, 1, 10000)
	if r.REff != r.RBase {
		t.Fatalf("REff = %v, want RBase %v", r.REff, r.RBase)
	}
	if r.Mod != nil {
		t.Fatalf("expected an unmodulated resistor to have a nil Mod")
	}
}

func TestResistorStampsConductance(t *testing.T) {
	r := NewResistor("R1", 0, 1, 1000)
	sys := matrix.New(2)
	r.Stamp(sys, 1.0/48000)

	g := 1.0 / 1000.0
	if sys.Get(0, 0) != g || sys.Get(1, 1) != g {
		t.Fatalf("expected diagonal conductance %v, got %v/%v", g, sys.Get(0, 0), sys.Get(1, 1))
	}
	if sys.Get(0, 1) != -g || sys.Get(1, 0) != -g {
		t.Fatalf("expected off-diagonal -%v, got %v/%v", g, sys.Get(0, 1), sys.Get(1, 0))
	}
}

func TestResistorStampToGroundIsDropped(t *testing.T) {
	r := NewResistor("R1", Ground, 0, 1000)
	sys := matrix.New(1)
	r.Stamp(sys, 1.0/48000)
	if sys.Get(0, 0) != 1.0/1000.0 {
		t.Fatalf("expected only the non-ground diagonal entry to be stamped")
	}
}
