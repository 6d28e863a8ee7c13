package device

import "testing"

func TestOpAmpRelinearizeClampsGainAtRail(t *testing.T) {
	model := &OpAmpModel{Gain: 100000, Rin: 1e6, Rout: 75, Rail: 15}
	o := NewOpAmp("U1", 0, 1, 2, 3, model)

	// Vdiff = 1mV predicts 100V, far past the 15V rail: gain must clamp
	// so effGain*Vdiff == rail exactly.
	o.Relinearize([]float64{0.001, 0, 0})
	got := o.effGain * 0.001
	if got < 14.999 || got > 15.001 {
		t.Fatalf("expected clamped output ~15V, got %v", got)
	}
}

func TestOpAmpRelinearizeLeavesGainUnclampedBelowRail(t *testing.T) {
	model := &OpAmpModel{Gain: 100000, Rin: 1e6, Rout: 75, Rail: 15}
	o := NewOpAmp("U1", 0, 1, 2, 3, model)

	o.Relinearize([]float64{0.00001, 0, 0}) // predicts 1V, within rail
	if o.effGain != model.Gain {
		t.Fatalf("expected unclamped gain %v, got %v", model.Gain, o.effGain)
	}
}
