package digital

import "testing"

func TestValidateParamsRejectsUnstableDecay(t *testing.T) {
	p := Params{Size: 1, Decay: 1.2, Damping: 0.2, Mix: 0.3}
	if err := ValidateParams(p); err == nil {
		t.Fatalf("expected error for decay >= 1")
	}
}

func TestValidateParamsAcceptsDefaults(t *testing.T) {
	p := Params{Size: 1, Decay: 0.5, Damping: 0.2, Mix: 0.3, Predelay: 0}
	if err := ValidateParams(p); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestReverbProcessBounded(t *testing.T) {
	r := NewReverb(Params{Size: 1, Decay: 0.5, Damping: 0.2, Mix: 0.5}, 48000)
	for i := 0; i < 1000; i++ {
		in := 0.0
		if i == 0 {
			in = 1.0
		}
		out := r.Process(in)
		if out != out { // NaN check
			t.Fatalf("reverb produced NaN at sample %d", i)
		}
		if out > 10 || out < -10 {
			t.Fatalf("reverb output diverged at sample %d: %v", i, out)
		}
	}
}

func TestReverbReset(t *testing.T) {
	r := NewReverb(Params{Size: 1, Decay: 0.5, Damping: 0.2, Mix: 0.5}, 48000)
	r.Process(1.0)
	r.reset()
	if out := r.Process(0.0); out != 0 {
		t.Fatalf("expected silence right after reset, got %v", out)
	}
}
