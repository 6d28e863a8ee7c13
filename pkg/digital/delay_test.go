package digital

import "testing"

// Delay-line latency invariant: an impulse at sample 0 through a pure
// delay of T seconds appears at output sample floor(T*sampleRate) with
// magnitude mix.
func TestDelayLatency(t *testing.T) {
	const sampleRate = 48000.0
	const delaySeconds = 0.01 // 480 samples
	l := NewLine(1.0, delaySeconds*sampleRate, sampleRate, 1.0, 0.0)

	delaySamples := int(delaySeconds * sampleRate)
	for i := 0; i <= delaySamples+5; i++ {
		in := 0.0
		if i == 0 {
			in = 1.0
		}
		out := l.Process(in)
		switch {
		case i == delaySamples:
			if out < 0.999999 || out > 1.000001 {
				t.Fatalf("sample %d: expected ~1.0 at the delay tap, got %v", i, out)
			}
		case i > 0 && i < delaySamples:
			if out > 1e-9 || out < -1e-9 {
				t.Fatalf("sample %d: expected ~0 before the delay tap, got %v", i, out)
			}
		}
	}
}

func TestDelayFeedback(t *testing.T) {
	l := NewLine(1.0, 4, 48000, 1.0, 0.5)
	l.Process(1.0)
	var firstEcho, secondEcho float64
	for i := 1; i <= 8; i++ {
		out := l.Process(0.0)
		switch i {
		case 4:
			firstEcho = out
		case 8:
			secondEcho = out
		}
	}
	if firstEcho < 0.999 || firstEcho > 1.001 {
		t.Fatalf("expected first echo ~1.0, got %v", firstEcho)
	}
	// The second echo is the re-circulated tap (feedback*1.0 = 0.5) plus
	// the feedback*lastOutput term of the wet path (0.5*0.125 = 0.0625).
	if secondEcho < 0.5525 || secondEcho > 0.5725 {
		t.Fatalf("expected second echo attenuated to ~0.5625, got %v", secondEcho)
	}
}

func TestDelayReset(t *testing.T) {
	l := NewLine(1.0, 4, 48000, 1.0, 0.0)
	l.Process(1.0)
	l.reset()
	for i := 0; i < 10; i++ {
		if out := l.Process(0.0); out != 0 {
			t.Fatalf("expected silence after reset, got %v at sample %d", out, i)
		}
	}
}
