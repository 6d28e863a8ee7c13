// Package lfo implements the phase-accumulating oscillator bank that
// drives modulated components, per §4.7.
package lfo

import "math"

// Shape selects one of the four waveform functions.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Sawtooth
	Square
)

// Oscillator is a single named LFO: rate in Hz, a wrapping phase
// accumulator, and a shape. Value() always reports the output for the
// current phase; Advance moves the phase forward by one sample.
type Oscillator struct {
	Name  string
	Rate  float64
	Shape Shape
	phase float64
}

func New(name string, rate float64, shape Shape) *Oscillator {
	return &Oscillator{Name: name, Rate: rate, Shape: shape}
}

// Advance moves the phase forward by rate/sampleRate, wrapping into
// [0,1), matching the vst3go-style updatePhaseIncrement/phase-wrap idiom
// but computed directly since the increment here never changes at
// run time once a sample rate is fixed.
func (o *Oscillator) Advance(sampleRate float64) {
	o.phase += o.Rate / sampleRate
	o.phase -= math.Floor(o.phase)
}

// Phase reports the current phase in [0,1).
func (o *Oscillator) Phase() float64 {
	return o.phase
}

// Value maps the current phase to the shape's output in [0,1], per §4.7.
func (o *Oscillator) Value() float64 {
	return valueAt(o.Shape, o.phase)
}

func valueAt(shape Shape, phase float64) float64 {
	switch shape {
	case Sine:
		return 0.5 * (1 + math.Sin(2*math.Pi*phase))
	case Triangle:
		t := 2 * phase
		if t < 1 {
			return t
		}
		return 2 - t
	case Sawtooth:
		return phase
	case Square:
		if phase < 0.5 {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Bank owns every LFO in a circuit and advances them together each
// sample, per §4.9 step 2.
type Bank struct {
	oscillators []*Oscillator
	byName      map[string]*Oscillator
}

func NewBank(oscillators []*Oscillator) *Bank {
	b := &Bank{oscillators: oscillators, byName: make(map[string]*Oscillator, len(oscillators))}
	for _, o := range oscillators {
		b.byName[o.Name] = o
	}
	return b
}

func (b *Bank) Advance(sampleRate float64) {
	for _, o := range b.oscillators {
		o.Advance(sampleRate)
	}
}

// Find resolves an LFO by name, returning nil if no such LFO exists; the
// caller (circuit.Build) owns validating that modulated-resistor
// references resolve before the simulator ever calls this.
func (b *Bank) Find(name string) *Oscillator {
	return b.byName[name]
}
