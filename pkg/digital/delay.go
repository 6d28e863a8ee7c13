// Package digital implements the delay line and feedback-delay-network
// reverb of §4.8, each exposing a scalar-in/scalar-out Process contract
// usable standalone or wrapped as an in-circuit voltage source by
// pkg/device.
package digital

import "math"

// Line is a fractional-tap delay line with dry/wet mix and feedback,
// sized from a nominal maximum time so the ring buffer never reallocates.
type Line struct {
	buf          []float64
	writeHead    int
	delaySamples float64
	mix          float64
	feedback     float64
	lastOutput   float64
}

// NewLine builds a delay line whose ring buffer holds ceil(timeMax*sampleRate)
// samples, with the nominal tap set to delaySamples (may be fractional).
func NewLine(timeMax, delaySamples, sampleRate, mix, feedback float64) *Line {
	size := int(math.Ceil(timeMax * sampleRate))
	if size < 2 {
		size = 2
	}
	l := &Line{
		buf:          make([]float64, size),
		delaySamples: delaySamples,
		mix:          mix,
		feedback:     feedback,
	}
	l.reset()
	return l
}

// Process implements the four-step algorithm of §4.8 exactly.
func (l *Line) Process(x float64) float64 {
	n := len(l.buf)
	readPos := float64(l.writeHead) - l.delaySamples
	for readPos < 0 {
		readPos += float64(n)
	}

	idx0 := int(math.Floor(readPos)) % n
	frac := readPos - math.Floor(readPos)
	idx1 := (idx0 + 1) % n
	d := l.buf[idx0]*(1-frac) + l.buf[idx1]*frac

	wet := d + l.feedback*l.lastOutput
	y := (1-l.mix)*x + l.mix*wet

	l.buf[l.writeHead] = x + l.feedback*d
	l.writeHead = (l.writeHead + 1) % n

	l.lastOutput = y
	return y
}

func (l *Line) reset() {
	for i := range l.buf {
		l.buf[i] = 0
	}
	l.writeHead = 0
	l.lastOutput = 0
}

func (l *Line) DelaySamples() float64 { return l.delaySamples }
