package digital

import "github.com/pkg/errors"

// baseLineLengths are the four FDN line lengths in samples at 48 kHz,
// per §4.8; every other sample rate scales these linearly.
var baseLineLengths = [4]float64{1087, 1283, 1511, 1777}

// hadamard4 is the 4x4 Sylvester Hadamard matrix scaled by 1/2, per
// §4.8's mixing step.
var hadamard4 = [4][4]float64{
	{0.5, 0.5, 0.5, 0.5},
	{0.5, -0.5, 0.5, -0.5},
	{0.5, 0.5, -0.5, -0.5},
	{0.5, -0.5, -0.5, 0.5},
}

// ring is a plain integer-sample delay buffer, the building block each
// FDN line and the optional pre-delay stage are made from.
type ring struct {
	buf  []float64
	head int
}

func newRing(samples int) *ring {
	if samples < 1 {
		samples = 1
	}
	return &ring{buf: make([]float64, samples)}
}

func (r *ring) tap() float64 { return r.buf[r.head] }

func (r *ring) write(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring) reset() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.head = 0
}

// Params carries the user-facing reverb controls. original_source clamps
// these at run time; this module pushes that validation to build time
// instead (see ValidateParams), consistent with this system's build-once
// error policy.
type Params struct {
	Size     float64 // line-length scale, (0,2] typical
	Decay    float64 // feedback gain into the mixing matrix, [0,1)
	Damping  float64 // one-pole feedback coefficient alpha, [0,1]
	Mix      float64 // dry/wet, [0,1]
	Predelay float64 // seconds
}

// ValidateParams rejects parameter combinations that would produce an
// unstable or meaningless filter, promoting original_source's run-time
// clamp into a build-time check.
func ValidateParams(p Params) error {
	if p.Size <= 0 {
		return errors.New("reverb: size must be positive")
	}
	if p.Decay < 0 || p.Decay >= 1 {
		return errors.New("reverb: decay must be in [0,1)")
	}
	if p.Damping < 0 || p.Damping > 1 {
		return errors.New("reverb: damping must be in [0,1]")
	}
	if p.Mix < 0 || p.Mix > 1 {
		return errors.New("reverb: mix must be in [0,1]")
	}
	if p.Predelay < 0 {
		return errors.New("reverb: predelay must be non-negative")
	}
	return nil
}

// Reverb implements the four-line feedback delay network of §4.8.
type Reverb struct {
	lines    [4]*ring
	dPrev    [4]float64
	predelay *ring
	params   Params
}

// NewReverb builds a reverb tuned for sampleRate, scaling the base line
// lengths by size and by sampleRate/48000.
func NewReverb(params Params, sampleRate float64) *Reverb {
	r := &Reverb{params: params}
	scale := params.Size * sampleRate / 48000
	for i, base := range baseLineLengths {
		length := int(base * scale)
		if length < 1 {
			length = 1
		}
		r.lines[i] = newRing(length)
	}
	if params.Predelay > 0 {
		r.predelay = newRing(int(params.Predelay * sampleRate))
	}
	r.reset()
	return r
}

// Process implements the five-step FDN algorithm of §4.8.
func (r *Reverb) Process(x float64) float64 {
	xp := x
	if r.predelay != nil {
		xp = r.predelay.tap()
		r.predelay.write(x)
	}

	var d [4]float64
	alpha := r.params.Damping
	for i, line := range r.lines {
		t := line.tap()
		d[i] = (1-alpha)*t + alpha*r.dPrev[i]
		r.dPrev[i] = d[i]
	}

	var m [4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i] += hadamard4[i][j] * d[j]
		}
	}

	for i, line := range r.lines {
		line.write(xp + r.params.Decay*m[i])
	}

	wet := 0.25 * (d[0] + d[1] + d[2] + d[3])
	return (1-r.params.Mix)*x + r.params.Mix*wet
}

func (r *Reverb) reset() {
	for _, l := range r.lines {
		l.reset()
	}
	r.dPrev = [4]float64{}
	if r.predelay != nil {
		r.predelay.reset()
	}
}
