package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// Potentiometer stamps two resistor legs, N1-Wiper and Wiper-N2, split by
// Position in [0,1], per §3's "internally two resistor stamps".
type Potentiometer struct {
	Name           string
	N1, Wiper, N2  int
	TotalR         float64
	Position       float64
}

func NewPotentiometer(name string, n1, wiper, n2 int, totalR, position float64) *Potentiometer {
	return &Potentiometer{Name: name, N1: n1, Wiper: wiper, N2: n2, TotalR: totalR, Position: position}
}

func (p *Potentiometer) r1() float64 {
	r := p.Position * p.TotalR
	if r < 1e-6 {
		r = 1e-6
	}
	return r
}

func (p *Potentiometer) r2() float64 {
	r := (1 - p.Position) * p.TotalR
	if r < 1e-6 {
		r = 1e-6
	}
	return r
}

func (p *Potentiometer) Stamp(sys *matrix.System, dt float64) {
	g1 := 1.0 / p.r1()
	sys.Add(p.N1, p.N1, g1)
	sys.Add(p.Wiper, p.Wiper, g1)
	sys.Add(p.N1, p.Wiper, -g1)
	sys.Add(p.Wiper, p.N1, -g1)

	g2 := 1.0 / p.r2()
	sys.Add(p.Wiper, p.Wiper, g2)
	sys.Add(p.N2, p.N2, g2)
	sys.Add(p.Wiper, p.N2, -g2)
	sys.Add(p.N2, p.Wiper, -g2)
}

func (p *Potentiometer) UpdateHistory(x []float64) {}

func (p *Potentiometer) HasNonlinear() bool { return false }
