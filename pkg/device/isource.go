package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// CurrentSource stamps an ideal current source per §4.2: current flows
// from N1 to N2, so z[n1] -= I; z[n2] += I.
type CurrentSource struct {
	Name   string
	N1, N2 int
	Value  float64
}

func NewCurrentSource(name string, n1, n2 int, value float64) *CurrentSource {
	return &CurrentSource{Name: name, N1: n1, N2: n2, Value: value}
}

func (i *CurrentSource) Stamp(sys *matrix.System, dt float64) {
	sys.AddRHS(i.N1, -i.Value)
	sys.AddRHS(i.N2, i.Value)
}

func (i *CurrentSource) UpdateHistory(x []float64) {}

func (i *CurrentSource) HasNonlinear() bool { return false }
