package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// Switch state, mapped to a fixed very-low or very-high conductance
// per §3.
type SwitchState int

const (
	Open SwitchState = iota
	Closed
)

const (
	switchOpenConductance   = 1e-12
	switchClosedConductance = 1e6
)

// Switch stamps a fixed conductance depending on its state.
type Switch struct {
	Name   string
	N1, N2 int
	State  SwitchState
}

func NewSwitch(name string, n1, n2 int, state SwitchState) *Switch {
	return &Switch{Name: name, N1: n1, N2: n2, State: state}
}

func (s *Switch) conductance() float64 {
	if s.State == Closed {
		return switchClosedConductance
	}
	return switchOpenConductance
}

func (s *Switch) Stamp(sys *matrix.System, dt float64) {
	g := s.conductance()
	sys.Add(s.N1, s.N1, g)
	sys.Add(s.N2, s.N2, g)
	sys.Add(s.N1, s.N2, -g)
	sys.Add(s.N2, s.N1, -g)
}

func (s *Switch) UpdateHistory(x []float64) {}

func (s *Switch) HasNonlinear() bool { return false }
