package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// Inductor stamps the current-state trapezoidal companion model per
// §4.2/§9: a series voltage source of value V_eq=-(R_eq*i_prev+v_prev) with
// R_eq=2L/Δt folded into the branch equation as -R_eq on the diagonal, so
// the branch solves V_p - V_n - R_eq*i_b = V_eq (the trapezoidal rule).
type Inductor struct {
	Name   string
	N1, N2 int
	Branch int
	L      float64

	iPrev float64
	vPrev float64
	dt    float64
}

func NewInductor(name string, n1, n2, branch int, value float64) *Inductor {
	return &Inductor{Name: name, N1: n1, N2: n2, Branch: branch, L: value}
}

func (l *Inductor) Stamp(sys *matrix.System, dt float64) {
	l.dt = dt
	req := 2 * l.L / dt
	veq := -(req*l.iPrev + l.vPrev)

	sys.Add(l.N1, l.Branch, 1)
	sys.Add(l.N2, l.Branch, -1)
	sys.Add(l.Branch, l.N1, 1)
	sys.Add(l.Branch, l.N2, -1)
	sys.Add(l.Branch, l.Branch, -req)
	sys.AddRHS(l.Branch, veq)
}

// UpdateHistory recovers i_new from the branch unknown and v_new from the
// companion relation, per §4.2's post-solve update.
func (l *Inductor) UpdateHistory(x []float64) {
	req := 2 * l.L / l.dt
	veq := -(req*l.iPrev + l.vPrev)

	iNew := x[l.Branch]
	vNew := veq + req*iNew

	l.iPrev = iNew
	l.vPrev = vNew
}

func (l *Inductor) HasNonlinear() bool { return false }
