package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// Capacitor stamps the trapezoidal companion model: a conductance
// G_eq=2C/Δt in parallel with a history current source, per §4.2.
type Capacitor struct {
	Name string
	N1   int
	N2   int
	C    float64

	vPrev float64
	iPrev float64
	dt    float64 // cached from the most recent Stamp, needed by UpdateHistory
}

func NewCapacitor(name string, n1, n2 int, value float64) *Capacitor {
	return &Capacitor{Name: name, N1: n1, N2: n2, C: value}
}

func (c *Capacitor) Stamp(sys *matrix.System, dt float64) {
	c.dt = dt
	geq := 2 * c.C / dt
	ieq := geq*c.vPrev + c.iPrev

	sys.Add(c.N1, c.N1, geq)
	sys.Add(c.N2, c.N2, geq)
	sys.Add(c.N1, c.N2, -geq)
	sys.Add(c.N2, c.N1, -geq)

	// History source flows from n2 to n1.
	sys.AddRHS(c.N1, ieq)
	sys.AddRHS(c.N2, -ieq)
}

// UpdateHistory commits the converged sample's voltage/current into the
// companion history, per the trapezoidal update in §4.2.
func (c *Capacitor) UpdateHistory(x []float64) {
	v1, v2 := nodeVoltage(x, c.N1), nodeVoltage(x, c.N2)
	vNew := v1 - v2
	geq := 2 * c.C / c.dt

	c.iPrev = geq*(vNew-c.vPrev) - c.iPrev
	c.vPrev = vNew
}

func (c *Capacitor) HasNonlinear() bool { return false }

func nodeVoltage(x []float64, n int) float64 {
	if n < 0 {
		return 0
	}
	return x[n]
}
