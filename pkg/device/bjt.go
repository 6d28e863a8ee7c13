package device

import (
	"math"

	"github.com/petereon/pedaler-core/pkg/matrix"
)

// Polarity selects the Ebers-Moll sign convention for a BJT.
type Polarity int

const (
	NPN Polarity = iota
	PNP
)

// BJTModel holds the Ebers-Moll parameters of §4.4, resolved at build
// time from a `.model` reference.
type BJTModel struct {
	Bf float64 // forward current gain
	Br float64 // reverse current gain
	Is float64 // saturation current
	N  float64 // ideality factor
	Va float64 // Early voltage (informational; not used by the level-1 model here)
}

// BJT implements the simplified Ebers-Moll model of §4.4: per-junction
// voltage limiting identical to the diode's, a 2x2 Jacobian w.r.t.
// (Vbe, Vbc), stamped as a 3x3 block of conductances across {C,B,E} plus
// three equivalent current injections.
type BJT struct {
	Name       string
	Nc, Nb, Ne int
	Model      *BJTModel
	Pol        Polarity

	vBePrevIter float64
	vBcPrevIter float64

	// cached per-iteration stamp coefficients, computed by Relinearize
	coefB, coefC, coefE [3]float64 // rows b,c,e; columns b,c,e in each row
	eqC, eqB, eqE       float64
}

func NewBJT(name string, nc, nb, ne int, model *BJTModel, pol Polarity) *BJT {
	return &BJT{Name: name, Nc: nc, Nb: nb, Ne: ne, Model: model, Pol: pol}
}

func (q *BJT) HasNonlinear() bool { return true }

func (q *BJT) Relinearize(xPrev []float64) {
	pol := 1.0
	if q.Pol == PNP {
		pol = -1.0
	}

	vc, vb, ve := nodeVoltage(xPrev, q.Nc), nodeVoltage(xPrev, q.Nb), nodeVoltage(xPrev, q.Ne)
	vbe := pol * (vb - ve)
	vbc := pol * (vb - vc)

	nvt := q.Model.N * ThermalVoltage
	vbe = limitDiodeVoltage(vbe, q.vBePrevIter, nvt, q.Model.Is)
	vbc = limitDiodeVoltage(vbc, q.vBcPrevIter, nvt, q.Model.Is)
	q.vBePrevIter = vbe
	q.vBcPrevIter = vbc

	ibe, gbe := junctionCurrent(q.Model.Is, nvt, vbe)
	ibc, gbc := junctionCurrent(q.Model.Is, nvt, vbc)

	ic := ibe - ibc*(1+1/q.Model.Br)
	ib := ibe/q.Model.Bf + ibc/q.Model.Br

	dIcDVbe := gbe
	dIcDVbc := -gbc * (1 + 1/q.Model.Br)
	dIbDVbe := gbe / q.Model.Bf
	dIbDVbc := gbc / q.Model.Br

	icEq := ic - dIcDVbe*vbe - dIcDVbc*vbc
	ibEq := ib - dIbDVbe*vbe - dIbDVbc*vbc
	ieEq := -(icEq + ibEq)

	// Coefficients on (Vb, Vc, Ve) for each of Ic, Ib, Ie, derived from
	// Vbe=pol*(Vb-Ve), Vbc=pol*(Vb-Vc), then uniformly rescaled by pol
	// per §4.4's PNP sign-flip rule.
	q.coefC = [3]float64{pol * (dIcDVbe + dIcDVbc), pol * -dIcDVbc, pol * -dIcDVbe}
	q.coefB = [3]float64{pol * (dIbDVbe + dIbDVbc), pol * -dIbDVbc, pol * -dIbDVbe}
	q.coefE = [3]float64{-(q.coefC[0] + q.coefB[0]), -(q.coefC[1] + q.coefB[1]), -(q.coefC[2] + q.coefB[2])}

	q.eqC = pol * icEq
	q.eqB = pol * ibEq
	q.eqE = pol * ieEq
}

// junctionCurrent returns the diode-law current and conductance for a
// single Ebers-Moll junction at voltage v.
func junctionCurrent(is, nvt, v float64) (i, g float64) {
	arg := v / nvt
	if arg > 40 {
		arg = 40
	}
	exp := math.Exp(arg)
	return is * (exp - 1), (is / nvt) * exp
}

func (q *BJT) Stamp(sys *matrix.System, dt float64) {
	stampRow := func(row int, coef [3]float64, eq float64) {
		sys.Add(row, q.Nb, coef[0])
		sys.Add(row, q.Nc, coef[1])
		sys.Add(row, q.Ne, coef[2])
		sys.AddRHS(row, -eq)
	}
	stampRow(q.Nc, q.coefC, q.eqC)
	stampRow(q.Nb, q.coefB, q.eqB)
	stampRow(q.Ne, q.coefE, q.eqE)
}

func (q *BJT) UpdateHistory(x []float64) {}
