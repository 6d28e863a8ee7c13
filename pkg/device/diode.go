package device

import (
	"math"

	"github.com/petereon/pedaler-core/pkg/matrix"
)

// ThermalVoltage is the fixed room-temperature Vt used by every nonlinear
// device model, per §4.3. Unlike the teacher's temperature-dependent
// thermalVoltage(temp), this system has no temperature model to drive it.
const ThermalVoltage = 0.02585

// DiodeModel holds the Shockley parameters shared by every diode
// referencing it, resolved at build time (§9 "Back-references").
type DiodeModel struct {
	Is float64 // saturation current
	N  float64 // ideality factor
	Vf float64 // informational, not used in the current/conductance law
}

// Diode implements the Shockley model with Vcrit voltage limiting from
// §4.3. vPrevIter is the per-solve state carried across Newton iterations
// (and warm-started across samples, since the operating point moves by
// microvolts sample to sample at audio rates).
type Diode struct {
	Name         string
	Anode, Cathode int
	Model        *DiodeModel

	vPrevIter float64
	gd        float64
	ieq       float64
}

func NewDiode(name string, anode, cathode int, model *DiodeModel) *Diode {
	return &Diode{Name: name, Anode: anode, Cathode: cathode, Model: model}
}

func (d *Diode) HasNonlinear() bool { return true }

// Relinearize computes Vlim against the previous iterate, the
// conductance Gd, and the equivalent current source Ieq, exactly as
// §4.3 specifies, and records Vlim as the new v_prev_iter.
func (d *Diode) Relinearize(xPrev []float64) {
	v := nodeVoltage(xPrev, d.Anode) - nodeVoltage(xPrev, d.Cathode)
	nvt := d.Model.N * ThermalVoltage

	vlim := limitDiodeVoltage(v, d.vPrevIter, nvt, d.Model.Is)

	arg := vlim / nvt
	if arg > 40 {
		arg = 40
	}
	exp := math.Exp(arg)

	id := d.Model.Is * (exp - 1)
	gd := (d.Model.Is / nvt) * exp
	if gd < 1e-12 {
		gd = 1e-12
	}

	d.gd = gd
	d.ieq = id - gd*vlim
	d.vPrevIter = vlim
}

// limitDiodeVoltage implements the Vcrit-based piecewise rule of §4.3.
func limitDiodeVoltage(v, vPrevIter, nvt, is float64) float64 {
	vcrit := nvt * math.Log(nvt/(is*math.Sqrt2))
	if v > vcrit && math.Abs(v-vPrevIter) > 2*nvt {
		return vcrit + nvt*math.Log(1+(v-vcrit)/nvt)
	}
	return v
}

func (d *Diode) Stamp(sys *matrix.System, dt float64) {
	sys.Add(d.Anode, d.Anode, d.gd)
	sys.Add(d.Cathode, d.Cathode, d.gd)
	sys.Add(d.Anode, d.Cathode, -d.gd)
	sys.Add(d.Cathode, d.Anode, -d.gd)

	sys.AddRHS(d.Anode, -d.ieq)
	sys.AddRHS(d.Cathode, d.ieq)
}

func (d *Diode) UpdateHistory(x []float64) {}
