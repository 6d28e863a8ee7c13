package device

import (
	"math"

	"github.com/petereon/pedaler-core/pkg/matrix"
)

// OpAmpModel holds the gain/rin/rout triple and the rail voltage, which
// spec.md leaves as an implementer default (§9 open question) exposed
// here as a model parameter.
type OpAmpModel struct {
	Gain float64
	Rin  float64
	Rout float64
	Rail float64 // defaults to 15.0 at parse time when unset
}

// OpAmp implements §4.5: input resistance between the two inputs, and a
// branch equation V_out - rout*i_b = gain*(V+ - V-) stamped against the
// output branch, with soft rail limiting that reduces the effective gain
// once the predicted output would exceed the configured rail.
//
// Rail limiting makes this device's contribution depend on the operating
// point, so it always participates in the Newton loop; when no clipping
// is active the effective gain equals the model gain, the first pass
// already yields the linear solution, and at most one more pass confirms
// it.
type OpAmp struct {
	Name          string
	Pos, Neg, Out int
	Branch        int
	Model         *OpAmpModel

	effGain float64
}

func NewOpAmp(name string, pos, neg, out, branch int, model *OpAmpModel) *OpAmp {
	return &OpAmp{Name: name, Pos: pos, Neg: neg, Out: out, Branch: branch, Model: model, effGain: model.Gain}
}

func (o *OpAmp) HasNonlinear() bool { return true }

func (o *OpAmp) Relinearize(xPrev []float64) {
	vplus := nodeVoltage(xPrev, o.Pos)
	vminus := nodeVoltage(xPrev, o.Neg)
	vdiff := vplus - vminus

	predicted := o.Model.Gain * vdiff
	rail := o.Model.Rail

	gain := o.Model.Gain
	if math.Abs(predicted) > rail && vdiff != 0 {
		gain = rail / math.Abs(vdiff)
		if predicted < 0 {
			gain = -gain
		}
	}
	o.effGain = gain
}

func (o *OpAmp) Stamp(sys *matrix.System, dt float64) {
	if o.Model.Rin > 0 {
		g := 1.0 / o.Model.Rin
		sys.Add(o.Pos, o.Pos, g)
		sys.Add(o.Neg, o.Neg, g)
		sys.Add(o.Pos, o.Neg, -g)
		sys.Add(o.Neg, o.Pos, -g)
	}

	sys.Add(o.Out, o.Branch, 1)
	sys.Add(o.Branch, o.Out, 1)
	sys.Add(o.Branch, o.Branch, -o.Model.Rout)
	sys.Add(o.Branch, o.Pos, -o.effGain)
	sys.Add(o.Branch, o.Neg, o.effGain)
}

func (o *OpAmp) UpdateHistory(x []float64) {}
