package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// SourceMode distinguishes a fixed DC bias source from one whose value is
// driven externally each sample (the V_IN convention).
type SourceMode int

const (
	DC SourceMode = iota
	AC
)

// VoltageSource stamps the ideal-voltage-source branch equation of §4.2:
// A[p,b]+=1; A[n,b]-=1; A[b,p]+=1; A[b,n]-=1; z[b]+=V.
type VoltageSource struct {
	Name   string
	N1, N2 int
	Branch int
	Mode   SourceMode
	Value  float64
}

func NewVoltageSource(name string, n1, n2, branch int, mode SourceMode, value float64) *VoltageSource {
	return &VoltageSource{Name: name, N1: n1, N2: n2, Branch: branch, Mode: mode, Value: value}
}

// SetValue is the entry point §4.9 step 1 uses to drive V_IN each sample.
func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
}

func (v *VoltageSource) Stamp(sys *matrix.System, dt float64) {
	sys.Add(v.N1, v.Branch, 1)
	sys.Add(v.N2, v.Branch, -1)
	sys.Add(v.Branch, v.N1, 1)
	sys.Add(v.Branch, v.N2, -1)
	sys.AddRHS(v.Branch, v.Value)
}

func (v *VoltageSource) UpdateHistory(x []float64) {}

func (v *VoltageSource) HasNonlinear() bool { return false }
