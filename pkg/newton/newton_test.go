package newton

import (
	"testing"

	"github.com/petereon/pedaler-core/pkg/device"
	"github.com/petereon/pedaler-core/pkg/matrix"
)

// stampFn adapts a plain function to device.Stamper for these tests.
type stampFn struct {
	fn         func(sys *matrix.System)
	nonlinear  bool
	relinCalls *int
}

func (f stampFn) Stamp(sys *matrix.System, dt float64) { f.fn(sys) }
func (f stampFn) UpdateHistory(x []float64)            {}
func (f stampFn) HasNonlinear() bool                   { return f.nonlinear }
func (f stampFn) Relinearize(xPrev []float64) {
	if f.relinCalls != nil {
		*f.relinCalls++
	}
}

// A 1-volt source against ground: row 0 is the node, row 1 its branch.
func vsourceStamp(v float64) func(sys *matrix.System) {
	return func(sys *matrix.System) {
		sys.Add(0, 1, 1)
		sys.Add(1, 0, 1)
		sys.AddRHS(1, v)
	}
}

func TestDriverStepLinearFastPathSkipsRelinearize(t *testing.T) {
	calls := 0
	devices := []device.Stamper{stampFn{fn: vsourceStamp(1.0), relinCalls: &calls}}

	d := New(DefaultConfig(), 2)
	sys := matrix.New(2)
	result := d.Step(sys, devices, nil, 1.0/48000)
	if result.Singular || result.NonConverged {
		t.Fatalf("expected a clean linear solve, got %+v", result)
	}
	if calls != 0 {
		t.Fatalf("linear fast path must not call Relinearize, got %d calls", calls)
	}
	if got := sys.NodeVoltage(0); got < 0.999999 || got > 1.000001 {
		t.Fatalf("expected node 0 at 1.0V, got %v", got)
	}
}

func TestDriverStepIteratesNonlinearUntilConvergence(t *testing.T) {
	calls := 0
	nl := stampFn{fn: vsourceStamp(1.0), nonlinear: true, relinCalls: &calls}
	devices := []device.Stamper{nl}
	nonlinear := []device.Nonlinear{nl}

	d := New(DefaultConfig(), 2)
	sys := matrix.New(2)
	result := d.Step(sys, devices, nonlinear, 1.0/48000)
	if result.Singular || result.NonConverged {
		t.Fatalf("expected convergence on a trivially linear stamp, got %+v", result)
	}
	if calls == 0 {
		t.Fatalf("expected Relinearize to be called at least once")
	}
}

func TestDriverStepZeroesOutputOnSingularSystem(t *testing.T) {
	devices := []device.Stamper{stampFn{fn: func(sys *matrix.System) {
		sys.Add(0, 0, 1) // row 1 is left all zero: singular
	}}}

	d := New(DefaultConfig(), 2)
	sys := matrix.New(2)
	result := d.Step(sys, devices, nil, 1.0/48000)
	if !result.Singular {
		t.Fatalf("expected Singular result")
	}
	for i, v := range sys.X() {
		if v != 0 {
			t.Fatalf("expected a zeroed solution on singular system, got x[%d]=%v", i, v)
		}
	}
}

// Reset must zero the warm-start history so the next Step's Relinearize
// calls see a cold operating point, not wherever the last run left off.
func TestDriverResetZeroesWarmStartHistory(t *testing.T) {
	devices := []device.Stamper{stampFn{fn: vsourceStamp(1.0)}}

	d := New(DefaultConfig(), 2)
	sys := matrix.New(2)
	d.Step(sys, devices, nil, 1.0/48000)

	nonZero := false
	for _, v := range d.xPrev {
		if v != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatalf("expected Step to have populated warm-start history before Reset")
	}

	d.Reset()
	for i, v := range d.xPrev {
		if v != 0 {
			t.Fatalf("expected xPrev cleared after Reset, got x[%d]=%v", i, v)
		}
	}
}
