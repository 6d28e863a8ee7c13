// Package device implements the closed set of MNA component stampers:
// the translation of a single circuit element's constitutive law into
// contributions to the dense linear system.
package device

import "github.com/petereon/pedaler-core/pkg/matrix"

// Ground is the sentinel node/branch index meaning "not a matrix
// unknown". matrix.System treats any negative index as ground and drops
// the write, so every device uses this constant instead of branching.
const Ground = -1

// Stamper is the capability every component in the closed set implements:
// add its contribution to the system for the current sample, and advance
// whatever history state the companion model needs for the next one.
// There is deliberately no open-world dispatch here — the device list in
// a built circuit is a flat slice of concrete types behind this one
// interface, matched against in a handful of places that need to special
// case a kind (V_IN lookup, nonlinear re-linearization).
type Stamper interface {
	Stamp(sys *matrix.System, dt float64)
	UpdateHistory(x []float64)
	HasNonlinear() bool
}

// Nonlinear is implemented by devices whose Stamp contribution depends on
// the present operating point. Relinearize is called once per Newton
// iteration with the previous iteration's unknowns vector, before Stamp.
type Nonlinear interface {
	Stamper
	Relinearize(xPrev []float64)
}
