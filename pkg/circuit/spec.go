// Package circuit holds the validated-circuit-description data model of
// §3 and the Build step that turns one into a runnable set of device
// stampers with a stable node/branch ordering fixed for the lifetime of
// the Simulator.
package circuit

import (
	"github.com/petereon/pedaler-core/pkg/device"
	"github.com/petereon/pedaler-core/pkg/lfo"
)

// Description is the circuit-description contract handed to Build. It
// is produced by pkg/dsl in this repository, but nothing in this package
// depends on the DSL — any caller (a test, an embedder) can construct
// one directly.
type Description struct {
	Name string

	InputNode  string
	OutputNode string

	Resistors  []ResistorSpec
	Capacitors []CapacitorSpec
	Inductors  []InductorSpec
	VSources   []VSourceSpec
	ISources   []ISourceSpec
	Diodes     []DiodeSpec
	BJTs       []BJTSpec
	OpAmps     []OpAmpSpec
	Pots       []PotSpec
	Switches   []SwitchSpec
	Delays     []DelaySpec
	Reverbs    []ReverbSpec

	DiodeModels map[string]device.DiodeModel
	BJTModels   map[string]device.BJTModel
	OpAmpModels map[string]device.OpAmpModel

	LFOs []LFOSpec
}

type ResistorSpec struct {
	Name   string
	N1, N2 string
	Value  float64
	Mod    *ModSpec // nil if unmodulated
}

type ModSpec struct {
	LFOName string
	Depth   float64
	Range   float64
}

type CapacitorSpec struct {
	Name   string
	N1, N2 string
	Value  float64
}

type InductorSpec struct {
	Name   string
	N1, N2 string
	Value  float64
}

type VSourceSpec struct {
	Name   string
	N1, N2 string
	Mode   device.SourceMode
	Value  float64
}

type ISourceSpec struct {
	Name   string
	N1, N2 string
	Value  float64
}

type DiodeSpec struct {
	Name           string
	Anode, Cathode string
	Model          string
}

type BJTSpec struct {
	Name                 string
	Collector, Base, Emitter string
	Model                string
	Polarity             device.Polarity
}

type OpAmpSpec struct {
	Name          string
	Pos, Neg, Out string
	Model         string
}

type PotSpec struct {
	Name            string
	N1, Wiper, N2   string
	TotalR          float64
	Position        float64
}

type SwitchSpec struct {
	Name   string
	N1, N2 string
	State  device.SwitchState
}

type DelaySpec struct {
	Name               string
	InputNode, OutputNode string
	TimeMax            float64
	Time               float64
	Mix                float64
	Feedback           float64
}

type ReverbSpec struct {
	Name               string
	InputNode, OutputNode string
	Size, Decay, Damping, Mix, Predelay float64
}

type LFOSpec struct {
	Name  string
	Rate  float64
	Shape lfo.Shape
}
