package dsl

import "testing"

func TestParseValue(t *testing.T) {
	cases := map[string]float64{
		"10k":   10000,
		"4.7k":  4700,
		"100n":  100e-9,
		"1meg":  1e6,
		"2.5":   2.5,
		"-3.3m": -3.3e-3,
	}
	for in, want := range cases {
		got, err := ParseValue(in)
		if err != nil {
			t.Fatalf("ParseValue(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseValue(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseVoltageDivider(t *testing.T) {
	src := `
V_IN in 0 AC 1
R1 in out 10k
R2 out 0 10k
.input in
.output out
`
	desc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if desc.InputNode != "in" || desc.OutputNode != "out" {
		t.Fatalf("unexpected input/output: %q/%q", desc.InputNode, desc.OutputNode)
	}
	if len(desc.VSources) != 1 || len(desc.Resistors) != 2 {
		t.Fatalf("unexpected element counts: %d vsources, %d resistors", len(desc.VSources), len(desc.Resistors))
	}
	if desc.Resistors[0].Value != 10000 {
		t.Fatalf("R1 value = %v, want 10000", desc.Resistors[0].Value)
	}
}

func TestParseDiodeAndModel(t *testing.T) {
	src := `
.model D1N914 D(is=1e-9 n=1.8 vf=0.3)
D1 a b D1N914
`
	desc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	model, ok := desc.DiodeModels["D1N914"]
	if !ok {
		t.Fatalf("expected model D1N914 to be defined")
	}
	if model.Is != 1e-9 || model.N != 1.8 || model.Vf != 0.3 {
		t.Fatalf("unexpected model params: %+v", model)
	}
	if len(desc.Diodes) != 1 || desc.Diodes[0].Model != "D1N914" {
		t.Fatalf("unexpected diode list: %+v", desc.Diodes)
	}
}

func TestParseResistorWithLFOModulation(t *testing.T) {
	src := `
LFO1 rate=1 shape=sine
R1 in out 10k lfo=LFO1 depth=0.5 range=2.0
`
	desc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(desc.LFOs) != 1 {
		t.Fatalf("expected one LFO, got %d", len(desc.LFOs))
	}
	mod := desc.Resistors[0].Mod
	if mod == nil || mod.LFOName != "LFO1" || mod.Depth != 0.5 || mod.Range != 2.0 {
		t.Fatalf("unexpected modulation spec: %+v", mod)
	}
}

func TestParseRejectsUnknownElement(t *testing.T) {
	if _, err := Parse("Z1 a b 1k\n"); err == nil {
		t.Fatalf("expected an error for unrecognized element prefix")
	}
}
