// Package dsl parses this system's plain-text circuit description format
// into a circuit.Description, the one concrete way a text file on disk
// becomes something pkg/circuit.Build can validate. The scan is
// line-oriented and the value grammar is engineering notation, both
// grounded in the teacher's SPICE-netlist parser; the element and
// directive grammar itself is this system's own, not SPICE's.
package dsl

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/petereon/pedaler-core/pkg/circuit"
	"github.com/petereon/pedaler-core/pkg/device"
	"github.com/petereon/pedaler-core/pkg/lfo"
)

// Parse reads a circuit description and returns the Description it
// names. Parse never touches pkg/circuit's invariants (floating nodes,
// unknown models, missing V_IN) — that validation happens once in
// circuit.Build so every caller of a Description, not just this parser,
// gets it for free.
func Parse(input string) (*circuit.Description, error) {
	desc := &circuit.Description{
		DiodeModels: make(map[string]device.DiodeModel),
		BJTModels:   make(map[string]device.BJTModel),
		OpAmpModels: make(map[string]device.OpAmpModel),
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var err error
		if strings.HasPrefix(line, ".") {
			err = parseDirective(desc, line)
		} else {
			err = parseElement(desc, line)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return desc, nil
}

func parseDirective(desc *circuit.Description, line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".input":
		if len(fields) < 2 {
			return fmt.Errorf(".input requires a node name")
		}
		desc.InputNode = fields[1]
	case ".output":
		if len(fields) < 2 {
			return fmt.Errorf(".output requires a node name")
		}
		desc.OutputNode = fields[1]
	case ".model":
		return parseModel(desc, fields[1:])
	default:
		return fmt.Errorf("unknown directive %q", fields[0])
	}
	return nil
}

// parseModel handles ".model <name> TYPE(key=value ...)".
func parseModel(desc *circuit.Description, fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("insufficient .model parameters")
	}
	name := fields[0]
	rest := strings.Join(fields[1:], " ")
	open := strings.Index(rest, "(")
	if open < 0 || !strings.HasSuffix(strings.TrimSpace(rest), ")") {
		return fmt.Errorf("model %s: expected TYPE(key=value ...)", name)
	}
	modelType := strings.ToUpper(strings.TrimSpace(rest[:open]))
	inner := strings.TrimSuffix(strings.TrimSpace(rest[open+1:]), ")")
	p := params(strings.Fields(inner))

	switch modelType {
	case "D":
		is, err := paramValue(p, "is", 1e-9)
		if err != nil {
			return err
		}
		n, err := paramValue(p, "n", 1.0)
		if err != nil {
			return err
		}
		vf, err := paramValue(p, "vf", 0.7)
		if err != nil {
			return err
		}
		desc.DiodeModels[name] = device.DiodeModel{Is: is, N: n, Vf: vf}

	case "NPN", "PNP":
		bf, err := paramValue(p, "bf", 100)
		if err != nil {
			return err
		}
		br, err := paramValue(p, "br", 1)
		if err != nil {
			return err
		}
		is, err := paramValue(p, "is", 1e-12)
		if err != nil {
			return err
		}
		n, err := paramValue(p, "n", 1.0)
		if err != nil {
			return err
		}
		va, err := paramValue(p, "va", 0)
		if err != nil {
			return err
		}
		desc.BJTModels[name] = device.BJTModel{Bf: bf, Br: br, Is: is, N: n, Va: va}

	case "OPAMP":
		gain, err := paramValue(p, "gain", 100000)
		if err != nil {
			return err
		}
		rin, err := paramValue(p, "rin", 1e6)
		if err != nil {
			return err
		}
		rout, err := paramValue(p, "rout", 75)
		if err != nil {
			return err
		}
		rail, err := paramValue(p, "rail", 15)
		if err != nil {
			return err
		}
		desc.OpAmpModels[name] = device.OpAmpModel{Gain: gain, Rin: rin, Rout: rout, Rail: rail}

	default:
		return fmt.Errorf("unsupported model type %q", modelType)
	}
	return nil
}

func parseElement(desc *circuit.Description, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := fields[0]

	switch {
	case hasPrefix(name, "DELAY"):
		return parseDelay(desc, name, fields[1:])
	case hasPrefix(name, "REVERB"):
		return parseReverb(desc, name, fields[1:])
	case hasPrefix(name, "LFO"):
		return parseLFO(desc, name, fields[1:])
	}

	if len(name) == 0 {
		return fmt.Errorf("empty element name")
	}
	switch strings.ToUpper(name[:1]) {
	case "R":
		return parseResistor(desc, name, fields[1:])
	case "C":
		return parseCapacitor(desc, name, fields[1:])
	case "L":
		return parseInductor(desc, name, fields[1:])
	case "V":
		return parseVSource(desc, name, fields[1:])
	case "I":
		return parseISource(desc, name, fields[1:])
	case "D":
		return parseDiode(desc, name, fields[1:])
	case "Q":
		return parseBJT(desc, name, fields[1:])
	case "X":
		return parseOpAmp(desc, name, fields[1:])
	case "P":
		return parsePot(desc, name, fields[1:])
	case "S":
		return parseSwitch(desc, name, fields[1:])
	default:
		return fmt.Errorf("unrecognized element %q", name)
	}
}

func hasPrefix(name, prefix string) bool {
	return len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix)
}

func parseResistor(desc *circuit.Description, name string, f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("resistor %s: need n1 n2 value", name)
	}
	value, err := ParseValue(f[2])
	if err != nil {
		return err
	}
	spec := circuit.ResistorSpec{Name: name, N1: f[0], N2: f[1], Value: value}
	p := params(f[3:])
	if lfoName, ok := p["lfo"]; ok {
		depth, err := paramValue(p, "depth", 0)
		if err != nil {
			return err
		}
		rng, err := paramValue(p, "range", 1)
		if err != nil {
			return err
		}
		spec.Mod = &circuit.ModSpec{LFOName: lfoName, Depth: depth, Range: rng}
	}
	desc.Resistors = append(desc.Resistors, spec)
	return nil
}

func parseCapacitor(desc *circuit.Description, name string, f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("capacitor %s: need n1 n2 value", name)
	}
	value, err := ParseValue(f[2])
	if err != nil {
		return err
	}
	desc.Capacitors = append(desc.Capacitors, circuit.CapacitorSpec{Name: name, N1: f[0], N2: f[1], Value: value})
	return nil
}

func parseInductor(desc *circuit.Description, name string, f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("inductor %s: need n1 n2 value", name)
	}
	value, err := ParseValue(f[2])
	if err != nil {
		return err
	}
	desc.Inductors = append(desc.Inductors, circuit.InductorSpec{Name: name, N1: f[0], N2: f[1], Value: value})
	return nil
}

func parseVSource(desc *circuit.Description, name string, f []string) error {
	if len(f) < 4 {
		return fmt.Errorf("voltage source %s: need n1 n2 DC|AC value", name)
	}
	var mode device.SourceMode
	switch strings.ToUpper(f[2]) {
	case "DC":
		mode = device.DC
	case "AC":
		mode = device.AC
	default:
		return fmt.Errorf("voltage source %s: unknown mode %q", name, f[2])
	}
	value, err := ParseValue(f[3])
	if err != nil {
		return err
	}
	desc.VSources = append(desc.VSources, circuit.VSourceSpec{Name: name, N1: f[0], N2: f[1], Mode: mode, Value: value})
	return nil
}

func parseISource(desc *circuit.Description, name string, f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("current source %s: need n1 n2 value", name)
	}
	value, err := ParseValue(f[2])
	if err != nil {
		return err
	}
	desc.ISources = append(desc.ISources, circuit.ISourceSpec{Name: name, N1: f[0], N2: f[1], Value: value})
	return nil
}

func parseDiode(desc *circuit.Description, name string, f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("diode %s: need anode cathode model", name)
	}
	desc.Diodes = append(desc.Diodes, circuit.DiodeSpec{Name: name, Anode: f[0], Cathode: f[1], Model: f[2]})
	return nil
}

func parseBJT(desc *circuit.Description, name string, f []string) error {
	if len(f) < 4 {
		return fmt.Errorf("bjt %s: need collector base emitter model", name)
	}
	pol := device.NPN
	if len(f) > 4 && strings.EqualFold(f[4], "pnp") {
		pol = device.PNP
	}
	desc.BJTs = append(desc.BJTs, circuit.BJTSpec{Name: name, Collector: f[0], Base: f[1], Emitter: f[2], Model: f[3], Polarity: pol})
	return nil
}

func parseOpAmp(desc *circuit.Description, name string, f []string) error {
	if len(f) < 4 {
		return fmt.Errorf("opamp %s: need pos neg out model", name)
	}
	desc.OpAmps = append(desc.OpAmps, circuit.OpAmpSpec{Name: name, Pos: f[0], Neg: f[1], Out: f[2], Model: f[3]})
	return nil
}

func parsePot(desc *circuit.Description, name string, f []string) error {
	if len(f) < 4 {
		return fmt.Errorf("potentiometer %s: need n1 wiper n2 value", name)
	}
	totalR, err := ParseValue(f[3])
	if err != nil {
		return err
	}
	p := params(f[4:])
	position, err := paramValue(p, "position", 0.5)
	if err != nil {
		return err
	}
	desc.Pots = append(desc.Pots, circuit.PotSpec{Name: name, N1: f[0], Wiper: f[1], N2: f[2], TotalR: totalR, Position: position})
	return nil
}

func parseSwitch(desc *circuit.Description, name string, f []string) error {
	if len(f) < 3 {
		return fmt.Errorf("switch %s: need n1 n2 open|closed", name)
	}
	var state device.SwitchState
	switch strings.ToLower(f[2]) {
	case "open":
		state = device.Open
	case "closed":
		state = device.Closed
	default:
		return fmt.Errorf("switch %s: unknown state %q", name, f[2])
	}
	desc.Switches = append(desc.Switches, circuit.SwitchSpec{Name: name, N1: f[0], N2: f[1], State: state})
	return nil
}

func parseDelay(desc *circuit.Description, name string, f []string) error {
	if len(f) < 2 {
		return fmt.Errorf("delay %s: need input output", name)
	}
	p := params(f[2:])
	time, err := paramValue(p, "time", 0)
	if err != nil {
		return err
	}
	timeMax, err := paramValue(p, "timemax", time)
	if err != nil {
		return err
	}
	mix, err := paramValue(p, "mix", 1.0)
	if err != nil {
		return err
	}
	feedback, err := paramValue(p, "feedback", 0)
	if err != nil {
		return err
	}
	desc.Delays = append(desc.Delays, circuit.DelaySpec{
		Name: name, InputNode: f[0], OutputNode: f[1],
		TimeMax: timeMax, Time: time, Mix: mix, Feedback: feedback,
	})
	return nil
}

func parseReverb(desc *circuit.Description, name string, f []string) error {
	if len(f) < 2 {
		return fmt.Errorf("reverb %s: need input output", name)
	}
	p := params(f[2:])
	size, err := paramValue(p, "size", 1.0)
	if err != nil {
		return err
	}
	decay, err := paramValue(p, "decay", 0.5)
	if err != nil {
		return err
	}
	damping, err := paramValue(p, "damping", 0.2)
	if err != nil {
		return err
	}
	mix, err := paramValue(p, "mix", 0.3)
	if err != nil {
		return err
	}
	predelay, err := paramValue(p, "predelay", 0)
	if err != nil {
		return err
	}
	desc.Reverbs = append(desc.Reverbs, circuit.ReverbSpec{
		Name: name, InputNode: f[0], OutputNode: f[1],
		Size: size, Decay: decay, Damping: damping, Mix: mix, Predelay: predelay,
	})
	return nil
}

func parseLFO(desc *circuit.Description, name string, f []string) error {
	p := params(f)
	rate, err := paramValue(p, "rate", 1.0)
	if err != nil {
		return err
	}
	shape := lfo.Sine
	if s, ok := p["shape"]; ok {
		switch strings.ToLower(s) {
		case "sine":
			shape = lfo.Sine
		case "triangle":
			shape = lfo.Triangle
		case "sawtooth":
			shape = lfo.Sawtooth
		case "square":
			shape = lfo.Square
		default:
			return fmt.Errorf("lfo %s: unknown shape %q", name, s)
		}
	}
	desc.LFOs = append(desc.LFOs, circuit.LFOSpec{Name: name, Rate: rate, Shape: shape})
	return nil
}
