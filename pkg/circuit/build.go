package circuit

import (
	"github.com/petereon/pedaler-core/pkg/device"
	"github.com/petereon/pedaler-core/pkg/digital"
	"github.com/petereon/pedaler-core/pkg/lfo"
)

// isGround reports whether name is one of the ground aliases of §3.
func isGround(name string) bool {
	return name == "0" || name == "GND"
}

// nodeAssigner hands out the stable 1..N node numbering fixed at build
// time, per §3's "Stable ordering is fixed at circuit build time."
type nodeAssigner struct {
	ids   map[string]int
	order []string
}

func newNodeAssigner() *nodeAssigner {
	return &nodeAssigner{ids: make(map[string]int)}
}

// index resolves name to its matrix row: device.Ground for a ground
// alias, or the 0-based row for a node, assigning a fresh id on first
// sight.
func (a *nodeAssigner) index(name string) int {
	if isGround(name) {
		return device.Ground
	}
	if id, ok := a.ids[name]; ok {
		return id - 1
	}
	id := len(a.ids) + 1
	a.ids[name] = id
	a.order = append(a.order, name)
	return id - 1
}

// Build validates a Description against every invariant in §3 and
// compiles it into a runnable Circuit. All build-time failures are
// returned as *BuildError.
func Build(desc *Description) (*Circuit, error) {
	if desc.InputNode == "" || desc.OutputNode == "" {
		return nil, &BuildError{Kind: MissingInputOrOutput}
	}

	nodes := newNodeAssigner()
	branch := 0 // next free branch ordinal
	var edges [][2]int

	c := &Circuit{
		NodeIndex: make(map[string]int),
	}

	// --- resistors ---
	for _, rs := range desc.Resistors {
		if rs.Value <= 0 {
			return nil, &BuildError{Kind: InvalidValue, Name: rs.Name}
		}
		n1, n2 := nodes.index(rs.N1), nodes.index(rs.N2)
		r := device.NewResistor(rs.Name, n1, n2, rs.Value)
		if rs.Mod != nil {
			osc := findLFOSpec(desc.LFOs, rs.Mod.LFOName)
			if osc == nil {
				return nil, &BuildError{Kind: InvalidParameter, Name: rs.Name, Reason: "lfo " + rs.Mod.LFOName + " not defined"}
			}
			r.Mod = &device.Modulation{LFOID: rs.Mod.LFOName, Depth: rs.Mod.Depth, Range: rs.Mod.Range}
		}
		edges = append(edges, [2]int{n1, n2})
		c.Resistors = append(c.Resistors, r)
		c.Devices = append(c.Devices, r)
	}

	// --- capacitors ---
	for _, cs := range desc.Capacitors {
		if cs.Value <= 0 {
			return nil, &BuildError{Kind: InvalidValue, Name: cs.Name}
		}
		n1, n2 := nodes.index(cs.N1), nodes.index(cs.N2)
		cap := device.NewCapacitor(cs.Name, n1, n2, cs.Value)
		edges = append(edges, [2]int{n1, n2})
		c.Capacitors = append(c.Capacitors, cap)
		c.Devices = append(c.Devices, cap)
	}

	// --- inductors (branch-defining) ---
	for _, is := range desc.Inductors {
		if is.Value <= 0 {
			return nil, &BuildError{Kind: InvalidValue, Name: is.Name}
		}
		n1, n2 := nodes.index(is.N1), nodes.index(is.N2)
		l := device.NewInductor(is.Name, n1, n2, branch, is.Value)
		branch++
		edges = append(edges, [2]int{n1, n2})
		c.Inductors = append(c.Inductors, l)
		c.Devices = append(c.Devices, l)
	}

	// --- voltage sources (branch-defining) ---
	var vin *device.VoltageSource
	var vSources []*device.VoltageSource
	for _, vs := range desc.VSources {
		n1, n2 := nodes.index(vs.N1), nodes.index(vs.N2)
		v := device.NewVoltageSource(vs.Name, n1, n2, branch, vs.Mode, vs.Value)
		branch++
		edges = append(edges, [2]int{n1, n2})
		c.Devices = append(c.Devices, v)
		vSources = append(vSources, v)
		if vs.Name == "V_IN" {
			vin = v
		}
	}
	if vin == nil {
		return nil, &BuildError{Kind: MissingVIn}
	}
	c.VIn = vin

	// --- current sources ---
	for _, is := range desc.ISources {
		n1, n2 := nodes.index(is.N1), nodes.index(is.N2)
		edges = append(edges, [2]int{n1, n2})
		c.Devices = append(c.Devices, device.NewCurrentSource(is.Name, n1, n2, is.Value))
	}

	// --- diodes ---
	for _, ds := range desc.Diodes {
		model, ok := desc.DiodeModels[ds.Model]
		if !ok {
			return nil, &BuildError{Kind: UnknownModel, Name: ds.Model}
		}
		m := model
		a, k := nodes.index(ds.Anode), nodes.index(ds.Cathode)
		d := device.NewDiode(ds.Name, a, k, &m)
		edges = append(edges, [2]int{a, k})
		c.Devices = append(c.Devices, d)
		c.Nonlinear = append(c.Nonlinear, d)
	}

	// --- BJTs ---
	for _, qs := range desc.BJTs {
		model, ok := desc.BJTModels[qs.Model]
		if !ok {
			return nil, &BuildError{Kind: UnknownModel, Name: qs.Model}
		}
		m := model
		nc, nb, ne := nodes.index(qs.Collector), nodes.index(qs.Base), nodes.index(qs.Emitter)
		q := device.NewBJT(qs.Name, nc, nb, ne, &m, qs.Polarity)
		edges = append(edges, [2]int{nc, nb}, [2]int{nb, ne})
		c.Devices = append(c.Devices, q)
		c.Nonlinear = append(c.Nonlinear, q)
	}

	// --- op-amps (branch-defining) ---
	var opAmps []*device.OpAmp
	for _, os := range desc.OpAmps {
		model, ok := desc.OpAmpModels[os.Model]
		if !ok {
			return nil, &BuildError{Kind: UnknownModel, Name: os.Model}
		}
		m := model
		if m.Rail == 0 {
			m.Rail = 15.0
		}
		pos, neg, out := nodes.index(os.Pos), nodes.index(os.Neg), nodes.index(os.Out)
		op := device.NewOpAmp(os.Name, pos, neg, out, branch, &m)
		branch++
		edges = append(edges, [2]int{pos, neg}, [2]int{out, pos})
		c.Devices = append(c.Devices, op)
		c.Nonlinear = append(c.Nonlinear, op)
		opAmps = append(opAmps, op)
	}

	// --- potentiometers ---
	for _, ps := range desc.Pots {
		if ps.TotalR <= 0 {
			return nil, &BuildError{Kind: InvalidValue, Name: ps.Name}
		}
		n1, w, n2 := nodes.index(ps.N1), nodes.index(ps.Wiper), nodes.index(ps.N2)
		edges = append(edges, [2]int{n1, w}, [2]int{w, n2})
		c.Devices = append(c.Devices, device.NewPotentiometer(ps.Name, n1, w, n2, ps.TotalR, ps.Position))
	}

	// --- switches ---
	for _, ss := range desc.Switches {
		n1, n2 := nodes.index(ss.N1), nodes.index(ss.N2)
		edges = append(edges, [2]int{n1, n2})
		c.Devices = append(c.Devices, device.NewSwitch(ss.Name, n1, n2, ss.State))
	}

	// --- LFO bank ---
	var oscillators []*lfo.Oscillator
	for _, ls := range desc.LFOs {
		oscillators = append(oscillators, lfo.New(ls.Name, ls.Rate, ls.Shape))
	}
	c.LFOBank = lfo.NewBank(oscillators)

	// --- delays (branch-defining) ---
	for _, dl := range desc.Delays {
		inIdx, outIdx := nodes.index(dl.InputNode), nodes.index(dl.OutputNode)
		eff := device.NewInCircuitDelay(dl.Name, inIdx, outIdx, branch, nil)
		branch++
		edges = append(edges, [2]int{inIdx, outIdx})
		c.Devices = append(c.Devices, eff)
		c.Effects = append(c.Effects, effectBinding{inputNode: inIdx, prepare: eff.Prepare})
		c.pendingDelays = append(c.pendingDelays, pendingDelay{spec: dl, dev: eff})
	}

	// --- reverbs (branch-defining) ---
	for _, rv := range desc.Reverbs {
		if err := digital.ValidateParams(digital.Params{Size: rv.Size, Decay: rv.Decay, Damping: rv.Damping, Mix: rv.Mix, Predelay: rv.Predelay}); err != nil {
			return nil, &BuildError{Kind: InvalidParameter, Name: rv.Name, Reason: err.Error()}
		}
		inIdx, outIdx := nodes.index(rv.InputNode), nodes.index(rv.OutputNode)
		eff := device.NewInCircuitReverb(rv.Name, inIdx, outIdx, branch, nil)
		branch++
		edges = append(edges, [2]int{inIdx, outIdx})
		c.Devices = append(c.Devices, eff)
		c.Effects = append(c.Effects, effectBinding{inputNode: inIdx, prepare: eff.Prepare})
		c.pendingReverbs = append(c.pendingReverbs, pendingReverb{spec: rv, dev: eff})
	}

	c.N = len(nodes.ids)
	c.M = branch
	c.Dim = c.N + c.M
	for name, id := range nodes.ids {
		c.NodeIndex[name] = id
	}
	c.NodeIndex["0"] = 0
	c.NodeIndex["GND"] = 0

	// Branch-defining devices were assigned 0-based ordinals as they were
	// built, colliding with the node rows they share the matrix with.
	// In the unknowns vector x = [node voltages (N); branch currents (M)]
	// a branch's true row is N+ordinal, so every such device's Branch
	// field is offset here, once N is known.
	for _, l := range c.Inductors {
		l.Branch += c.N
	}
	for _, v := range vSources {
		v.Branch += c.N
	}
	for _, op := range opAmps {
		op.Branch += c.N
	}
	for _, pd := range c.pendingDelays {
		pd.dev.Branch += c.N
	}
	for _, pr := range c.pendingReverbs {
		pr.dev.Branch += c.N
	}

	if _, ok := c.NodeIndex[desc.InputNode]; !ok {
		return nil, &BuildError{Kind: MissingInputOrOutput}
	}
	outputIdx, ok := c.NodeIndex[desc.OutputNode]
	if !ok {
		return nil, &BuildError{Kind: MissingInputOrOutput}
	}
	c.OutputNodeIdx = rowOf(outputIdx)

	// V_IN must have one terminal at the input node.
	if !vinHasTerminal(desc, desc.InputNode) {
		return nil, &BuildError{Kind: MissingVIn}
	}

	if name, ok := floatingNode(edges, nodes.order); ok {
		return nil, &BuildError{Kind: FloatingNode, Name: name}
	}

	return c, nil
}

// floatingNode reports the name of the first node (by assignment order)
// with no conductive path to ground, if any. names[row] is the node
// name assigned to matrix row row.
func floatingNode(edges [][2]int, names []string) (string, bool) {
	n := len(names)
	reachable := make([]bool, n)
	adj := make([][]int, n)
	for _, e := range edges {
		a, b := e[0], e[1]
		if a >= 0 && b >= 0 {
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		} else if a >= 0 {
			reachable[a] = true
		} else if b >= 0 {
			reachable[b] = true
		}
	}
	var stack []int
	for i, r := range reachable {
		if r {
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adj[top] {
			if !reachable[next] {
				reachable[next] = true
				stack = append(stack, next)
			}
		}
	}
	for i, r := range reachable {
		if !r {
			return names[i], true
		}
	}
	return "", false
}

// rowOf converts a 1-based node id (0 meaning ground) into the matrix
// row convention used by device.Stamper (device.Ground for ground).
func rowOf(id int) int {
	if id == 0 {
		return device.Ground
	}
	return id - 1
}

func findLFOSpec(specs []LFOSpec, name string) *LFOSpec {
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i]
		}
	}
	return nil
}

// vinHasTerminal reports whether either of V_IN's declared node names is
// the non-ground node, for the "one of its terminals is the input node"
// check.
func vinHasTerminal(desc *Description, node string) bool {
	for _, vs := range desc.VSources {
		if vs.Name == "V_IN" {
			return !isGround(node) && (vs.N1 == node || vs.N2 == node)
		}
	}
	return false
}
