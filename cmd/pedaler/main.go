// Command pedaler streams raw float32 PCM through a circuit description,
// per §6.1.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/petereon/pedaler-core/pkg/circuit"
	"github.com/petereon/pedaler-core/pkg/dsl"
	"github.com/petereon/pedaler-core/pkg/simulator"
)

const version = "0.1.0"

const blockSize = 1024

func main() {
	os.Exit(run())
}

func run() int {
	var (
		sampleRate    = flag.Float64("sample-rate", 48000, "sample rate in Hz")
		maxIterations = flag.Int("max-iterations", 50, "Newton-Raphson iteration cap")
		tolerance     = flag.Float64("tolerance", 1e-4, "Newton-Raphson convergence tolerance, volts")
		showVersion   = flag.Bool("version", false, "print version and exit")
	)
	flag.Float64Var(sampleRate, "s", 48000, "sample rate in Hz (shorthand)")
	flag.IntVar(maxIterations, "i", 50, "Newton-Raphson iteration cap (shorthand)")
	flag.Float64Var(tolerance, "t", 1e-4, "Newton-Raphson convergence tolerance, volts (shorthand)")
	flag.BoolVar(showVersion, "V", false, "print version and exit (shorthand)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <circuit-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println("pedaler", version)
		return 0
	}
	if flag.NArg() != 1 {
		flag.Usage()
		return 1
	}

	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Printf("reading circuit file: %v", err)
		return 2
	}

	desc, err := dsl.Parse(string(content))
	if err != nil {
		log.Printf("parsing circuit: %v", err)
		return 1
	}

	ckt, err := circuit.Build(desc)
	if err != nil {
		log.Printf("building circuit: %v", err)
		return 1
	}

	cfg := simulator.DefaultConfig().WithMaxIterations(*maxIterations).WithTolerance(*tolerance)
	sim, err := simulator.WithConfig(ckt, *sampleRate, cfg)
	if err != nil {
		log.Printf("starting simulator: %v", err)
		return 1
	}

	if err := stream(sim, os.Stdin, os.Stdout); err != nil {
		log.Printf("streaming: %v", err)
		return 2
	}
	return 0
}

// stream reads little-endian float32 samples from r in fixed-size
// blocks, feeds them through sim, and writes the results to w in the
// same format. No allocation occurs once the two blockSize buffers below
// are created.
func stream(sim *simulator.Simulator, r io.Reader, w io.Writer) error {
	raw := make([]byte, blockSize*4)
	samples := make([]float32, blockSize)

	for {
		n, err := io.ReadFull(r, raw)
		if n == 0 {
			if err == io.EOF {
				return nil
			}
			if err != nil && err != io.ErrUnexpectedEOF {
				return err
			}
		}

		full := n / 4
		for i := 0; i < full; i++ {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			samples[i] = math.Float32frombits(bits)
		}

		for i := 0; i < full; i++ {
			sim.SetInput(samples[i])
			out := sim.Step()
			binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(out))
		}

		if _, werr := w.Write(raw[:full*4]); werr != nil {
			return werr
		}

		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
