package dsss

// Gold-code-like pseudo-noise generation from two fixed 5-stage LFSRs.
// The combined sequence spreads every packet of a run, and the despreader
// regenerates the exact same chips, so everything here must be fully
// deterministic: fixed seeds, fixed taps, no runtime configuration.

// registerLength is the fixed number of stages in each shift register.
const registerLength = 5

// Feedback tap positions, 1-indexed with position 1 at the front of the
// register (where the feedback bit is inserted).
var (
	register1Taps = []int{1, 3}
	register2Taps = []int{1, 2, 3, 5}
)

// pnSeed is the initial state shared by both registers.
var pnSeed = [registerLength]uint8{1, 0, 0, 0, 0}

// lfsr is a linear-feedback shift register with a fixed tap set. The state
// is an explicit value so generators can be copied and replayed freely.
type lfsr struct {
	state [registerLength]uint8
	taps  []int
}

// step emits the register's output bit (the last position, before any
// update), then shifts the register right by one and inserts the feedback
// bit at the front.
func (r *lfsr) step() uint8 {
	out := r.state[registerLength-1]
	var fb uint8
	for _, t := range r.taps {
		fb ^= r.state[t-1]
	}
	for i := registerLength - 1; i > 0; i-- {
		r.state[i] = r.state[i-1]
	}
	r.state[0] = fb
	return out
}

// PNGenerator combines two LFSR output streams by exclusive-or into the
// spreading sequence. Two generators constructed at the same time always
// produce bit-identical output.
type PNGenerator struct {
	reg1 lfsr
	reg2 lfsr
}

// NewPNGenerator returns a generator at the fixed initial state.
func NewPNGenerator() *PNGenerator {
	return &PNGenerator{
		reg1: lfsr{state: pnSeed, taps: register1Taps},
		reg2: lfsr{state: pnSeed, taps: register2Taps},
	}
}

// Next returns the next chip of the combined sequence.
func (g *PNGenerator) Next() uint8 {
	return g.reg1.step() ^ g.reg2.step()
}

// Sequence generates the next n chips in order.
func (g *PNGenerator) Sequence(n int) []uint8 {
	seq := make([]uint8, n)
	for i := range seq {
		seq[i] = g.Next()
	}
	return seq
}

// ChipAt returns chip i of the sequence by fast-forwarding a fresh generator
// from the fixed initial state. It equals Sequence(i+1)[i] from a new
// generator, which lets callers regenerate an arbitrary slice without
// retaining the full run-length sequence.
func ChipAt(i int) uint8 {
	g := NewPNGenerator()
	for k := 0; k < i; k++ {
		g.reg1.step()
		g.reg2.step()
	}
	return g.Next()
}
