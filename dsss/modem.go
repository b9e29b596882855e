package dsss

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// antipodal maps a bit to its BPSK symbol: 0 -> -1.0, 1 -> +1.0.
func antipodal(b uint8) float64 {
	return 2.0*float64(b) - 1.0
}

// Spread maps data bits to antipodal BPSK symbols and multiplies each symbol
// against the antipodal mapping of its gain-length block of PN chips. The
// output has gain chips per input bit, in order. The transform is pure; it
// fails only on malformed input.
func Spread(bits, pn []uint8, gain int) ([]float64, error) {
	if gain < 1 {
		return nil, fmt.Errorf("spread: processing gain must be >= 1, got %d", gain)
	}
	if len(pn) != gain*len(bits) {
		return nil, fmt.Errorf("spread: PN slice length %d does not match %d bits at gain %d",
			len(pn), len(bits), gain)
	}
	chips := make([]float64, 0, len(pn))
	for i, b := range bits {
		if b > 1 {
			return nil, fmt.Errorf("spread: data bit %d has non-binary value %d", i, b)
		}
		sym := antipodal(b)
		for _, c := range pn[i*gain : (i+1)*gain] {
			if c > 1 {
				return nil, fmt.Errorf("spread: PN chip has non-binary value %d", c)
			}
			chips = append(chips, sym*antipodal(c))
		}
	}
	return chips, nil
}

// Despread correlates each received block of gain chips against the antipodal
// mapping of the matching PN block and decides bit = 1 when the normalized
// correlation is strictly positive.
//
// The PN slice must be the identical chip-index range used to spread this
// packet. A misaligned slice does not fail loudly; it decorrelates the signal
// and shows up as a near-50% bit error rate, so callers own the alignment.
func Despread(chips []float64, pn []uint8, gain int) ([]uint8, error) {
	if gain < 1 {
		return nil, fmt.Errorf("despread: processing gain must be >= 1, got %d", gain)
	}
	if len(chips)%gain != 0 {
		return nil, fmt.Errorf("despread: chip count %d is not a multiple of gain %d", len(chips), gain)
	}
	if len(pn) != len(chips) {
		return nil, fmt.Errorf("despread: PN slice length %d does not match %d chips", len(pn), len(chips))
	}

	nbits := len(chips) / gain
	bits := make([]uint8, nbits)
	ref := make([]float64, gain)
	for i := 0; i < nbits; i++ {
		block := pn[i*gain : (i+1)*gain]
		for j, c := range block {
			if c > 1 {
				return nil, fmt.Errorf("despread: PN chip has non-binary value %d", c)
			}
			ref[j] = antipodal(c)
		}
		corr := floats.Dot(chips[i*gain:(i+1)*gain], ref) / float64(gain)
		if corr > 0 {
			bits[i] = 1
		}
	}
	return bits, nil
}
