package dsss

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// dopplerSweepRateHz is the rate of the slow sinusoidal Doppler sweep that
// stands in for satellite motion. It is not a real orbital Doppler curve.
const dopplerSweepRateHz = 0.01

// ChannelParams configures the satellite channel for a run. The parameters
// are fixed at construction; per-packet noise and Doppler trajectories are
// recomputed on every Apply call and never cached.
type ChannelParams struct {
	// PathLossDB attenuates every chip by 10^(-PathLossDB/10). This is a
	// simplified linear scaling, not electromagnetic propagation.
	PathLossDB float64
	// DopplerMaxHz is the peak of the oscillating Doppler frequency.
	DopplerMaxHz float64
	// ChipRateHz defines the per-chip time axis.
	ChipRateHz float64
}

// Channel applies path loss, a time-varying Doppler rotation, and
// SNR-calibrated additive Gaussian noise to one packet's chip sequence.
type Channel struct {
	params ChannelParams
	rng    *rand.Rand
}

// NewChannel validates the parameters and binds the channel to an explicit
// random source. The source is the only nondeterministic input; everything
// else is replayable.
func NewChannel(params ChannelParams, rng *rand.Rand) (*Channel, error) {
	if params.ChipRateHz <= 0 {
		return nil, fmt.Errorf("channel: chip rate must be positive, got %g", params.ChipRateHz)
	}
	if params.PathLossDB < 0 {
		return nil, fmt.Errorf("channel: path loss must be non-negative, got %g dB", params.PathLossDB)
	}
	if params.DopplerMaxHz < 0 {
		return nil, fmt.Errorf("channel: Doppler maximum must be non-negative, got %g Hz", params.DopplerMaxHz)
	}
	if rng == nil {
		return nil, fmt.Errorf("channel: an explicit random source is required")
	}
	return &Channel{params: params, rng: rng}, nil
}

// Apply runs one packet's spread chips through the three channel stages in
// order and returns a new slice of the same length. The input is not
// mutated.
//
// The Doppler stage multiplies by the real part of the complex rotation
// exp(i*2*pi*phase/chipRate). Taking only the real part amplitude-modulates
// the signal with a cosine instead of rotating a complex baseband; the
// behavior is preserved as-is for output compatibility with the original
// channel model. A complex-baseband reimplementation should carry the full
// rotation instead.
func (c *Channel) Apply(chips []float64, snrDB float64) ([]float64, error) {
	if len(chips) == 0 {
		return nil, fmt.Errorf("channel: empty chip sequence")
	}

	// Stage 1: linear path-loss scaling.
	att := math.Pow(10, -c.params.PathLossDB/10)
	out := make([]float64, len(chips))
	for i, v := range chips {
		out[i] = v * att
	}

	// Stage 2: oscillating Doppler frequency, integrated into phase over the
	// chip-time axis.
	phase := make([]float64, len(chips))
	for i := range phase {
		t := float64(i) / c.params.ChipRateHz
		phase[i] = c.params.DopplerMaxHz * math.Sin(2*math.Pi*dopplerSweepRateHz*t)
	}
	floats.CumSum(phase, phase)
	for i := range out {
		out[i] *= math.Cos(2 * math.Pi * phase[i] / c.params.ChipRateHz)
	}

	// Stage 3: Gaussian noise calibrated so that the Doppler-affected signal
	// sits at the target SNR.
	sigPowerDB, err := meanPowerDB(out)
	if err != nil {
		return nil, err
	}
	noiseVar := math.Pow(10, (sigPowerDB-snrDB)/10)
	sigma := math.Sqrt(noiseVar)
	for i := range out {
		out[i] += c.rng.NormFloat64() * sigma
	}
	return out, nil
}

// meanPowerDB converts the mean squared amplitude of sig to a dB-equivalent
// power figure. A degenerate (zero) signal is reported as an error rather
// than propagating -Inf into the noise calibration.
func meanPowerDB(sig []float64) (float64, error) {
	p := floats.Dot(sig, sig) / float64(len(sig))
	if p <= 0 {
		return 0, fmt.Errorf("channel: degenerate signal power %g before noise calibration", p)
	}
	return 10 * math.Log10(p), nil
}
