package dsss

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestNewChannelRejectsBadParams(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		name   string
		params ChannelParams
		rng    *rand.Rand
	}{
		{"zero chip rate", ChannelParams{ChipRateHz: 0}, rng},
		{"negative path loss", ChannelParams{ChipRateHz: 1e6, PathLossDB: -1}, rng},
		{"negative doppler", ChannelParams{ChipRateHz: 1e6, DopplerMaxHz: -5}, rng},
		{"nil rng", ChannelParams{ChipRateHz: 1e6}, nil},
	}
	for _, tc := range cases {
		if _, err := NewChannel(tc.params, tc.rng); err == nil {
			t.Errorf("%s: NewChannel accepted invalid input", tc.name)
		}
	}
}

// TestChannelPathLossOnly drives a channel with no Doppler at a huge SNR so
// the noise contribution is negligible, then checks the pure attenuation
// stage: every output chip must be the input scaled by 10^(-PL/10).
func TestChannelPathLossOnly(t *testing.T) {
	ch, err := NewChannel(ChannelParams{
		PathLossDB: 20,
		ChipRateHz: 1e6,
	}, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}

	in := []float64{1, -1, 1, 1, -1, -1, 1, -1}
	out, err := ch.Apply(in, 150)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	const att = 0.01 // 10^(-20/10)
	for i, v := range out {
		want := in[i] * att
		if math.Abs(v-want) > 1e-6 {
			t.Errorf("chip %d = %g, want %g", i, v, want)
		}
	}
	for i, v := range in {
		if want := []float64{1, -1, 1, 1, -1, -1, 1, -1}[i]; v != want {
			t.Fatalf("Apply mutated its input at chip %d", i)
		}
	}
}

// TestChannelNoiseVariance checks the SNR calibration statistically: for unit
// chips at 0 dB SNR the added noise must have variance 1. Over 100k samples
// the sample variance concentrates well within the 5% tolerance used here.
func TestChannelNoiseVariance(t *testing.T) {
	const n = 100000
	ch, err := NewChannel(ChannelParams{ChipRateHz: 1e6}, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}

	in := make([]float64, n)
	for i := range in {
		in[i] = 1
	}
	out, err := ch.Apply(in, 0)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	noise := make([]float64, n)
	for i, v := range out {
		noise[i] = v - 1
	}
	mean := stat.Mean(noise, nil)
	variance := stat.Variance(noise, nil)

	if math.Abs(mean) > 0.02 {
		t.Errorf("noise mean = %g, want ~0", mean)
	}
	if variance < 0.95 || variance > 1.05 {
		t.Errorf("noise variance = %g, want ~1", variance)
	}
}

// TestChannelDopplerModulation verifies the Doppler stage against a direct
// evaluation of the cumulative-phase cosine at a few sample indices.
func TestChannelDopplerModulation(t *testing.T) {
	const (
		chipRate   = 1000.0
		dopplerMax = 100.0
		n          = 64
	)
	ch, err := NewChannel(ChannelParams{
		DopplerMaxHz: dopplerMax,
		ChipRateHz:   chipRate,
	}, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}

	in := make([]float64, n)
	for i := range in {
		in[i] = 1
	}
	out, err := ch.Apply(in, 200)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	phase := 0.0
	for i := 0; i < n; i++ {
		tSec := float64(i) / chipRate
		phase += dopplerMax * math.Sin(2*math.Pi*dopplerSweepRateHz*tSec)
		want := math.Cos(2 * math.Pi * phase / chipRate)
		if math.Abs(out[i]-want) > 1e-9 {
			t.Fatalf("chip %d = %g, want %g", i, out[i], want)
		}
	}
}

func TestChannelRejectsDegenerateSignal(t *testing.T) {
	ch, err := NewChannel(ChannelParams{ChipRateHz: 1e6}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	if _, err := ch.Apply([]float64{0, 0, 0, 0}, 10); err == nil {
		t.Error("Apply accepted an all-zero signal")
	}
	if _, err := ch.Apply(nil, 10); err == nil {
		t.Error("Apply accepted an empty chip sequence")
	}
}

// TestChannelDeterminism: two channels with the same seed must produce
// identical output for identical input.
func TestChannelDeterminism(t *testing.T) {
	params := ChannelParams{PathLossDB: 3, DopplerMaxHz: 50, ChipRateHz: 1e5}
	in := NewPNGenerator().Sequence(256)
	chips := make([]float64, len(in))
	for i, c := range in {
		chips[i] = antipodal(c)
	}

	a, err := NewChannel(params, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}
	b, err := NewChannel(params, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewChannel: %v", err)
	}

	outA, err := a.Apply(chips, -5)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	outB, err := b.Apply(chips, -5)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i := range outA {
		if outA[i] != outB[i] {
			t.Fatalf("outputs diverge at chip %d: %g vs %g", i, outA[i], outB[i])
		}
	}
}
