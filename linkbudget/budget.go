// Package linkbudget provides the closed-form RF budget calculations for the
// satellite downlink: free-space path loss, received power, simplified
// atmospheric excess losses, and LoRa airtime/sensitivity figures. Nothing
// here shares state with the waveform pipeline; every function is a pure
// computation over physical parameters.
package linkbudget

import (
	"fmt"
	"math"
)

// speedOfLightMS is the speed of light in metres per second.
const speedOfLightMS = 299792458.0

// defaultSensitivityDBm is a conservative LoRa receiver floor, roughly
// SF12 at 125 kHz with a 6 dB noise figure:
// -174 + 10*log10(125000) + 6 - 20 ≈ -137 dBm.
const defaultSensitivityDBm = -137.0

// Params are the physical inputs to the link budget.
type Params struct {
	// FrequencyHz is the carrier frequency.
	FrequencyHz float64
	// DistanceM is the slant range from transmitter to receiver in metres.
	DistanceM float64
	// TxPowerDBm is the transmit power.
	TxPowerDBm float64
	// TxGainDBi and RxGainDBi are the antenna gains.
	TxGainDBi float64
	RxGainDBi float64
	// SensitivityDBm is the receiver sensitivity used for the margin. If left
	// as zero, a conservative LoRa SF12 default is used.
	SensitivityDBm float64
	// ExcessLossDB is any additional loss (atmospheric, polarization, etc.)
	// on top of free-space path loss. Optional.
	ExcessLossDB float64
}

// Report is the computed budget.
type Report struct {
	FSPLdB           float64
	ReceivedPowerDBm float64
	SensitivityDBm   float64
	MarginDB         float64
}

// Compute evaluates the link budget. FSPL follows 20*log10(4*pi*d/lambda).
func Compute(p Params) (Report, error) {
	if p.FrequencyHz <= 0 {
		return Report{}, fmt.Errorf("linkbudget: frequency must be positive, got %g Hz", p.FrequencyHz)
	}
	if p.DistanceM <= 0 {
		return Report{}, fmt.Errorf("linkbudget: distance must be positive, got %g m", p.DistanceM)
	}
	if p.ExcessLossDB < 0 {
		return Report{}, fmt.Errorf("linkbudget: excess loss must be non-negative, got %g dB", p.ExcessLossDB)
	}

	lambda := speedOfLightMS / p.FrequencyHz
	fspl := 20 * math.Log10(4*math.Pi*p.DistanceM/lambda)

	pr := p.TxPowerDBm + p.TxGainDBi + p.RxGainDBi - fspl - p.ExcessLossDB

	sens := p.SensitivityDBm
	if sens == 0 {
		sens = defaultSensitivityDBm
	}

	return Report{
		FSPLdB:           fspl,
		ReceivedPowerDBm: pr,
		SensitivityDBm:   sens,
		MarginDB:         pr - sens,
	}, nil
}
