package linkbudget

import (
	"fmt"
	"math"
	"time"
)

// SpreadingFactor is a LoRa spreading factor, SF7 through SF12.
type SpreadingFactor int

const (
	SF7 SpreadingFactor = iota + 7
	SF8
	SF9
	SF10
	SF11
	SF12
)

// snrLimitDB is the demodulation SNR limit per spreading factor from the
// SX127x datasheet.
var snrLimitDB = map[SpreadingFactor]float64{
	SF7:  -7.5,
	SF8:  -10.0,
	SF9:  -12.5,
	SF10: -15.0,
	SF11: -17.5,
	SF12: -20.0,
}

// Sensitivity returns the theoretical receiver sensitivity in dBm:
// -174 + 10*log10(BW) + NF + SNRlimit(SF).
func Sensitivity(sf SpreadingFactor, bandwidthHz, noiseFigureDB float64) (float64, error) {
	limit, ok := snrLimitDB[sf]
	if !ok {
		return 0, fmt.Errorf("airtime: unsupported spreading factor %d", sf)
	}
	if bandwidthHz <= 0 {
		return 0, fmt.Errorf("airtime: bandwidth must be positive, got %g Hz", bandwidthHz)
	}
	return -174 + 10*math.Log10(bandwidthHz) + noiseFigureDB + limit, nil
}

// AirtimeParams describe one LoRa transmission for the Time-on-Air formula.
type AirtimeParams struct {
	SF              SpreadingFactor
	BandwidthHz     float64
	PayloadBytes    int
	PreambleSymbols int
	// CodingRate is the denominator offset of the 4/(4+CR) coding rate,
	// 1 through 4 (i.e. 4/5 through 4/8).
	CodingRate     int
	CRC            bool
	ExplicitHeader bool
	// LowDataRateOptimize must be set when the symbol duration exceeds
	// 16 ms (SF11/SF12 at 125 kHz).
	LowDataRateOptimize bool
}

// TimeOnAir evaluates the SX127x Time-on-Air closed form (datasheet
// section 4.1.1.7) for one packet.
func TimeOnAir(p AirtimeParams) (time.Duration, error) {
	if _, ok := snrLimitDB[p.SF]; !ok {
		return 0, fmt.Errorf("airtime: unsupported spreading factor %d", p.SF)
	}
	if p.BandwidthHz <= 0 {
		return 0, fmt.Errorf("airtime: bandwidth must be positive, got %g Hz", p.BandwidthHz)
	}
	if p.PayloadBytes < 0 {
		return 0, fmt.Errorf("airtime: payload length must be non-negative, got %d", p.PayloadBytes)
	}
	if p.CodingRate < 1 || p.CodingRate > 4 {
		return 0, fmt.Errorf("airtime: coding rate must be 1..4, got %d", p.CodingRate)
	}
	if p.PreambleSymbols < 0 {
		return 0, fmt.Errorf("airtime: preamble length must be non-negative, got %d", p.PreambleSymbols)
	}

	sf := float64(p.SF)
	symbolSec := math.Exp2(sf) / p.BandwidthHz

	crc := 0.0
	if p.CRC {
		crc = 1
	}
	ih := 0.0
	if !p.ExplicitHeader {
		ih = 1
	}
	de := 0.0
	if p.LowDataRateOptimize {
		de = 1
	}

	num := 8*float64(p.PayloadBytes) - 4*sf + 28 + 16*crc - 20*ih
	den := 4 * (sf - 2*de)
	payloadSymbols := 8.0
	if num > 0 {
		payloadSymbols += math.Ceil(num/den) * float64(p.CodingRate+4)
	}

	preambleSymbols := float64(p.PreambleSymbols) + 4.25
	totalSec := (preambleSymbols + payloadSymbols) * symbolSec
	return time.Duration(totalSec * float64(time.Second)), nil
}
