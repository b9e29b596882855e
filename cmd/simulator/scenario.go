package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/lorasat-simulator/dsss"
	"github.com/signalsfoundry/lorasat-simulator/linkbudget"
	"github.com/signalsfoundry/lorasat-simulator/orbit"
)

// Scenario is everything one simulator invocation needs: the waveform sweep
// config, the link-budget inputs, and the target BER for the crossing report.
type Scenario struct {
	Waveform  dsss.Config
	Budget    linkbudget.Params
	TargetBER float64
}

// Internal JSON shapes, kept unexported so the file format can evolve
// without touching the public Scenario type.
type scenarioJSON struct {
	Waveform   waveformJSON    `json:"waveform"`
	LinkBudget *linkBudgetJSON `json:"link_budget"`
	TargetBER  float64         `json:"target_ber"`
}

type waveformJSON struct {
	BitRateHz      float64   `json:"bit_rate_hz"`
	ChipRateHz     float64   `json:"chip_rate_hz"`
	PacketSizeBits int       `json:"packet_size_bits"`
	PacketCount    int       `json:"packet_count"`
	SNRSweepDB     []float64 `json:"snr_sweep_db"`
	PathLossDB     float64   `json:"path_loss_db"`
	DopplerMaxHz   float64   `json:"doppler_max_hz"`
}

type linkBudgetJSON struct {
	FrequencyHz  float64 `json:"frequency_hz"`
	AltitudeKm   float64 `json:"altitude_km"`
	ElevationDeg float64 `json:"elevation_deg"`
	TxPowerDBm   float64 `json:"tx_power_dbm"`
	TxGainDBi    float64 `json:"tx_gain_dbi"`
	RxGainDBi    float64 `json:"rx_gain_dbi"`
	// RainRateMMH feeds the simplified atmospheric excess-loss terms.
	RainRateMMH float64 `json:"rain_rate_mmh"`
}

// LoadScenario reads a JSON scenario from r, validates the waveform config
// fail-fast, and resolves the link-budget slant range from altitude and
// elevation. Structural or validation problems abort the load; nothing is
// silently defaulted except the optional link_budget section.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	sc := &Scenario{
		Waveform: dsss.Config{
			BitRateHz:      payload.Waveform.BitRateHz,
			ChipRateHz:     payload.Waveform.ChipRateHz,
			PacketSizeBits: payload.Waveform.PacketSizeBits,
			PacketCount:    payload.Waveform.PacketCount,
			SNRSweepDB:     payload.Waveform.SNRSweepDB,
			PathLossDB:     payload.Waveform.PathLossDB,
			DopplerMaxHz:   payload.Waveform.DopplerMaxHz,
		},
		TargetBER: payload.TargetBER,
	}
	if err := sc.Waveform.Validate(); err != nil {
		return nil, fmt.Errorf("LoadScenario: %w", err)
	}
	if sc.TargetBER < 0 {
		return nil, fmt.Errorf("LoadScenario: target BER must be non-negative, got %g", sc.TargetBER)
	}

	if payload.LinkBudget != nil {
		lb := payload.LinkBudget
		rangeKm, err := orbit.SlantRangeKm(lb.ElevationDeg, lb.AltitudeKm)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}

		atmosphere := linkbudget.NewAtmosphere(linkbudget.CoefficientsSubGHz)
		excess, err := atmosphere.TotalExcessLossDB(lb.RainRateMMH, lb.ElevationDeg)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}

		sc.Budget = linkbudget.Params{
			FrequencyHz:  lb.FrequencyHz,
			DistanceM:    rangeKm * 1000,
			TxPowerDBm:   lb.TxPowerDBm,
			TxGainDBi:    lb.TxGainDBi,
			RxGainDBi:    lb.RxGainDBi,
			ExcessLossDB: excess,
		}
	}

	return sc, nil
}
