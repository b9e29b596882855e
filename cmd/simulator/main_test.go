package main

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/signalsfoundry/lorasat-simulator/dsss"
)

const sampleScenario = `{
  "waveform": {
    "bit_rate_hz": 1000,
    "chip_rate_hz": 100000,
    "packet_size_bits": 64,
    "packet_count": 10,
    "snr_sweep_db": [-15, -5, 5],
    "path_loss_db": 20,
    "doppler_max_hz": 100
  },
  "link_budget": {
    "frequency_hz": 923000000,
    "altitude_km": 600,
    "elevation_deg": 90,
    "tx_power_dbm": 27,
    "tx_gain_dbi": 2,
    "rx_gain_dbi": 3,
    "rain_rate_mmh": 5
  },
  "target_ber": 0.001
}`

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(sampleScenario))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	if sc.Waveform.ProcessingGain() != 100 {
		t.Errorf("processing gain = %d, want 100", sc.Waveform.ProcessingGain())
	}
	if len(sc.Waveform.SNRSweepDB) != 3 {
		t.Errorf("sweep has %d points, want 3", len(sc.Waveform.SNRSweepDB))
	}
	if sc.TargetBER != 0.001 {
		t.Errorf("target BER = %g, want 0.001", sc.TargetBER)
	}

	// At 90 degrees elevation the slant range is exactly the altitude.
	if math.Abs(sc.Budget.DistanceM-600000) > 1e-6 {
		t.Errorf("distance = %g m, want 600000", sc.Budget.DistanceM)
	}
	if sc.Budget.FrequencyHz != 923e6 {
		t.Errorf("frequency = %g Hz, want 923 MHz", sc.Budget.FrequencyHz)
	}
	if sc.Budget.ExcessLossDB <= 0 {
		t.Errorf("excess loss = %g dB, want a positive atmospheric allowance", sc.Budget.ExcessLossDB)
	}
}

func TestLoadScenarioRejectsInvalidWaveform(t *testing.T) {
	const badGain = `{
  "waveform": {
    "bit_rate_hz": 1000,
    "chip_rate_hz": 1500,
    "packet_size_bits": 64,
    "packet_count": 10,
    "snr_sweep_db": [-15]
  }
}`
	if _, err := LoadScenario(strings.NewReader(badGain)); err == nil {
		t.Fatal("LoadScenario accepted a fractional processing gain")
	}

	if _, err := LoadScenario(strings.NewReader("{not json")); err == nil {
		t.Fatal("LoadScenario accepted malformed JSON")
	}

	const badTarget = `{
  "waveform": {
    "bit_rate_hz": 1000,
    "chip_rate_hz": 100000,
    "packet_size_bits": 64,
    "packet_count": 10,
    "snr_sweep_db": [-15]
  },
  "target_ber": -1
}`
	if _, err := LoadScenario(strings.NewReader(badTarget)); err == nil {
		t.Fatal("LoadScenario accepted a negative target BER")
	}
}

func TestLoadScenarioWithoutLinkBudget(t *testing.T) {
	const waveformOnly = `{
  "waveform": {
    "bit_rate_hz": 1000,
    "chip_rate_hz": 100000,
    "packet_size_bits": 64,
    "packet_count": 10,
    "snr_sweep_db": [-15, -5]
  }
}`
	sc, err := LoadScenario(strings.NewReader(waveformOnly))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Budget.FrequencyHz != 0 {
		t.Errorf("link budget should stay zero when the section is absent, got frequency %g", sc.Budget.FrequencyHz)
	}
}

// TestIntegration_ScenarioSweep runs the loaded scenario end to end and
// checks that the BER curve falls toward high SNR and crosses the configured
// target within the sweep.
func TestIntegration_ScenarioSweep(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(sampleScenario))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	sc.Waveform.Seed = 1

	engine, err := dsss.NewEngine(sc.Waveform)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	first := result.Points[0]
	last := result.Points[len(result.Points)-1]
	if first.BER <= last.BER {
		t.Errorf("BER did not fall across the sweep: %g at %g dB vs %g at %g dB",
			first.BER, first.SNRdB, last.BER, last.SNRdB)
	}

	snr, ok := result.CrossingSNRdB(sc.TargetBER)
	if !ok {
		t.Fatal("sweep never crossed the target BER")
	}
	if snr < first.SNRdB || snr > last.SNRdB {
		t.Errorf("crossing %g dB lies outside the sweep [%g, %g]", snr, first.SNRdB, last.SNRdB)
	}
}
