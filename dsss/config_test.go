package dsss

import "testing"

func validConfig() Config {
	return Config{
		BitRateHz:      1000,
		ChipRateHz:     100000,
		PacketSizeBits: 64,
		PacketCount:    10,
		SNRSweepDB:     []float64{-15, -5, 5},
		PathLossDB:     20,
		DopplerMaxHz:   100,
		Seed:           1,
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"valid gain one", func(c *Config) { c.ChipRateHz = c.BitRateHz }, false},
		{"zero bit rate", func(c *Config) { c.BitRateHz = 0 }, true},
		{"negative chip rate", func(c *Config) { c.ChipRateHz = -1 }, true},
		{"fractional gain", func(c *Config) { c.ChipRateHz = 1500 }, true},
		{"gain below one", func(c *Config) { c.ChipRateHz = 500 }, true},
		{"zero packet size", func(c *Config) { c.PacketSizeBits = 0 }, true},
		{"zero packet count", func(c *Config) { c.PacketCount = 0 }, true},
		{"empty sweep", func(c *Config) { c.SNRSweepDB = nil }, true},
		{"unsorted sweep", func(c *Config) { c.SNRSweepDB = []float64{-5, -15, 5} }, true},
		{"duplicate sweep point", func(c *Config) { c.SNRSweepDB = []float64{-5, -5} }, true},
		{"negative path loss", func(c *Config) { c.PathLossDB = -1 }, true},
		{"negative doppler", func(c *Config) { c.DopplerMaxHz = -1 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("Validate accepted an invalid config")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate rejected a valid config: %v", err)
			}
		})
	}
}

func TestProcessingGain(t *testing.T) {
	cfg := validConfig()
	if g := cfg.ProcessingGain(); g != 100 {
		t.Errorf("ProcessingGain() = %d, want 100", g)
	}
	cfg.ChipRateHz = cfg.BitRateHz
	if g := cfg.ProcessingGain(); g != 1 {
		t.Errorf("ProcessingGain() = %d, want 1", g)
	}
}
