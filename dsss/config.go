package dsss

import (
	"fmt"
	"math"
)

// Config describes one full BER sweep run. Validation is strict: a config
// that would silently truncate or round (e.g. a chip rate that is not an
// integer multiple of the bit rate) is rejected before any simulation work.
type Config struct {
	// BitRateHz is the data bit rate.
	BitRateHz float64
	// ChipRateHz is the spreading chip rate. It must divide evenly by
	// BitRateHz into a positive integer processing gain.
	ChipRateHz float64
	// PacketSizeBits is the number of data bits per packet.
	PacketSizeBits int
	// PacketCount is the number of packets per SNR point.
	PacketCount int
	// SNRSweepDB are the target SNR values, ordered strictly ascending.
	SNRSweepDB []float64
	// PathLossDB and DopplerMaxHz parameterize the channel (see ChannelParams).
	PathLossDB   float64
	DopplerMaxHz float64
	// Seed is the root seed for data generation and per-point noise sources.
	Seed int64
	// Workers bounds the number of SNR points simulated concurrently.
	// 0 means one worker per SNR point.
	Workers int
}

// ProcessingGain returns the number of PN chips per data bit. It assumes the
// config has passed Validate.
func (c *Config) ProcessingGain() int {
	return int(math.Round(c.ChipRateHz / c.BitRateHz))
}

// Validate checks the config and returns the first problem found.
func (c *Config) Validate() error {
	if c.BitRateHz <= 0 {
		return fmt.Errorf("config: bit rate must be positive, got %g", c.BitRateHz)
	}
	if c.ChipRateHz <= 0 {
		return fmt.Errorf("config: chip rate must be positive, got %g", c.ChipRateHz)
	}
	ratio := c.ChipRateHz / c.BitRateHz
	gain := math.Round(ratio)
	if gain < 1 || math.Abs(ratio-gain) > 1e-9 {
		return fmt.Errorf("config: chip rate %g does not divide evenly by bit rate %g into a positive integer processing gain",
			c.ChipRateHz, c.BitRateHz)
	}
	if c.PacketSizeBits < 1 {
		return fmt.Errorf("config: packet size must be >= 1 bit, got %d", c.PacketSizeBits)
	}
	if c.PacketCount < 1 {
		return fmt.Errorf("config: packet count must be >= 1, got %d", c.PacketCount)
	}
	if len(c.SNRSweepDB) == 0 {
		return fmt.Errorf("config: SNR sweep must not be empty")
	}
	for i := 1; i < len(c.SNRSweepDB); i++ {
		if c.SNRSweepDB[i] <= c.SNRSweepDB[i-1] {
			return fmt.Errorf("config: SNR sweep must be strictly ascending, got %g after %g",
				c.SNRSweepDB[i], c.SNRSweepDB[i-1])
		}
	}
	if c.PathLossDB < 0 {
		return fmt.Errorf("config: path loss must be non-negative, got %g dB", c.PathLossDB)
	}
	if c.DopplerMaxHz < 0 {
		return fmt.Errorf("config: Doppler maximum must be non-negative, got %g Hz", c.DopplerMaxHz)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must be non-negative, got %d", c.Workers)
	}
	return nil
}
