package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SweepCollector bundles Prometheus metrics for the BER sweep engine and
// provides a ready-to-serve /metrics handler. All observation methods are
// safe on a nil receiver so callers can run unmetered.
type SweepCollector struct {
	gatherer prometheus.Gatherer

	PacketsSimulated prometheus.Counter
	BitsSimulated    prometheus.Counter
	BitErrors        prometheus.Counter
	PointBER         *prometheus.GaugeVec
	PointDuration    prometheus.Histogram
}

// NewSweepCollector registers sweep metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewSweepCollector(reg prometheus.Registerer) (*SweepCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	packets, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_packets_simulated_total",
		Help: "Total number of packets pushed through the spread/channel/despread pipeline.",
	}), "sweep_packets_simulated_total")
	if err != nil {
		return nil, err
	}
	bits, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_bits_simulated_total",
		Help: "Total number of data bits compared against ground truth.",
	}), "sweep_bits_simulated_total")
	if err != nil {
		return nil, err
	}
	bitErrors, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_bit_errors_total",
		Help: "Total number of demodulated bits that differed from ground truth.",
	}), "sweep_bit_errors_total")
	if err != nil {
		return nil, err
	}

	ber := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sweep_point_ber",
		Help: "Latest finalized bit error rate, labeled by the SNR point in dB.",
	}, []string{"snr_db"})
	ber, err = registerGaugeVec(reg, ber, "sweep_point_ber")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sweep_point_duration_seconds",
		Help:    "Wall time spent simulating a single SNR point.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}), "sweep_point_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &SweepCollector{
		gatherer:         gatherer,
		PacketsSimulated: packets,
		BitsSimulated:    bits,
		BitErrors:        bitErrors,
		PointBER:         ber,
		PointDuration:    duration,
	}, nil
}

// ObservePacket records the (bits, errors) contribution of one simulated
// packet.
func (c *SweepCollector) ObservePacket(bits, bitErrors int) {
	if c == nil {
		return
	}
	if c.PacketsSimulated != nil {
		c.PacketsSimulated.Inc()
	}
	if c.BitsSimulated != nil {
		c.BitsSimulated.Add(float64(bits))
	}
	if c.BitErrors != nil {
		c.BitErrors.Add(float64(bitErrors))
	}
}

// ObservePoint records the finalized BER and duration of one SNR point.
func (c *SweepCollector) ObservePoint(snrDB, ber float64, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.PointBER != nil {
		c.PointBER.WithLabelValues(formatSNRLabel(snrDB)).Set(ber)
	}
	if c.PointDuration != nil {
		c.PointDuration.Observe(elapsed.Seconds())
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SweepCollector) Handler() http.Handler {
	var gatherer prometheus.Gatherer
	if c != nil {
		gatherer = c.gatherer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// formatSNRLabel renders an SNR value as a stable label, avoiding the
// exponent forms %g would produce for extreme sweeps.
func formatSNRLabel(snrDB float64) string {
	return strconv.FormatFloat(snrDB, 'f', -1, 64)
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
