package dsss

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/lorasat-simulator/internal/logging"
	"github.com/signalsfoundry/lorasat-simulator/internal/observability"
)

const tracerName = "github.com/signalsfoundry/lorasat-simulator/dsss"

// BERPoint is the finalized error statistic for one SNR value.
type BERPoint struct {
	SNRdB  float64
	Errors int
	Bits   int
	BER    float64
}

// SweepResult holds per-SNR statistics aligned index-for-index with the
// configured SNR sweep.
type SweepResult struct {
	Points []BERPoint
}

// CrossingSNRdB returns the SNR at which the BER curve crosses target,
// found by linear interpolation in log-BER space between the two bracketing
// sweep points. ok is false when the curve never crosses the target; that is
// an ordinary outcome, not an error.
func (r *SweepResult) CrossingSNRdB(target float64) (snrDB float64, ok bool) {
	if target <= 0 {
		return 0, false
	}
	for i := 0; i+1 < len(r.Points); i++ {
		hi := r.Points[i]
		lo := r.Points[i+1]
		if hi.BER < target || lo.BER > target {
			continue
		}
		hiBER := hi.BER
		loBER := lo.BER
		if loBER <= 0 {
			// A zero-error point has no log-BER; substitute the conventional
			// half-count floor so the interpolation stays finite.
			loBER = 0.5 / float64(lo.Bits)
			if loBER >= target {
				continue
			}
		}
		lh := math.Log10(hiBER)
		ll := math.Log10(loBER)
		if lh == ll {
			return hi.SNRdB, true
		}
		frac := (lh - math.Log10(target)) / (lh - ll)
		return hi.SNRdB + frac*(lo.SNRdB-hi.SNRdB), true
	}
	return 0, false
}

// packetStat is the independent (errors, bits) contribution of a single
// (SNR, packet) pair. Reduction sums stats sharing an SNR index.
type packetStat struct {
	errors int
	bits   int
}

// Engine drives the BER sweep: it generates the ground-truth data bits and
// the PN sequence once, then fans the SNR points out over a bounded worker
// pool. Data and PN sequence are read-only during the sweep; each point owns
// an independently seeded random source, so results are reproducible
// regardless of worker scheduling.
type Engine struct {
	cfg     Config
	log     logging.Logger
	metrics *observability.SweepCollector
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics attaches a sweep metrics collector.
func WithMetrics(c *observability.SweepCollector) EngineOption {
	return func(e *Engine) { e.metrics = c }
}

// NewEngine validates the config and constructs an engine. An invalid config
// fails here, before any simulation work begins.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg: cfg,
		log: logging.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes the full sweep and returns one BER point per configured SNR
// value. If any point fails, the whole sweep fails; partial results are
// never reported as complete.
func (e *Engine) Run(ctx context.Context) (*SweepResult, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Sweep/Run", trace.WithAttributes(
		attribute.Int("sweep.snr_points", len(e.cfg.SNRSweepDB)),
		attribute.Int("sweep.packet_count", e.cfg.PacketCount),
		attribute.Int("sweep.packet_size_bits", e.cfg.PacketSizeBits),
		attribute.Int("sweep.processing_gain", e.cfg.ProcessingGain()),
	))
	defer span.End()

	gain := e.cfg.ProcessingGain()
	totalBits := e.cfg.PacketSizeBits * e.cfg.PacketCount

	// Ground-truth data and the PN sequence are generated once up front and
	// held immutable for the rest of the run.
	rootRng := rand.New(rand.NewSource(e.cfg.Seed))
	data := make([]uint8, totalBits)
	for i := range data {
		data[i] = uint8(rootRng.Intn(2))
	}
	pn := NewPNGenerator().Sequence(gain * totalBits)

	// Per-point seeds are drawn from the root source before any worker
	// starts, so worker scheduling cannot change them.
	seeds := make([]int64, len(e.cfg.SNRSweepDB))
	for i := range seeds {
		seeds[i] = rootRng.Int63()
	}

	e.log.Info(ctx, "starting BER sweep",
		logging.Int("snr_points", len(e.cfg.SNRSweepDB)),
		logging.Int("total_bits", totalBits),
		logging.Int("processing_gain", gain),
	)

	workers := e.cfg.Workers
	if workers <= 0 || workers > len(e.cfg.SNRSweepDB) {
		workers = len(e.cfg.SNRSweepDB)
	}

	points := make([]BERPoint, len(e.cfg.SNRSweepDB))
	errs := make([]error, len(e.cfg.SNRSweepDB))
	idxCh := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				points[i], errs[i] = e.runPoint(ctx, e.cfg.SNRSweepDB[i], seeds[i], data, pn, gain)
			}
		}()
	}
	for i := range e.cfg.SNRSweepDB {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("sweep: SNR point %g dB: %w", e.cfg.SNRSweepDB[i], err)
		}
	}

	return &SweepResult{Points: points}, nil
}

// runPoint simulates every packet at one SNR value and reduces the per-packet
// stats into a finalized BER point.
func (e *Engine) runPoint(ctx context.Context, snrDB float64, seed int64, data, pn []uint8, gain int) (BERPoint, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "Sweep/Point", trace.WithAttributes(
		attribute.Float64("sweep.snr_db", snrDB),
	))
	defer span.End()

	start := time.Now()

	ch, err := NewChannel(ChannelParams{
		PathLossDB:   e.cfg.PathLossDB,
		DopplerMaxHz: e.cfg.DopplerMaxHz,
		ChipRateHz:   e.cfg.ChipRateHz,
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		return BERPoint{}, err
	}

	point := BERPoint{SNRdB: snrDB}
	ps := e.cfg.PacketSizeBits
	for p := 0; p < e.cfg.PacketCount; p++ {
		// Each packet addresses its fixed offset into the global data and PN
		// sequence; spreader and despreader see the identical chip range.
		bits := data[p*ps : (p+1)*ps]
		chips := pn[p*ps*gain : (p+1)*ps*gain]
		st, err := runPacket(ch, bits, chips, gain, snrDB)
		if err != nil {
			span.RecordError(err)
			return BERPoint{}, fmt.Errorf("packet %d: %w", p, err)
		}
		point.Errors += st.errors
		point.Bits += st.bits
		e.metrics.ObservePacket(st.bits, st.errors)
	}
	point.BER = float64(point.Errors) / float64(point.Bits)

	e.metrics.ObservePoint(snrDB, point.BER, time.Since(start))
	e.log.Debug(ctx, "finished SNR point",
		logging.Any("snr_db", snrDB),
		logging.Int("errors", point.Errors),
		logging.Int("bits", point.Bits),
	)
	return point, nil
}

// runPacket pushes one packet through spreader, channel, and despreader and
// counts decided bits that differ from the ground truth.
func runPacket(ch *Channel, bits, pn []uint8, gain int, snrDB float64) (packetStat, error) {
	tx, err := Spread(bits, pn, gain)
	if err != nil {
		return packetStat{}, err
	}
	rx, err := ch.Apply(tx, snrDB)
	if err != nil {
		return packetStat{}, err
	}
	decided, err := Despread(rx, pn, gain)
	if err != nil {
		return packetStat{}, err
	}

	st := packetStat{bits: len(bits)}
	for i := range bits {
		if decided[i] != bits[i] {
			st.errors++
		}
	}
	return st, nil
}
