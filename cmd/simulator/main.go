package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/signalsfoundry/lorasat-simulator/dsss"
	"github.com/signalsfoundry/lorasat-simulator/internal/logging"
	"github.com/signalsfoundry/lorasat-simulator/internal/observability"
	"github.com/signalsfoundry/lorasat-simulator/linkbudget"
)

func main() {
	scenarioPath := flag.String("scenario", "configs/scenario.json", "path to the JSON scenario file")
	seed := flag.Int64("seed", 1, "root seed for data generation and channel noise")
	workers := flag.Int("workers", 0, "max SNR points simulated concurrently (0 = one per point)")
	metricsAddr := flag.String("metrics-addr", "", "listen address for the /metrics endpoint (empty = disabled)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, log := logging.WithRunLogger(context.Background(), log)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	f, err := os.Open(*scenarioPath)
	if err != nil {
		log.Error(ctx, "failed to open scenario", logging.String("path", *scenarioPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	scenario, err := LoadScenario(f)
	f.Close()
	if err != nil {
		log.Error(ctx, "failed to load scenario", logging.String("error", err.Error()))
		os.Exit(1)
	}

	scenario.Waveform.Seed = *seed
	scenario.Waveform.Workers = *workers

	collector, err := observability.NewSweepCollector(nil)
	if err != nil {
		log.Error(ctx, "metrics registration failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn(ctx, "metrics listener stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsAddr))
	}

	engine, err := dsss.NewEngine(scenario.Waveform,
		dsss.WithLogger(log),
		dsss.WithMetrics(collector),
	)
	if err != nil {
		log.Error(ctx, "invalid sweep config", logging.String("error", err.Error()))
		os.Exit(1)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		log.Error(ctx, "sweep failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("SNR (dB)    BER         errors/bits")
	for _, p := range result.Points {
		fmt.Printf("%8.1f    %.3e   %d/%d\n", p.SNRdB, p.BER, p.Errors, p.Bits)
	}

	if scenario.TargetBER > 0 {
		if snr, ok := result.CrossingSNRdB(scenario.TargetBER); ok {
			fmt.Printf("BER %.0e crossing at %.2f dB\n", scenario.TargetBER, snr)
		} else {
			fmt.Printf("BER %.0e not crossed within the sweep\n", scenario.TargetBER)
		}
	}

	if scenario.Budget.FrequencyHz > 0 {
		report, err := linkbudget.Compute(scenario.Budget)
		if err != nil {
			log.Error(ctx, "link budget failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Printf("Link budget: FSPL %.2f dB, received %.2f dBm, sensitivity %.2f dBm, margin %.2f dB\n",
			report.FSPLdB, report.ReceivedPowerDBm, report.SensitivityDBm, report.MarginDB)
	}
}
