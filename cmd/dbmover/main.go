package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"dbmover/internal/config"
	"dbmover/internal/etl"
	"dbmover/internal/logging"
	"dbmover/internal/metrics"
	"dbmover/internal/metrics/datadog"
	"dbmover/internal/metrics/prompush"

	// register all supported database drivers.
	// config specifies which to use but we need to build in support for all of them.
	_ "dbmover/internal/dbconn/all"
)

// main is the entry point for the transfer binary. It loads the job file,
// optionally initializes a metrics backend, and runs every job.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
		logFormat         string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/jobs/sample.json", "job config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	flag.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logging.Setup(level, logFormat)
	log := slog.Default()

	// .env is optional; DSNs may reference env vars via "env:NAME".
	_ = godotenv.Load()

	file, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidateFile(file)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasError(issues) {
		log.Error("configuration is invalid", "path", cfgPath)
		os.Exit(1)
	}

	// If validate flag is set, only validate the configuration and exit.
	if validate {
		log.Info("configuration is valid", "path", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend("dbmover", gwURL)
		if err != nil {
			log.Warn("metrics: failed to init prom push backend; using nop", "err", err)
		} else {
			log.Info("metrics enabled", "backend", backendName, "url", gwURL)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Warn("metrics: flush error", "err", err)
				}
			}()
		}

	case "datadog":
		addr := datadogAddrFlg
		if addr == "" {
			addr = os.Getenv("DD_AGENT_ADDR")
		}
		if addr == "" {
			addr = "127.0.0.1:8125"
		}

		b, err := datadog.NewBackend(datadog.Config{
			Addr:      addr,
			Namespace: "dbmover.",
		})
		if err != nil {
			log.Warn("metrics: failed to init datadog backend; using nop", "err", err)
		} else {
			log.Info("metrics enabled", "backend", backendName, "addr", addr)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Warn("metrics: flush error", "err", err)
				}
			}()
		}

	case "", "none":
		// metrics disabled; nop backend remains

	default:
		log.Warn("metrics: unknown backend; metrics disabled", "backend", backendName)
	}

	start := time.Now()

	// Jobs are independent: each owns its connections, and the only shared
	// state is read-only DVM data, so they can run concurrently.
	g, ctx := errgroup.WithContext(context.Background())
	for _, job := range file.Jobs {
		g.Go(func() error {
			sum, err := etl.Run(ctx, job, log)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			log.Info("job complete",
				"job", sum.Job,
				"rows", sum.Rows,
				"elapsed", sum.Duration.Truncate(time.Millisecond),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}

	log.Info("all jobs complete",
		"jobs", len(file.Jobs),
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
