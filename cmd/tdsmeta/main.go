package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/leengari/tdsmeta/internal/config"
	"github.com/leengari/tdsmeta/internal/logging"
	"github.com/leengari/tdsmeta/internal/metrics"
	"github.com/leengari/tdsmeta/internal/network"
	"github.com/leengari/tdsmeta/internal/repl"
)

func main() {
	configFile := flag.String("config", "", "path to a yaml config file")
	file := flag.String("file", "", "decode a captured token stream and exit")
	hexInput := flag.Bool("hex", false, "the --file capture is hex text")
	chunkSize := flag.Int("chunk-size", 0, "feed the capture in fragments of this many bytes (0 = whole file)")
	serverMode := flag.Bool("server", false, "Run in server mode")
	port := flag.Int("port", 4444, "Port to listen on")
	metricsAddr := flag.String("metrics-addr", "", "serve prometheus metrics on this address")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if flag.CommandLine.Changed("port") {
		cfg.Server.Port = *port
	}
	if flag.CommandLine.Changed("metrics-addr") {
		cfg.Metrics.Address = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, closeFn, err := logging.SetupLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeFn()
	slog.SetDefault(logger)

	opts, err := cfg.TDS.Options()
	if err != nil {
		slog.Error("invalid tds options", "error", err)
		closeFn()
		os.Exit(1)
	}

	obs := metrics.NewObserver()
	opts.Observer = obs
	if cfg.Metrics.Address != "" {
		go serveMetrics(cfg.Metrics.Address, obs)
	}

	slog.Info("tdsmeta ready", "tds_version", opts.TDSVersion.String(), "always_encrypted", opts.AlwaysEncrypted)

	switch {
	case *file != "":
		if err := decodeFile(os.Stdout, *file, *hexInput, *chunkSize, opts); err != nil {
			slog.Error("decode failed", "file", *file, "error", err)
			closeFn()
			os.Exit(1)
		}
	case *serverMode:
		slog.Info("Starting Server mode...")
		network.Start(cfg.Server.Port, opts)
	default:
		slog.Info("Starting REPL mode...")
		repl.Start(opts)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	parts, err := config.ProcessConfigPath(path)
	if err != nil {
		return config.Config{}, err
	}
	return config.NewFileSystemLoader().Load(parts.FileName, parts.Path, config.DefaultEnvPrefix, config.NewDefaultEnvBinder())
}

func serveMetrics(addr string, obs *metrics.Observer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(metrics.NewRegistry(obs.Metrics()...)))

	slog.Info("Serving metrics", "address", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server stopped", "error", err)
	}
}
