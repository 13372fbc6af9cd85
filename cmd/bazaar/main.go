package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/always-cache/bazaar"
	"github.com/always-cache/bazaar/registry"
	"github.com/always-cache/bazaar/store"
)

var (
	// CLI flags
	portFlag           int
	dbFilenameFlag     string
	configFilenameFlag string
	apiURLFlag         string
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.IntVar(&portFlag, "port", 0, "Port to listen on (default 3030)")
	flag.StringVar(&dbFilenameFlag, "db", "", "DB file name (use 'memory' for in-memory db, default bazaar.db)")
	flag.StringVar(&configFilenameFlag, "config", "", "YAML config file")
	flag.StringVar(&apiURLFlag, "api-url", "", "Public URL of the API, used in Location headers")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to stdout)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout
	// also output to a rotated logfile if specified
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: os.Stdout})
	if logFilenameFlag != "" {
		logFile := &lumberjack.Logger{
			Filename:   logFilenameFlag,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
		}
		defer logFile.Close()
		logOutputs = append(logOutputs, logFile)
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	// flags override the config file
	cfg := bazaar.Config{}
	if configFilenameFlag != "" {
		var err error
		if cfg, err = bazaar.LoadConfig(configFilenameFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not load config")
		}
	}
	if portFlag != 0 {
		cfg.Port = portFlag
	}
	if dbFilenameFlag != "" {
		cfg.Database = dbFilenameFlag
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	cfg.Logger = &log.Logger
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	st, err := store.Open(cfg.Database, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.Database).Msg("Could not open database")
	}
	defer st.Close()

	caches, err := registry.New(cfg.RegistryConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create caches")
	}
	defer caches.Close()

	srv, err := bazaar.NewServer(cfg, st, caches)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Could not shut down cleanly")
		}
	}()

	log.Info().Msgf("Serving on port %d (database %s, api url %s)", cfg.Port, cfg.Database, cfg.APIURL)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Shutting down")
}
