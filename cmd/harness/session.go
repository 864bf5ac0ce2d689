package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/arenaharness/harness/internal/config"
	"github.com/arenaharness/harness/internal/logging"
	intOtel "github.com/arenaharness/harness/internal/otel"
)

// session owns everything a single run sets up before the match and tears
// down after it.
type session struct {
	start   time.Time
	matchID string

	slogManager *logging.SlogManager
	logger      *slog.Logger
	logFile     *os.File
	logFilePath string
	graylog     *gelf.Writer
	telemetry   *intOtel.Provider
	matchCtx    *logging.MatchContext
}

// openSession brings up logging the same way for every command: console
// first, then the log file, Graylog and OTel once config is known.
func openSession(opts options) *session {
	s := &session{
		start:   time.Now(),
		matchID: uuid.NewString(),
	}
	level := config.GetString("logLevel")

	s.slogManager = logging.NewSlogManager()
	s.slogManager.Setup(logging.Options{Level: level})
	s.logger = s.slogManager.Logger()

	if opts.configErr != nil {
		s.logger.Warn("Failed to load config, using defaults!", "error", opts.configErr)
	} else {
		s.logger.Info("Loaded config", "dir", opts.configDir)
	}

	s.logFilePath = logging.LogFilePath(config.GetString("logsDir"), ProgramName, s.start)
	logFile, err := logging.OpenLogFile(s.logFilePath)
	if err != nil {
		s.logger.Error("Failed to create/open log file!", "error", err, "path", s.logFilePath)
	} else {
		s.logFile = logFile
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled && s.logFile != nil {
		s.telemetry, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			ServiceVersion: CurrentVersion,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      s.logFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			s.logger.Error("Failed to initialize OTel provider", "error", err)
			s.telemetry = nil
		} else if otelCfg.Endpoint != "" {
			s.logger.Info("OTel provider initialized", "file", s.logFilePath, "endpoint", otelCfg.Endpoint)
		} else {
			s.logger.Info("OTel provider initialized", "file", s.logFilePath)
		}
	}

	if config.GetBool("graylog.enabled") {
		addr := config.GetString("graylog.address")
		s.graylog, err = logging.DialGraylog(addr)
		if err != nil {
			s.logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			s.logger.Info("Shipping logs to Graylog", "address", addr)
		}
	}

	s.matchCtx = logging.NewMatchContext(s.matchID, string(opts.mode))

	// Re-setup logging with file output and optional sinks
	logOpts := logging.Options{
		Level:   level,
		Context: s.matchCtx.Attrs,
	}
	if s.logFile != nil {
		logOpts.File = s.logFile
	}
	if s.graylog != nil {
		logOpts.Gelf = s.graylog
	}
	var otelLogProvider *sdklog.LoggerProvider
	if s.telemetry != nil {
		otelLogProvider = s.telemetry.LoggerProvider()
	}
	logOpts.Provider = otelLogProvider
	s.slogManager.Setup(logOpts)
	s.logger = s.slogManager.Logger()
	s.logger.Info("Starting match",
		"version", CurrentVersion,
		"build", BuildDate,
		"logFile", s.logFilePath)
	return s
}

// componentLogger returns a zerolog logger writing to the session log file.
func (s *session) componentLogger(component string) zerolog.Logger {
	var w io.Writer
	if s.logFile != nil {
		w = s.logFile
	}
	return logging.NewZerolog(w, config.GetString("logLevel"), component)
}

// telemetrySummary logs the counters the driver collected.
func (s *session) telemetrySummary(ctx context.Context) {
	if s.telemetry == nil {
		return
	}
	counters, err := s.telemetry.Counters(ctx)
	if err != nil {
		s.logger.Warn("Failed to collect match counters", "error", err)
		return
	}
	args := make([]any, 0, 2*len(counters))
	for name, v := range counters {
		args = append(args, name, v)
	}
	s.logger.Info("Match counters", args...)
}

// close flushes every sink. Errors are reported but never fatal.
func (s *session) close(ctx context.Context) {
	if err := s.slogManager.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
	}
	if s.telemetry != nil {
		if err := s.telemetry.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to shut down telemetry: %v\n", err)
		}
	}
	if s.graylog != nil {
		_ = s.graylog.Close()
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}
