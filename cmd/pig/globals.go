package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/pigforbots/internal/config"
	"github.com/lox/pigforbots/internal/telemetry"
)

// Globals are flags shared by every command.
type Globals struct {
	Config  string `short:"c" help:"HCL config file" default:"pig.hcl" type:"path"`
	Debug   bool   `help:"Enable debug logging"`
	LogFile string `help:"Write logs to this file instead of stderr" type:"path"`
	Trace   bool   `help:"Export OpenTelemetry traces over OTLP/HTTP (configure with OTEL_EXPORTER_OTLP_*)"`
}

// SetupLogger returns the run's logger and a function that closes the log
// file, if one was opened.
func (g *Globals) SetupLogger() (*log.Logger, func(), error) {
	level := log.WarnLevel
	if g.Debug {
		level = log.DebugLevel
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	if g.LogFile != "" {
		f, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() {
			if err := f.Close(); err != nil {
				log.Error("Failed to close log file", "error", err)
			}
		}
		if !g.Debug {
			level = log.InfoLevel
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	return logger, closeFn, nil
}

// SetupTracing installs the OTLP exporter when --trace is set. The returned
// function flushes spans and is always safe to call.
func (g *Globals) SetupTracing(ctx context.Context, logger *log.Logger) func() {
	if !g.Trace {
		return func() {}
	}

	shutdown, err := telemetry.Setup(ctx, version)
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
		return func() {}
	}
	return func() {
		// The run context may already be cancelled by a signal.
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}
}

// LoadConfig reads the config file and environment.
func (g *Globals) LoadConfig() (*config.Config, error) {
	return config.Load(g.Config)
}
