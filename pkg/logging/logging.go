// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for codescan components.
//
// The logger is built on Go's standard library slog package with
// multi-destination output:
//
//   - Default: stderr text output for CLI compatibility
//   - Optional: per-service JSON file logging with automatic directory
//     creation, named {service}_{date}.log
//
// Basic usage:
//
//	logger := logging.New(logging.Config{Service: "scan"})
//	defer logger.Close()
//	logger.Info("checkout complete", "branch", branch)
//
// Thread Safety: Logger is safe for concurrent use.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config configures Logger behavior. The zero value writes Info+ messages
// to stderr in text format.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo.
	Level slog.Level

	// LogDir enables file logging to the given directory. File logs are
	// always JSON. Empty disables file logging.
	LogDir string

	// Service identifies the component; included in every entry as the
	// "service" attribute and used in the log file name.
	Service string

	// JSON switches stderr output to JSON format.
	JSON bool

	// Quiet disables stderr output. Logs then go only to the file.
	Quiet bool
}

// Logger wraps slog.Logger with file-handle lifecycle management.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New creates a Logger from config.
//
// Description:
//
//	Sets up the stderr handler (unless Quiet) and, when LogDir is set,
//	a JSON file handler writing to {service}_{YYYY-MM-DD}.log. The
//	directory is created with 0750 permissions if missing. File setup
//	failures degrade to stderr-only logging rather than erroring.
//
// Inputs:
//
//	cfg - Logger configuration
//
// Outputs:
//
//	*Logger - Ready-to-use logger; call Close when done
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handlers []slog.Handler
	if !cfg.Quiet {
		if cfg.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	l := &Logger{}

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0750); err == nil {
			service := cfg.Service
			if service == "" {
				service = "codescan"
			}
			name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(cfg.LogDir, name),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
			if err == nil {
				l.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &fanoutHandler{handlers: handlers}
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	l.Logger = slog.New(handler)
	return l
}

// Default returns a stderr-only logger at Info level.
func Default() *Logger {
	return New(Config{Service: "codescan"})
}

// Close syncs and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	return l.file.Close()
}

// fanoutHandler sends each record to every enabled handler, allowing
// simultaneous stderr text and JSON file output.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: handlers}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &fanoutHandler{handlers: handlers}
}
