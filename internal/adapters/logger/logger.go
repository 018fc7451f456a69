// Package logger implements ports.Logger on top of log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"go.trai.ch/kern/internal/core/ports"
	"go.trai.ch/zerr"
)

// Format selects the slog handler.
type Format string

const (
	// FormatText writes logfmt-style lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for a log format other than text or json.
var ErrUnknownFormat = zerr.New("unknown log format, expected 'text' or 'json'")

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu     sync.RWMutex
	format Format
	logger *slog.Logger
}

// New creates a text Logger writing to stderr.
func New() *Logger {
	l := &Logger{format: FormatText}
	l.logger = slog.New(newHandler(os.Stderr, FormatText))
	return l
}

// ParseFormat validates a format name. An empty name means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownFormat, "parse log format"), "format", s)
	}
}

// SetFormat switches the handler, keeping the writer at stderr.
func (l *Logger) SetFormat(f Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = f
	l.logger = slog.New(newHandler(os.Stderr, f))
}

// SetOutput redirects log output to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = slog.New(newHandler(w, l.format))
}

func newHandler(w io.Writer, f Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if f == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Error("operation failed", "error", err)
}
