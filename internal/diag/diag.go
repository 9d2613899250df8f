// Package diag collects the structured recovery messages produced during a
// run. Every non-fatal failure (an expression falling back to zero, a
// skipped action, a dropped reference, an exceeded loop bound) is recorded
// here so callers can audit degradation without the run aborting.
package diag

import (
	"context"
	"sync"
	"time"

	"github.com/vk/sceneforge/internal/ctxlog"
)

// Level classifies a diagnostic record.
type Level int

const (
	// Info records a noteworthy but harmless event.
	Info Level = iota
	// Warn records a recovered failure that degraded output.
	Warn
	// Error records a failure that dropped a construct entirely.
	Error
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	}
	return "unknown"
}

// Record is a single diagnostic message.
type Record struct {
	Level Level
	Text  string
	Time  time.Time
}

// Log accumulates diagnostic records for one run. It is safe for concurrent
// use, although the walk itself is single-writer.
type Log struct {
	mu      sync.Mutex
	records []Record
}

// NewLog creates an empty diagnostic log.
func NewLog() *Log {
	return &Log{}
}

// Infof appends an info record and mirrors it to the contextual logger.
func (l *Log) Infof(ctx context.Context, text string, args ...any) {
	l.append(ctx, Info, text, args...)
}

// Warnf appends a warn record and mirrors it to the contextual logger.
func (l *Log) Warnf(ctx context.Context, text string, args ...any) {
	l.append(ctx, Warn, text, args...)
}

// Errorf appends an error record and mirrors it to the contextual logger.
func (l *Log) Errorf(ctx context.Context, text string, args ...any) {
	l.append(ctx, Error, text, args...)
}

func (l *Log) append(ctx context.Context, level Level, text string, args ...any) {
	logger := ctxlog.FromContext(ctx)
	switch level {
	case Warn:
		logger.Warn(text, args...)
	case Error:
		logger.Error(text, args...)
	default:
		logger.Info(text, args...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Record{Level: level, Text: text, Time: time.Now()})
}

// Records returns a copy of all accumulated records in append order.
func (l *Log) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// CountAtLeast returns the number of records at or above the given level.
func (l *Log) CountAtLeast(level Level) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.records {
		if r.Level >= level {
			n++
		}
	}
	return n
}

// Reset discards all accumulated records.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}
