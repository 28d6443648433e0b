// Package logging wraps zerolog behind a small capability the engine and
// net driver take by injection, rather than a process-wide on/off flag.
// Toggling Enabled has no effect on correctness, only on whether trace
// events are written — the switch governs throughput, not behavior.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is an injectable structured tracer. The zero value is usable
// and logs nothing (Enabled defaults to false).
type Logger struct {
	zl      zerolog.Logger
	Enabled bool
}

// New builds a Logger writing to w (os.Stderr when nil) as zerolog JSON
// lines with a timestamp, enabled or disabled per the caller's choice.
func New(w io.Writer, enabled bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		zl:      zerolog.New(w).With().Timestamp().Logger(),
		Enabled: enabled,
	}
}

// Nop returns a Logger that never writes, regardless of later mutation of
// its Enabled field — useful as a default for callers that never wire a
// real one.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), Enabled: false}
}

// Event mirrors the small subset of zerolog's fluent event builder the
// core needs, so call sites read as `log.Info().Str(...).Msg(...)`
// chains without importing zerolog directly.
type Event struct {
	ev *zerolog.Event
}

func (l *Logger) Info() Event {
	if l == nil || !l.Enabled {
		return Event{}
	}
	return Event{ev: l.zl.Info()}
}

func (l *Logger) Warn() Event {
	if l == nil || !l.Enabled {
		return Event{}
	}
	return Event{ev: l.zl.Warn()}
}

func (l *Logger) Error() Event {
	if l == nil || !l.Enabled {
		return Event{}
	}
	return Event{ev: l.zl.Error()}
}

func (e Event) Str(key, val string) Event {
	if e.ev == nil {
		return e
	}
	e.ev = e.ev.Str(key, val)
	return e
}

func (e Event) Uint64(key string, val uint64) Event {
	if e.ev == nil {
		return e
	}
	e.ev = e.ev.Uint64(key, val)
	return e
}

func (e Event) Float64(key string, val float64) Event {
	if e.ev == nil {
		return e
	}
	e.ev = e.ev.Float64(key, val)
	return e
}

func (e Event) Err(err error) Event {
	if e.ev == nil {
		return e
	}
	e.ev = e.ev.Err(err)
	return e
}

func (e Event) Msg(msg string) {
	if e.ev == nil {
		return
	}
	e.ev.Msg(msg)
}
