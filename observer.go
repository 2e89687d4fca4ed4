// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Event describes one executed (or failed) effect.
type Event struct {
	Serial Serial // executor serial
	Index  int    // effects completed by the executor before this one
	Kind   Kind
	Mode   Mode   // channel mode after the effect
	Host   string // Connect, Upgrade
	Port   uint16 // Connect
	Line   string // line read or written, without terminator
	// Discarded counts plaintext bytes dropped when the reader was
	// detached at Upgrade.
	Discarded int
	Err       error
}

// Observer receives one event per effect. Observers must not block and
// must not retain the executor.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// Recorder is an [Observer] that keeps every event in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe appends ev.
func (r *Recorder) Observe(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events, in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

// zapObserver logs events through a zap.Logger.
type zapObserver struct {
	log *zap.Logger
}

// NewZapObserver returns an [Observer] that writes one structured log entry
// per event: Debug for line traffic, Info for connect, upgrade and
// disconnect, Warn for failures.
func NewZapObserver(l *zap.Logger) Observer {
	if l == nil {
		l = zap.NewNop()
	}
	return zapObserver{log: l.Named("starttls")}
}

func (o zapObserver) Observe(ev Event) {
	fields := []zap.Field{
		zap.Uint32("serial", ev.Serial),
		zap.Int("index", ev.Index),
		zap.Stringer("mode", ev.Mode),
	}
	switch ev.Kind {
	case KindConnect:
		fields = append(fields, zap.String("host", ev.Host), zap.Uint16("port", ev.Port))
	case KindUpgrade:
		fields = append(fields, zap.String("host", ev.Host), zap.Int("discarded", ev.Discarded))
	case KindReadLine, KindDiscardLine, KindWriteLine:
		fields = append(fields, zap.String("line", ev.Line))
	}

	level := zapcore.DebugLevel
	switch {
	case ev.Err != nil:
		level = zapcore.WarnLevel
		fields = append(fields, zap.Error(ev.Err))
	case ev.Kind == KindConnect, ev.Kind == KindUpgrade, ev.Kind == KindDisconnect:
		level = zapcore.InfoLevel
	}
	if ce := o.log.Check(level, ev.Kind.String()); ce != nil {
		ce.Write(fields...)
	}
}
