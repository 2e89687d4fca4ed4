// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"iter"

	"go.uber.org/zap"
)

// CRLF is the line terminator appended by [Sequence.WriteLine].
const CRLF = "\r\n"

// Sequence is an ordered, one-shot queue of effects.
//
// Builder methods append at most one effect each and perform no I/O.
// Connect and Disconnect consult the embedded [Lifecycle] so a script
// never describes two live connections or a redundant disconnect.
// Consumption is FIFO via [Sequence.Next]; an exhausted sequence keeps
// yielding nothing.
type Sequence struct {
	effects []Effect
	head    int
	guard   Lifecycle
}

// NewSequence returns an empty sequence in the Disconnected state.
func NewSequence() *Sequence {
	return &Sequence{}
}

// SequenceOf returns a sequence holding effects verbatim, in order.
// The lifecycle guard is not consulted.
func SequenceOf(effects ...Effect) *Sequence {
	s := &Sequence{effects: make([]Effect, len(effects))}
	copy(s.effects, effects)
	return s
}

// Connect appends Connect(host, port) if the guard allows it.
func (s *Sequence) Connect(host string, port uint16) {
	if s.guard.Connect() {
		s.push(Connect{Host: host, Port: port})
	}
}

// Disconnect appends Disconnect if the guard allows it.
func (s *Sequence) Disconnect() {
	if s.guard.Disconnect() {
		s.push(Disconnect{})
	}
}

// Upgrade appends Upgrade(host).
func (s *Sequence) Upgrade(host string) {
	s.push(Upgrade{Host: host})
}

// WriteLine appends WriteLine(text + CRLF).
func (s *Sequence) WriteLine(text string) {
	s.push(WriteLine{Payload: text + CRLF})
}

// ReadLine appends ReadLine.
func (s *Sequence) ReadLine() {
	s.push(ReadLine{})
}

// DiscardLine appends DiscardLine.
func (s *Sequence) DiscardLine() {
	s.push(DiscardLine{})
}

// Lifecycle returns the builder's connection guard.
func (s *Sequence) Lifecycle() *Lifecycle { return &s.guard }

// LogTransitions logs every switch of the builder's guard at debug level
// on l, named "starttls".
func (s *Sequence) LogTransitions(l *zap.Logger) {
	if l == nil {
		s.guard.OnTransition(nil)
		return
	}
	log := l.Named("starttls")
	s.guard.OnTransition(func(tr Transition) {
		log.Debug("transition",
			zap.Stringer("from", tr.From),
			zap.Stringer("to", tr.To),
		)
	})
}

// Next removes and returns the front effect.
// Returns (nil, false) once the sequence is exhausted.
func (s *Sequence) Next() (Effect, bool) {
	if s.head >= len(s.effects) {
		return nil, false
	}
	e := s.effects[s.head]
	s.effects[s.head] = nil
	s.head++
	if s.head == len(s.effects) {
		s.effects = s.effects[:0]
		s.head = 0
	}
	return e, true
}

// Len returns the number of effects not yet consumed.
func (s *Sequence) Len() int { return len(s.effects) - s.head }

// Effects returns a copy of the effects not yet consumed.
func (s *Sequence) Effects() []Effect {
	out := make([]Effect, s.Len())
	copy(out, s.effects[s.head:])
	return out
}

// All returns a consuming iterator over the remaining effects.
func (s *Sequence) All() iter.Seq[Effect] {
	return func(yield func(Effect) bool) {
		for {
			e, ok := s.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

func (s *Sequence) push(e Effect) {
	s.effects = append(s.effects, e)
}
