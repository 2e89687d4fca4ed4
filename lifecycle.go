// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

// State is the logical connection state tracked by a [Lifecycle].
type State uint8

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Transition records one state switch of a [Lifecycle].
type Transition struct {
	From State
	To   State
}

// Lifecycle guards a script builder against emitting overlapping
// connections or redundant disconnects.
// The zero value is Disconnected.
type Lifecycle struct {
	state       State
	transitions []Transition
	notify      func(Transition)
}

// OnTransition registers f to be called after every state switch.
// A nil f removes the callback.
func (l *Lifecycle) OnTransition(f func(Transition)) { l.notify = f }

// State returns the current state.
func (l *Lifecycle) State() State { return l.state }

// CanConnect reports whether a connect would take effect.
func (l *Lifecycle) CanConnect() bool { return l.state == Disconnected }

// CanDisconnect reports whether a disconnect would take effect.
func (l *Lifecycle) CanDisconnect() bool { return l.state == Connected }

// Connect switches to Connected. Reports false and does nothing unless
// the current state is Disconnected.
func (l *Lifecycle) Connect() bool {
	if !l.CanConnect() {
		return false
	}
	l.set(Connected)
	return true
}

// Disconnect switches to Disconnected. Reports false and does nothing
// unless the current state is Connected.
func (l *Lifecycle) Disconnect() bool {
	if !l.CanDisconnect() {
		return false
	}
	l.set(Disconnected)
	return true
}

// Transitions returns the switches made so far, oldest first.
func (l *Lifecycle) Transitions() []Transition {
	out := make([]Transition, len(l.transitions))
	copy(out, l.transitions)
	return out
}

func (l *Lifecycle) set(s State) {
	if l.state == s {
		return
	}
	tr := Transition{From: l.state, To: s}
	l.transitions = append(l.transitions, tr)
	l.state = s
	if l.notify != nil {
		l.notify(tr)
	}
}
