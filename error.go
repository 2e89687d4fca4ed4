// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"fmt"
	"strconv"
)

// EffectError reports the first effect of a run that failed.
// Index counts the effects this executor completed before the failure,
// which is the effect's position in its sequence for a fresh executor.
// Err is one of [*ConnectError], [*UpgradeError], [*IOError],
// [*ProtocolStateError], or a context error.
type EffectError struct {
	Index  int
	Effect Effect
	Err    error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("starttls: effect #%d %s: %v", e.Index, e.Effect, e.Err)
}

func (e *EffectError) Unwrap() error { return e.Err }

// ConnectError reports a failed dial.
type ConnectError struct {
	Host string
	Port uint16
	Err  error
}

func (e *ConnectError) Error() string {
	return "starttls: connect " + e.Host + ":" + strconv.Itoa(int(e.Port)) + ": " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error { return e.Err }

// IOError reports a failed read, write, flush, or close on the live channel.
type IOError struct {
	Op   string
	Mode Mode
	Err  error
}

func (e *IOError) Error() string {
	return "starttls: " + e.Op + " (" + e.Mode.String() + "): " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// UpgradeError reports a failed TLS negotiation. The plaintext channel
// has been closed.
type UpgradeError struct {
	Host string
	Err  error
}

func (e *UpgradeError) Error() string {
	return "starttls: upgrade " + e.Host + ": " + e.Err.Error()
}

func (e *UpgradeError) Unwrap() error { return e.Err }

// ProtocolStateError reports an effect that does not fit the executor's
// channel state, such as reading with no live channel.
type ProtocolStateError struct {
	Kind   Kind
	Reason string
}

func (e *ProtocolStateError) Error() string {
	return "starttls: " + e.Kind.String() + ": " + e.Reason
}

// AlreadyConsumedError is returned by one-shot operations on reuse.
type AlreadyConsumedError struct {
	What string
}

func (e *AlreadyConsumedError) Error() string {
	return "starttls: " + e.What + " already consumed"
}
