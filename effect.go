// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"strconv"

	"code.hybscloud.com/kont"
)

// Kind identifies the variant of an [Effect].
type Kind uint8

const (
	KindConnect Kind = iota + 1
	KindUpgrade
	KindDiscardLine
	KindReadLine
	KindWriteLine
	KindDisconnect
)

var kindNames = [...]string{
	KindConnect:     "connect",
	KindUpgrade:     "upgrade",
	KindDiscardLine: "discard-line",
	KindReadLine:    "read-line",
	KindWriteLine:   "write-line",
	KindDisconnect:  "disconnect",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Effect is one protocol action described as data.
// Effects are immutable values; building them performs no I/O.
// Every effect is a kont operation resumed with a string: the line read
// for [ReadLine] and [DiscardLine], the empty string otherwise.
type Effect interface {
	Kind() Kind
	String() string
	// DispatchStream performs the effect on the executor's stream.
	// Non-blocking: returns iox.ErrWouldBlock when the live channel cannot
	// make progress, leaving the effect retryable.
	DispatchStream(sc *streamContext) (kont.Resumed, error)
}

// Connect opens a plaintext channel to Host:Port.
type Connect struct {
	kont.Phantom[string]
	Host string
	Port uint16
}

func (Connect) Kind() Kind { return KindConnect }

func (e Connect) String() string {
	return "Connect(" + e.Host + ", " + strconv.Itoa(int(e.Port)) + ")"
}

// DispatchStream handles Connect on the executor stream.
func (e Connect) DispatchStream(sc *streamContext) (kont.Resumed, error) {
	return sc.connect(e)
}

// Upgrade replaces the plaintext channel with an encrypted one negotiated
// for the server name Host.
type Upgrade struct {
	kont.Phantom[string]
	Host string
}

func (Upgrade) Kind() Kind { return KindUpgrade }

func (e Upgrade) String() string { return "Upgrade(" + e.Host + ")" }

// DispatchStream handles Upgrade on the executor stream.
// The plaintext reader is detached exactly once, before the first
// handoff attempt; would-block retries repeat only the handoff.
func (e Upgrade) DispatchStream(sc *streamContext) (kont.Resumed, error) {
	return sc.upgrade(e)
}

// DiscardLine reads one line and drops it.
type DiscardLine struct {
	kont.Phantom[string]
}

func (DiscardLine) Kind() Kind { return KindDiscardLine }

func (DiscardLine) String() string { return "DiscardLine" }

// DispatchStream handles DiscardLine on the executor stream.
func (e DiscardLine) DispatchStream(sc *streamContext) (kont.Resumed, error) {
	return sc.readLine(e)
}

// ReadLine reads one line and records it in the transcript.
type ReadLine struct {
	kont.Phantom[string]
}

func (ReadLine) Kind() Kind { return KindReadLine }

func (ReadLine) String() string { return "ReadLine" }

// DispatchStream handles ReadLine on the executor stream.
func (e ReadLine) DispatchStream(sc *streamContext) (kont.Resumed, error) {
	return sc.readLine(e)
}

// WriteLine writes Payload, which already carries its line terminator.
type WriteLine struct {
	kont.Phantom[string]
	Payload string
}

func (WriteLine) Kind() Kind { return KindWriteLine }

func (e WriteLine) String() string { return "WriteLine(" + strconv.Quote(e.Payload) + ")" }

// DispatchStream handles WriteLine on the executor stream.
// Partial writes are accumulated across would-block retries.
func (e WriteLine) DispatchStream(sc *streamContext) (kont.Resumed, error) {
	return sc.writeLine(e)
}

// Disconnect flushes and closes the live channel, if any.
type Disconnect struct {
	kont.Phantom[string]
}

func (Disconnect) Kind() Kind { return KindDisconnect }

func (Disconnect) String() string { return "Disconnect" }

// DispatchStream handles Disconnect on the executor stream. Never fails
// when no channel is live.
func (e Disconnect) DispatchStream(sc *streamContext) (kont.Resumed, error) {
	return sc.disconnect(e)
}
