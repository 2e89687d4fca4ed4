// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"context"
	"io"
	"strings"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// streamContext is the state one executor threads through its effects:
// at most one live channel, the mode flag, and the line reader bound to
// the live channel.
//
// Dispatch methods are non-blocking in the iox sense: they pass
// iox.ErrWouldBlock through unchanged and keep whatever progress was made,
// so the same effect can be dispatched again. Every other error is final:
// the live channel is released and an [*EffectError] is returned.
type streamContext struct {
	serial   Serial
	ctx      context.Context
	dialer   Dialer
	upgrader Upgrader
	observer Observer
	maxLine  int

	plain  Channel
	enc    Channel
	reader *lineReader
	mode   Mode

	// index counts effects completed by this executor.
	index int
	// written is the accepted prefix of the WriteLine in progress.
	written int
	// upgrading is set once the plaintext reader was detached for an
	// Upgrade whose handoff has not completed yet.
	upgrading bool
	dropped   int
}

var noLine kont.Resumed = ""

// live returns the channel of the current mode, or nil.
func (sc *streamContext) live() Channel {
	if sc.enc != nil {
		return sc.enc
	}
	return sc.plain
}

func (sc *streamContext) connect(e Connect) (kont.Resumed, error) {
	if sc.live() != nil {
		return nil, sc.fail(e, &ProtocolStateError{Kind: KindConnect, Reason: "a channel is already live"})
	}
	ch, err := sc.dialer.Dial(sc.ctx, e.Host, e.Port)
	if err != nil {
		if iox.IsWouldBlock(err) {
			return nil, err
		}
		return nil, sc.fail(e, &ConnectError{Host: e.Host, Port: e.Port, Err: err})
	}
	sc.plain = ch
	sc.reader = newLineReader(ch, sc.maxLine)
	sc.mode = Plaintext
	sc.done(Event{Kind: KindConnect, Host: e.Host, Port: e.Port})
	return noLine, nil
}

func (sc *streamContext) upgrade(e Upgrade) (kont.Resumed, error) {
	if sc.enc != nil {
		return nil, sc.fail(e, &ProtocolStateError{Kind: KindUpgrade, Reason: "channel is already encrypted"})
	}
	if sc.plain == nil {
		return nil, sc.fail(e, &ProtocolStateError{Kind: KindUpgrade, Reason: "no live channel"})
	}
	if !sc.upgrading {
		// Read-ahead from the plaintext side never reaches the encrypted side.
		sc.dropped = sc.reader.detach()
		sc.reader = nil
		sc.upgrading = true
	}
	enc, err := sc.upgrader.Upgrade(sc.ctx, sc.plain, e.Host)
	if err != nil {
		if iox.IsWouldBlock(err) {
			return nil, err
		}
		return nil, sc.fail(e, &UpgradeError{Host: e.Host, Err: err})
	}
	sc.plain = nil
	sc.enc = enc
	sc.reader = newLineReader(enc, sc.maxLine)
	sc.mode = Encrypted
	sc.upgrading = false
	sc.done(Event{Kind: KindUpgrade, Host: e.Host, Discarded: sc.dropped})
	sc.dropped = 0
	return noLine, nil
}

func (sc *streamContext) readLine(e Effect) (kont.Resumed, error) {
	if sc.reader == nil {
		return nil, sc.fail(e, &ProtocolStateError{Kind: e.Kind(), Reason: "no live channel"})
	}
	line, err := sc.reader.readLine()
	if err != nil {
		if iox.IsWouldBlock(err) {
			return nil, err
		}
		return nil, sc.fail(e, &IOError{Op: "read", Mode: sc.mode, Err: err})
	}
	sc.done(Event{Kind: e.Kind(), Line: line})
	return line, nil
}

func (sc *streamContext) writeLine(e WriteLine) (kont.Resumed, error) {
	ch := sc.live()
	if ch == nil {
		return nil, sc.fail(e, &ProtocolStateError{Kind: KindWriteLine, Reason: "no live channel"})
	}
	for sc.written < len(e.Payload) {
		n, err := io.WriteString(ch, e.Payload[sc.written:])
		sc.written += n
		if err != nil {
			if iox.IsWouldBlock(err) {
				return nil, err
			}
			return nil, sc.fail(e, &IOError{Op: "write", Mode: sc.mode, Err: err})
		}
		if n == 0 {
			return nil, sc.fail(e, &IOError{Op: "write", Mode: sc.mode, Err: io.ErrShortWrite})
		}
	}
	if err := ch.Flush(); err != nil {
		if iox.IsWouldBlock(err) {
			return nil, err
		}
		return nil, sc.fail(e, &IOError{Op: "flush", Mode: sc.mode, Err: err})
	}
	sc.written = 0
	sc.done(Event{Kind: KindWriteLine, Line: strings.TrimSuffix(e.Payload, CRLF)})
	return noLine, nil
}

func (sc *streamContext) disconnect(e Disconnect) (kont.Resumed, error) {
	ch := sc.live()
	if ch == nil {
		sc.done(Event{Kind: KindDisconnect})
		return noLine, nil
	}
	if err := ch.Flush(); err != nil {
		if iox.IsWouldBlock(err) {
			return nil, err
		}
		return nil, sc.fail(e, &IOError{Op: "flush", Mode: sc.mode, Err: err})
	}
	err := ch.Close()
	if iox.IsWouldBlock(err) {
		return nil, err
	}
	if err != nil {
		mode := sc.mode
		sc.clear()
		return nil, sc.fail(e, &IOError{Op: "close", Mode: mode, Err: err})
	}
	sc.done(Event{Kind: KindDisconnect})
	sc.clear()
	return noLine, nil
}

// done reports a completed effect and advances the effect index.
func (sc *streamContext) done(ev Event) {
	ev.Serial = sc.serial
	ev.Index = sc.index
	ev.Mode = sc.mode
	sc.observer.Observe(ev)
	sc.index++
}

// fail reports a failed effect, releases the live channel, and returns
// the error identifying the effect.
func (sc *streamContext) fail(e Effect, err error) error {
	ee := &EffectError{Index: sc.index, Effect: e, Err: err}
	sc.observer.Observe(Event{
		Serial: sc.serial,
		Index:  sc.index,
		Kind:   e.Kind(),
		Mode:   sc.mode,
		Err:    ee,
	})
	sc.release()
	return ee
}

// release closes the live channel best-effort and clears all handles.
// During a pending upgrade the plaintext channel is still the live one.
func (sc *streamContext) release() {
	if ch := sc.live(); ch != nil {
		_ = ch.Close()
	}
	sc.clear()
}

func (sc *streamContext) clear() {
	if sc.reader != nil {
		sc.reader.detach()
	}
	sc.plain = nil
	sc.enc = nil
	sc.reader = nil
	sc.mode = Plaintext
	sc.written = 0
	sc.upgrading = false
	sc.dropped = 0
}
