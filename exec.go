// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"context"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Executor interprets effect sequences against real channels.
//
// It owns at most one live channel and switches from plaintext to
// encrypted I/O exactly at the Upgrade effect. An Executor is not
// reentrant: drive one sequence at a time from one goroutine.
type Executor struct {
	sc streamContext
}

// NewExecutor returns an executor with no live channel.
func NewExecutor(opts ...Option) *Executor {
	o := buildOptions(opts)
	return &Executor{sc: streamContext{
		serial:   nextSerial(),
		ctx:      context.Background(),
		dialer:   o.dialer,
		upgrader: o.upgrader,
		observer: o.observer,
		maxLine:  o.maxLine,
	}}
}

// Serial returns the serial number carried by this executor's events.
func (ex *Executor) Serial() Serial { return ex.sc.serial }

// Mode returns the mode of the live channel.
func (ex *Executor) Mode() Mode { return ex.sc.mode }

// Live reports whether a channel is open.
func (ex *Executor) Live() bool { return ex.sc.live() != nil }

// Exec runs seq to exhaustion and returns the lines read by ReadLine.
//
// The first failing effect aborts the run: its error is returned as an
// [*EffectError], the live channel is closed, and the remaining effects
// stay in seq. Effects on a non-blocking channel wait past
// iox.ErrWouldBlock with adaptive backoff (iox.Backoff); ctx is checked
// before every dispatch.
func (ex *Executor) Exec(ctx context.Context, seq *Sequence) (Transcript, error) {
	ex.bind(ctx)
	wrapped := kont.Map[kont.Resumed, Transcript, Result](Program(seq), func(t Transcript) Result {
		return kont.Right[error, Transcript](t)
	})
	h := streamHandler[Transcript]{sc: &ex.sc}
	return Outcome(kont.Handle(wrapped, h))
}

// Attach adopts ch as the live plaintext channel, as if a Connect had
// opened it.
func (ex *Executor) Attach(ch Channel) error {
	if ex.sc.live() != nil {
		return &ProtocolStateError{Kind: KindConnect, Reason: "a channel is already live"}
	}
	ex.sc.plain = ch
	ex.sc.reader = newLineReader(ch, ex.sc.maxLine)
	ex.sc.mode = Plaintext
	return nil
}

// Detach releases the live plaintext channel to the caller without
// closing it. Bytes the line reader had buffered past the last consumed
// line are dropped; their count is returned. Detach fails while an
// Upgrade handoff is pending; finish it with [Advance] or call [Executor.Close].
func (ex *Executor) Detach() (Channel, int, error) {
	if ex.sc.enc != nil {
		return nil, 0, &ProtocolStateError{Kind: KindUpgrade, Reason: "channel is encrypted"}
	}
	if ex.sc.plain == nil {
		return nil, 0, &ProtocolStateError{Kind: KindDisconnect, Reason: "no live channel"}
	}
	if ex.sc.upgrading {
		// The plaintext reader is gone; the channel belongs to the upgrader.
		return nil, 0, &ProtocolStateError{Kind: KindUpgrade, Reason: "upgrade in progress"}
	}
	ch := ex.sc.plain
	n := ex.sc.reader.detach()
	ex.sc.clear()
	return ch, n, nil
}

// Close closes the live channel, if any. It is safe to call on an
// executor abandoned mid-sequence.
func (ex *Executor) Close() error {
	ch := ex.sc.live()
	ex.sc.clear()
	if ch == nil {
		return nil
	}
	return ch.Close()
}

func (ex *Executor) bind(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	ex.sc.ctx = ctx
}

// streamHandler implements kont.Handler for stream effects.
// Waits on iox.ErrWouldBlock; any other error short-circuits to Left.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type streamHandler[R any] struct {
	sc *streamContext
}

// Dispatch implements kont.Handler via structural interface assertion.
func (h streamHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	e, ok := op.(Effect)
	if !ok {
		panic("starttls: unhandled effect in streamHandler")
	}
	v, err := dispatchWait(h.sc, e)
	if err != nil {
		return kont.Left[error, R](err), false
	}
	return v, true
}

// dispatchWait blocks until DispatchStream completes, backing off on
// iox.ErrWouldBlock with iox.Backoff (I/O readiness waiting).
func dispatchWait(sc *streamContext, e Effect) (kont.Resumed, error) {
	var bo iox.Backoff
	for {
		if err := sc.ctx.Err(); err != nil {
			return nil, sc.fail(e, err)
		}
		v, err := e.DispatchStream(sc)
		if err == nil || !iox.IsWouldBlock(err) {
			return v, err
		}
		bo.Wait()
	}
}
