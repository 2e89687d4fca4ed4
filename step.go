// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"context"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Result is the outcome of a stepped run: Right with the transcript on
// completion, Left with an [*EffectError] on failure.
type Result = kont.Either[error, Transcript]

// Suspension is a stepped run parked on one effect.
type Suspension = kont.Suspension[Result]

// Step lowers seq and evaluates it until the first effect suspension.
// Returns (result, nil) on completion, or (zero, suspension) if pending.
// No I/O happens until [Advance].
func Step(seq *Sequence) (Result, *Suspension) {
	wrapped := kont.ExprMap(ProgramExpr(seq), func(t Transcript) Result {
		return kont.Right[error, Transcript](t)
	})
	return kont.StepExpr(wrapped)
}

// Advance dispatches the suspended effect on ex without blocking.
//
// On success (nil error) the suspension is consumed and the run moves to
// the next effect or completes. On iox.ErrWouldBlock the suspension is
// returned unconsumed and may be retried once the channel is ready;
// partial progress (bytes of a line, a written prefix, a detached reader)
// is kept by ex. Any other failure discards the suspension and returns
// Left with a nil error.
func Advance(ctx context.Context, ex *Executor, susp *Suspension) (Result, *Suspension, error) {
	e, ok := susp.Op().(Effect)
	if !ok {
		panic("starttls: unhandled effect in Advance")
	}
	ex.bind(ctx)
	if err := ex.sc.ctx.Err(); err != nil {
		susp.Discard()
		return kont.Left[error, Transcript](ex.sc.fail(e, err)), nil, nil
	}
	v, err := e.DispatchStream(&ex.sc)
	if err != nil {
		if iox.IsWouldBlock(err) {
			var zero Result
			return zero, susp, err
		}
		susp.Discard()
		return kont.Left[error, Transcript](err), nil, nil
	}
	result, next := susp.Resume(v)
	return result, next, nil
}

// Outcome splits a Result into its transcript and error.
func Outcome(r Result) (Transcript, error) {
	if err, ok := r.GetLeft(); ok {
		return nil, err
	}
	t, _ := r.GetRight()
	return t, nil
}
