// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import "context"

// Preparer negotiates STARTTLS on an already-open plaintext channel and
// hands the channel back, free of read-ahead, for a caller-driven TLS
// handshake. It is one-shot.
type Preparer struct {
	ch       Channel
	commands []string
}

// NewPreparer returns a Preparer that skips the greeting, then for each
// command writes it and skips one response line.
func NewPreparer(ch Channel, commands ...string) *Preparer {
	return &Preparer{ch: ch, commands: commands}
}

// IMAPPreparer negotiates with "A1 STARTTLS".
func IMAPPreparer(ch Channel) *Preparer {
	return NewPreparer(ch, IMAPStartTLSTag+" STARTTLS")
}

// SMTPPreparer introduces the client as helo, then sends STARTTLS.
func SMTPPreparer(ch Channel, helo string) *Preparer {
	return NewPreparer(ch, "HELO "+helo, "STARTTLS")
}

// Prepare runs the negotiation and returns the plaintext channel together
// with the number of read-ahead bytes dropped after the last response.
// Non-blocking channels are waited on with adaptive backoff.
// On failure the channel is closed. A second call returns
// [*AlreadyConsumedError].
func (p *Preparer) Prepare(ctx context.Context, opts ...Option) (Channel, int, error) {
	if p.ch == nil {
		return nil, 0, &AlreadyConsumedError{What: "starttls preparation"}
	}
	ch := p.ch
	p.ch = nil

	ex := NewExecutor(opts...)
	if err := ex.Attach(ch); err != nil {
		return nil, 0, err
	}
	seq := NewSequence()
	seq.DiscardLine()
	for _, cmd := range p.commands {
		seq.WriteLine(cmd)
		seq.DiscardLine()
	}
	if _, err := ex.Exec(ctx, seq); err != nil {
		return nil, 0, err
	}
	return ex.Detach()
}
