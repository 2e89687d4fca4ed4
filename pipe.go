// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"bytes"
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// pipeCapacity is the bounded number of in-flight chunks per direction.
const pipeCapacity = 4

// pipeContext holds the lock-free transport for one pipe end.
// Each direction is a single-producer single-consumer bounded queue of
// byte chunks.
type pipeContext struct {
	sendQ   *lfq.SPSC[[]byte]
	recvQ   *lfq.SPSC[[]byte]
	closed  *atomix.Uint32
	pending []byte
	slot    []byte
	limit   int
}

// PipeEnd is one side of an in-memory, non-blocking duplex [Channel].
//
// Read returns iox.ErrWouldBlock while nothing is queued and Write returns
// iox.ErrWouldBlock while the peer has not drained the queue. Closing
// either end closes both; queued data is still delivered before io.EOF.
// Each end must be driven by a single goroutine.
type PipeEnd struct {
	ctx    pipeContext
	serial Serial
}

// pipePair holds both ends, queues, and shared state in a single allocation.
type pipePair struct {
	a      PipeEnd
	b      PipeEnd
	closed atomix.Uint32
	ab     lfq.SPSC[[]byte]
	ba     lfq.SPSC[[]byte]
}

// NewPipe creates a connected pair of non-blocking channel ends.
func NewPipe() (*PipeEnd, *PipeEnd) {
	s := nextSerial()

	pair := &pipePair{}
	pair.ab.Init(pipeCapacity)
	pair.ba.Init(pipeCapacity)

	pair.a = PipeEnd{
		ctx:    pipeContext{sendQ: &pair.ab, recvQ: &pair.ba, closed: &pair.closed},
		serial: s,
	}
	pair.b = PipeEnd{
		ctx:    pipeContext{sendQ: &pair.ba, recvQ: &pair.ab, closed: &pair.closed},
		serial: s,
	}
	return &pair.a, &pair.b
}

// Serial returns the serial number shared by both ends of the pair.
func (p *PipeEnd) Serial() Serial { return p.serial }

// SetWriteLimit caps the number of bytes a single Write accepts.
// Zero or negative removes the cap.
func (p *PipeEnd) SetWriteLimit(n int) { p.ctx.limit = n }

// Read copies queued bytes into b.
// Non-blocking: returns iox.ErrWouldBlock if nothing is queued.
func (p *PipeEnd) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if len(p.ctx.pending) == 0 {
		chunk, err := p.ctx.recvQ.Dequeue()
		if err != nil {
			if p.ctx.closed.Load() == 0 {
				return 0, err
			}
			// The peer may have queued its last chunk right before closing.
			if chunk, err = p.ctx.recvQ.Dequeue(); err != nil {
				return 0, io.EOF
			}
		}
		p.ctx.pending = chunk
	}
	n := copy(b, p.ctx.pending)
	p.ctx.pending = p.ctx.pending[n:]
	return n, nil
}

// Write queues a copy of b, or of its first limit bytes.
// Non-blocking: returns iox.ErrWouldBlock if the queue is full.
func (p *PipeEnd) Write(b []byte) (int, error) {
	if p.ctx.closed.Load() != 0 {
		return 0, io.ErrClosedPipe
	}
	if len(b) == 0 {
		return 0, nil
	}
	if p.ctx.limit > 0 && len(b) > p.ctx.limit {
		b = b[:p.ctx.limit]
	}
	p.ctx.slot = bytes.Clone(b)
	if err := p.ctx.sendQ.Enqueue(&p.ctx.slot); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Flush is a no-op: written chunks are visible to the peer immediately.
func (p *PipeEnd) Flush() error { return nil }

// Close closes both ends of the pair. Never blocks.
func (p *PipeEnd) Close() error {
	p.ctx.closed.Add(1)
	return nil
}
