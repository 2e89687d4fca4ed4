// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"io"
	"net"
)

// Channel is the byte-level transport driven by the executor.
//
// Implementations share one framing contract: Read returns (0, io.EOF) at
// end of stream, Write may accept fewer bytes than offered, and faults are
// returned as-is without retry. A blocking Channel waits inside each call;
// a non-blocking Channel returns iox.ErrWouldBlock instead and the caller
// suspends until it may retry.
type Channel interface {
	io.Reader
	io.Writer
	Flush() error
	Close() error
}

// Mode is the protection level of the live channel.
type Mode uint8

const (
	Plaintext Mode = iota
	Encrypted
)

func (m Mode) String() string {
	if m == Encrypted {
		return "encrypted"
	}
	return "plaintext"
}

// Blocking adapts an io.ReadWriteCloser into a blocking [Channel].
type Blocking struct {
	rw io.ReadWriteCloser
}

// NewBlocking wraps rw. If rw has a Flush() error method, Flush forwards
// to it; otherwise Flush is a no-op.
func NewBlocking(rw io.ReadWriteCloser) *Blocking {
	return &Blocking{rw: rw}
}

func (b *Blocking) Read(p []byte) (int, error) { return b.rw.Read(p) }

func (b *Blocking) Write(p []byte) (int, error) { return b.rw.Write(p) }

// Flush forwards to the wrapped value's Flush, if any.
func (b *Blocking) Flush() error {
	if f, ok := b.rw.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close closes the wrapped value.
func (b *Blocking) Close() error { return b.rw.Close() }

// NetConn returns the wrapped net.Conn, or nil if rw is not one.
func (b *Blocking) NetConn() net.Conn {
	c, _ := b.rw.(net.Conn)
	return c
}
