// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/starttls"
)

// trace is an ordered log of I/O performed across channels and upgrades.
type trace struct {
	ops []string
}

func (t *trace) add(op string) { t.ops = append(t.ops, op) }

// mockChannel is a blocking Channel that serves one queued chunk per Read
// and records writes. Setting failOp makes the failAt-th call of that
// operation fail with errMock.
type mockChannel struct {
	name    string
	chunks  [][]byte
	written bytes.Buffer
	writes  int
	closed  bool
	trace   *trace

	failOp string
	failAt int
	calls  map[string]int
}

var errMock = errors.New("mock: injected failure")

func newMockChannel(name string, tr *trace, chunks ...string) *mockChannel {
	m := &mockChannel{name: name, trace: tr, calls: map[string]int{}}
	for _, c := range chunks {
		m.chunks = append(m.chunks, []byte(c))
	}
	return m
}

func (m *mockChannel) fail(op string) bool {
	m.calls[op]++
	return m.failOp == op && m.calls[op] == m.failAt
}

func (m *mockChannel) Read(p []byte) (int, error) {
	if m.fail("read") {
		return 0, errMock
	}
	if m.closed || len(m.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, m.chunks[0])
	m.chunks[0] = m.chunks[0][n:]
	if len(m.chunks[0]) == 0 {
		m.chunks = m.chunks[1:]
	}
	m.trace.add(m.name + " read " + string(p[:n]))
	return n, nil
}

func (m *mockChannel) Write(p []byte) (int, error) {
	if m.fail("write") {
		return 0, errMock
	}
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	m.writes++
	m.written.Write(p)
	m.trace.add(m.name + " write " + string(p))
	return len(p), nil
}

func (m *mockChannel) Flush() error {
	if m.fail("flush") {
		return errMock
	}
	return nil
}

func (m *mockChannel) Close() error {
	m.closed = true
	m.trace.add(m.name + " close")
	if m.fail("close") {
		return errMock
	}
	return nil
}

func (m *mockChannel) writtenLines() []string {
	s := strings.TrimSuffix(m.written.String(), "\r\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\r\n")
}

// mockWorld wires a plaintext mock, an "encrypted" mock, a dialer, and an
// upgrader sharing one trace.
type mockWorld struct {
	trace    trace
	plain    *mockChannel
	enc      *mockChannel
	dialed   []string
	upgraded []starttls.Channel
	hosts    []string
}

func newMockWorld(plain []string, enc []string) *mockWorld {
	w := &mockWorld{}
	w.plain = newMockChannel("plain", &w.trace, plain...)
	w.enc = newMockChannel("tls", &w.trace, enc...)
	return w
}

func (w *mockWorld) options(extra ...starttls.Option) []starttls.Option {
	opts := []starttls.Option{
		starttls.WithDialer(starttls.DialerFunc(func(_ context.Context, host string, port uint16) (starttls.Channel, error) {
			w.dialed = append(w.dialed, host)
			return w.plain, nil
		})),
		starttls.WithUpgrader(starttls.UpgraderFunc(func(_ context.Context, plain starttls.Channel, serverName string) (starttls.Channel, error) {
			w.trace.add("upgrade " + serverName)
			w.upgraded = append(w.upgraded, plain)
			w.hosts = append(w.hosts, serverName)
			return w.enc, nil
		})),
	}
	return append(opts, extra...)
}

// sealed marks a channel as upgraded without transforming its bytes.
type sealed struct {
	starttls.Channel
}

// pipeUpgrader "upgrades" a pipe end by wrapping it in sealed.
var pipeUpgrader = starttls.UpgraderFunc(func(_ context.Context, plain starttls.Channel, _ string) (starttls.Channel, error) {
	return sealed{plain}, nil
})

// blockingPipe waits past iox.ErrWouldBlock so a pipe end can back a
// bufio reader on the server side of a test.
type blockingPipe struct {
	p *starttls.PipeEnd
}

func (b blockingPipe) Read(p []byte) (int, error) {
	var bo iox.Backoff
	for {
		n, err := b.p.Read(p)
		if !iox.IsWouldBlock(err) {
			return n, err
		}
		bo.Wait()
	}
}

func (b blockingPipe) Write(p []byte) (int, error) {
	var bo iox.Backoff
	written := 0
	for written < len(p) {
		n, err := b.p.Write(p[written:])
		written += n
		if err != nil {
			if !iox.IsWouldBlock(err) {
				return written, err
			}
			bo.Wait()
		}
	}
	return written, nil
}

// execStep drives seq to completion on ex via Step+Advance loop.
// Retries on iox.ErrWouldBlock (peer not ready yet) and returns the
// number of retries alongside the outcome.
func execStep(ctx context.Context, ex *starttls.Executor, seq *starttls.Sequence) (starttls.Transcript, int, error) {
	result, susp := starttls.Step(seq)
	var bo iox.Backoff
	retries := 0
	for susp != nil {
		var err error
		result, susp, err = starttls.Advance(ctx, ex, susp)
		if err != nil {
			retries++
			bo.Wait()
			continue
		}
		bo.Reset()
	}
	lines, err := starttls.Outcome(result)
	return lines, retries, err
}

func kindsOf(effects []starttls.Effect) []starttls.Kind {
	out := make([]starttls.Kind, len(effects))
	for i, e := range effects {
		out[i] = e.Kind()
	}
	return out
}
