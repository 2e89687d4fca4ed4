// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package starttls executes line protocols whose transport is upgraded in
// place from plaintext to TLS (the STARTTLS pattern), as algebraic effects
// on [code.hybscloud.com/kont].
//
// A protocol script is inert data: a [Sequence] of effects built without
// I/O. An [Executor] is the only place that performs I/O, and it enforces
// the upgrade boundary: at [Upgrade] the plaintext line reader is detached
// and whatever it had read ahead is dropped, so no byte received in
// plaintext is ever served as if it had arrived over the encrypted channel.
//
// # Architecture
//
//   - Effects: [Connect], [Upgrade], [DiscardLine], [ReadLine], [WriteLine], [Disconnect].
//   - Scripts: [Sequence] builder guarded by a [Lifecycle]; [Provider] builds the IMAP and SMTP negotiations.
//   - Transport: [Channel] unifies blocking ([Blocking]) and non-blocking ([PipeEnd]) byte channels.
//     Non-blocking channels return [code.hybscloud.com/iox.ErrWouldBlock] on backpressure.
//   - Collaborators: [Dialer] opens sockets, [Upgrader] negotiates TLS, [Observer] receives one [Event] per effect.
//
// # Execution
//
//   - Blocking: [Executor.Exec] runs a sequence to completion, waiting past
//     iox.ErrWouldBlock with adaptive backoff.
//   - Stepping: [Step] and [Advance] evaluate one effect at a time, making
//     them easy to integrate with a proactor loop. A would-block effect keeps
//     its progress and is retried on the next Advance.
//
// [PipeEnd] is the only non-blocking [Channel] in this package, and it is
// in memory. [TLSUpgrader] needs a channel with a NetConn() net.Conn
// method, so a stepped TLS upgrade over a socket needs one of two things.
// The first is a socket-backed Channel that sets short read and write
// deadlines, maps the resulting timeouts to iox.ErrWouldBlock and exposes
// NetConn(). The second is a custom [Upgrader] that performs the handshake
// on the caller's own transport, returning iox.ErrWouldBlock until it is
// done.
//
// # Example
//
//	seq := starttls.NewProvider("imap.example.com", starttls.DefaultIMAPPort).IMAP()
//	ex := starttls.NewExecutor(starttls.WithLogger(logger))
//	lines, err := ex.Exec(ctx, seq)
//	if err != nil {
//		return err
//	}
//	fmt.Println(lines[0]) // * CAPABILITY ...
package starttls
