// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Dialer opens plaintext channels for Connect effects.
type Dialer interface {
	Dial(ctx context.Context, host string, port uint16) (Channel, error)
}

// DialerFunc adapts a function to [Dialer].
type DialerFunc func(ctx context.Context, host string, port uint16) (Channel, error)

// Dial calls f(ctx, host, port).
func (f DialerFunc) Dial(ctx context.Context, host string, port uint16) (Channel, error) {
	return f(ctx, host, port)
}

// NetDialer opens TCP connections and wraps them as [*Blocking] channels.
type NetDialer struct {
	// Dialer is used for the connection; nil means a zero net.Dialer.
	Dialer *net.Dialer
	// Timeout bounds the dial when positive.
	Timeout time.Duration
}

// Dial connects to host:port over TCP.
func (d NetDialer) Dial(ctx context.Context, host string, port uint16) (Channel, error) {
	nd := d.Dialer
	if nd == nil {
		nd = &net.Dialer{}
	}
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	c, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return nil, err
	}
	return NewBlocking(c), nil
}
