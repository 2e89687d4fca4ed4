// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
)

// Upgrader turns a plaintext channel into an encrypted channel over the
// same connection. It takes ownership of plain: the caller must not use
// plain again once Upgrade returns without iox.ErrWouldBlock.
//
// A non-blocking Upgrader may return iox.ErrWouldBlock, in which case plain
// is still owned by the caller and the upgrade is retried later.
type Upgrader interface {
	Upgrade(ctx context.Context, plain Channel, serverName string) (Channel, error)
}

// UpgraderFunc adapts a function to [Upgrader].
type UpgraderFunc func(ctx context.Context, plain Channel, serverName string) (Channel, error)

// Upgrade calls f(ctx, plain, serverName).
func (f UpgraderFunc) Upgrade(ctx context.Context, plain Channel, serverName string) (Channel, error) {
	return f(ctx, plain, serverName)
}

// ErrNotNetConn is returned by [TLSUpgrader] for channels that do not
// expose a net.Conn.
var ErrNotNetConn = errors.New("starttls: channel does not expose a net.Conn")

// TLSUpgrader performs a crypto/tls client handshake over the socket
// underlying a channel. The channel must provide NetConn() net.Conn, as
// [*Blocking] does for wrapped net.Conn values.
type TLSUpgrader struct {
	// Config is cloned per upgrade; nil means a zero tls.Config.
	// An empty ServerName is filled from the Upgrade host.
	Config *tls.Config
}

// Upgrade runs the TLS handshake and returns the encrypted channel.
// On failure the socket is closed.
func (u TLSUpgrader) Upgrade(ctx context.Context, plain Channel, serverName string) (Channel, error) {
	nc, ok := plain.(interface{ NetConn() net.Conn })
	if !ok || nc.NetConn() == nil {
		return nil, ErrNotNetConn
	}
	var cfg *tls.Config
	if u.Config != nil {
		cfg = u.Config.Clone()
	} else {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}

	conn := tls.Client(nc.NetConn(), cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}
	return NewBlocking(conn), nil
}
