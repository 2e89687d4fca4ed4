// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

import (
	"crypto/tls"

	"go.uber.org/zap"
)

// Option configures an [Executor].
type Option func(*options)

type options struct {
	dialer   Dialer
	upgrader Upgrader
	observer Observer
	maxLine  int
}

// WithDialer sets the socket provider used by Connect effects.
// The default is a zero [NetDialer].
func WithDialer(d Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithUpgrader sets the transport upgrade provider used by Upgrade effects.
// The default is a zero [TLSUpgrader].
func WithUpgrader(u Upgrader) Option {
	return func(o *options) { o.upgrader = u }
}

// WithTLSConfig upgrades with crypto/tls using c.
func WithTLSConfig(c *tls.Config) Option {
	return func(o *options) { o.upgrader = TLSUpgrader{Config: c} }
}

// WithObserver sets the event sink.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger logs events through l. See [NewZapObserver].
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.observer = NewZapObserver(l) }
}

// WithMaxLineLen bounds received lines, terminator included.
func WithMaxLineLen(n int) Option {
	return func(o *options) { o.maxLine = n }
}

func buildOptions(opts []Option) options {
	o := options{
		dialer:   NetDialer{},
		upgrader: TLSUpgrader{},
		observer: nopObserver{},
		maxLine:  DefaultMaxLineLen,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}
	return o
}
