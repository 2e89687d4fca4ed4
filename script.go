// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package starttls

// Default ports for in-place STARTTLS escalation.
const (
	DefaultIMAPPort uint16 = 143
	DefaultSMTPPort uint16 = 25
)

// IMAP command tags used by the STARTTLS negotiation.
const (
	IMAPStartTLSTag   = "A1"
	IMAPCapabilityTag = "A2"
)

// Provider builds STARTTLS negotiation scripts for one server.
type Provider struct {
	Host string
	Port uint16
}

// NewProvider returns a Provider for host:port.
func NewProvider(host string, port uint16) Provider {
	return Provider{Host: host, Port: port}
}

// IMAP returns the IMAP STARTTLS script: skip the greeting, negotiate
// STARTTLS, upgrade, then ask for capabilities over the encrypted channel.
// The capability line is the only line recorded in the transcript.
func (p Provider) IMAP() *Sequence {
	s := NewSequence()
	s.Connect(p.Host, p.Port)
	s.DiscardLine()

	s.WriteLine(IMAPStartTLSTag + " STARTTLS")
	s.DiscardLine()

	s.Upgrade(p.Host)
	s.WriteLine(IMAPCapabilityTag + " CAPABILITY")
	s.ReadLine()

	s.Disconnect()
	return s
}

// SMTP returns the SMTP STARTTLS script, introducing the client as helo.
func (p Provider) SMTP(helo string) *Sequence {
	s := NewSequence()
	s.Connect(p.Host, p.Port)
	s.DiscardLine()

	s.WriteLine("HELO " + helo)
	s.DiscardLine()

	s.WriteLine("STARTTLS")
	s.DiscardLine()

	s.Upgrade(p.Host)
	s.WriteLine("NOOP")
	s.DiscardLine()

	s.Disconnect()
	return s
}
