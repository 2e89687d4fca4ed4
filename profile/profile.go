// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package profile loads STARTTLS connection profiles from YAML files and
// the environment and turns them into executor scripts and options.
package profile

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"code.hybscloud.com/starttls"
)

// Protocol names accepted in a profile.
const (
	ProtocolIMAP = "imap"
	ProtocolSMTP = "smtp"
)

// Profile describes one server to negotiate STARTTLS with.
type Profile struct {
	// Protocol: imap or smtp
	Protocol string `mapstructure:"protocol"`
	Host     string `mapstructure:"host"`
	// Port defaults to 143 for imap and 25 for smtp
	Port uint16 `mapstructure:"port"`
	// Helo is the client name sent in SMTP HELO
	Helo string `mapstructure:"helo"`

	// ServerName overrides Host for certificate verification
	ServerName         string        `mapstructure:"server_name"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	DialTimeout        time.Duration `mapstructure:"dial_timeout"`
	MaxLineLen         int           `mapstructure:"max_line_len"`

	Log LogConfig `mapstructure:"log"`
}

// Default returns a Profile populated with defaults.
func Default() *Profile {
	return &Profile{
		Protocol:    ProtocolIMAP,
		Helo:        "localhost",
		DialTimeout: 30 * time.Second,
		MaxLineLen:  starttls.DefaultMaxLineLen,
		Log: LogConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"stderr"},
		},
	}
}

// Load reads a profile from path (if non-empty), otherwise from
// starttls.yaml in the working directory or ~/.starttls, and applies
// environment overrides. Variables use the prefix STARTTLS with `.` and
// `-` replaced by `_` (STARTTLS_LOG_LEVEL=debug); bare HOST and PORT are
// honored as well.
func Load(path string) (*Profile, error) {
	p := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("STARTTLS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("protocol", p.Protocol)
	v.SetDefault("host", p.Host)
	v.SetDefault("port", p.Port)
	v.SetDefault("helo", p.Helo)
	v.SetDefault("server_name", p.ServerName)
	v.SetDefault("insecure_skip_verify", p.InsecureSkipVerify)
	v.SetDefault("dial_timeout", p.DialTimeout)
	v.SetDefault("max_line_len", p.MaxLineLen)
	v.SetDefault("log.level", p.Log.Level)
	v.SetDefault("log.format", p.Log.Format)
	v.SetDefault("log.outputs", p.Log.Outputs)
	v.SetDefault("log.development", p.Log.Development)
	v.SetDefault("log.rotation.enable", p.Log.Rotation.Enable)
	v.SetDefault("log.rotation.max_size_mb", p.Log.Rotation.MaxSizeMB)
	v.SetDefault("log.rotation.max_backups", p.Log.Rotation.MaxBackups)
	v.SetDefault("log.rotation.max_age_days", p.Log.Rotation.MaxAgeDays)
	v.SetDefault("log.rotation.compress", p.Log.Rotation.Compress)

	if err := v.BindEnv("host", "STARTTLS_HOST", "HOST"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("port", "STARTTLS_PORT", "PORT"); err != nil {
		return nil, err
	}

	if path == "" {
		if envPath := os.Getenv("STARTTLS_CONFIG"); envPath != "" {
			path = envPath
		}
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("starttls")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".starttls"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("profile: read config: %w", err)
		}
	}

	if err := v.Unmarshal(p); err != nil {
		return nil, fmt.Errorf("profile: decode config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate normalizes the protocol name, fills the default port, and
// rejects incomplete profiles.
func (p *Profile) Validate() error {
	p.Protocol = strings.ToLower(strings.TrimSpace(p.Protocol))
	if p.Host == "" {
		return errors.New("profile: host is required")
	}
	switch p.Protocol {
	case ProtocolIMAP:
		if p.Port == 0 {
			p.Port = starttls.DefaultIMAPPort
		}
	case ProtocolSMTP:
		if p.Port == 0 {
			p.Port = starttls.DefaultSMTPPort
		}
		if p.Helo == "" {
			return errors.New("profile: helo is required for smtp")
		}
	default:
		return fmt.Errorf("profile: unknown protocol %q", p.Protocol)
	}
	return nil
}

// Sequence returns the STARTTLS script for the profile's protocol.
func (p *Profile) Sequence() (*starttls.Sequence, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	prov := starttls.NewProvider(p.Host, p.Port)
	if p.Protocol == ProtocolSMTP {
		return prov.SMTP(p.Helo), nil
	}
	return prov.IMAP(), nil
}

// TLSConfig returns the client TLS configuration for the upgrade.
func (p *Profile) TLSConfig() *tls.Config {
	return &tls.Config{
		ServerName:         p.ServerName,
		InsecureSkipVerify: p.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
}

// Options returns executor options for the profile: dial timeout, TLS
// configuration, and line limit.
func (p *Profile) Options() []starttls.Option {
	return []starttls.Option{
		starttls.WithDialer(starttls.NetDialer{Timeout: p.DialTimeout}),
		starttls.WithTLSConfig(p.TLSConfig()),
		starttls.WithMaxLineLen(p.MaxLineLen),
	}
}
