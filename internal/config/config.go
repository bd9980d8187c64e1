// Package config loads trellis.json, the configuration file for the demo
// server binary. Library users configure server.Config directly; this
// package only serves the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/trellis-web/trellis/pkg/server"
)

// ConfigFileName is the name of the configuration file.
const ConfigFileName = "trellis.json"

// Config is the trellis.json schema. Durations are Go duration strings
// ("30s", "2m"). Zero fields fall back to server defaults.
type Config struct {
	// Address is the TCP listen address.
	Address string `json:"address,omitempty"`

	// UnixSocket, when set, serves on a Unix domain socket instead of
	// TCP.
	UnixSocket string `json:"unixSocket,omitempty"`

	// TLS holds the certificate pair for HTTPS serving.
	TLS TLSConfig `json:"tls,omitempty"`

	// ReadHeaderTimeout, ReadTimeout, WriteTimeout, IdleTimeout and
	// ShutdownTimeout mirror the server timeouts.
	ReadHeaderTimeout string `json:"readHeaderTimeout,omitempty"`
	ReadTimeout       string `json:"readTimeout,omitempty"`
	WriteTimeout      string `json:"writeTimeout,omitempty"`
	IdleTimeout       string `json:"idleTimeout,omitempty"`
	ShutdownTimeout   string `json:"shutdownTimeout,omitempty"`

	// TrustedProxies lists proxy IPs or CIDRs whose forwarded headers
	// are believed.
	TrustedProxies []string `json:"trustedProxies,omitempty"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"logLevel,omitempty"`

	// MetricsAddress, when set, exposes Prometheus metrics on a
	// separate listener.
	MetricsAddress string `json:"metricsAddress,omitempty"`

	configPath string
}

// TLSConfig holds the certificate pair for HTTPS serving.
type TLSConfig struct {
	CertFile string `json:"certFile,omitempty"`
	KeyFile  string `json:"keyFile,omitempty"`
}

// Load reads trellis.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.configPath = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Validate rejects configurations that cannot produce a working server.
func (c *Config) Validate() error {
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return fmt.Errorf("tls requires both certFile and keyFile")
	}
	if c.TLS.CertFile != "" && c.UnixSocket != "" {
		return fmt.Errorf("tls and unixSocket are mutually exclusive")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logLevel %q", c.LogLevel)
	}
	for _, field := range []struct{ name, value string }{
		{"readHeaderTimeout", c.ReadHeaderTimeout},
		{"readTimeout", c.ReadTimeout},
		{"writeTimeout", c.WriteTimeout},
		{"idleTimeout", c.IdleTimeout},
		{"shutdownTimeout", c.ShutdownTimeout},
	} {
		if _, err := parseDuration(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}

// ServerConfig translates the file schema into a server.Config. Unset
// fields stay zero so the server fills its own defaults.
func (c *Config) ServerConfig() (*server.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	out := &server.Config{
		Address:        c.Address,
		TrustedProxies: c.TrustedProxies,
	}

	// Validate already checked these.
	out.ReadHeaderTimeout, _ = parseDuration(c.ReadHeaderTimeout)
	out.ReadTimeout, _ = parseDuration(c.ReadTimeout)
	out.WriteTimeout, _ = parseDuration(c.WriteTimeout)
	out.IdleTimeout, _ = parseDuration(c.IdleTimeout)
	out.ShutdownTimeout, _ = parseDuration(c.ShutdownTimeout)

	return out, nil
}

// Level maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
