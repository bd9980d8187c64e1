package server

import (
	"fmt"
	"log/slog"
	"time"
)

// Config holds configuration for the dispatcher and its serve loops.
// Zero fields are filled with defaults by New.
type Config struct {
	// Address is the TCP address to listen on.
	// Default: ":8080".
	Address string

	// ReadHeaderTimeout bounds reading a request's headers.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// ReadTimeout bounds reading a whole request.
	// Default: 30 seconds.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response.
	// Default: 30 seconds.
	WriteTimeout time.Duration

	// IdleTimeout bounds how long a keep-alive connection may sit idle.
	// Default: 2 minutes.
	IdleTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// Logger receives request and outcome logs. Default: slog.Default()
	// with a component attribute.
	Logger *slog.Logger

	// TrustedProxies lists proxy IPs or CIDRs whose Forwarded /
	// X-Forwarded-For headers are believed when resolving the source
	// address. Empty means forwarded headers are ignored.
	TrustedProxies []string

	// Recorders are injectable sinks fed one Record per dispatch.
	// Best-effort: a panicking recorder is contained and logged.
	Recorders []Recorder

	// NotFoundBody is the body of the default 404 response.
	// Default: "not found\n".
	NotFoundBody string

	// InternalBody is the body rendered when a chain completes without
	// producing a response. Default: "internal server error\n".
	InternalBody string
}

// DefaultConfig returns a Config with the defaults documented on Config.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ShutdownTimeout:   30 * time.Second,
		NotFoundBody:      "not found\n",
		InternalBody:      "internal server error\n",
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}

	out := *c
	defaults := DefaultConfig()
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = defaults.ReadTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = defaults.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.NotFoundBody == "" {
		out.NotFoundBody = defaults.NotFoundBody
	}
	if out.InternalBody == "" {
		out.InternalBody = defaults.InternalBody
	}
	return &out
}

// Warnings reports configuration that is accepted but probably not what
// the operator meant.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.ReadTimeout > 0 && c.ReadHeaderTimeout > c.ReadTimeout {
		warnings = append(warnings, fmt.Sprintf(
			"ReadHeaderTimeout (%s) exceeds ReadTimeout (%s)", c.ReadHeaderTimeout, c.ReadTimeout))
	}
	if c.IdleTimeout > 0 && c.IdleTimeout < time.Second {
		warnings = append(warnings, fmt.Sprintf(
			"IdleTimeout (%s) below one second defeats keep-alive", c.IdleTimeout))
	}
	return warnings
}
