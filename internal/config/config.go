// Package config loads devlink settings from DEVLINK_* environment
// variables. Command-line flags override these values in the cli package.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gorilla/websocket"

	"github.com/roach88/devlink/internal/transport"
)

// Config holds every setting shared by the devlink commands.
type Config struct {
	DeviceID string `env:"DEVLINK_DEVICE_ID"`
	URL      string `env:"DEVLINK_URL"`
	LogOnly  bool   `env:"DEVLINK_LOG_ONLY"`
	Validate bool   `env:"DEVLINK_VALIDATE"`

	WriteTimeout        time.Duration `env:"DEVLINK_WRITE_TIMEOUT"          envDefault:"10s"`
	HandshakeTimeout    time.Duration `env:"DEVLINK_HANDSHAKE_TIMEOUT"      envDefault:"10s"`
	ReconnectMaxElapsed time.Duration `env:"DEVLINK_RECONNECT_MAX_ELAPSED"  envDefault:"5m"`
	ReconnectInitial    time.Duration `env:"DEVLINK_RECONNECT_INITIAL"      envDefault:"500ms"`
	ReconnectMaxBackoff time.Duration `env:"DEVLINK_RECONNECT_MAX_INTERVAL" envDefault:"30s"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ValidateListen checks the settings the listen command needs.
func (c Config) ValidateListen() error {
	var errs []error
	if c.DeviceID == "" {
		errs = append(errs, errors.New("device id is required (--device-id or DEVLINK_DEVICE_ID)"))
	}
	if c.URL == "" {
		errs = append(errs, errors.New("url is required (--url or DEVLINK_URL)"))
	} else if u, err := url.Parse(c.URL); err != nil {
		errs = append(errs, fmt.Errorf("invalid url: %w", err))
	} else if u.Scheme != "ws" && u.Scheme != "wss" {
		errs = append(errs, fmt.Errorf("url scheme must be ws or wss, got %q", u.Scheme))
	}
	if c.WriteTimeout < 0 || c.HandshakeTimeout < 0 || c.ReconnectMaxElapsed < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	return errors.Join(errs...)
}

// Transport returns the transport settings.
func (c Config) Transport() transport.Config {
	return transport.Config{
		URL:                 c.URL,
		DeviceID:            c.DeviceID,
		WriteTimeout:        c.WriteTimeout,
		ReconnectMaxElapsed: c.ReconnectMaxElapsed,
		InitialBackoff:      c.ReconnectInitial,
		MaxBackoff:          c.ReconnectMaxBackoff,
	}
}

// Dialer returns the websocket dialer used to reach the peer.
func (c Config) Dialer() *websocket.Dialer {
	return &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.HandshakeTimeout,
	}
}
