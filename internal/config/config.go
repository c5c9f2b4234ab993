// Package config loads go-vive settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the server and client binaries.
// Every field has a sane default so both run with an empty environment.
type Config struct {
	// Port is the TCP port the broadcast server binds.
	Port int `env:"VIVE_PORT" envDefault:"12345"`

	// ServerAddr is the address the stream client dials.
	ServerAddr string `env:"VIVE_SERVER_ADDR" envDefault:"127.0.0.1:12345"`

	// RejectThreshold is the pose displacement (meters) above which a
	// sample is discarded as a tracking glitch.
	RejectThreshold float64 `env:"VIVE_REJECT_THRESHOLD" envDefault:"0.05"`

	// ActivePollMs / IdlePollMs set the producer cadence while a tracker
	// is / is not detected.
	ActivePollMs int `env:"VIVE_ACTIVE_POLL_MS" envDefault:"5"`
	IdlePollMs   int `env:"VIVE_IDLE_POLL_MS" envDefault:"50"`

	// ReconnectBackoff is the delay between client connect attempts.
	ReconnectBackoff time.Duration `env:"VIVE_RECONNECT_BACKOFF" envDefault:"1s"`

	// Restamp controls whether the server rewrites each sample's
	// timestamp to send time before fan-out. Off preserves capture time.
	Restamp bool `env:"VIVE_RESTAMP" envDefault:"true"`

	// WebPort enables the monitoring web server when non-zero.
	WebPort int `env:"VIVE_WEB_PORT" envDefault:"0"`

	// MQTTBroker selects the MQTT sink when set, e.g. "tcp://localhost:1883".
	MQTTBroker string `env:"VIVE_MQTT_BROKER"`

	// MQTTClientID identifies the client binary on the broker.
	MQTTClientID string `env:"VIVE_MQTT_CLIENT_ID" envDefault:"vive-client"`

	LogLevel string `env:"VIVE_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid VIVE_PORT %d", cfg.Port)
	}
	if cfg.RejectThreshold <= 0 {
		return Config{}, fmt.Errorf("invalid VIVE_REJECT_THRESHOLD %v", cfg.RejectThreshold)
	}
	return cfg, nil
}

// ActivePollInterval returns the producer tick period while tracking.
func (c Config) ActivePollInterval() time.Duration {
	return time.Duration(c.ActivePollMs) * time.Millisecond
}

// IdlePollInterval returns the producer tick period while idle.
func (c Config) IdlePollInterval() time.Duration {
	return time.Duration(c.IdlePollMs) * time.Millisecond
}

// ListenAddr returns the broadcast server bind address.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// WebAddr returns the monitoring server bind address.
func (c Config) WebAddr() string {
	return fmt.Sprintf(":%d", c.WebPort)
}
