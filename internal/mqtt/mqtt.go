// Package mqtt wraps the paho client used to publish lifecycle events.
package mqtt

import (
	"context"
	"time"

	"github.com/tphakala/lvacfs-go/internal/conf"
	"github.com/tphakala/lvacfs-go/internal/logger"
)

// Client is a connection to one broker.
type Client interface {
	// Connect dials the broker. Attempts closer together than the reconnect cooldown fail
	// without dialing.
	Connect(ctx context.Context) error
	// Publish sends payload to topic and waits for the broker acknowledgement required by
	// the configured QoS.
	Publish(ctx context.Context, topic string, payload []byte) error
	IsConnected() bool
	Disconnect()
}

// Config configures a Client.
type Config struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Username string
	Password string
	QoS      byte
	Retain   bool

	ReconnectCooldown time.Duration
	ConnectTimeout    time.Duration
	PublishTimeout    time.Duration
	DisconnectTimeout time.Duration
}

// DefaultConfig returns the timeouts and QoS used when settings leave them unset.
func DefaultConfig() Config {
	return Config{
		QoS:               1,
		ReconnectCooldown: 5 * time.Second,
		ConnectTimeout:    30 * time.Second,
		PublishTimeout:    10 * time.Second,
		DisconnectTimeout: 250 * time.Millisecond,
	}
}

// ConfigFromSettings builds a Config from the mqtt settings section. clientID is used
// when the settings leave the client id empty.
func ConfigFromSettings(s *conf.MQTTSettings, clientID string) Config {
	cfg := DefaultConfig()
	cfg.Broker = s.Broker
	cfg.ClientID = s.ClientID
	if cfg.ClientID == "" {
		cfg.ClientID = clientID
	}
	cfg.Username = s.Username
	cfg.Password = s.Password
	cfg.QoS = byte(s.QoS) //nolint:gosec // G115: validated to 0..2
	cfg.Retain = s.Retain
	return cfg
}

func GetLogger() logger.Logger {
	return logger.Global().Module("mqtt")
}
