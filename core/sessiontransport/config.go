package sessiontransport

import (
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gorilla/websocket"
)

// Config provides environment-based configuration for the websocket
// transport.
type Config struct {
	// ReadBufferSize is the websocket read buffer size in bytes.
	ReadBufferSize int `env:"WS_SYNC_READ_BUFFER_SIZE" envDefault:"1024"`

	// WriteBufferSize is the websocket write buffer size in bytes.
	WriteBufferSize int `env:"WS_SYNC_WRITE_BUFFER_SIZE" envDefault:"1024"`

	// HandshakeTimeout is the websocket handshake timeout in seconds.
	HandshakeTimeout int `env:"WS_SYNC_HANDSHAKE_TIMEOUT" envDefault:"10"`

	// AllowAnyOrigin disables the origin check. Intended for development.
	AllowAnyOrigin bool `env:"WS_SYNC_ALLOW_ANY_ORIGIN" envDefault:"false"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10,
	}
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewUpgrader builds a websocket upgrader from configuration.
func NewUpgrader(cfg Config) *websocket.Upgrader {
	up := &websocket.Upgrader{
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		HandshakeTimeout: time.Duration(cfg.HandshakeTimeout) * time.Second,
	}
	if cfg.AllowAnyOrigin {
		up.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return up
}
