package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/wagiedev/selenium-grid-go/internal/errors"
)

// LaunchConfig holds the values handed to the server on its command line.
//
// The supervisor never fills in defaults; callers supply every field.
type LaunchConfig struct {
	// Host is the bind address of the server.
	Host string `json:"host" mapstructure:"host"`

	// Port is the bind port of the server.
	Port int `json:"port" mapstructure:"port"`

	// Timeout is passed to the server as -timeout, in seconds.
	// The supervisor does not enforce it.
	Timeout int `json:"timeout" mapstructure:"timeout"`

	// MaxSessions is passed to the server as -maxSession.
	MaxSessions int `json:"maxSessions" mapstructure:"max_session"`
}

// Validate checks that the configuration is well formed.
func (c LaunchConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is empty", errors.ErrInvalidConfig)
	}

	if strings.ContainsAny(c.Host, " \t\r\n/") {
		return fmt.Errorf("%w: malformed host %q", errors.ErrInvalidConfig, c.Host)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", errors.ErrInvalidConfig, c.Port)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout %d is negative", errors.ErrInvalidConfig, c.Timeout)
	}

	if c.MaxSessions < 1 {
		return fmt.Errorf("%w: maxSessions %d must be at least 1", errors.ErrInvalidConfig, c.MaxSessions)
	}

	return nil
}

// Address returns host:port.
func (c LaunchConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HubURL returns the URL a client uses to register with the hub.
func (c LaunchConfig) HubURL() string {
	return "http://" + c.Address()
}
