// Package config provides configuration types for the Selenium grid supervisor.
package config

import (
	"fmt"
	"strings"
)

// Role identifies which child process a line or handle belongs to.
type Role string

const (
	// RoleServer is the Selenium server, standalone or hub.
	RoleServer Role = "server"
	// RoleClient is the headless PhantomJS client attached to a hub.
	RoleClient Role = "client"
)

// Mode selects the topology the supervisor brings up.
type Mode string

const (
	// ModeStandalone runs the server alone, exposing every locally installed
	// browser driver directly.
	ModeStandalone Mode = "standalone"
	// ModeHub runs the server with -role hub and attaches a single headless
	// client to it.
	ModeHub Mode = "hub"
)

// ParseMode converts a user-supplied mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standalone":
		return ModeStandalone, nil
	case "hub", "hub-with-client", "headless", "phantom":
		return ModeHub, nil
	default:
		return "", fmt.Errorf("unknown mode %q: want standalone or hub", s)
	}
}

// Stream identifies the output channel a line was read from.
type Stream string

const (
	// StreamStdout is the child's standard output.
	StreamStdout Stream = "stdout"
	// StreamStderr is the child's standard error.
	StreamStderr Stream = "stderr"
)

// Line is one line of text read from a child process.
type Line struct {
	Role   Role
	Stream Stream
	Text   string
}
