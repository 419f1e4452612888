package cli

import (
	"strconv"

	"github.com/wagiedev/selenium-grid-go/internal/config"
)

// Command represents a command to execute.
type Command struct {
	// Path is the executable.
	Path string

	// Args are the command line arguments.
	Args []string
}

// BuildServerArgs constructs the java arguments for the Selenium server.
//
// The order is fixed: -jar <jar>, then -role hub in hub mode, then the
// host, port, timeout and session flags.
func BuildServerArgs(jarPath string, mode config.Mode, launch config.LaunchConfig) []string {
	args := make([]string, 0, 12)
	args = append(args, "-jar", jarPath)

	if mode == config.ModeHub {
		args = append(args, "-role", "hub")
	}

	args = append(args,
		"-host", launch.Host,
		"-port", strconv.Itoa(launch.Port),
		"-timeout", strconv.Itoa(launch.Timeout),
		"-maxSession", strconv.Itoa(launch.MaxSessions),
	)

	return args
}

// BuildClientArgs constructs the phantomjs arguments that register it with
// the hub described by launch.
func BuildClientArgs(launch config.LaunchConfig, webdriverPort int) []string {
	return []string{
		"--webdriver", strconv.Itoa(webdriverPort),
		"--webdriver-selenium-grid-hub=" + launch.HubURL(),
	}
}

// ServerCommand returns the full server command for the resolved binaries.
func ServerCommand(bins *config.Binaries, mode config.Mode, launch config.LaunchConfig) Command {
	return Command{
		Path: bins.Java,
		Args: BuildServerArgs(bins.ServerJar, mode, launch),
	}
}

// ClientCommand returns the full client command for the resolved binaries.
func ClientCommand(bins *config.Binaries, launch config.LaunchConfig, webdriverPort int) Command {
	return Command{
		Path: bins.Client,
		Args: BuildClientArgs(launch, webdriverPort),
	}
}
