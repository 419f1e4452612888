// Command gridctl runs a local Selenium grid from the command line or serves
// it to MCP clients.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	seleniumgrid "github.com/wagiedev/selenium-grid-go"
)

// app carries what the commands share. Tests replace its fields.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// gridOptions are appended to the options built from the configuration.
	gridOptions []seleniumgrid.Option

	configFile string
	logLevel   string
}

func newApp() *app {
	return &app{stdout: os.Stdout, stderr: os.Stderr}
}

func (a *app) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}

	return seleniumgrid.NewTextLogger(a.stderr, level), nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gridctl",
		Short: "Run a local Selenium grid",
		Long: `gridctl launches a Selenium server, optionally as a hub with a headless
PhantomJS client registered, and keeps it running until interrupted.

Configuration is read from gridctl.yaml in the working directory (or --config),
then GRIDCTL_* environment variables, then command line flags.`,
		SilenceUsage: true,
	}

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default: ./gridctl.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.String("java", "", "path to the java executable")
	flags.String("jar", "", "path to the Selenium server jar")
	flags.String("phantomjs", "", "path to the phantomjs executable")

	root.AddCommand(newRunCmd(a), newMCPCmd(a), newVersionCmd(a))

	return root
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
