package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	seleniumgrid "github.com/wagiedev/selenium-grid-go"
)

// shutdownTimeout bounds the wait for the children after an interrupt.
const shutdownTimeout = 30 * time.Second

func newRunCmd(a *app) *cobra.Command {
	var hub bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the grid and keep it running until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.configFile, cmd)
			if err != nil {
				return err
			}

			if hub {
				cfg.Mode = string(seleniumgrid.ModeHub)
			}

			return a.run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&hub, "hub", false, "run as a hub with a PhantomJS client")
	flags.String("host", "", "bind address of the server")
	flags.Int("port", 0, "bind port of the server")
	flags.Int("timeout", 0, "session timeout in seconds passed to the server")
	flags.Int("max-session", 0, "maximum concurrent sessions")
	flags.Int("webdriver-port", 0, "WebDriver port of the PhantomJS client")

	return cmd
}

func (a *app) run(ctx context.Context, cfg *Config) error {
	log, err := a.logger()
	if err != nil {
		return err
	}

	mode, err := cfg.GridMode()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	opts := append(cfg.Options(),
		seleniumgrid.WithLogger(log),
		// Signals are handled here so the grid is stopped and waited for.
		seleniumgrid.WithExitHook(false),
	)
	opts = append(opts, a.gridOptions...)

	grid := seleniumgrid.NewSupervisor(opts...)

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := grid.Close(closeCtx); err != nil {
			log.Warn("Failed to stop grid", "error", err)
		}
	}()

	if err := grid.Start(ctx, mode, cfg.LaunchConfig); err != nil {
		return fmt.Errorf("start %s grid: %w", mode, err)
	}

	fmt.Fprintf(a.stdout, "Selenium grid (%s) ready at %s/wd/hub\n", mode, cfg.HubURL())

	<-ctx.Done()

	log.Info("Shutting down grid")

	return nil
}
