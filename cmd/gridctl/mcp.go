package main

import (
	"context"

	"github.com/spf13/cobra"

	seleniumgrid "github.com/wagiedev/selenium-grid-go"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve grid_start, grid_stop and grid_status as MCP tools over stdio",
		Long: `mcp serves the grid as Model Context Protocol tools on stdin and stdout.
Logs go to stderr. The grid is stopped when the client disconnects, and its
processes are terminated if gridctl itself is interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.configFile, cmd)
			if err != nil {
				return err
			}

			log, err := a.logger()
			if err != nil {
				return err
			}

			opts := append(cfg.Options(), seleniumgrid.WithLogger(log))
			opts = append(opts, a.gridOptions...)

			grid := seleniumgrid.NewSupervisor(opts...)
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
				defer cancel()

				if err := grid.Close(closeCtx); err != nil {
					log.Warn("Failed to stop grid", "error", err)
				}
			}()

			log.Info("Serving MCP over stdio", "version", seleniumgrid.Version)

			return seleniumgrid.ServeMCP(cmd.Context(), grid, cfg.LaunchConfig)
		},
	}
}
