package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	seleniumgrid "github.com/wagiedev/selenium-grid-go"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "gridctl %s (%s)\n", seleniumgrid.Version, runtime.Version())
		},
	}
}
