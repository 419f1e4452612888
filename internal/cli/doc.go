// Package cli provides binary discovery and command building for the
// Selenium server and the PhantomJS client.
//
// This package provides two main capabilities:
//
// # Binary Discovery
//
// The Discoverer locates java, the Selenium server jar and, in hub mode,
// the phantomjs executable:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    ServerJar: "",           // Optional explicit path
//	    Logger:    slog.Default(),
//	})
//	bins, err := discoverer.Discover(ctx, config.ModeHub)
//
// Each binary is searched in order: the explicit path, an environment
// variable, then well-known locations. A module-local jar directory takes
// precedence over the vendored location.
//
// # Command Building
//
//	serverArgs := cli.BuildServerArgs(bins.ServerJar, config.ModeHub, launch)
//	clientArgs := cli.BuildClientArgs(launch, 8080)
package cli
