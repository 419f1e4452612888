package cli

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/selenium-grid-go/internal/config"
	"github.com/wagiedev/selenium-grid-go/internal/errors"
)

const (
	// DefaultServerJar is the Selenium server jar shipped alongside the module.
	DefaultServerJar = "selenium-server-standalone-2.39.0.jar"

	// MinimumClientVersion is the oldest phantomjs that registers with a grid hub.
	MinimumClientVersion = "1.9.0"

	// VersionCheckTimeout is the timeout for the client version probe.
	VersionCheckTimeout = 2 * time.Second
)

// Environment variables consulted during discovery.
const (
	EnvServerJar        = "SELENIUM_SERVER_JAR"
	EnvClientPath       = "PHANTOMJS_BIN"
	EnvJavaHome         = "JAVA_HOME"
	EnvSkipVersionCheck = "SELENIUM_GRID_SKIP_VERSION_CHECK"
)

// Config holds configuration for binary discovery.
type Config struct {
	// JavaPath is an explicit java path that skips the search.
	JavaPath string

	// ServerJar is an explicit jar path that skips the search.
	ServerJar string

	// ClientPath is an explicit phantomjs path that skips the search.
	ClientPath string

	// Dir is the directory relative locations are resolved against.
	// If empty, the current working directory is used.
	Dir string

	// SkipVersionCheck skips the phantomjs version probe.
	// Can also be controlled via the SELENIUM_GRID_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	Logger *slog.Logger
}

// discoverer implements config.Discoverer.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements config.Discoverer.
var _ config.Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new binary discoverer with the given configuration.
func NewDiscoverer(cfg *Config) config.Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log.With("component", "discovery"),
	}
}

// Discover resolves java and the server jar, plus phantomjs in hub mode.
func (d *discoverer) Discover(ctx context.Context, mode config.Mode) (*config.Binaries, error) {
	d.log.Debug("Discovering grid binaries", "mode", mode)

	java, err := d.findJava()
	if err != nil {
		return nil, err
	}

	jar, err := d.findServerJar()
	if err != nil {
		return nil, err
	}

	bins := &config.Binaries{Java: java, ServerJar: jar}

	if mode == config.ModeHub {
		client, err := d.findClient()
		if err != nil {
			return nil, err
		}

		d.checkClientVersion(ctx, client)
		bins.Client = client
	}

	d.log.Debug("Discovered grid binaries", "java", bins.Java, "jar", bins.ServerJar, "client", bins.Client)

	return bins, nil
}

func (d *discoverer) baseDir() string {
	if d.cfg.Dir != "" {
		return d.cfg.Dir
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	return wd
}

func (d *discoverer) findJava() (string, error) {
	var common []string

	if home := os.Getenv(EnvJavaHome); home != "" {
		common = append(common, filepath.Join(home, "bin", "java"))
	}

	common = append(common, "/usr/bin/java", "/usr/local/bin/java")

	return d.find("java", d.cfg.JavaPath, "", "java", common)
}

func (d *discoverer) findServerJar() (string, error) {
	base := d.baseDir()

	return d.find("selenium server jar", d.cfg.ServerJar, EnvServerJar, "", []string{
		filepath.Join(base, "jar", DefaultServerJar),
		filepath.Join(base, "third_party", "selenium", DefaultServerJar),
	})
}

func (d *discoverer) findClient() (string, error) {
	common := []string{
		filepath.Join(d.baseDir(), "node_modules", "phantomjs", "bin", "phantomjs"),
		"/usr/local/bin/phantomjs",
		"/usr/bin/phantomjs",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		common = append(common, filepath.Join(homeDir, ".local/bin/phantomjs"))
	}

	return d.find("phantomjs", d.cfg.ClientPath, EnvClientPath, "phantomjs", common)
}

// find resolves one binary. An explicit path is used and only it; otherwise
// the env var, PATH and the common locations are tried in order.
func (d *discoverer) find(name, explicit, envVar, pathName string, common []string) (string, error) {
	if explicit != "" {
		d.log.Debug("Using explicit path", "name", name, "path", explicit)

		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}

		return "", &errors.BinaryNotFoundError{Name: name, SearchedPaths: []string{explicit}}
	}

	searchedPaths := make([]string, 0, len(common)+2)

	if envVar != "" {
		if p := os.Getenv(envVar); p != "" {
			if _, err := os.Stat(p); err == nil {
				d.log.Debug("Found via environment", "name", name, "env", envVar, "path", p)

				return p, nil
			}

			searchedPaths = append(searchedPaths, "$"+envVar)
		}
	}

	if pathName != "" {
		if p, err := exec.LookPath(pathName); err == nil {
			d.log.Debug("Found in PATH", "name", name, "path", p)

			return p, nil
		}

		searchedPaths = append(searchedPaths, "$PATH")
	}

	for _, p := range common {
		searchedPaths = append(searchedPaths, p)

		if _, err := os.Stat(p); err == nil {
			d.log.Debug("Found at common path", "name", name, "path", p)

			return p, nil
		}
	}

	d.log.Warn("Binary not found in any searched paths", "name", name, "searched_paths", searchedPaths)

	return "", &errors.BinaryNotFoundError{Name: name, SearchedPaths: searchedPaths}
}

var versionPattern = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

// checkClientVersion logs a warning if phantomjs is older than
// MinimumClientVersion. Errors are silently ignored.
func (d *discoverer) checkClientVersion(ctx context.Context, clientPath string) {
	if d.cfg.SkipVersionCheck || os.Getenv(EnvSkipVersionCheck) != "" {
		d.log.Debug("Skipping client version check")

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	//nolint:gosec // G204: the path comes from discovery
	output, err := exec.CommandContext(ctx, clientPath, "--version").Output()
	if err != nil {
		d.log.Debug("Client version check failed", "error", err)

		return
	}

	match := versionPattern.FindStringSubmatch(strings.TrimSpace(string(output)))
	if match == nil {
		d.log.Debug("Could not parse client version", "output", string(output))

		return
	}

	if compareVersions(match[1], MinimumClientVersion) < 0 {
		d.log.Warn("phantomjs version may not register with a grid hub",
			"version", match[1],
			"minimum_required", MinimumClientVersion,
		)

		return
	}

	d.log.Debug("Client version check passed", "version", match[1])
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
