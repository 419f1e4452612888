package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	seleniumgrid "github.com/wagiedev/selenium-grid-go"
)

const (
	// configName is the file searched for in the working directory.
	configName = "gridctl"
	// envPrefix prefixes environment overrides, e.g. GRIDCTL_PORT.
	envPrefix = "GRIDCTL"
)

// Config is the gridctl configuration.
type Config struct {
	Mode string `mapstructure:"mode"`

	seleniumgrid.LaunchConfig `mapstructure:",squash"`

	Java      string `mapstructure:"java"`
	Jar       string `mapstructure:"jar"`
	PhantomJS string `mapstructure:"phantomjs"`

	WebDriverPort     int  `mapstructure:"webdriver_port"`
	ParentDeathSignal bool `mapstructure:"parent_death_signal"`
	SkipVersionCheck  bool `mapstructure:"skip_version_check"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"java":           "java",
	"jar":            "jar",
	"phantomjs":      "phantomjs",
	"host":           "host",
	"port":           "port",
	"timeout":        "timeout",
	"max-session":    "max_session",
	"webdriver-port": "webdriver_port",
}

func setDefaults(v *viper.Viper) {
	defaults := seleniumgrid.DefaultLaunchConfig()

	v.SetDefault("mode", string(seleniumgrid.ModeStandalone))
	v.SetDefault("host", defaults.Host)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("max_session", defaults.MaxSessions)
	v.SetDefault("java", "")
	v.SetDefault("jar", "")
	v.SetDefault("phantomjs", "")
	v.SetDefault("webdriver_port", seleniumgrid.DefaultClientWebDriverPort)
	v.SetDefault("parent_death_signal", false)
	v.SetDefault("skip_version_check", false)
}

// loadConfig merges defaults, the config file, the environment and the
// flags of cmd, in increasing precedence.
func loadConfig(configFile string, cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if cmd != nil {
		for name, key := range flagKeys {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// GridMode parses the configured mode.
func (c *Config) GridMode() (seleniumgrid.Mode, error) {
	return seleniumgrid.ParseMode(c.Mode)
}

// Options converts the configuration into supervisor options.
func (c *Config) Options() []seleniumgrid.Option {
	return []seleniumgrid.Option{
		seleniumgrid.WithJavaPath(c.Java),
		seleniumgrid.WithServerJar(c.Jar),
		seleniumgrid.WithClientPath(c.PhantomJS),
		seleniumgrid.WithClientWebDriverPort(c.WebDriverPort),
		seleniumgrid.WithParentDeathSignal(c.ParentDeathSignal),
		seleniumgrid.WithSkipVersionCheck(c.SkipVersionCheck),
	}
}
