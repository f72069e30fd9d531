package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level cohortpulse configuration.
type Config struct {
	DBPath string `mapstructure:"db_path"`
	Strict bool   `mapstructure:"strict"`
	Server Server `mapstructure:"server"`
	Log    Log    `mapstructure:"log"`
	Output Output `mapstructure:"output"`
}

// Server defines the HTTP server settings used by the serve command.
type Server struct {
	Addr            string `mapstructure:"addr"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb"`
}

// Log defines logging preferences.
type Log struct {
	Dir     string `mapstructure:"dir"`
	Verbose bool   `mapstructure:"verbose"`
}

// Output defines terminal output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("db_path", filepath.Join(DefaultConfigDir, DefaultDBName))
	v.SetDefault("strict", DefaultStrict)
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.read_timeout_sec", DefaultServer.ReadTimeoutSec)
	v.SetDefault("server.write_timeout_sec", DefaultServer.WriteTimeoutSec)
	v.SetDefault("server.max_upload_mb", DefaultServer.MaxUploadMB)
	v.SetDefault("log.dir", DefaultLog.Dir)
	v.SetDefault("log.verbose", DefaultLog.Verbose)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand paths.
	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)

	return &cfg, nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
