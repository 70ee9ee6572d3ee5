package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/adanyl0v/sprintsync/internal/client"
)

const envPrefix = "SPRINTSYNC"

// Config is the client-side configuration. Values come from flags, then
// SPRINTSYNC_* variables, then config.yaml, then defaults.
type Config struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
	StaleTime   time.Duration
	ReadRetries int
	LogLevel    zerolog.Level
	Policy      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8000")
	v.SetDefault("session_file", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("stale_time", 30*time.Second)
	v.SetDefault("read_retries", 1)
	v.SetDefault("log_level", "warn")
	v.SetDefault("transition_policy", "free")
}

// newViper prepares a viper instance reading config.yaml from configPath, or
// from the working directory and the user config dir when configPath is empty.
func newViper(configPath string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return v
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if path, err := client.DefaultSessionPath(); err == nil {
		v.AddConfigPath(strings.TrimSuffix(path, "session.yaml"))
	}
	return v
}

func loadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		APIURL:      v.GetString("api_url"),
		SessionFile: v.GetString("session_file"),
		Timeout:     v.GetDuration("timeout"),
		StaleTime:   v.GetDuration("stale_time"),
		ReadRetries: v.GetInt("read_retries"),
		Policy:      v.GetString("transition_policy"),
	}

	if u, err := url.Parse(cfg.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api_url %q", cfg.APIURL)
	}

	level, err := zerolog.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	cfg.LogLevel = level

	if cfg.SessionFile == "" {
		cfg.SessionFile, err = client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
