package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderOption customizes Load.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	configFile string
	envFile    string
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lo *loaderOptions) { lo.configFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lo *loaderOptions) { lo.envFile = path }
}

// Load reads the daemon configuration. Without explicit overrides it looks
// for ./config.yml and ./.env. Environment variables use the PEERTRACK_
// prefix with underscores, e.g. PEERTRACK_TRACKER_QUERY_INTERVAL=10s.
func Load(opts ...LoaderOption) (*Config, error) {
	var lo loaderOptions
	for _, opt := range opts {
		opt(&lo)
	}

	envFile := lo.envFile
	if envFile == "" && exists(".env") {
		envFile = ".env"
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("PEERTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := lo.configFile
	if configFile == "" && exists("config.yml") {
		configFile = "config.yml"
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
