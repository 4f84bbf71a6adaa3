package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon's runtime configuration.
type Config struct {
	Endpoint          string  `toml:"Endpoint"`
	AccountsFile      string  `toml:"AccountsFile"`
	ProxyFile         string  `toml:"ProxyFile"`
	ActivityFile      string  `toml:"ActivityFile"`
	MetricsAddress    string  `toml:"MetricsAddress"`
	LogFile           string  `toml:"LogFile"`
	RequestsPerSecond float64 `toml:"RequestsPerSecond"`
	Debug             bool    `toml:"Debug"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("config file %s: Endpoint is required", path)
	}
	applyDefaults(cfg, path)
	return cfg, nil
}

func applyDefaults(cfg *Config, path string) {
	dir := filepath.Dir(path)
	if cfg.AccountsFile == "" {
		cfg.AccountsFile = filepath.Join(dir, "pk.txt")
	}
	if cfg.ProxyFile == "" {
		cfg.ProxyFile = filepath.Join(dir, "proxy.txt")
	}
	if cfg.ActivityFile == "" {
		cfg.ActivityFile = filepath.Join(dir, "activity.json")
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		Endpoint:          "https://rpc.creek.example:443",
		MetricsAddress:    "",
		LogFile:           "",
		RequestsPerSecond: 4,
	}
	applyDefaults(cfg, path)
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
