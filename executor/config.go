package executor

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost    = "localhost"
	DefaultPort    = 22
	DefaultTimeout = 30 * time.Second
)

// Config holds the SSH connection settings for the cluster head node. It is
// read once at startup and never mutated afterwards.
type Config struct {
	Host     string        `yaml:"host"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	KeyFile  string        `yaml:"key_file"`
	Port     int           `yaml:"port"`
	Timeout  time.Duration `yaml:"-"`
}

// ConfigFromEnv builds a Config from the SLURM_* environment variables.
// SLURM_KEY_FILE falls back to ~/.ssh/id_rsa when the file exists.
func ConfigFromEnv() Config {
	cfg := Config{
		Host:     getenv("SLURM_HOST", DefaultHost),
		User:     getenv("SLURM_USER", getenv("USER", "user")),
		Password: os.Getenv("SLURM_PASSWORD"),
		KeyFile:  os.Getenv("SLURM_KEY_FILE"),
		Port:     DefaultPort,
		Timeout:  DefaultTimeout,
	}

	if cfg.KeyFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path := filepath.Join(home, ".ssh", "id_rsa")
			if _, err := os.Stat(path); err == nil {
				cfg.KeyFile = path
			}
		}
	}

	if p := os.Getenv("SLURM_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		}
	}

	return cfg
}

// LoadConfig reads a Config from a YAML file. Missing fields keep the same
// defaults as ConfigFromEnv.
func LoadConfig(path string) (Config, error) {
	cb, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{
		Host:    DefaultHost,
		User:    getenv("USER", "user"),
		Port:    DefaultPort,
		Timeout: DefaultTimeout,
	}
	if err := yaml.Unmarshal(cb, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Addr returns the host:port dial target.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
