package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the export tool. Configuration can come
// from a YAML file (config.yaml) or environment variables; environment
// variables always override YAML values. Secrets (the database password) must
// only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// Export target configuration
	Export ExportConfig `yaml:"export"`

	// Content database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`
}

// ExportConfig holds settings for the export file tree.
type ExportConfig struct {
	// Directory is the root of the exported tree; every resolved path name
	// is prefixed with it.
	Directory string `yaml:"directory" env:"EXPORT_DIR" env-default:"./export"`
}

// DatabaseConfig holds PostgreSQL connection configuration for the content
// database the exporter reads from.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"ekaya"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"content"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// Load reads configuration from config.yaml with environment variable
// overrides, falling back to environment variables alone when no config file
// exists. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	// Containers talking to a host-local content database need the docker
	// host alias instead of localhost.
	cfg.Database.Host = ResolveHostForDocker(cfg.Database.Host)

	cfg.Export.Directory = filepath.Clean(cfg.Export.Directory)

	return cfg, nil
}

// URL returns a PostgreSQL connection URL for pgxpool.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// ConnectionString returns a keyword/value PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

var (
	inDockerOnce sync.Once
	inDocker     bool
)

// runningInDocker reports whether the process runs inside a container, based
// on the /.dockerenv marker. The result is cached after the first call.
func runningInDocker() bool {
	inDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inDocker = err == nil
	})
	return inDocker
}

// ResolveHostForDocker maps localhost to the docker host alias when running
// inside a container, so the exporter can reach a content database on the
// host machine. Any other host passes through unchanged.
func ResolveHostForDocker(host string) string {
	if !runningInDocker() {
		return host
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return host
}
