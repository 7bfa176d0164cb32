// Package config loads the settings of the contacts app. Values are taken
// from built-in defaults, an optional TOML file, an optional .env file and
// finally the process environment, with later sources overriding earlier
// ones.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// DatabaseConfig describes where contacts are stored.
type DatabaseConfig struct {
	Driver   string `toml:"driver"`   // sqlite, mysql or memory
	Path     string `toml:"path"`     // SQLite database file
	Host     string `toml:"host"`     // MySQL host:port
	User     string `toml:"user"`     // MySQL user
	Password string `toml:"password"` // MySQL password
	Name     string `toml:"name"`     // MySQL database name
}

// LogConfig controls the zap logger and lumberjack file rotation.
type LogConfig struct {
	FileName   string `toml:"fileName"`   // empty means console only
	MaxSize    int    `toml:"maxSize"`    // megabytes
	MaxBackups int    `toml:"maxBackups"` // rotated files to keep
	MaxAge     int    `toml:"maxAge"`     // days
	Level      string `toml:"level"`      // debug, info, warn, error
}

// Config is the complete application configuration.
type Config struct {
	Port           int            `toml:"port"`
	Mode           string         `toml:"mode"` // gin mode: debug, release or test
	RequestLogging bool           `toml:"requestLogging"`
	SeedFile       string         `toml:"seedFile"`
	Database       DatabaseConfig `toml:"database"`
	Log            LogConfig      `toml:"log"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		Port:           8080,
		Mode:           "debug",
		RequestLogging: true,
		SeedFile:       "data/contacts.json",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "data/contacts.db",
			Host:   "localhost:3306",
			Name:   "contacts",
		},
		Log: LogConfig{
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Level:      "info",
		},
	}
}

// Load builds the configuration. The TOML file at path is optional; when
// path is empty the CONFIG_FILE environment variable is consulted. A .env
// file in the working directory is loaded if present, without overriding
// variables that are already set.
//
// Usage example:
// > PORT=8080 DBDRIVER=sqlite DBPATH=data/contacts.db go run ./cmd/service
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not read .env file: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides configuration values with environment variables. The
// variable names are the ones the service has always used.
func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("could not parse PORT env variable: %w", err)
		}
		cfg.Port = p
	}
	setString(&cfg.Mode, "GIN_MODE")
	if logging := os.Getenv("GIN_LOGGING"); logging != "" {
		cfg.RequestLogging = !strings.EqualFold(logging, "off")
	}
	setString(&cfg.SeedFile, "SEED_FILE")
	setString(&cfg.Database.Driver, "DBDRIVER")
	setString(&cfg.Database.Path, "DBPATH")
	setString(&cfg.Database.Host, "DBHOST")
	setString(&cfg.Database.User, "DBUSER")
	setString(&cfg.Database.Password, "DBPWD")
	setString(&cfg.Database.Name, "DBNAME")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.FileName, "LOG_FILE")
	return nil
}

func setString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*target = v
	}
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("sqlite driver needs a database path")
		}
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
