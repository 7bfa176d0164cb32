package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile stores the TOML text in a temporary file and returns its path.
func writeConfigFile(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

// TestLoadDefaults verifies that without file and environment the defaults are used.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "data/contacts.db", cfg.Database.Path)
	assert.True(t, cfg.RequestLogging)
	assert.Equal(t, ":8080", cfg.Addr())
}

// TestLoadFileAndEnvironment verifies that environment variables win over the TOML file, which in
// turn wins over the defaults.
func TestLoadFileAndEnvironment(t *testing.T) {
	path := writeConfigFile(t, `
port = 9000
seedFile = "seed.json"

[database]
driver = "mysql"
host = "db:3306"
user = "dirk"

[log]
level = "debug"
`)
	t.Setenv("DBUSER", "pavla")
	t.Setenv("GIN_LOGGING", "OFF")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "seed.json", cfg.SeedFile)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "db:3306", cfg.Database.Host)
	assert.Equal(t, "pavla", cfg.Database.User)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.RequestLogging)
	assert.Equal(t, 5, cfg.Log.MaxBackups, "defaults survive for keys missing in the file")
}

// TestLoadInvalidPort expects an error for a PORT variable that is not a number.
func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("PORT", "eighty")
	_, err := Load("")
	assert.Error(t, err)
}

// TestLoadUnknownDriver expects an error for a database driver that is not supported.
func TestLoadUnknownDriver(t *testing.T) {
	t.Setenv("DBDRIVER", "oracle")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown database driver")
}

// TestLoadMissingFile expects an error when an explicitly named config file does not exist.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
