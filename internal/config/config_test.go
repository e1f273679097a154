package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "migrationgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"migrations"}, cfg.Generation.Ignore)
	assert.Equal(t, 4, cfg.Generation.Concurrency)
	assert.False(t, cfg.Generation.IgnoreIndexNames)
	assert.Equal(t, "php", cfg.Output.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/shop
  schema: sales
generation:
  tables: [users, orders]
  ignore_index_names: true
  concurrency: 8
output:
  dir: database/migrations
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/shop", cfg.Database.URL)
	assert.Equal(t, "sales", cfg.Database.Schema)
	assert.Equal(t, []string{"users", "orders"}, cfg.Generation.Tables)
	assert.True(t, cfg.Generation.IgnoreIndexNames)
	assert.Equal(t, 8, cfg.Generation.Concurrency)
	assert.Equal(t, "database/migrations", cfg.Output.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// keys missing from the file keep their defaults
	assert.Equal(t, []string{"migrations"}, cfg.Generation.Ignore)
	assert.Equal(t, "php", cfg.Output.Format)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost/shop
logging:
  level: debug
`)
	t.Setenv("MIGRATIONGEN_DATABASE_URL", "mysql://root@tcp(localhost:3306)/shop")
	t.Setenv("MIGRATIONGEN_IGNORE", "migrations,jobs")
	t.Setenv("MIGRATIONGEN_CONCURRENCY", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql://root@tcp(localhost:3306)/shop", cfg.Database.URL)
	assert.Equal(t, []string{"migrations", "jobs"}, cfg.Generation.Ignore)
	assert.Equal(t, 2, cfg.Generation.Concurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [not, a, map")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeConfig(t, "output:\n  directory: out\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidEnvironment(t *testing.T) {
	t.Setenv("MIGRATIONGEN_CONCURRENCY", "many")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse environment variables")
}

func TestLoadLeavesValidationToCaller(t *testing.T) {
	t.Setenv("MIGRATIONGEN_CONCURRENCY", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Generation.Concurrency)
	assert.Error(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"upper case level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
		{"bad output format", func(c *Config) { c.Output.Format = "sql" }, "invalid output format"},
		{"markdown output", func(c *Config) { c.Output.Format = "markdown" }, ""},
		{"dir and file", func(c *Config) { c.Output.Dir = "out"; c.Output.File = "out.php" }, "cannot be used together"},
		{"zero concurrency", func(c *Config) { c.Generation.Concurrency = 0 }, "concurrency must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
