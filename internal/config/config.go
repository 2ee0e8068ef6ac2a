package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level mindlens configuration.
type Config struct {
	UserID       string        `mapstructure:"user_id"`
	Timezone     string        `mapstructure:"timezone"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	Database     Database      `mapstructure:"database"`
	Classifier   Classifier    `mapstructure:"classifier"`
	Reflector    Reflector     `mapstructure:"reflector"`
	OpenAI       OpenAI        `mapstructure:"openai"`
	Server       Server        `mapstructure:"server"`
	Rollup       Rollup        `mapstructure:"rollup"`
	Output       Output        `mapstructure:"output"`
	Log          Log           `mapstructure:"log"`
}

// Database selects and configures the entry store.
type Database struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// Classifier configures the emotion classifier.
type Classifier struct {
	// Provider is "openai", "http" or "none".
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Reflector configures the reflection generator.
type Reflector struct {
	// Provider is "openai" or "static".
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

// OpenAI holds credentials for any OpenAI-compatible endpoint.
type OpenAI struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Rollup configures the nightly emotion history rebuild.
type Rollup struct {
	Enabled bool `mapstructure:"enabled"`
	Hour    int  `mapstructure:"hour"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Log defines logging preferences.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
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
// and returns a Config with all defaults applied. A .env file in the
// working directory and MINDLENS_* environment variables override the file.
func Load(cfgFile string) (*Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults.
	v.SetDefault("user_id", "")
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("query_timeout", DefaultQueryTimeout)
	v.SetDefault("database.driver", DefaultDatabase.Driver)
	v.SetDefault("database.path", DefaultDatabase.Path)
	v.SetDefault("database.dsn", DefaultDatabase.DSN)
	v.SetDefault("classifier.provider", DefaultClassifier.Provider)
	v.SetDefault("classifier.model", DefaultClassifier.Model)
	v.SetDefault("classifier.base_url", DefaultClassifier.BaseURL)
	v.SetDefault("classifier.timeout", DefaultClassifier.Timeout)
	v.SetDefault("reflector.provider", DefaultReflector.Provider)
	v.SetDefault("reflector.model", DefaultReflector.Model)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("server.addr", DefaultServer.Addr)
	v.SetDefault("server.shutdown_timeout", DefaultServer.ShutdownTimeout)
	v.SetDefault("rollup.enabled", DefaultRollup.Enabled)
	v.SetDefault("rollup.hour", DefaultRollup.Hour)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("log.level", DefaultLog.Level)
	v.SetDefault("log.format", DefaultLog.Format)

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// The conventional variable works without the prefix.
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	// Expand paths.
	cfg.Database.Path = expandPath(cfg.Database.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database.driver %q (want sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return errors.New("database.dsn is required for the postgres driver")
	}
	switch c.Classifier.Provider {
	case "openai", "http", "none":
	default:
		return fmt.Errorf("unknown classifier.provider %q (want openai, http or none)", c.Classifier.Provider)
	}
	switch c.Reflector.Provider {
	case "openai", "static":
	default:
		return fmt.Errorf("unknown reflector.provider %q (want openai or static)", c.Reflector.Provider)
	}
	if c.Rollup.Hour < 0 || c.Rollup.Hour > 23 {
		return fmt.Errorf("rollup.hour %d outside 0-23", c.Rollup.Hour)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

// ResolveUserID picks the user id for CLI commands: the explicit flag, then
// the configured user_id, then a UUID generated once and stored under dir.
func (c *Config) ResolveUserID(flag, dir string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if c.UserID != "" {
		return c.UserID, nil
	}

	path := filepath.Join(dir, DefaultUserIDFile)
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading user id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing user id: %w", err)
	}
	return id, nil
}
