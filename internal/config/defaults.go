// Package config provides configuration loading and defaults for mindlens.
package config

import "time"

// DefaultConfigDir is the default location for mindlens configuration.
const DefaultConfigDir = "~/.config/mindlens"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "mindlens.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultUserIDFile holds the generated local user id.
const DefaultUserIDFile = "user_id"

// DefaultEnvPrefix prefixes environment overrides, e.g. MINDLENS_SERVER_ADDR.
const DefaultEnvPrefix = "MINDLENS"

// DefaultTimezone defines calendar days for streaks and daily trends.
const DefaultTimezone = "UTC"

// DefaultQueryTimeout bounds each analytics read.
const DefaultQueryTimeout = 5 * time.Second

// DefaultDatabase holds the default storage settings.
var DefaultDatabase = Database{
	Driver: "sqlite",
	Path:   DefaultConfigDir + "/" + DefaultDBName,
}

// DefaultClassifier holds the default emotion classifier settings.
var DefaultClassifier = Classifier{
	Provider: "openai",
	Model:    "gpt-4o-mini",
	BaseURL:  "http://localhost:8000",
	Timeout:  30 * time.Second,
}

// DefaultReflector holds the default reflection generator settings.
var DefaultReflector = Reflector{
	Provider: "openai",
	Model:    "gpt-4o-mini",
}

// DefaultServer holds the default HTTP server settings.
var DefaultServer = Server{
	Addr:            ":8080",
	ShutdownTimeout: 10 * time.Second,
}

// DefaultRollup holds the default nightly rollup schedule.
var DefaultRollup = Rollup{
	Enabled: true,
	Hour:    3,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultLog holds the default logging preferences.
var DefaultLog = Log{
	Level:  "info",
	Format: "console",
}
