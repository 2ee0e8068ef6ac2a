package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/mindlens/internal/analyzer"
	"github.com/blackwell-systems/mindlens/internal/classify"
	"github.com/blackwell-systems/mindlens/internal/config"
	"github.com/blackwell-systems/mindlens/internal/logging"
	"github.com/blackwell-systems/mindlens/internal/output"
	"github.com/blackwell-systems/mindlens/internal/store"
)

// env bundles what most commands need after loading config.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	loc    *time.Location
	store  store.Store
	engine *analyzer.Engine
}

// Close releases the store.
func (e *env) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// newLogger builds the CLI logger. Logs go to stderr so stdout carries
// only command output.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	return logging.New("mindlens", level, cfg.Log.Format, w)
}

// setup loads config, applies output preferences and opens the store.
func setup(ctx context.Context) (*env, error) {
	return setupWith(ctx, "")
}

// setupWith is setup with the log format overridden when logFormat is set.
func setupWith(ctx context.Context, logFormat string) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	output.AutoNoColor(flagNoColor || !cfg.Output.Color)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg, os.Stderr)

	st, err := openStore(ctx, cfg, loc)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	engine := analyzer.NewEngine(st,
		analyzer.WithLocation(loc),
		analyzer.WithTimeout(cfg.QueryTimeout),
		analyzer.WithLogger(logging.Component(log, "analyzer")),
	)

	return &env{cfg: cfg, log: log, loc: loc, store: st, engine: engine}, nil
}

// userID resolves the journal owner for CLI commands.
func (e *env) userID() (string, error) {
	id, err := e.cfg.ResolveUserID(flagUser, config.ConfigDir())
	if err != nil {
		return "", fmt.Errorf("resolving user: %w", err)
	}
	return id, nil
}

// openStore opens the configured backend.
func openStore(ctx context.Context, cfg *config.Config, loc *time.Location) (store.Store, error) {
	if cfg.Database.Driver == "postgres" {
		pg, err := store.OpenPostgres(ctx, cfg.Database.DSN, store.WithLocation(loc))
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	db, err := store.Open(cfg.Database.Path, store.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	return db, nil
}

// buildClassifier returns the configured emotion classifier.
func buildClassifier(cfg *config.Config) (classify.Classifier, error) {
	switch cfg.Classifier.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("classifier.provider is openai but no API key is set (openai.api_key or OPENAI_API_KEY)")
		}
		return classify.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Classifier.Model, cfg.Reflector.Model), nil
	case "http":
		return classify.NewService(cfg.Classifier.BaseURL, cfg.Classifier.Timeout), nil
	default:
		return classify.Disabled{}, nil
	}
}

// buildReflector returns the configured reflection generator. The OpenAI
// reflector degrades to the static messages when no key is configured.
func buildReflector(cfg *config.Config, log zerolog.Logger) classify.Reflector {
	if cfg.Reflector.Provider == "openai" {
		if cfg.OpenAI.APIKey != "" {
			return classify.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Classifier.Model, cfg.Reflector.Model)
		}
		log.Debug().Msg("no OpenAI API key, using static reflections")
	}
	return classify.Static{}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
