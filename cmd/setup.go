package cmd

import (
	"fmt"

	"github.com/harusame/templight/internal/config"
	"github.com/harusame/templight/internal/engine"
	"github.com/harusame/templight/internal/logging"
	"github.com/harusame/templight/internal/matcher"
	"github.com/harusame/templight/internal/store"
)

// runtimeEnv bundles the objects every command needs.
type runtimeEnv struct {
	cfg    *config.Config
	logger logging.Logger
	source *store.FileSource
	store  *store.Store
	engine *engine.Engine
}

// buildRuntime loads configuration and wires the source provider, store,
// and engine together.
func buildRuntime() (*runtimeEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	source := store.NewFileSource(cfg.Templates.Dir, cfg.Templates.Extension)

	names := cfg.Templates.Names
	if len(names) == 0 {
		// No fixed set configured; discover what the directory offers
		if discovered, err := source.Names(); err == nil {
			names = discovered
		}
	}

	st := store.NewStore(source, cfg.Templates.TTL,
		store.WithLogger(logger),
		store.WithKnownNames(names),
	)

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if cfg.Validation.SynonymsFile != "" {
		synonyms, err := matcher.LoadSynonyms(cfg.Validation.SynonymsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load synonym table: %w", err)
		}
		engineOpts = append(engineOpts, engine.WithSynonyms(synonyms))
	}

	return &runtimeEnv{
		cfg:    cfg,
		logger: logger,
		source: source,
		store:  st,
		engine: engine.New(st, engineOpts...),
	}, nil
}
