package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/funnel"
	"github.com/sells-group/prospector/internal/pipeline"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/internal/store"
	anthropicpkg "github.com/sells-group/prospector/pkg/anthropic"
	"github.com/sells-group/prospector/pkg/places"
)

// pipelineEnv holds the initialized clients, store, and pipeline shared by
// the run and comprehensive commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the run-history database and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initPipeline sets up the API clients, the store, and the funnel stages.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Places.Key == "" {
		return nil, eris.New("PROSPECTOR_PLACES_KEY is not set")
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("PROSPECTOR_ANTHROPIC_KEY is not set")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	var placesOpts []places.Option
	if cfg.Places.BaseURL != "" {
		placesOpts = append(placesOpts, places.WithBaseURL(cfg.Places.BaseURL))
	}
	placesClient := places.NewClient(cfg.Places.Key, placesOpts...)
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	searcher := search.New(placesClient, cfg.Search, cfg.USStates)
	enricher := enrich.New(anthropicClient, cfg.Anthropic.Model, cfg.AI)
	gate := funnel.NewWebsiteGate(placesClient, cfg.Filters.BusinessIndicators,
		time.Duration(cfg.Filters.WebsiteTimeoutSecs)*time.Second,
		time.Duration(cfg.Filters.WebsiteDelayMillis)*time.Millisecond)

	zap.L().Info("pipeline initialized",
		zap.String("model", cfg.Anthropic.Model),
		zap.String("store", cfg.Store.Path),
	)

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, searcher, enricher, gate, st),
	}, nil
}
