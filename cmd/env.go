package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/agrisight/agrisight/internal/advisor"
	"github.com/agrisight/agrisight/internal/store"
	"github.com/agrisight/agrisight/pkg/anthropic"
	"github.com/agrisight/agrisight/pkg/openmeteo"
	"github.com/agrisight/agrisight/pkg/sentinel"
)

// env bundles the components most commands need.
type env struct {
	Store    store.Store
	Weather  openmeteo.Client
	Sentinel sentinel.Client
	Advisor  *advisor.Advisor
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var llm anthropic.Client
	if cfg.Anthropic.Key != "" {
		llm = anthropic.NewClient(cfg.Anthropic.Key)
	}

	return &env{
		Store: st,
		Weather: openmeteo.NewClient(
			openmeteo.WithBaseURL(cfg.Weather.BaseURL),
			openmeteo.WithRateLimit(cfg.Weather.RateLimitRPS),
		),
		Sentinel: sentinel.NewClient(
			cfg.Sentinel.ClientID,
			cfg.Sentinel.ClientSecret,
			cfg.Sentinel.InstanceID,
			sentinel.WithBaseURL(cfg.Sentinel.BaseURL),
		),
		Advisor: advisor.New(llm,
			advisor.WithModel(cfg.Anthropic.Model),
			advisor.WithMaxTokens(cfg.Anthropic.MaxTokens),
		),
	}, nil
}
