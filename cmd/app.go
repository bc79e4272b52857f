package cmd

import (
	"context"
	"fmt"

	"cratedocs/internal/cache"
	"cratedocs/internal/config"
	"cratedocs/internal/docsrs"
	"cratedocs/internal/registry"
	"cratedocs/internal/rustdoc"
)

// app is the CLI-side wiring: the same collaborators the MCP server
// holds, minus the catalog (one-shot commands don't track usage).
type app struct {
	cfg    *config.Config
	cache  *cache.Cache
	crates *registry.Client
	docs   *docsrs.Fetcher
}

func newApp() (*app, error) {
	cfg := loadConfig()

	httpClient := registry.NewHTTPClient(cfg.HTTP.UserAgent, cfg.HTTP.CratesIOPerSecond)
	c, err := cache.New(config.HTTPCacheDir(), cfg.TTL(), httpClient)
	if err != nil {
		return nil, fmt.Errorf("opening http cache: %w", err)
	}

	fetcher, err := docsrs.NewFetcher(c, cfg.Cache.DocLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating docs fetcher: %w", err)
	}

	return &app{
		cfg:    cfg,
		cache:  c,
		crates: registry.NewClient(c),
		docs:   fetcher,
	}, nil
}

func (a *app) resolveVersion(ctx context.Context, name, version string) (string, error) {
	return registry.ResolveVersion(ctx, a.cache, name, version)
}

func (a *app) fetchDoc(ctx context.Context, name, version string) (*rustdoc.Crate, string, error) {
	resolved, err := a.resolveVersion(ctx, name, version)
	if err != nil {
		return nil, "", err
	}
	doc, err := a.docs.FetchCrateDoc(ctx, name, resolved)
	return doc, resolved, err
}
