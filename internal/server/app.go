package server

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/agenthands/cartoonist/internal/config"
	"github.com/agenthands/cartoonist/internal/core"
	"github.com/agenthands/cartoonist/internal/core/concept"
	"github.com/agenthands/cartoonist/internal/core/location"
	"github.com/agenthands/cartoonist/internal/core/news"
	"github.com/agenthands/cartoonist/internal/core/ratelimit"
	"github.com/agenthands/cartoonist/internal/core/render"
	"github.com/agenthands/cartoonist/internal/driver"
	"github.com/agenthands/cartoonist/internal/geo"
	"github.com/agenthands/cartoonist/internal/llm"
	"github.com/agenthands/cartoonist/internal/logging"
	"github.com/agenthands/cartoonist/internal/newsfeed"
	"github.com/agenthands/cartoonist/internal/store"
)

// App is a fully wired server plus the resources it must release.
type App struct {
	Server  *Server
	closers []func() error
}

// Build wires every component from cfg. Only the text model and the blob
// store are mandatory; the image model, Redis and Memgraph degrade.
func Build(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	logger = logging.OrDiscard(logger)
	app := &App{}

	text, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init text model: %w", err)
	}
	app.closeIfCloser(text)

	script := text
	if cfg.Script.Provider != "" {
		script, err = llm.NewClient(ctx, cfg.ScriptModel())
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init script model: %w", err)
		}
		app.closeIfCloser(script)
	}

	var images llm.ImageClient
	if img, err := llm.NewImageClient(ctx, cfg.Image); err != nil {
		logger.Warn("image model unavailable, cartoons will use placeholders", "provider", cfg.Image.Provider, "err", err)
	} else {
		images = img
		app.closeIfCloser(img)
	}

	feed, err := newsfeed.New(cfg.News, text)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init news provider: %w", err)
	}

	blobs, err := store.New(cfg.Store)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	st, index := app.withIndex(ctx, cfg.Memgraph, blobs, logger)

	cartoonist := core.NewCartoonist(
		app.limiter(cfg.RateLimit, logger),
		location.NewResolver(
			geo.NewNominatim(geo.NominatimOptions{
				BaseURL:           cfg.Geocoder.BaseURL,
				UserAgent:         cfg.Geocoder.UserAgent,
				Language:          cfg.Geocoder.Language,
				RequestsPerSecond: cfg.Geocoder.RequestsPerSecond,
				Timeout:           cfg.Geocoder.Timeout(),
			}),
			geo.NewIPAPI(cfg.Geocoder.NetworkURL, cfg.Geocoder.Timeout()),
			cfg.Geocoder.Timeout(),
			logger,
		),
		news.NewRetriever(feed, news.Options{
			Language: cfg.News.Language,
			Recency:  cfg.News.Recency(),
			Timeout:  cfg.News.Timeout(),
		}, logger),
		concept.NewSynthesizer(text, cfg.Prompts.Concepts, cfg.LLM.Timeout(), logger),
		render.NewRenderer(script, images, render.Options{
			ScriptPrompt:  cfg.Prompts.Script,
			ImagePrompt:   cfg.Prompts.Image,
			Style:         cfg.Render.Style,
			ScriptTimeout: cfg.Render.ScriptTimeout(),
			ImageTimeout:  cfg.Render.ImageTimeout(),
		}, logger),
		st,
		logger,
	)
	cartoonist.NewsCount = cfg.News.Count

	app.Server = NewServer(cartoonist, st, index, cfg.Server.AllowedOrigins, logger)
	return app, nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) closeIfCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}
}

func (a *App) limiter(cfg config.RateLimitConfig, logger *log.Logger) ratelimit.Limiter {
	if strings.EqualFold(cfg.Backend, "redis") && cfg.RedisURL != "" {
		r := ratelimit.NewRedisFromURL(cfg.RedisURL, cfg.Limit, cfg.Window(), logger)
		a.closers = append(a.closers, r.Close)
		logger.Info("rate limiter backed by redis", "limit", cfg.Limit, "window", cfg.Window())
		return r
	}
	return ratelimit.NewMemory(cfg.Limit, cfg.Window())
}

// withIndex wraps the blob store with the Memgraph index when configured.
// An unreachable graph is logged and skipped.
func (a *App) withIndex(ctx context.Context, cfg config.MemgraphConfig, blobs store.Store, logger *log.Logger) (store.Store, RecentLister) {
	if cfg.URI == "" {
		return blobs, nil
	}
	d, err := driver.NewMemgraphDriver(ctx, cfg.URI, cfg.User, cfg.Password, logger)
	if err != nil {
		logger.Warn("memgraph unavailable, cartoon index disabled", "uri", cfg.URI, "err", err)
		return blobs, nil
	}
	a.closers = append(a.closers, func() error { return d.Close(context.Background()) })
	if err := d.BuildIndices(ctx); err != nil {
		logger.Warn("failed to build cartoon indices", "err", err)
	}
	indexed := store.NewIndexed(blobs, d, logger)
	return indexed, indexed
}
