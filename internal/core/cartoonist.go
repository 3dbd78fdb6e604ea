package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agenthands/cartoonist/internal/core/concept"
	"github.com/agenthands/cartoonist/internal/core/location"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/core/ratelimit"
	"github.com/agenthands/cartoonist/internal/logging"
	"github.com/agenthands/cartoonist/internal/store"
)

type Status string

const (
	StatusCompleted        Status = "completed"
	StatusRateLimited      Status = "rate_limited"
	StatusLocationNotFound Status = "location_not_found"
)

// Session is the per-request state owned by the host. A non-nil Location
// skips resolution entirely.
type Session struct {
	CallerID       string
	ManualLocation string
	ClientIP       string
	Device         *model.Coordinates
	Location       *model.Location
}

type Outcome struct {
	Status            Status               `json:"status"`
	RetryAfterSeconds int                  `json:"retry_after_seconds,omitempty"`
	Location          *model.Location      `json:"location,omitempty"`
	News              *model.NewsResult    `json:"news,omitempty"`
	Concepts          *model.ConceptSet    `json:"concepts,omitempty"`
	ArtifactRef       string               `json:"artifact_ref,omitempty"`
	Mode              model.GenerationMode `json:"generation_mode,omitempty"`
	Script            model.ScriptState    `json:"script_state,omitempty"`
	Warnings          []string             `json:"warnings,omitempty"`
}

type LocationResolver interface {
	Resolve(ctx context.Context, req location.Request) (model.Location, error)
}

type NewsRetriever interface {
	Fetch(ctx context.Context, city, country, date string, count int) model.NewsResult
}

type ConceptSynthesizer interface {
	Generate(ctx context.Context, req concept.Request) model.ConceptSet
}

type ImageSynthesizer interface {
	Render(ctx context.Context, set model.ConceptSet) model.GeneratedArtifact
}

// Cartoonist runs one cartoon per admitted request:
// location -> news -> concepts -> image -> store.
type Cartoonist struct {
	Limiter   ratelimit.Limiter
	Resolver  LocationResolver
	News      NewsRetriever
	Concepts  ConceptSynthesizer
	Images    ImageSynthesizer
	Store     store.Store
	NewsCount int

	now    func() time.Time
	logger *log.Logger
}

func NewCartoonist(
	limiter ratelimit.Limiter,
	resolver LocationResolver,
	news NewsRetriever,
	concepts ConceptSynthesizer,
	images ImageSynthesizer,
	st store.Store,
	logger *log.Logger,
) *Cartoonist {
	return &Cartoonist{
		Limiter:  limiter,
		Resolver: resolver,
		News:     news,
		Concepts: concepts,
		Images:   images,
		Store:    st,
		now:      time.Now,
		logger:   logging.OrDiscard(logger),
	}
}

// Locate runs the resolver alone, for hosts that confirm a place before
// spending a generation.
func (c *Cartoonist) Locate(ctx context.Context, req location.Request) (model.Location, error) {
	return c.Resolver.Resolve(ctx, req)
}

// Run never returns an error: every degradation is reported through the
// outcome's status, provenance and mode fields.
func (c *Cartoonist) Run(ctx context.Context, s Session) Outcome {
	logger := c.logger.With("caller_id", s.CallerID)

	if d := c.Limiter.Admit(ctx, s.CallerID); !d.Allowed {
		logger.Info("generation denied by rate limit", "retry_after", d.RetryAfterSeconds)
		return Outcome{Status: StatusRateLimited, RetryAfterSeconds: d.RetryAfterSeconds}
	}

	loc, err := c.location(ctx, s)
	if err != nil {
		logger.Warn("location unresolved", "err", err)
		return Outcome{Status: StatusLocationNotFound}
	}
	label := loc.Label()
	logger = logger.With("location", label)

	newsResult := c.News.Fetch(ctx, loc.Address.City, loc.Address.Country, c.now().Format("2006-01-02"), c.NewsCount)
	logger.Info("news ready", "provenance", newsResult.Provenance, "topic", newsResult.DominantTopic, "headlines", len(newsResult.Headlines))

	set := c.Concepts.Generate(ctx, concept.Request{
		Topic:     newsResult.DominantTopic,
		Location:  label,
		Context:   newsResult.Summary,
		Headlines: newsResult.Headlines,
	})
	logger.Info("concepts ready", "mode", set.Mode, "winner", set.Winner)

	art := c.Images.Render(ctx, set)
	out := Outcome{
		Status:   StatusCompleted,
		Location: &loc,
		News:     &newsResult,
		Concepts: &art.Concepts,
		Mode:     art.Mode,
		Script:   art.Script,
		Warnings: append([]string(nil), art.Warnings...),
	}

	if newsResult.Provenance == model.NewsSynthetic {
		out.Warnings = append(out.Warnings, "live news unavailable, using synthetic headlines")
	}
	if set.Mode == model.ConceptsFallback {
		out.Warnings = append(out.Warnings, fmt.Sprintf("concepts fell back to templates: %s", set.Error))
	}

	ref, err := c.persist(ctx, &art)
	if err != nil {
		logger.Error("failed to store cartoon", "err", err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("cartoon was not saved: %v", err))
	}
	out.ArtifactRef = ref

	logger.Info("cartoon complete", "ref", ref, "mode", art.Mode, "script", art.Script)
	return out
}

func (c *Cartoonist) location(ctx context.Context, s Session) (model.Location, error) {
	if s.Location != nil {
		return *s.Location, nil
	}
	return c.Resolver.Resolve(ctx, location.Request{
		Manual:   s.ManualLocation,
		Device:   s.Device,
		ClientIP: s.ClientIP,
	})
}

// persist hands the artifact over; the pipeline keeps nothing afterwards.
func (c *Cartoonist) persist(ctx context.Context, art *model.GeneratedArtifact) (string, error) {
	if c.Store == nil {
		return "", errors.New("no artifact store configured")
	}
	return c.Store.Save(ctx, art)
}
