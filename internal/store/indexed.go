package store

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/cartoonist/internal/core/concept"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/driver"
	"github.com/agenthands/cartoonist/internal/logging"
)

// Summary is one row of the place index.
type Summary struct {
	Ref       string `json:"ref"`
	Title     string `json:"title"`
	Topic     string `json:"topic"`
	Mode      string `json:"generation_mode"`
	CreatedAt string `json:"created_at"`
	NewsURL   string `json:"news_url,omitempty"`
}

// Indexed records every saved cartoon in a graph of places and headlines.
// Index writes are best effort; the blob store decides success.
type Indexed struct {
	Store
	graph  driver.GraphDriver
	logger *log.Logger
}

func NewIndexed(inner Store, graph driver.GraphDriver, logger *log.Logger) *Indexed {
	return &Indexed{Store: inner, graph: graph, logger: logging.OrDiscard(logger)}
}

func (s *Indexed) Save(ctx context.Context, art *model.GeneratedArtifact) (string, error) {
	ref, err := s.Store.Save(ctx, art)
	if err != nil {
		return "", err
	}
	if err := s.index(ctx, ref, art); err != nil {
		s.logger.Warn("cartoon index update failed", "ref", ref, "err", err)
	}
	return ref, nil
}

func (s *Indexed) index(ctx context.Context, ref string, art *model.GeneratedArtifact) error {
	winner := concept.Winner(art.Concepts)
	_, err := s.graph.ExecuteQuery(ctx, driver.SaveCartoonQuery, map[string]any{
		"ref":             ref,
		"place":           art.Location,
		"title":           winner.Title,
		"premise":         winner.Premise,
		"topic":           art.Concepts.Topic,
		"generation_mode": string(art.Mode),
		"script_state":    string(art.Script),
		"concept_mode":    string(art.Concepts.Mode),
		"created_at":      art.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("save cartoon node: %w", err)
	}

	if art.Concepts.NewsURL == "" {
		return nil
	}
	_, err = s.graph.ExecuteQuery(ctx, driver.LinkHeadlineQuery, map[string]any{
		"ref":    ref,
		"url":    art.Concepts.NewsURL,
		"title":  art.Concepts.NewsTitle,
		"source": art.Concepts.NewsSource,
	})
	if err != nil {
		return fmt.Errorf("link headline: %w", err)
	}
	return nil
}

// Recent lists the latest cartoons for a place label ("City, Country").
func (s *Indexed) Recent(ctx context.Context, place string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 10
	}
	res, err := s.graph.ExecuteQuery(ctx, driver.RecentCartoonsQuery, map[string]any{
		"place": place,
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query recent cartoons: %w", err)
	}

	out := make([]Summary, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, Summary{
			Ref:       str(rec, "ref"),
			Title:     str(rec, "title"),
			Topic:     str(rec, "topic"),
			Mode:      str(rec, "generation_mode"),
			CreatedAt: str(rec, "created_at"),
			NewsURL:   str(rec, "news_url"),
		})
	}
	return out, nil
}

func str(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
