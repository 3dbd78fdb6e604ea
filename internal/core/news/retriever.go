package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agenthands/cartoonist/internal/core/common"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/logging"
)

type Options struct {
	Language string
	Recency  time.Duration
	Timeout  time.Duration
}

// Retriever fetches local headlines and degrades to synthetic ones whenever
// the provider cannot deliver anything relevant.
type Retriever struct {
	provider Provider
	opts     Options
	now      func() time.Time
	logger   *log.Logger
}

func NewRetriever(provider Provider, opts Options, logger *log.Logger) *Retriever {
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Recency <= 0 {
		opts.Recency = 48 * time.Hour
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Retriever{
		provider: provider,
		opts:     opts,
		now:      time.Now,
		logger:   logging.OrDiscard(logger),
	}
}

// Fetch never fails. count <= 0 means DefaultCount; empty date means today.
func (r *Retriever) Fetch(ctx context.Context, city, country, date string, count int) model.NewsResult {
	if count <= 0 {
		count = DefaultCount
	}
	now := r.now()
	if date == "" {
		date = now.Format("2006-01-02")
	}
	if r.provider == nil {
		return Synthetic(city, country, date, count)
	}

	cctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	feed, err := r.provider.Search(cctx, Query{
		Text:     strings.TrimSpace(city + " " + country),
		Language: r.opts.Language,
		Since:    now.Add(-r.opts.Recency),
		Limit:    count * 4,
	})
	if err != nil {
		r.logger.Warn("news search failed, using synthetic headlines", "provider", r.provider.Name(), "city", city, "err", err)
		return Synthetic(city, country, date, count)
	}

	relevant := Relevant(feed.Articles, city, count)
	if len(relevant) == 0 {
		r.logger.Warn("no relevant news, using synthetic headlines",
			"provider", r.provider.Name(), "city", city, "articles", len(feed.Articles))
		return Synthetic(city, country, date, count)
	}

	headlines := make([]model.Headline, 0, len(relevant))
	for _, a := range relevant {
		source := strings.TrimSpace(a.Source)
		if source == "" {
			source = r.provider.Name()
		}
		headlines = append(headlines, model.Headline{
			Title:   strings.TrimSpace(a.Title),
			Summary: common.Truncate(strings.TrimSpace(a.Description), summaryLimit),
			Source:  source,
			URL:     a.URL,
		})
	}

	return model.NewsResult{
		Location:      label(city, country),
		Date:          date,
		Headlines:     headlines,
		DominantTopic: DominantTopic(feed.Topic, headlines),
		Summary:       Summarize(headlines),
		Provenance:    model.NewsLive,
	}
}

// Relevant keeps articles naming the city in the title, then those naming it
// in a description longer than 100 characters. Matching is a plain
// case-insensitive substring test, so short city names can false-positive.
func Relevant(articles []Article, city string, count int) []Article {
	needle := strings.ToLower(strings.TrimSpace(city))
	if needle == "" {
		return nil
	}

	var strong, weak []Article
	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		switch {
		case strings.Contains(strings.ToLower(a.Title), needle):
			strong = append(strong, a)
		case len([]rune(a.Description)) > weakMatchMinLen && strings.Contains(strings.ToLower(a.Description), needle):
			weak = append(weak, a)
		}
	}

	out := append(strong, weak...)
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// DominantTopic prefers the provider topic, then the first headline without
// its " - Source" suffix.
func DominantTopic(topic string, headlines []model.Headline) string {
	if t := strings.TrimSpace(topic); t != "" {
		return t
	}
	if len(headlines) > 0 {
		title := headlines[0].Title
		if i := strings.LastIndex(title, " - "); i > 0 {
			title = title[:i]
		}
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return GeneralNews
}

func Summarize(headlines []model.Headline) string {
	if len(headlines) == 0 {
		return NoNews
	}
	lines := make([]string, 0, summaryHeadlines)
	for i, h := range headlines {
		if i == summaryHeadlines {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, h.Title))
	}
	return strings.Join(lines, "\n")
}

func label(city, country string) string {
	return city + ", " + country
}
