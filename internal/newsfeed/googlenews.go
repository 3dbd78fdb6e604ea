package newsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/agenthands/cartoonist/internal/core/news"
)

// GoogleNews reads the Google News RSS search feed. Descriptions arrive as
// HTML fragments and are flattened to text.
type GoogleNews struct {
	baseURL string
	parser  *gofeed.Parser
	now     func() time.Time
}

func NewGoogleNews(baseURL string, timeout time.Duration) *GoogleNews {
	if baseURL == "" {
		baseURL = "https://news.google.com/rss/search"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &GoogleNews{
		baseURL: baseURL,
		parser:  parser,
		now:     time.Now,
	}
}

func (g *GoogleNews) Name() string { return "Google News" }

func (g *GoogleNews) Search(ctx context.Context, q news.Query) (news.Feed, error) {
	feed, err := g.parser.ParseURLWithContext(g.searchURL(q), ctx)
	if err != nil {
		return news.Feed{}, fmt.Errorf("google news: %w", err)
	}

	out := news.Feed{Articles: make([]news.Article, 0, len(feed.Items))}
	for _, item := range feed.Items {
		if !q.Since.IsZero() && item.PublishedParsed != nil && item.PublishedParsed.Before(q.Since) {
			continue
		}
		out.Articles = append(out.Articles, news.Article{
			Title:       item.Title,
			Description: htmlText(item.Description),
			URL:         item.Link,
			Source:      itemSource(item),
		})
		if q.Limit > 0 && len(out.Articles) == q.Limit {
			break
		}
	}
	return out, nil
}

func (g *GoogleNews) searchURL(q news.Query) string {
	text := q.Text
	if !q.Since.IsZero() {
		hours := int(g.now().Sub(q.Since).Hours())
		if hours > 0 {
			text = fmt.Sprintf("%s when:%dh", text, hours)
		}
	}

	lang := q.Language
	if lang == "" {
		lang = "en"
	}
	params := url.Values{}
	params.Set("q", text)
	params.Set("hl", lang)
	return g.baseURL + "?" + params.Encode()
}

// itemSource reads the " - Source" suffix Google appends to every title.
func itemSource(item *gofeed.Item) string {
	if i := strings.LastIndex(item.Title, " - "); i > 0 {
		return strings.TrimSpace(item.Title[i+3:])
	}
	return ""
}

func htmlText(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
