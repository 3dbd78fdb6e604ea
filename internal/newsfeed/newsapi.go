package newsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/cartoonist/internal/core/news"
)

// NewsAPI queries the NewsAPI.org everything endpoint.
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewNewsAPI(apiKey, baseURL string, timeout time.Duration) *NewsAPI {
	if baseURL == "" {
		baseURL = "https://newsapi.org"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &NewsAPI{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (n *NewsAPI) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"articles"`
}

func (n *NewsAPI) Search(ctx context.Context, q news.Query) (news.Feed, error) {
	if n.apiKey == "" {
		return news.Feed{}, fmt.Errorf("newsapi: api key is not configured")
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("sortBy", "relevancy")
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if !q.Since.IsZero() {
		params.Set("from", q.Since.UTC().Format(time.RFC3339))
	}
	if q.Limit > 0 {
		params.Set("pageSize", strconv.Itoa(min(q.Limit, 100)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return news.Feed{}, fmt.Errorf("newsapi: create request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return news.Feed{}, fmt.Errorf("newsapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return news.Feed{}, fmt.Errorf("newsapi: read response: %w", err)
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return news.Feed{}, fmt.Errorf("newsapi: parse response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "ok" {
		return news.Feed{}, fmt.Errorf("newsapi: status %d: %s %s", resp.StatusCode, parsed.Code, parsed.Message)
	}

	feed := news.Feed{Articles: make([]news.Article, 0, len(parsed.Articles))}
	for _, a := range parsed.Articles {
		// removed articles come back as placeholders
		if a.Title == "[Removed]" {
			continue
		}
		feed.Articles = append(feed.Articles, news.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
		})
	}
	return feed, nil
}
