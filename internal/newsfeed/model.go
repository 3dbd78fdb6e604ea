package newsfeed

import (
	"context"
	"fmt"

	"github.com/agenthands/cartoonist/internal/core/common"
	"github.com/agenthands/cartoonist/internal/core/news"
	"github.com/agenthands/cartoonist/internal/llm"
)

const modelNewsPrompt = `Find %[1]d major news headlines from %[2]s published since %[3]s.
Focus on local stories specific to this location.

Return the response in this exact JSON format:
{
  "headlines": [
    {"title": "headline 1", "summary": "brief summary", "source": "publication", "url": "https://..."}
  ],
  "dominant_topic": "the main theme across these headlines"
}

Only return the JSON, no other text.
`

// Model asks a text model for headlines. It is only as fresh as the model's
// grounding, and the only provider that reports a dominant topic.
type Model struct {
	client llm.LLMClient
}

func NewModel(client llm.LLMClient) *Model {
	return &Model{client: client}
}

func (m *Model) Name() string { return "Model Newsdesk" }

type modelNews struct {
	Headlines []struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Source  string `json:"source"`
		URL     string `json:"url"`
	} `json:"headlines"`
	DominantTopic string `json:"dominant_topic"`
}

func (m *Model) Search(ctx context.Context, q news.Query) (news.Feed, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = news.DefaultCount
	}
	prompt := fmt.Sprintf(modelNewsPrompt, limit, q.Text, q.Since.Format("2006-01-02"))

	resp, err := m.client.Generate(ctx, prompt)
	if err != nil {
		return news.Feed{}, fmt.Errorf("model news: %w", err)
	}
	parsed, err := common.ParseJSON[modelNews](resp)
	if err != nil {
		return news.Feed{}, fmt.Errorf("model news: %w", err)
	}

	feed := news.Feed{Topic: parsed.DominantTopic}
	for _, h := range parsed.Headlines {
		feed.Articles = append(feed.Articles, news.Article{
			Title:       h.Title,
			Description: h.Summary,
			URL:         h.URL,
			Source:      h.Source,
		})
	}
	return feed, nil
}
