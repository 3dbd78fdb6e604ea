package news

import (
	"context"
	"time"
)

const (
	DefaultCount    = 5
	SyntheticSource = "Cartoonist Newsroom"
	NoNews          = "No news available"
	GeneralNews     = "General News"

	summaryLimit     = 150
	weakMatchMinLen  = 100
	summaryHeadlines = 5
)

type Query struct {
	Text     string
	Language string
	Since    time.Time
	Limit    int
}

// Article is a raw search hit. Any field may be empty.
type Article struct {
	Title       string
	Description string
	URL         string
	Source      string
}

// Feed is one provider answer. Topic is optional; only model-backed
// providers produce one.
type Feed struct {
	Articles []Article
	Topic    string
}

type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) (Feed, error)
}
