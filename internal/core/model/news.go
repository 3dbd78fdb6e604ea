package model

type NewsProvenance string

const (
	NewsLive      NewsProvenance = "live"
	NewsSynthetic NewsProvenance = "synthetic"
)

// Headline is a single news item. Title and Source are always set; URL is empty
// for synthetic headlines.
type Headline struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
	URL     string `json:"url,omitempty"`
}

type NewsResult struct {
	Location      string         `json:"location"`
	Date          string         `json:"date"`
	Headlines     []Headline     `json:"headlines"`
	DominantTopic string         `json:"dominant_topic"`
	Summary       string         `json:"summary"`
	Provenance    NewsProvenance `json:"provenance"`
}
