package newsfeed

import (
	"fmt"
	"strings"

	"github.com/agenthands/cartoonist/internal/config"
	"github.com/agenthands/cartoonist/internal/core/news"
	"github.com/agenthands/cartoonist/internal/llm"
)

// New selects a provider by name. text is only needed for "model".
func New(cfg config.NewsConfig, text llm.LLMClient) (news.Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "newsapi", "":
		return NewNewsAPI(cfg.APIKey, cfg.BaseURL, cfg.Timeout()), nil
	case "googlenews":
		return NewGoogleNews("", cfg.Timeout()), nil
	case "model":
		if text == nil {
			return nil, fmt.Errorf("news provider model needs a text model client")
		}
		return NewModel(text), nil
	default:
		return nil, fmt.Errorf("unsupported news provider: %s", cfg.Provider)
	}
}
