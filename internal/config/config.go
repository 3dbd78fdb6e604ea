package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port           string   `toml:"port" yaml:"port"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// LLMConfig selects a model provider. Used for concept text, comic scripts and images.
type LLMConfig struct {
	Provider       string `toml:"provider" yaml:"provider"`
	Model          string `toml:"model" yaml:"model"`
	APIKey         string `toml:"api_key" yaml:"api_key"`
	BaseURL        string `toml:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

func (c LLMConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds, 60)
}

type GeocoderConfig struct {
	BaseURL           string  `toml:"base_url" yaml:"base_url"`
	UserAgent         string  `toml:"user_agent" yaml:"user_agent"`
	Language          string  `toml:"language" yaml:"language"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
	NetworkURL        string  `toml:"network_url" yaml:"network_url"`
}

func (c GeocoderConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds, 10)
}

type NewsConfig struct {
	Provider       string `toml:"provider" yaml:"provider"`
	APIKey         string `toml:"api_key" yaml:"api_key"`
	BaseURL        string `toml:"base_url" yaml:"base_url"`
	Language       string `toml:"language" yaml:"language"`
	RecencyHours   int    `toml:"recency_hours" yaml:"recency_hours"`
	Count          int    `toml:"count" yaml:"count"`
	TimeoutSeconds int    `toml:"timeout_seconds" yaml:"timeout_seconds"`
}

func (c NewsConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds, 15)
}

func (c NewsConfig) Recency() time.Duration {
	if c.RecencyHours <= 0 {
		return 48 * time.Hour
	}
	return time.Duration(c.RecencyHours) * time.Hour
}

type RenderConfig struct {
	Style                string `toml:"style" yaml:"style"`
	ScriptTimeoutSeconds int    `toml:"script_timeout_seconds" yaml:"script_timeout_seconds"`
	ImageTimeoutSeconds  int    `toml:"image_timeout_seconds" yaml:"image_timeout_seconds"`
}

func (c RenderConfig) ScriptTimeout() time.Duration {
	return seconds(c.ScriptTimeoutSeconds, 60)
}

func (c RenderConfig) ImageTimeout() time.Duration {
	return seconds(c.ImageTimeoutSeconds, 90)
}

type RateLimitConfig struct {
	Backend       string `toml:"backend" yaml:"backend"`
	Limit         int    `toml:"limit" yaml:"limit"`
	WindowSeconds int    `toml:"window_seconds" yaml:"window_seconds"`
	RedisURL      string `toml:"redis_url" yaml:"redis_url"`
}

func (c RateLimitConfig) Window() time.Duration {
	return seconds(c.WindowSeconds, 60)
}

type S3Config struct {
	Endpoint  string `toml:"endpoint" yaml:"endpoint"`
	Region    string `toml:"region" yaml:"region"`
	AccessKey string `toml:"access_key" yaml:"access_key"`
	SecretKey string `toml:"secret_key" yaml:"secret_key"`
	Bucket    string `toml:"bucket" yaml:"bucket"`
	UseSSL    bool   `toml:"use_ssl" yaml:"use_ssl"`
}

type StoreConfig struct {
	Backend string   `toml:"backend" yaml:"backend"`
	Dir     string   `toml:"dir" yaml:"dir"`
	S3      S3Config `toml:"s3" yaml:"s3"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri" yaml:"uri"`
	User     string `toml:"user" yaml:"user"`
	Password string `toml:"password" yaml:"password"`
}

// Prompts are fmt templates; see the default constants for argument order.
type Prompts struct {
	Concepts string `toml:"concepts" yaml:"concepts"`
	Script   string `toml:"script" yaml:"script"`
	Image    string `toml:"image" yaml:"image"`
}

type Config struct {
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Log       LogConfig       `toml:"log" yaml:"log"`
	LLM       LLMConfig       `toml:"llm" yaml:"llm"`
	Script    LLMConfig       `toml:"script" yaml:"script"`
	Image     LLMConfig       `toml:"image" yaml:"image"`
	Geocoder  GeocoderConfig  `toml:"geocoder" yaml:"geocoder"`
	News      NewsConfig      `toml:"news" yaml:"news"`
	Render    RenderConfig    `toml:"render" yaml:"render"`
	RateLimit RateLimitConfig `toml:"ratelimit" yaml:"ratelimit"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
	Memgraph  MemgraphConfig  `toml:"memgraph" yaml:"memgraph"`
	Prompts   Prompts         `toml:"prompts" yaml:"prompts"`
}

// Load reads a TOML or YAML file (chosen by extension) on top of the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	cfg.fillDerived()
	return cfg, nil
}

// LoadFromEnv resolves CONFIG_PATH, loads the file and applies env overrides.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.toml"
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{Port: "8080", AllowedOrigins: []string{"http://localhost:3000"}},
		Log:    LogConfig{Level: "info"},
		LLM:    LLMConfig{Provider: "gemini", Model: "gemini-2.0-flash", TimeoutSeconds: 60},
		Image:  LLMConfig{Provider: "gemini", Model: "gemini-2.5-flash-image", TimeoutSeconds: 90},
		Geocoder: GeocoderConfig{
			BaseURL:           "https://nominatim.openstreetmap.org",
			UserAgent:         "cartoonist/1.0",
			Language:          "en",
			RequestsPerSecond: 1,
			TimeoutSeconds:    10,
			NetworkURL:        "http://ip-api.com/json",
		},
		News: NewsConfig{
			Provider:       "newsapi",
			BaseURL:        "https://newsapi.org",
			Language:       "en",
			RecencyHours:   48,
			Count:          5,
			TimeoutSeconds: 15,
		},
		Render: RenderConfig{
			Style:                "newspaper comic strip",
			ScriptTimeoutSeconds: 60,
			ImageTimeoutSeconds:  90,
		},
		RateLimit: RateLimitConfig{Backend: "memory", Limit: 2, WindowSeconds: 60},
		Store:     StoreConfig{Backend: "disk", Dir: "data/cartoons"},
	}
	cfg.fillDerived()
	return cfg
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.Server.Port, "PORT")
	set(&c.Log.Level, "LOG_LEVEL")

	set(&c.LLM.Provider, "LLM_PROVIDER")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.Script.Provider, "SCRIPT_PROVIDER")
	set(&c.Script.Model, "SCRIPT_MODEL")
	set(&c.Script.BaseURL, "SCRIPT_BASE_URL")
	set(&c.Image.Provider, "IMAGE_PROVIDER")
	set(&c.Image.Model, "IMAGE_MODEL")

	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.Script.APIKey, "SCRIPT_API_KEY")
	set(&c.Image.APIKey, "IMAGE_API_KEY")
	// Provider-specific keys fill whatever is still empty.
	for _, m := range []*LLMConfig{&c.LLM, &c.Script, &c.Image} {
		if m.APIKey != "" {
			continue
		}
		switch strings.ToLower(m.Provider) {
		case "gemini":
			set(&m.APIKey, "GOOGLE_API_KEY", "GEMINI_API_KEY")
		case "openrouter":
			set(&m.APIKey, "OPENROUTER_API_KEY")
		case "openai":
			set(&m.APIKey, "OPENAI_API_KEY")
		case "claude":
			set(&m.APIKey, "ANTHROPIC_API_KEY")
		}
	}

	set(&c.News.Provider, "NEWS_PROVIDER")
	set(&c.News.APIKey, "NEWS_API_KEY")
	set(&c.RateLimit.RedisURL, "REDIS_URL")
	set(&c.RateLimit.Backend, "RATELIMIT_BACKEND")

	set(&c.Store.Backend, "STORE_BACKEND")
	set(&c.Store.Dir, "STORE_DIR")
	set(&c.Store.S3.Endpoint, "S3_ENDPOINT")
	set(&c.Store.S3.Region, "S3_REGION")
	set(&c.Store.S3.AccessKey, "S3_ACCESS_KEY")
	set(&c.Store.S3.SecretKey, "S3_SECRET_KEY")
	set(&c.Store.S3.Bucket, "S3_BUCKET")

	set(&c.Memgraph.URI, "MEMGRAPH_URI")
	set(&c.Memgraph.User, "MEMGRAPH_USER")
	set(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")

	c.fillDerived()
}

// ScriptModel is the model used for comic scripts; it defaults to the concept model.
func (c *Config) ScriptModel() LLMConfig {
	if c.Script.Provider == "" {
		return c.LLM
	}
	return c.Script
}

func (c *Config) fillDerived() {
	if c.Prompts.Concepts == "" {
		c.Prompts.Concepts = DefaultConceptsPrompt
	}
	if c.Prompts.Script == "" {
		c.Prompts.Script = DefaultScriptPrompt
	}
	if c.Prompts.Image == "" {
		c.Prompts.Image = DefaultImagePrompt
	}
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
