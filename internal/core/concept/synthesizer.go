package concept

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/agenthands/cartoonist/internal/config"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/llm"
	"github.com/agenthands/cartoonist/internal/logging"
)

const (
	defaultTopic    = "General News"
	defaultLocation = "Unknown Location"
)

type Request struct {
	Topic     string
	Location  string
	Context   string
	Headlines []model.Headline
}

// Synthesizer asks the text model for five ranked concepts and always returns
// a valid set: generated, repaired or fallback.
type Synthesizer struct {
	client  llm.LLMClient
	prompt  string
	timeout time.Duration
	logger  *log.Logger
}

// NewSynthesizer takes a prompt template with the arguments of
// config.DefaultConceptsPrompt; empty means that default.
func NewSynthesizer(client llm.LLMClient, prompt string, timeout time.Duration, logger *log.Logger) *Synthesizer {
	if prompt == "" {
		prompt = config.DefaultConceptsPrompt
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Synthesizer{
		client:  client,
		prompt:  prompt,
		timeout: timeout,
		logger:  logging.OrDiscard(logger),
	}
}

func (s *Synthesizer) Generate(ctx context.Context, req Request) model.ConceptSet {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = defaultTopic
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = defaultLocation
	}

	set := s.generate(ctx, topic, location, req.Context)
	return Attribute(set, req.Headlines)
}

func (s *Synthesizer) generate(ctx context.Context, topic, location, newsContext string) model.ConceptSet {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Generate(cctx, s.buildPrompt(topic, location, newsContext))
	if err != nil {
		s.logger.Warn("concept generation failed, using fallback concepts", "topic", topic, "err", err)
		return Fallback(topic, location, err.Error())
	}

	set, err := Parse(resp, topic, location)
	if err != nil {
		s.logger.Warn("concept response unparsable, using fallback concepts", "topic", topic, "err", err)
		return Fallback(topic, location, fmt.Sprintf("parse error: %v", err))
	}

	if err := Validate(set); err != nil {
		s.logger.Warn("concept response invalid, repairing", "topic", topic, "reason", err)
		set = Repair(set, topic, location)
		set.Mode = model.ConceptsRepaired
		return set
	}
	set.Mode = model.ConceptsGenerated
	return set
}

func (s *Synthesizer) buildPrompt(topic, location, newsContext string) string {
	var contextSection string
	if c := strings.TrimSpace(newsContext); c != "" {
		contextSection = "\n\nNews context:\n" + c
	}
	return fmt.Sprintf(s.prompt, location, topic, contextSection)
}
