package concept

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/cartoonist/internal/core/common"
	"github.com/agenthands/cartoonist/internal/core/model"
)

const maxWhyFunny = 100

// wireSet accepts any JSON type per field so a single mistyped value does not
// discard the rest of the answer. Non-string values are dropped and left to Repair.
type wireSet struct {
	Topic    any   `json:"topic"`
	Location any   `json:"location"`
	Ideas    any   `json:"ideas"`
	Ranking  any   `json:"ranking"`
	Winner   any   `json:"winner"`
}

// Parse reads the model's JSON answer, tolerating code fences and prose around
// it. Missing topic or location are taken from the request.
func Parse(text, topic, location string) (model.ConceptSet, error) {
	wire, err := common.ParseJSON[wireSet](text)
	if err != nil {
		return model.ConceptSet{}, err
	}

	set := model.ConceptSet{
		Topic:    str(wire.Topic),
		Location: str(wire.Location),
		Winner:   str(wire.Winner),
	}
	ideas, _ := wire.Ideas.([]any)
	for _, raw := range ideas {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		set.Ideas = append(set.Ideas, model.Concept{
			Title:    str(fields["title"]),
			Premise:  str(fields["premise"]),
			WhyFunny: str(fields["why_funny"]),
		})
	}
	if ranking, ok := wire.Ranking.([]any); ok {
		for _, r := range ranking {
			if title := str(r); title != "" {
				set.Ranking = append(set.Ranking, title)
			}
		}
	}

	if strings.TrimSpace(set.Topic) == "" {
		set.Topic = topic
	}
	if strings.TrimSpace(set.Location) == "" {
		set.Location = location
	}
	return set, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// Validate reports the first structural problem in set.
func Validate(set model.ConceptSet) error {
	if blank(set.Topic) || blank(set.Location) {
		return errors.New("topic and location are required")
	}
	if len(set.Ideas) != model.ConceptCount {
		return fmt.Errorf("want %d ideas, got %d", model.ConceptCount, len(set.Ideas))
	}

	titles := make(map[string]bool, len(set.Ideas))
	for i, idea := range set.Ideas {
		if blank(idea.Title) || blank(idea.Premise) || blank(idea.WhyFunny) {
			return fmt.Errorf("idea %d is missing title, premise or why_funny", i+1)
		}
		if titles[idea.Title] {
			return fmt.Errorf("duplicate title %q", idea.Title)
		}
		if len([]rune(idea.WhyFunny)) > maxWhyFunny {
			return fmt.Errorf("idea %d why_funny exceeds %d characters", i+1, maxWhyFunny)
		}
		titles[idea.Title] = true
	}

	if !isPermutation(set.Ranking, titles) {
		return errors.New("ranking is not a permutation of the idea titles")
	}
	if set.Winner != set.Ranking[0] {
		return fmt.Errorf("winner %q is not ranked first", set.Winner)
	}
	return nil
}

func isPermutation(ranking []string, titles map[string]bool) bool {
	if len(ranking) != len(titles) {
		return false
	}
	seen := make(map[string]bool, len(ranking))
	for _, r := range ranking {
		if !titles[r] || seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
