package concept

import (
	"fmt"

	"github.com/agenthands/cartoonist/internal/core/common"
	"github.com/agenthands/cartoonist/internal/core/model"
)

// Repair turns any set into a valid one while keeping whatever the model got
// right. Repairing a valid set returns it unchanged.
func Repair(set model.ConceptSet, topic, location string) model.ConceptSet {
	out := set.Clone()
	if blank(out.Topic) {
		out.Topic = topic
	}
	if blank(out.Location) {
		out.Location = location
	}

	if len(out.Ideas) > model.ConceptCount {
		out.Ideas = out.Ideas[:model.ConceptCount]
	}
	for len(out.Ideas) < model.ConceptCount {
		out.Ideas = append(out.Ideas, model.Concept{
			Title:    fmt.Sprintf("Concept %d", len(out.Ideas)+1),
			Premise:  "A funny cartoon concept",
			WhyFunny: "It's humorous",
		})
	}

	titles := make(map[string]bool, model.ConceptCount)
	for i := range out.Ideas {
		idea := &out.Ideas[i]
		if blank(idea.Title) {
			idea.Title = fmt.Sprintf("Concept %d", i+1)
		}
		if blank(idea.Premise) {
			idea.Premise = "A funny concept"
		}
		if blank(idea.WhyFunny) {
			idea.WhyFunny = "It's funny"
		}
		idea.WhyFunny = common.Truncate(idea.WhyFunny, maxWhyFunny)
		idea.Title = uniqueTitle(idea.Title, titles)
		titles[idea.Title] = true
	}

	if !isPermutation(out.Ranking, titles) {
		out.Ranking = make([]string, 0, len(out.Ideas))
		for _, idea := range out.Ideas {
			out.Ranking = append(out.Ranking, idea.Title)
		}
	}
	out.Winner = out.Ranking[0]
	return out
}

func uniqueTitle(title string, taken map[string]bool) string {
	if !taken[title] {
		return title
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", title, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// Fallback is the deterministic set used when the model cannot be reached or
// its answer cannot be parsed.
func Fallback(topic, location, reason string) model.ConceptSet {
	ideas := []model.Concept{
		{Title: "News Update: " + topic, Premise: fmt.Sprintf("A humorous take on %s in %s", topic, location), WhyFunny: "Satire of current events"},
		{Title: "Local Perspective", Premise: fmt.Sprintf("Locals react to %s", topic), WhyFunny: "Relatable community humor"},
		{Title: "Breaking News", Premise: fmt.Sprintf("News anchor struggles with %s", topic), WhyFunny: "Media satire"},
		{Title: "The Interview", Premise: fmt.Sprintf("Interviewing people about %s", topic), WhyFunny: "Man on the street humor"},
		{Title: "The Aftermath", Premise: fmt.Sprintf("Life after %s", topic), WhyFunny: "Exaggerated consequences"},
	}
	ranking := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		ranking = append(ranking, idea.Title)
	}
	return model.ConceptSet{
		Topic:    topic,
		Location: location,
		Ideas:    ideas,
		Ranking:  ranking,
		Winner:   ranking[0],
		Mode:     model.ConceptsFallback,
		Error:    reason,
	}
}

// Attribute copies the most relevant headline onto the set and, uniformly,
// onto every concept.
func Attribute(set model.ConceptSet, headlines []model.Headline) model.ConceptSet {
	if len(headlines) == 0 {
		return set
	}
	primary := headlines[0]
	out := set.Clone()
	out.NewsURL = primary.URL
	out.NewsSource = primary.Source
	out.NewsTitle = primary.Title
	for i := range out.Ideas {
		out.Ideas[i].NewsURL = primary.URL
		out.Ideas[i].NewsSource = primary.Source
	}
	return out
}

// Winner returns the winning concept, or the first idea when the winner
// title is not among them.
func Winner(set model.ConceptSet) model.Concept {
	for _, idea := range set.Ideas {
		if idea.Title == set.Winner {
			return idea
		}
	}
	if len(set.Ideas) > 0 {
		return set.Ideas[0]
	}
	return model.Concept{}
}

// Ranked lists ideas in ranking order followed by any unranked ones.
func Ranked(set model.ConceptSet) []model.Concept {
	byTitle := make(map[string]model.Concept, len(set.Ideas))
	for _, idea := range set.Ideas {
		if _, ok := byTitle[idea.Title]; !ok {
			byTitle[idea.Title] = idea
		}
	}

	out := make([]model.Concept, 0, len(set.Ideas))
	used := make(map[string]bool, len(set.Ideas))
	for _, title := range set.Ranking {
		if idea, ok := byTitle[title]; ok && !used[title] {
			out = append(out, idea)
			used[title] = true
		}
	}
	for _, idea := range set.Ideas {
		if !used[idea.Title] {
			out = append(out, idea)
			used[idea.Title] = true
		}
	}
	return out
}
