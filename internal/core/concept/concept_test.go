package concept

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
  "topic": "Tram delays",
  "location": "Melbourne, Australia",
  "ideas": [
    {"title": "Tram Yoga", "premise": "Commuters hold poses while waiting.", "why_funny": "Patience as fitness"},
    {"title": "Myki Mystery", "premise": "A detective hunts a working card reader.", "why_funny": "Everyone has been there"},
    {"title": "Coffee Queue", "premise": "The coffee line outlasts the tram.", "why_funny": "Priorities"},
    {"title": "Seagull Conductor", "premise": "A seagull directs traffic.", "why_funny": "Local wildlife takes over"},
    {"title": "Four Seasons", "premise": "Weather changes four times per stop.", "why_funny": "Melbourne weather"}
  ],
  "ranking": ["Coffee Queue", "Tram Yoga", "Myki Mystery", "Seagull Conductor", "Four Seasons"],
  "winner": "Coffee Queue"
}`

func assertValid(t *testing.T, set model.ConceptSet) {
	t.Helper()
	require.NoError(t, Validate(set))
	assert.Len(t, set.Ideas, 5)
	assert.Len(t, set.Ranking, 5)
	titles := map[string]bool{}
	for _, idea := range set.Ideas {
		titles[idea.Title] = true
	}
	for _, r := range set.Ranking {
		assert.True(t, titles[r], r)
	}
	assert.Equal(t, set.Ranking[0], set.Winner)
}

func TestGenerate_FencedWithPreamble(t *testing.T) {
	client := &llm.MockLLMClient{Response: "Sure! ```json\n" + validJSON + "\n```"}
	s := NewSynthesizer(client, "", 0, nil)

	set := s.Generate(context.Background(), Request{Topic: "Tram delays", Location: "Melbourne, Australia"})

	assertValid(t, set)
	assert.Equal(t, model.ConceptsGenerated, set.Mode)
	assert.Empty(t, set.Error)
	assert.Equal(t, "Coffee Queue", set.Winner)
}

func TestGenerate_PromptContents(t *testing.T) {
	client := &llm.MockLLMClient{Response: validJSON}
	s := NewSynthesizer(client, "", 0, nil)

	s.Generate(context.Background(), Request{Topic: "Tram delays", Location: "Melbourne, Australia", Context: "1. Trams late"})

	require.Len(t, client.Prompts, 1)
	p := client.Prompts[0]
	assert.Contains(t, p, "comedy writer in Melbourne, Australia")
	assert.Contains(t, p, "Topic: Tram delays\n\nNews context:\n1. Trams late")
	assert.Contains(t, p, `"why_funny"`)
	assert.NotContains(t, p, "%!")
}

func TestGenerate_CustomPrompt(t *testing.T) {
	client := &llm.MockLLMClient{Response: validJSON}
	s := NewSynthesizer(client, "Jokes about %[2]s in %[1]s.%[3]s", 0, nil)

	s.Generate(context.Background(), Request{Topic: "rain", Location: "Bergen, Norway"})
	assert.Equal(t, "Jokes about rain in Bergen, Norway.", client.Prompts[0])
}

func TestGenerate_TransportErrorFallsBack(t *testing.T) {
	client := &llm.MockLLMClient{Err: errors.New("deadline exceeded")}
	s := NewSynthesizer(client, "", 0, nil)

	set := s.Generate(context.Background(), Request{Topic: "Floods", Location: "Lyon, France"})

	assertValid(t, set)
	assert.Equal(t, model.ConceptsFallback, set.Mode)
	assert.Contains(t, set.Error, "deadline exceeded")
	assert.Equal(t, "News Update: Floods", set.Winner)
	assert.Equal(t, "A humorous take on Floods in Lyon, France", set.Ideas[0].Premise)
}

func TestGenerate_UnparsableFallsBack(t *testing.T) {
	client := &llm.MockLLMClient{Response: "I'd rather not."}
	set := NewSynthesizer(client, "", 0, nil).Generate(context.Background(), Request{Topic: "Heat", Location: "Rome, Italy"})

	assertValid(t, set)
	assert.Equal(t, model.ConceptsFallback, set.Mode)
	assert.Contains(t, set.Error, "parse error")
}

func TestGenerate_RepairsInvalid(t *testing.T) {
	client := &llm.MockLLMClient{Response: `{"ideas":[{"title":"Only One","premise":"p","why_funny":"w"}],"winner":"Nope"}`}
	set := NewSynthesizer(client, "", 0, nil).Generate(context.Background(), Request{Topic: "Heat", Location: "Rome, Italy"})

	assertValid(t, set)
	assert.Equal(t, model.ConceptsRepaired, set.Mode)
	assert.Equal(t, "Heat", set.Topic)
	assert.Equal(t, "Rome, Italy", set.Location)
	assert.Equal(t, "Only One", set.Winner)
	assert.Equal(t, "Concept 2", set.Ideas[1].Title)
}

func TestGenerate_MistypedRankingKeepsIdeas(t *testing.T) {
	mistyped := strings.Replace(validJSON,
		`"ranking": ["Coffee Queue", "Tram Yoga", "Myki Mystery", "Seagull Conductor", "Four Seasons"]`,
		`"ranking": [3, 1, 2, 4, 5]`, 1)
	require.NotEqual(t, validJSON, mistyped)

	client := &llm.MockLLMClient{Response: mistyped}
	set := NewSynthesizer(client, "", 0, nil).Generate(context.Background(), Request{Topic: "Tram delays", Location: "Melbourne, Australia"})

	assertValid(t, set)
	assert.Equal(t, model.ConceptsRepaired, set.Mode)
	assert.Equal(t, "Tram Yoga", set.Ideas[0].Title)
	assert.Equal(t, "Four Seasons", set.Ideas[4].Title)
	assert.Empty(t, set.Error)
}

func TestParse_DropsNonStringValues(t *testing.T) {
	set, err := Parse(`{
  "topic": 7,
  "ideas": [
    {"title": "Tram Yoga", "premise": "Commuters hold poses.", "why_funny": 42},
    "not an idea",
    {"title": 9, "premise": "A seagull directs traffic.", "why_funny": "Wildlife"}
  ],
  "ranking": ["Tram Yoga", null, 2],
  "winner": {"title": "Tram Yoga"}
}`, "Heat", "Rome, Italy")
	require.NoError(t, err)

	assert.Equal(t, "Heat", set.Topic)
	require.Len(t, set.Ideas, 2)
	assert.Equal(t, "Tram Yoga", set.Ideas[0].Title)
	assert.Empty(t, set.Ideas[0].WhyFunny)
	assert.Empty(t, set.Ideas[1].Title)
	assert.Equal(t, "A seagull directs traffic.", set.Ideas[1].Premise)
	assert.Equal(t, []string{"Tram Yoga"}, set.Ranking)
	assert.Empty(t, set.Winner)

	repaired := Repair(set, "Heat", "Rome, Italy")
	assertValid(t, repaired)
	assert.Equal(t, "A seagull directs traffic.", repaired.Ideas[1].Premise)
}

func TestParse_MistypedIdeasList(t *testing.T) {
	set, err := Parse(`{"ideas": "five of them", "winner": "x"}`, "Heat", "Rome, Italy")
	require.NoError(t, err)
	assert.Empty(t, set.Ideas)
	assertValid(t, Repair(set, "Heat", "Rome, Italy"))
}

func TestGenerate_EmptyInputsDefaulted(t *testing.T) {
	client := &llm.MockLLMClient{Err: errors.New("down")}
	set := NewSynthesizer(client, "", 0, nil).Generate(context.Background(), Request{})

	assert.Equal(t, "General News", set.Topic)
	assert.Equal(t, "Unknown Location", set.Location)
}

func TestGenerate_Attribution(t *testing.T) {
	client := &llm.MockLLMClient{Response: validJSON}
	headlines := []model.Headline{
		{Title: "Trams late", Source: "The Age", URL: "https://theage.example/trams"},
		{Title: "Other", Source: "ABC", URL: "https://abc.example/x"},
	}
	set := NewSynthesizer(client, "", 0, nil).Generate(context.Background(), Request{
		Topic: "Tram delays", Location: "Melbourne, Australia", Headlines: headlines,
	})

	assert.Equal(t, "https://theage.example/trams", set.NewsURL)
	assert.Equal(t, "The Age", set.NewsSource)
	assert.Equal(t, "Trams late", set.NewsTitle)
	for _, idea := range set.Ideas {
		assert.Equal(t, "https://theage.example/trams", idea.NewsURL)
		assert.Equal(t, "The Age", idea.NewsSource)
	}
}

func TestGenerate_FallbackIsAttributedToo(t *testing.T) {
	client := &llm.MockLLMClient{Err: errors.New("down")}
	set := NewSynthesizer(client, "", 0, nil).Generate(context.Background(), Request{
		Topic: "x", Location: "y", Headlines: []model.Headline{{Title: "t", Source: "s"}},
	})
	assert.Equal(t, "s", set.NewsSource)
}

func TestParse_IgnoresModelProvenance(t *testing.T) {
	set, err := Parse(`{"ideas":[],"mode":"generated","error":"x","news_url":"u"}`, "T", "L")
	require.NoError(t, err)
	assert.Equal(t, "T", set.Topic)
	assert.Equal(t, "L", set.Location)
	assert.Empty(t, set.Mode)
	assert.Empty(t, set.Error)
	assert.Empty(t, set.NewsURL)
}

func TestValidate(t *testing.T) {
	base, err := Parse(validJSON, "", "")
	require.NoError(t, err)
	require.NoError(t, Validate(base))

	tests := []struct {
		name   string
		mutate func(*model.ConceptSet)
	}{
		{"four ideas", func(s *model.ConceptSet) { s.Ideas = s.Ideas[:4] }},
		{"blank title", func(s *model.ConceptSet) { s.Ideas[2].Title = " " }},
		{"duplicate title", func(s *model.ConceptSet) { s.Ideas[1].Title = s.Ideas[0].Title }},
		{"long why_funny", func(s *model.ConceptSet) { s.Ideas[0].WhyFunny = strings.Repeat("a", 101) }},
		{"short ranking", func(s *model.ConceptSet) { s.Ranking = s.Ranking[:4] }},
		{"unknown in ranking", func(s *model.ConceptSet) { s.Ranking[4] = "Ghost" }},
		{"repeated in ranking", func(s *model.ConceptSet) { s.Ranking[4] = s.Ranking[3] }},
		{"winner not first", func(s *model.ConceptSet) { s.Winner = s.Ranking[1] }},
		{"no topic", func(s *model.ConceptSet) { s.Topic = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := base.Clone()
			tt.mutate(&set)
			assert.Error(t, Validate(set))
			assertValid(t, Repair(set, "topic", "loc"))
		})
	}
}

func TestRepair_ValidIsIdentity(t *testing.T) {
	set, err := Parse(validJSON, "", "")
	require.NoError(t, err)
	set = Attribute(set, []model.Headline{{Title: "t", Source: "s", URL: "u"}})

	once := Repair(set, "other", "other")
	assert.Equal(t, set, once)
	assert.Equal(t, once, Repair(once, "other", "other"))
}

func TestRepair_Idempotent(t *testing.T) {
	broken := model.ConceptSet{
		Ideas: []model.Concept{
			{Title: "Same", Premise: "a", WhyFunny: strings.Repeat("w", 200)},
			{Title: "Same"},
			{Title: "Concept 4", Premise: "c", WhyFunny: "c"},
		},
		Ranking: []string{"Same"},
	}
	once := Repair(broken, "t", "l")
	assertValid(t, once)
	assert.Equal(t, once, Repair(once, "t", "l"))

	assert.Equal(t, "Same (2)", once.Ideas[1].Title)
	assert.Equal(t, "Concept 4 (2)", once.Ideas[3].Title)
	assert.Len(t, []rune(once.Ideas[0].WhyFunny), maxWhyFunny)
}

func TestRepair_KeepsFirstFive(t *testing.T) {
	var ideas []model.Concept
	for i := 1; i <= 7; i++ {
		ideas = append(ideas, model.Concept{Title: fmt.Sprintf("Idea %d", i), Premise: "p", WhyFunny: "w"})
	}
	out := Repair(model.ConceptSet{Topic: "t", Location: "l", Ideas: ideas}, "t", "l")

	assertValid(t, out)
	assert.Equal(t, "Idea 5", out.Ideas[4].Title)
	assert.Equal(t, "Idea 1", out.Winner)
}

func TestRepair_DoesNotAliasInput(t *testing.T) {
	set := model.ConceptSet{Ideas: []model.Concept{{Title: ""}}, Ranking: []string{"x"}}
	_ = Repair(set, "t", "l")
	assert.Equal(t, "", set.Ideas[0].Title)
	assert.Equal(t, []string{"x"}, set.Ranking)
}

func TestWinnerAndRanked(t *testing.T) {
	set, err := Parse(validJSON, "", "")
	require.NoError(t, err)

	assert.Equal(t, "Coffee Queue", Winner(set).Title)

	ranked := Ranked(set)
	require.Len(t, ranked, 5)
	assert.Equal(t, "Coffee Queue", ranked[0].Title)
	assert.Equal(t, "Four Seasons", ranked[4].Title)

	set.Winner = "Missing"
	set.Ranking = []string{"Four Seasons", "Ghost"}
	assert.Equal(t, "Tram Yoga", Winner(set).Title)
	ranked = Ranked(set)
	require.Len(t, ranked, 5)
	assert.Equal(t, "Four Seasons", ranked[0].Title)
	assert.Equal(t, "Tram Yoga", ranked[1].Title)

	assert.Equal(t, model.Concept{}, Winner(model.ConceptSet{}))
}
