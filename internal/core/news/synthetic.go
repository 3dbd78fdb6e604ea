package news

import (
	"fmt"

	"github.com/agenthands/cartoonist/internal/core/model"
)

var syntheticTemplates = []struct {
	title   string
	summary string
}{
	{"%s Residents Debate the Best Local Coffee Spot", "Opinions run hot as locals in %s defend their favourite cafés."},
	{"Traffic in %s Reaches New Levels of Creativity", "Commuters in %s report inventive routes and even more inventive excuses."},
	{"%s Weather Keeps Everyone Guessing", "Forecasters in %s recommend carrying both an umbrella and a sense of humour."},
	{"%s Council Schedules a Meeting About Meetings", "Local officials in %s promise the agenda will be finalised at the next meeting."},
	{"%s Pets Continue to Outnumber Parking Spaces", "A new informal survey suggests %s dogs have the upper paw."},
}

// Synthetic is the deterministic stand-in used when live news is unavailable.
// Every headline names the city.
func Synthetic(city, country, date string, count int) model.NewsResult {
	if count <= 0 {
		count = DefaultCount
	}
	headlines := make([]model.Headline, 0, count)
	for i := 0; i < count; i++ {
		tpl := syntheticTemplates[i%len(syntheticTemplates)]
		headlines = append(headlines, model.Headline{
			Title:   fmt.Sprintf(tpl.title, city),
			Summary: fmt.Sprintf(tpl.summary, city),
			Source:  SyntheticSource,
		})
	}

	return model.NewsResult{
		Location:      label(city, country),
		Date:          date,
		Headlines:     headlines,
		DominantTopic: DominantTopic("", headlines),
		Summary:       Summarize(headlines),
		Provenance:    model.NewsSynthetic,
	}
}
