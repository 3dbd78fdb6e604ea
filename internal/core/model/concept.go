package model

// ConceptCount is the number of ideas every ConceptSet carries.
const ConceptCount = 5

type ConceptMode string

const (
	ConceptsGenerated ConceptMode = "generated"
	ConceptsRepaired  ConceptMode = "repaired"
	ConceptsFallback  ConceptMode = "fallback"
)

// Concept field names mirror the JSON contract given to the text model.
type Concept struct {
	Title           string `json:"title"`
	Premise         string `json:"premise"`
	WhyFunny        string `json:"why_funny"`
	NewsURL         string `json:"news_url,omitempty"`
	NewsSource      string `json:"news_source,omitempty"`
	GeneratedScript string `json:"generated_script,omitempty"`
}

type ConceptSet struct {
	Topic    string    `json:"topic"`
	Location string    `json:"location"`
	Ideas    []Concept `json:"ideas"`
	Ranking  []string  `json:"ranking"`
	Winner   string    `json:"winner"`

	NewsURL    string `json:"news_url,omitempty"`
	NewsSource string `json:"news_source,omitempty"`
	NewsTitle  string `json:"news_title,omitempty"`

	Mode  ConceptMode `json:"mode,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Clone returns a deep copy so repairs never alias the caller's slices.
func (s ConceptSet) Clone() ConceptSet {
	out := s
	out.Ideas = append([]Concept(nil), s.Ideas...)
	out.Ranking = append([]string(nil), s.Ranking...)
	return out
}
