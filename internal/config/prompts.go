package config

// DefaultConceptsPrompt arguments: location, topic, news context section.
// The JSON field names are read back by the concept parser and must not change.
const DefaultConceptsPrompt = `You are a professional comedy writer in %[1]s creating cartoon concepts.

Topic: %[2]s%[3]s

Your task:
1. Create exactly 5 original, funny cartoon concepts about this topic
2. Each concept must be:
   - Clever and witty
   - Specific to %[1]s or use local context
   - Appropriate for a general audience
   - Original (not recycling old jokes)
3. Rank them from funniest (#1) to least funny (#5)
4. Select the #1 concept as the winner

Return ONLY valid JSON in this exact format:
{
  "topic": "%[2]s",
  "location": "%[1]s",
  "ideas": [
    {"title": "Cartoon Title 1", "premise": "One sentence describing the cartoon concept", "why_funny": "Brief explanation (max 15 words)"},
    {"title": "Cartoon Title 2", "premise": "One sentence describing the cartoon concept", "why_funny": "Brief explanation (max 15 words)"},
    {"title": "Cartoon Title 3", "premise": "One sentence describing the cartoon concept", "why_funny": "Brief explanation (max 15 words)"},
    {"title": "Cartoon Title 4", "premise": "One sentence describing the cartoon concept", "why_funny": "Brief explanation (max 15 words)"},
    {"title": "Cartoon Title 5", "premise": "One sentence describing the cartoon concept", "why_funny": "Brief explanation (max 15 words)"}
  ],
  "ranking": ["Cartoon Title 1", "Cartoon Title 2", "Cartoon Title 3", "Cartoon Title 4", "Cartoon Title 5"],
  "winner": "Cartoon Title 1"
}

IMPORTANT: Return ONLY the JSON, no markdown code blocks, no extra text.
`

// DefaultScriptPrompt arguments: title, premise, location.
const DefaultScriptPrompt = `Create a detailed comic strip script for this cartoon concept:

Title: %[1]s
Concept: %[2]s
Setting: %[3]s

Write a 2-3 panel comic strip script with:
1. Panel descriptions (what visually appears in each panel)
2. Character positions and expressions
3. Dialogue or speech bubbles (if applicable)
4. Visual gags or details that make it funny
5. Color notes and visual emphasis
6. Key visual elements that should be prominent

Format as a structured script that clearly shows the visual progression and humor.
Make it detailed enough for an artist to visualize and draw the complete comic strip.
`

// DefaultImagePrompt arguments: style, title, premise, location, script section.
const DefaultImagePrompt = `Create a %[1]s cartoon image in the style of a professional editorial cartoonist:

Title: %[2]s
Concept: %[3]s
Setting: %[4]s
%[5]s
Art style requirements:
- Clean, precise line art with sharp details
- Expressive, well-defined characters
- Clever visual humor and clear visual storytelling
- Bright, vibrant but balanced colors

The cartoon should be:
- Single panel or 2-3 panel strip
- Easily readable and understandable at a glance
- Appropriate for all ages

Focus on visual comedy, clever visual puns, and clear communication of the concept.
`
