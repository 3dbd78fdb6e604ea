package model

import "time"

type GenerationMode string

const (
	GenerationRendered    GenerationMode = "rendered"
	GenerationPlaceholder GenerationMode = "placeholder"
)

type ScriptState string

const (
	ScriptScripted ScriptState = "scripted"
	ScriptSkipped  ScriptState = "skipped"
)

// GeneratedArtifact is handed to the store right after creation; the pipeline
// keeps no reference to it.
type GeneratedArtifact struct {
	ID        string         `json:"id"`
	Location  string         `json:"location"`
	Concepts  ConceptSet     `json:"concepts"`
	Image     []byte         `json:"-"`
	MIMEType  string         `json:"mime_type"`
	Mode      GenerationMode `json:"generation_mode"`
	Script    ScriptState    `json:"script_state"`
	Warnings  []string       `json:"warnings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
