package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/webp"

	"github.com/agenthands/cartoonist/internal/config"
	"github.com/agenthands/cartoonist/internal/core/concept"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/llm"
	"github.com/agenthands/cartoonist/internal/logging"
)

type Options struct {
	ScriptPrompt  string
	ImagePrompt   string
	Style         string
	ScriptTimeout time.Duration
	ImageTimeout  time.Duration
}

// Renderer runs the two generation stages: an optional comic script, then an
// image that falls back to a drawn placeholder.
type Renderer struct {
	script llm.LLMClient
	image  llm.ImageClient
	opts   Options
	now    func() time.Time
	logger *log.Logger
}

// NewRenderer accepts nil clients: a nil script client skips the script stage
// and a nil image client always yields the placeholder.
func NewRenderer(script llm.LLMClient, img llm.ImageClient, opts Options, logger *log.Logger) *Renderer {
	if opts.ScriptPrompt == "" {
		opts.ScriptPrompt = config.DefaultScriptPrompt
	}
	if opts.ImagePrompt == "" {
		opts.ImagePrompt = config.DefaultImagePrompt
	}
	if opts.Style == "" {
		opts.Style = "newspaper comic strip"
	}
	if opts.ScriptTimeout <= 0 {
		opts.ScriptTimeout = 60 * time.Second
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = 90 * time.Second
	}
	return &Renderer{
		script: script,
		image:  img,
		opts:   opts,
		now:    time.Now,
		logger: logging.OrDiscard(logger),
	}
}

// Render never fails; the artifact's Mode tells rendered from placeholder.
func (r *Renderer) Render(ctx context.Context, set model.ConceptSet) model.GeneratedArtifact {
	set = set.Clone()
	winner := concept.Winner(set)
	art := model.GeneratedArtifact{
		Location:  set.Location,
		Script:    model.ScriptSkipped,
		CreatedAt: r.now(),
	}

	script, err := r.writeScript(ctx, winner, set.Location)
	if err != nil {
		r.logger.Warn("comic script skipped", "title", winner.Title, "err", err)
		art.Warnings = append(art.Warnings, fmt.Sprintf("comic script unavailable: %v", err))
	} else {
		art.Script = model.ScriptScripted
		for i := range set.Ideas {
			if set.Ideas[i].Title == winner.Title {
				set.Ideas[i].GeneratedScript = script
			}
		}
	}
	art.Concepts = set

	data, mime, err := r.drawImage(ctx, winner, set.Location, script)
	if err != nil {
		r.logger.Warn("image generation failed, drawing placeholder", "title", winner.Title, "err", err)
		art.Warnings = append(art.Warnings, fmt.Sprintf("image unavailable: %v", err))
		art.Image = Placeholder(winner.Title, winner.Premise)
		art.MIMEType = "image/png"
		art.Mode = model.GenerationPlaceholder
		return art
	}

	art.Image = data
	art.MIMEType = mime
	art.Mode = model.GenerationRendered
	return art
}

func (r *Renderer) writeScript(ctx context.Context, winner model.Concept, location string) (string, error) {
	if r.script == nil {
		return "", fmt.Errorf("no script model configured")
	}
	cctx, cancel := context.WithTimeout(ctx, r.opts.ScriptTimeout)
	defer cancel()

	text, err := r.script.Generate(cctx, fmt.Sprintf(r.opts.ScriptPrompt, winner.Title, winner.Premise, location))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.ErrNoContent
	}
	return text, nil
}

func (r *Renderer) drawImage(ctx context.Context, winner model.Concept, location, script string) ([]byte, string, error) {
	if r.image == nil {
		return nil, "", fmt.Errorf("no image model configured")
	}
	cctx, cancel := context.WithTimeout(ctx, r.opts.ImageTimeout)
	defer cancel()

	img, err := r.image.GenerateImage(cctx, r.imagePrompt(winner, location, script))
	if err != nil {
		return nil, "", err
	}
	mime, err := Sniff(img.Data)
	if err != nil {
		return nil, "", err
	}
	return img.Data, mime, nil
}

func (r *Renderer) imagePrompt(winner model.Concept, location, script string) string {
	var section string
	if script != "" {
		section = "\nCOMIC STRIP SCRIPT (follow this structure):\n" + script +
			"\n\nFollow this script precisely to ensure visual coherence and proper humor delivery.\n"
	}
	return fmt.Sprintf(r.opts.ImagePrompt, r.opts.Style, winner.Title, winner.Premise, location, section)
}

// Sniff decodes data fully and returns its MIME type, or an error when the
// bytes are not an image.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", llm.ErrNoContent
	}
	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("invalid image payload: %w", err)
	}
	return "image/" + format, nil
}
