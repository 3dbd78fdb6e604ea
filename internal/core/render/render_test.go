package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/agenthands/cartoonist/internal/core/concept"
	"github.com/agenthands/cartoonist/internal/core/model"
	"github.com/agenthands/cartoonist/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

func testSet() model.ConceptSet {
	return concept.Fallback("Tram delays", "Melbourne, Australia", "")
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRender_Rendered(t *testing.T) {
	script := &llm.MockLLMClient{Response: "Panel 1: a tram.\nPanel 2: no tram."}
	images := &llm.MockImageClient{Image: llm.Image{Data: tinyPNG(t), MIMEType: "image/png"}}
	r := NewRenderer(script, images, Options{}, nil)

	art := r.Render(context.Background(), testSet())

	assert.Equal(t, model.GenerationRendered, art.Mode)
	assert.Equal(t, model.ScriptScripted, art.Script)
	assert.Equal(t, "image/png", art.MIMEType)
	assert.Empty(t, art.Warnings)
	assert.Equal(t, "Melbourne, Australia", art.Location)
	assert.Equal(t, "Panel 1: a tram.\nPanel 2: no tram.", concept.Winner(art.Concepts).GeneratedScript)

	require.Len(t, script.Prompts, 1)
	assert.Contains(t, script.Prompts[0], "Title: News Update: Tram delays")
	require.Len(t, images.Prompts, 1)
	p := images.Prompts[0]
	assert.Contains(t, p, "Create a newspaper comic strip cartoon")
	assert.Contains(t, p, "Setting: Melbourne, Australia")
	assert.Contains(t, p, "Panel 1: a tram.\nPanel 2: no tram.")
	assert.NotContains(t, p, "%!")
}

func TestRender_ScriptFailureContinues(t *testing.T) {
	script := &llm.MockLLMClient{Err: errors.New("quota exceeded")}
	images := &llm.MockImageClient{Image: llm.Image{Data: tinyPNG(t)}}
	r := NewRenderer(script, images, Options{}, nil)

	art := r.Render(context.Background(), testSet())

	assert.Equal(t, model.GenerationRendered, art.Mode)
	assert.Equal(t, model.ScriptSkipped, art.Script)
	require.Len(t, art.Warnings, 1)
	assert.Contains(t, art.Warnings[0], "quota exceeded")
	assert.NotContains(t, images.Prompts[0], "COMIC STRIP SCRIPT")
	assert.Empty(t, concept.Winner(art.Concepts).GeneratedScript)
}

func TestRender_BlankScriptIsSkipped(t *testing.T) {
	script := &llm.MockLLMClient{Response: "  \n"}
	r := NewRenderer(script, nil, Options{}, nil)

	art := r.Render(context.Background(), testSet())
	assert.Equal(t, model.ScriptSkipped, art.Script)
}

func TestRender_BothStagesFail(t *testing.T) {
	script := &llm.MockLLMClient{Err: errors.New("down")}
	images := &llm.MockImageClient{Err: errors.New("down")}
	r := NewRenderer(script, images, Options{}, nil)

	art := r.Render(context.Background(), testSet())

	assert.Equal(t, model.GenerationPlaceholder, art.Mode)
	assert.Equal(t, model.ScriptSkipped, art.Script)
	assert.Len(t, art.Warnings, 2)
	assert.Equal(t, "image/png", art.MIMEType)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(art.Image))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, PlaceholderWidth, cfg.Width)
	assert.Equal(t, PlaceholderHeight, cfg.Height)
}

func TestRender_InvalidBytesFallBack(t *testing.T) {
	images := &llm.MockImageClient{Image: llm.Image{Data: []byte("I am a text-only answer"), MIMEType: "image/png"}}
	r := NewRenderer(nil, images, Options{}, nil)

	art := r.Render(context.Background(), testSet())

	assert.Equal(t, model.GenerationPlaceholder, art.Mode)
	assert.Contains(t, strings.Join(art.Warnings, "\n"), "invalid image payload")
}

func TestRender_EmptyPayloadFallsBack(t *testing.T) {
	r := NewRenderer(nil, &llm.MockImageClient{}, Options{}, nil)
	art := r.Render(context.Background(), testSet())
	assert.Equal(t, model.GenerationPlaceholder, art.Mode)
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	set := testSet()
	r := NewRenderer(&llm.MockLLMClient{Response: "script"}, nil, Options{}, nil)

	_ = r.Render(context.Background(), set)
	assert.Empty(t, set.Ideas[0].GeneratedScript)
}

func TestRender_EmptyConceptSet(t *testing.T) {
	r := NewRenderer(nil, nil, Options{}, nil)
	art := r.Render(context.Background(), model.ConceptSet{})
	assert.Equal(t, model.GenerationPlaceholder, art.Mode)
	assert.NotEmpty(t, art.Image)
}

func TestPlaceholder_Pixels(t *testing.T) {
	data := Placeholder("A very long title that keeps going and going well past the width of the card",
		strings.Repeat("word ", 400))

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	r, g, b, _ := img.At(12, 12).RGBA()
	assert.Equal(t, [3]uint32{0xFF, 0x6B, 0x6B}, [3]uint32{r >> 8, g >> 8, b >> 8})

	r, g, b, _ = img.At(2, 2).RGBA()
	assert.Equal(t, [3]uint32{0xFF, 0xFF, 0xFF}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

func TestWrap(t *testing.T) {
	loadFonts()
	face := newFace(regular, 24)

	lines := wrap(face, strings.Repeat("cartoon ", 200), 700, 5)
	assert.Len(t, lines, 5)

	assert.Equal(t, []string{"short premise"}, wrap(face, "short  premise", 700, 5))
	assert.Empty(t, wrap(face, "", 700, 5))
}

func TestWrap_ByPixelWidth(t *testing.T) {
	loadFonts()
	face := newFace(regular, 24)
	defer closeFaces(face)

	// same rune count, different glyph widths
	wide := wrap(face, strings.Repeat("WWWWW ", 60), 700, 100)
	narrow := wrap(face, strings.Repeat("iiiii ", 60), 700, 100)
	assert.Greater(t, len(wide), len(narrow))

	for _, line := range append(wide, narrow...) {
		assert.LessOrEqual(t, font.MeasureString(face, line).Ceil(), 700, line)
	}
}

func TestSniff(t *testing.T) {
	mime, err := Sniff(tinyPNG(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	_, err = Sniff(nil)
	assert.ErrorIs(t, err, llm.ErrNoContent)

	_, err = Sniff([]byte{0x89, 'P', 'N', 'G'})
	assert.Error(t, err)
}
