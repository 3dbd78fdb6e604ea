package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	PlaceholderWidth  = 800
	PlaceholderHeight = 600
	ComingSoon        = "Cartoon Image Coming Soon!"

	borderInset    = 10
	borderWidth    = 5
	textMargin     = 50
	maxPremiseRows = 5
)

var (
	accent   = color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF}
	ink      = color.RGBA{A: 0xFF}
	softInk  = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xFF}
	fontOnce sync.Once
	regular  *opentype.Font
	bold     *opentype.Font
)

func loadFonts() {
	fontOnce.Do(func() {
		regular, _ = opentype.Parse(goregular.TTF)
		bold, _ = opentype.Parse(gobold.TTF)
	})
}

// newFace builds a fresh face per call; opentype faces are not safe for
// concurrent use.
func newFace(f *opentype.Font, size float64) font.Face {
	if f == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// Placeholder draws the stand-in card shown when no image could be generated.
// It has no external dependencies and always returns a PNG.
func Placeholder(title, premise string) []byte {
	loadFonts()
	titleFace := newFace(bold, 40)
	textFace := newFace(regular, 24)
	footerFace := newFace(bold, 28)
	defer closeFaces(titleFace, textFace, footerFace)

	img := image.NewRGBA(image.Rect(0, 0, PlaceholderWidth, PlaceholderHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawBorder(img)

	maxWidth := PlaceholderWidth - 2*textMargin
	drawCentered(img, titleFace, ink, fitLine(titleFace, title, maxWidth), 50)

	y := 150
	for _, line := range wrap(textFace, premise, maxWidth, maxPremiseRows) {
		drawCentered(img, textFace, softInk, line, y)
		y += 40
	}

	drawCentered(img, footerFace, accent, ComingSoon, PlaceholderHeight-100)

	var buf bytes.Buffer
	// encoding an in-memory RGBA into a buffer cannot fail
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func drawBorder(img *image.RGBA) {
	src := image.NewUniform(accent)
	outer := image.Rect(borderInset, borderInset, PlaceholderWidth-borderInset, PlaceholderHeight-borderInset)
	sides := []image.Rectangle{
		image.Rect(outer.Min.X, outer.Min.Y, outer.Max.X, outer.Min.Y+borderWidth),
		image.Rect(outer.Min.X, outer.Max.Y-borderWidth, outer.Max.X, outer.Max.Y),
		image.Rect(outer.Min.X, outer.Min.Y, outer.Min.X+borderWidth, outer.Max.Y),
		image.Rect(outer.Max.X-borderWidth, outer.Min.Y, outer.Max.X, outer.Max.Y),
	}
	for _, r := range sides {
		draw.Draw(img, r, src, image.Point{}, draw.Src)
	}
}

// drawCentered places text horizontally centered with its top edge at top.
func drawCentered(img *image.RGBA, face font.Face, c color.Color, text string, top int) {
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P((PlaceholderWidth-width)/2, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// wrap greedily fills lines up to maxWidth pixels, keeping at most maxLines.
func wrap(face font.Face, text string, maxWidth, maxLines int) []string {
	var lines []string
	var current []string
	for _, word := range strings.Fields(text) {
		candidate := strings.Join(append(current, word), " ")
		if font.MeasureString(face, candidate).Ceil() <= maxWidth || len(current) == 0 {
			current = append(current, word)
			continue
		}
		lines = append(lines, strings.Join(current, " "))
		current = []string{word}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	for i, line := range lines {
		lines[i] = fitLine(face, line, maxWidth)
	}
	return lines
}

// fitLine shortens a single line with an ellipsis until it fits.
func fitLine(face font.Face, line string, maxWidth int) string {
	if font.MeasureString(face, line).Ceil() <= maxWidth {
		return line
	}
	runes := []rune(line)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "..."
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	return ""
}

func closeFaces(faces ...font.Face) {
	for _, f := range faces {
		if f != basicfont.Face7x13 {
			_ = f.Close()
		}
	}
}
