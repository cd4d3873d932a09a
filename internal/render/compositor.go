// Package render composites a draw result into a PNG card.
//
// Layers go down in a fixed order: the tinted background mask, the
// decoration image, the text overlay image, then four lines of text. Asset
// problems never fail a render; the layer is skipped with a warning.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"image/png"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"tools.zach/dev/blessing/internal/draw"
	"tools.zach/dev/blessing/internal/paths"
)

// Layout constants for a card; positions scale with the canvas.
const (
	tintAlpha = 200

	overlayXFrac = 0.204
	overlayYFrac = 0.49

	textRightFrac = 0.35
	textInsetX    = 40 + 133

	// blessingAdvance replaces FontSize as the advance after the bold line.
	blessingAdvance = 32
	textOffsetY     = 29
)

// lineGaps is the extra spacing after each of the first three lines.
var lineGaps = [3]int{20, 60, 85}

var (
	textFill   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	textStroke = color.NRGBA{R: 100, G: 100, B: 100, A: 80}
)

// strokeOffsets are the eight unit neighbours drawn under each glyph run.
var strokeOffsets = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Config fixes the canvas and asset locations for a Compositor.
type Config struct {
	Width        int
	Height       int
	FontSize     int
	BoldFontSize int
	AssetsDir    string // contains font/ and image/
	FontFile     string // file name under font/
}

// Options adjust a single render.
type Options struct {
	// Debug logs the draw result and text layout. Pixels are unchanged.
	Debug bool
	// TextStroke draws a soft gray outline under every line.
	TextStroke bool
}

// Compositor renders cards for one Config. It is safe for concurrent use.
type Compositor struct {
	cfg    Config
	assets paths.Assets
	fonts  *FontCache

	// textMu serializes glyph drawing since cached faces are shared.
	textMu sync.Mutex
}

// NewCompositor returns a Compositor for cfg.
func NewCompositor(cfg Config) *Compositor {
	assets := paths.Assets{Root: cfg.AssetsDir}
	var fontPath string
	if cfg.FontFile != "" {
		fontPath = assets.Font(cfg.FontFile)
	}
	return &Compositor{
		cfg:    cfg,
		assets: assets,
		fonts:  NewFontCache(fontPath),
	}
}

// Fonts exposes the face cache.
func (c *Compositor) Fonts() *FontCache { return c.fonts }

// Close releases cached font faces.
func (c *Compositor) Close() error { return c.fonts.Close() }

// Generate renders res and returns PNG bytes. Only encoding can fail.
func (c *Compositor) Generate(res draw.Result, opts Options) ([]byte, error) {
	w, h := c.cfg.Width, c.cfg.Height
	canvas := imaging.New(w, h, color.NRGBA{R: 255, G: 255, B: 255, A: 0})

	canvas = c.tintBackground(canvas, res.ColorHex)
	canvas = c.overlayAsset(canvas, res.BackgroundImage, image.Pt(0, 0))
	canvas = c.overlayAsset(canvas, res.TextImage,
		image.Pt(int(float64(w)*overlayXFrac), int(float64(h)*overlayYFrac)))

	placed := textLayout(c.cfg, res.Lines())
	if opts.Debug {
		slog.Debug("render card", "result", res, "lines", placed, "stroke", opts.TextStroke)
	}
	c.drawText(canvas, placed, opts.TextStroke)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// tintBackground paints a solid tint through the alpha of background.png.
func (c *Compositor) tintBackground(canvas *image.NRGBA, hex string) *image.NRGBA {
	mask, err := imaging.Open(c.assets.Mask())
	if err != nil {
		slog.Warn("background mask unavailable", "path", c.assets.Mask(), "error", err)
		return canvas
	}
	b := canvas.Bounds()
	if mask.Bounds().Dx() != b.Dx() || mask.Bounds().Dy() != b.Dy() {
		mask = imaging.Resize(mask, b.Dx(), b.Dy(), imaging.Lanczos)
	}

	col, ok := tint(hex, tintAlpha)
	if !ok {
		slog.Warn("invalid background color, using fallback", "color", hex)
	}
	layer := image.NewNRGBA(b)
	stddraw.DrawMask(layer, b, image.NewUniform(col), image.Point{}, mask, mask.Bounds().Min, stddraw.Over)
	return imaging.Overlay(canvas, layer, image.Point{}, 1.0)
}

// overlayAsset places image/<name> with its top-left corner at pos. An
// empty name means the draw selected no layer.
func (c *Compositor) overlayAsset(canvas *image.NRGBA, name string, pos image.Point) *image.NRGBA {
	if name == "" {
		return canvas
	}
	path := c.assets.Image(name)
	img, err := imaging.Open(path)
	if err != nil {
		slog.Warn("image layer unavailable", "path", path, "error", err)
		return canvas
	}
	return imaging.Overlay(canvas, img, pos, 1.0)
}

// placedLine is one text line with the top of its line box at (X, Y).
type placedLine struct {
	Index int
	Text  string
	X, Y  int
	Size  int
}

// textLayout positions the non-empty lines. Empty lines are dropped and do
// not advance the cursor.
func textLayout(cfg Config, lines [4]string) []placedLine {
	fs := cfg.FontSize
	x := int(float64(cfg.Width)*(1-textRightFrac)) - textInsetX
	total := fs*3 + blessingAdvance + lineGaps[0] + lineGaps[1] + lineGaps[2]
	y := (cfg.Height-total)/2 + textOffsetY

	var out []placedLine
	for i, text := range lines {
		if text == "" {
			continue
		}
		size := fs
		if i == 2 {
			size = cfg.BoldFontSize
		}
		out = append(out, placedLine{Index: i, Text: text, X: x, Y: y, Size: size})
		if i < 3 {
			adv := fs
			if i == 2 {
				adv = blessingAdvance
			}
			y += adv + lineGaps[i]
		}
	}
	return out
}

func (c *Compositor) drawText(canvas *image.NRGBA, lines []placedLine, stroke bool) {
	c.textMu.Lock()
	defer c.textMu.Unlock()

	for _, ln := range lines {
		face := c.fonts.Face(ln.Size)
		baseline := ln.Y + face.Metrics().Ascent.Ceil()
		if stroke {
			for _, off := range strokeOffsets {
				drawString(canvas, face, textStroke, ln.X+off.X, baseline+off.Y, ln.Text)
			}
		}
		drawString(canvas, face, textFill, ln.X, baseline, ln.Text)
	}
}

func drawString(dst *image.NRGBA, face font.Face, col color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
