// render.go draws the placeholder art: the background mask, one decoration
// per background asset and one overlay per text asset.

package main

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"tools.zach/dev/blessing/internal/render"
)

// palette colors decorations and overlays, chosen by a hash of the name.
var palette = []string{"#E8B64C", "#F2A7B8", "#7EC8E3", "#9BC59D", "#E86A5C", "#8E9AAF"}

// Overlay placeholder size in pixels.
const (
	overlayWidth  = 360
	overlayHeight = 160
)

func pick(name string) (color.NRGBA, error) {
	h := fnv.New32a()
	h.Write([]byte(name))
	return render.ParseHexColor(palette[h.Sum32()%uint32(len(palette))])
}

// label returns the upper-cased first letter of the file stem after any
// "bg_" or "text_" prefix, e.g. "bg_dawn.png" -> "D".
func label(file string) string {
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	for _, p := range []string{"bg_", "text_"} {
		stem = strings.TrimPrefix(stem, p)
	}
	if stem == "" {
		return "?"
	}
	return strings.ToUpper(stem[:1])
}

// RenderMask returns the background stencil: opaque inside a rounded card
// inset by margin, transparent outside.
func RenderMask(w, h, margin, radius int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	inner := image.Rect(margin, margin, w-margin, h-margin)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if inRoundedRect(x, y, inner, radius) {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
	return img
}

func inRoundedRect(x, y int, r image.Rectangle, radius int) bool {
	if !image.Pt(x, y).In(r) {
		return false
	}
	cx := clamp(x, r.Min.X+radius, r.Max.X-1-radius)
	cy := clamp(y, r.Min.Y+radius, r.Max.Y-1-radius)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// RenderDecoration draws a colored frame with a large initial on the left.
func RenderDecoration(w, h int, file string, face font.Face) ([]byte, error) {
	col, err := pick(file)
	if err != nil {
		return nil, fmt.Errorf("pick color: %w", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	const border = 8
	frame := image.NewUniform(col)
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, w, border),
		image.Rect(0, h-border, w, h),
		image.Rect(0, 0, border, h),
		image.Rect(w-border, 0, w, h),
	} {
		draw.Draw(img, r, frame, image.Point{}, draw.Src)
	}
	drawCentered(img, image.Rect(0, 0, w/3, h), label(file), face, col)
	return encode(img)
}

// RenderOverlay draws a translucent plate with the asset initial centered.
func RenderOverlay(file string, face font.Face) ([]byte, error) {
	col, err := pick(file)
	if err != nil {
		return nil, fmt.Errorf("pick color: %w", err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, overlayWidth, overlayHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 160}), image.Point{}, draw.Src)
	drawCentered(img, img.Bounds(), label(file), face, col)
	return encode(img)
}

// drawCentered draws s visually centered inside box.
func drawCentered(dst *image.NRGBA, box image.Rectangle, s string, face font.Face, col color.Color) {
	bounds, _ := font.BoundString(face, s)
	glyphW := (bounds.Max.X - bounds.Min.X).Ceil()
	glyphH := (bounds.Max.Y - bounds.Min.Y).Ceil()
	originX := box.Min.X + (box.Dx()-glyphW)/2 - bounds.Min.X.Floor()
	originY := box.Min.Y + (box.Dy()-glyphH)/2 - bounds.Min.Y.Floor()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(originX, originY),
	}
	d.DrawString(s)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
