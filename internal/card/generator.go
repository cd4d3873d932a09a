// Package card turns draws into cached daily cards.
package card

import (
	"fmt"
	"sync"

	"tools.zach/dev/blessing/internal/catalogue"
	"tools.zach/dev/blessing/internal/draw"
	"tools.zach/dev/blessing/internal/render"
)

// Generator performs one draw and one render per call.
type Generator struct {
	engine *draw.Engine
	comp   *render.Compositor
	opts   render.Options

	// mu guards engine, whose Source may not be goroutine-safe.
	mu sync.Mutex
}

// NewGenerator returns a Generator drawing from cat with src (nil for the
// global generator) and rendering through comp.
func NewGenerator(cat *catalogue.Catalogue, src draw.Source, comp *render.Compositor, opts render.Options) *Generator {
	return &Generator{
		engine: draw.NewEngine(cat, src),
		comp:   comp,
		opts:   opts,
	}
}

// Draw performs a draw without rendering.
func (g *Generator) Draw() (draw.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.Perform()
}

// Generate draws and renders a card, returning PNG bytes. Only catalogue
// and encoding failures are reported; missing assets degrade the image.
func (g *Generator) Generate() ([]byte, error) {
	res, err := g.Draw()
	if err != nil {
		return nil, err
	}
	data, err := g.comp.Generate(res, g.opts)
	if err != nil {
		return nil, fmt.Errorf("render card: %w", err)
	}
	return data, nil
}
