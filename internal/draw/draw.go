// Package draw implements the weighted walk over the catalogue that decides
// what a card shows.
//
// A draw picks a background-image item, one of its text-image children, and
// then descends one weighted child per level until it reaches a leaf, filling
// [Result] fields according to each selected item's remark.
package draw

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"tools.zach/dev/blessing/internal/catalogue"
)

// ErrEmptyCandidates reports a selection point with nothing to choose from.
// It means the catalogue is malformed, not that the draw was unlucky.
var ErrEmptyCandidates = errors.New("no candidates to draw from")

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource uses the process-wide math/rand/v2 generator, which is safe
// for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Result is the outcome of one draw. All fields default to "".
type Result struct {
	BackgroundImage string `json:"background_image,omitempty"`
	TextImage       string `json:"text_image,omitempty"`
	TextLabel       string `json:"text_label,omitempty"`
	Dordas          string `json:"dordas,omitempty"`
	DordasColor     string `json:"dordas_color,omitempty"`
	ColorHex        string `json:"color_hex,omitempty"`
	Blessing        string `json:"blessing,omitempty"`
	Entry           string `json:"entry,omitempty"`
}

// Lines returns the four text lines in render order.
func (r Result) Lines() [4]string {
	return [4]string{r.Dordas, r.DordasColor, r.Blessing, r.Entry}
}

// Engine performs draws against a fixed catalogue.
type Engine struct {
	cat *catalogue.Catalogue
	src Source
}

// NewEngine returns an Engine drawing from cat. A nil src uses the global
// math/rand/v2 generator. A *rand.Rand is not safe for concurrent use, so an
// Engine built on one must not be shared across goroutines.
func NewEngine(cat *catalogue.Catalogue, src Source) *Engine {
	if src == nil {
		src = globalSource{}
	}
	return &Engine{cat: cat, src: src}
}

// Perform runs one full draw.
func (e *Engine) Perform() (Result, error) {
	var res Result

	bg, err := Pick(e.src, e.cat.WithRemark(catalogue.RemarkBackgroundImage))
	if err != nil {
		return Result{}, fmt.Errorf("draw background: %w", err)
	}
	res.BackgroundImage = e.cat.BackgroundAsset(bg.Name)

	var texts []catalogue.Item
	for _, it := range e.cat.Children(bg.ID) {
		if it.Remark == catalogue.RemarkTextImage {
			texts = append(texts, it)
		}
	}
	text, err := Pick(e.src, texts)
	if err != nil {
		return Result{}, fmt.Errorf("draw text image under %q: %w", bg.ID, err)
	}
	res.TextImage = e.cat.TextAsset(text.Name)
	res.TextLabel = text.Name

	// The catalogue rejects parent cycles, so this walk always reaches a leaf.
	cur := text
	for {
		kids := e.cat.Children(cur.ID)
		if len(kids) == 0 {
			break
		}
		next, err := Pick(e.src, kids)
		if err != nil {
			return Result{}, fmt.Errorf("draw under %q: %w", cur.ID, err)
		}
		apply(&res, next)
		cur = next
	}
	return res, nil
}

// apply writes it into the field matching its remark. Neutral items leave
// res untouched.
func apply(res *Result, it catalogue.Item) {
	switch it.Remark {
	case catalogue.RemarkDordas:
		res.Dordas = it.Name
	case catalogue.RemarkDordasColor:
		res.DordasColor = catalogue.DisplayName(it.Name)
		res.ColorHex = catalogue.ExtractColor(it.Name)
	case catalogue.RemarkBlessing:
		res.Blessing = it.Name
	case catalogue.RemarkEntry:
		res.Entry = it.Name
	}
}

// Pick returns one candidate with probability proportional to its weight.
//
// It draws r uniformly from [1, total] and returns the first candidate, in
// slice order, whose running weight sum reaches r.
func Pick(src Source, candidates []catalogue.Item) (catalogue.Item, error) {
	if len(candidates) == 0 {
		return catalogue.Item{}, ErrEmptyCandidates
	}
	total := 0
	for _, c := range candidates {
		total += c.Weight
	}
	if total <= 0 {
		return catalogue.Item{}, ErrEmptyCandidates
	}

	r := src.IntN(total) + 1
	sum := 0
	for _, c := range candidates {
		sum += c.Weight
		if r <= sum {
			return c, nil
		}
	}
	return candidates[len(candidates)-1], nil
}
