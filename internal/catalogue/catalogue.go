// Package catalogue holds the weighted item forest that drives every draw,
// together with the asset maps that turn selected names into image files.
//
// A Catalogue is immutable once loaded. [Default] parses the embedded
// catalogue once per process; [Load] and [LoadFile] build independent
// instances, e.g. from a deployment-supplied YAML file.
package catalogue

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
	rootpkg "tools.zach/dev/blessing"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Remark classifies an item and decides which draw field it fills.
type Remark string

const (
	RemarkBackgroundImage Remark = "background-image"
	RemarkTextImage       Remark = "text-image"
	RemarkDordas          Remark = "dordas"
	RemarkDordasColor     Remark = "dordas-color"
	RemarkBlessing        Remark = "blessing"
	RemarkEntry           Remark = "entry"
	RemarkNone            Remark = "none"
)

// Known reports whether r is one of the tags that populate a draw field.
func (r Remark) Known() bool {
	switch r {
	case RemarkBackgroundImage, RemarkTextImage, RemarkDordas, RemarkDordasColor, RemarkBlessing, RemarkEntry:
		return true
	}
	return false
}

// Item is one weighted node of the catalogue forest.
type Item struct {
	// ID uniquely identifies the item.
	ID string `yaml:"id"`
	// ParentID is the ID of the parent item; empty for roots.
	ParentID string `yaml:"parent,omitempty"`
	// Name is the display text, or the asset-map key for image items.
	Name string `yaml:"name"`
	// Weight is the relative selection weight among siblings, at least 1.
	Weight int `yaml:"weight"`
	// Remark is the classification tag; unknown values mark neutral nodes.
	Remark Remark `yaml:"remark"`
}

// AssetMaps resolve image item names to file names under image/.
type AssetMaps struct {
	Background map[string]string `yaml:"background"`
	Text       map[string]string `yaml:"text"`
}

// file is the on-disk YAML layout.
type file struct {
	Assets AssetMaps `yaml:"assets"`
	Items  []Item    `yaml:"items"`
}

// Catalogue is a validated, read-only item forest.
type Catalogue struct {
	items    []Item
	children map[string][]int // parent ID -> item indices in declaration order
	byRemark map[Remark][]int
	assets   AssetMaps
}

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

// ErrInvalid is wrapped by every validation failure returned from [Load].
var ErrInvalid = errors.New("invalid catalogue")

// ///////////////////////////////////////////////
// Loading
// ///////////////////////////////////////////////

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
	defaultErr  error
)

// Default returns the catalogue embedded in the binary. It is parsed on first
// use and shared by every caller afterwards.
func Default() (*Catalogue, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(rootpkg.DefaultCatalogueYAML)
	})
	return defaultCat, defaultErr
}

// LoadFile reads and validates a YAML catalogue from path.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load parses and validates a YAML catalogue.
func Load(data []byte) (*Catalogue, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	return New(f.Items, f.Assets)
}

// New validates items and builds a Catalogue. Items are copied; later changes
// to the slice or maps passed in do not affect the result.
func New(items []Item, assets AssetMaps) (*Catalogue, error) {
	c := &Catalogue{
		items:    append([]Item(nil), items...),
		children: make(map[string][]int),
		byRemark: make(map[Remark][]int),
		assets: AssetMaps{
			Background: copyMap(assets.Background),
			Text:       copyMap(assets.Text),
		},
	}

	index := make(map[string]int, len(c.items))
	for i, it := range c.items {
		switch {
		case it.ID == "":
			return nil, fmt.Errorf("%w: item %d has no id", ErrInvalid, i)
		case it.Weight <= 0:
			return nil, fmt.Errorf("%w: item %q has weight %d, must be >= 1", ErrInvalid, it.ID, it.Weight)
		}
		if _, dup := index[it.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalid, it.ID)
		}
		index[it.ID] = i
	}

	for i, it := range c.items {
		if it.ParentID != "" {
			if _, ok := index[it.ParentID]; !ok {
				return nil, fmt.Errorf("%w: item %q references unknown parent %q", ErrInvalid, it.ID, it.ParentID)
			}
			c.children[it.ParentID] = append(c.children[it.ParentID], i)
		}
		c.byRemark[it.Remark] = append(c.byRemark[it.Remark], i)
	}

	if err := checkCycles(c.items, index); err != nil {
		return nil, err
	}

	c.warnMissingAssets()
	return c, nil
}

// checkCycles follows every parent chain; a chain longer than the item count
// means it loops.
func checkCycles(items []Item, index map[string]int) error {
	for _, it := range items {
		steps := 0
		for p := it.ParentID; p != ""; p = items[index[p]].ParentID {
			if p == it.ID || steps > len(items) {
				return fmt.Errorf("%w: item %q is part of a parent cycle", ErrInvalid, it.ID)
			}
			steps++
		}
	}
	return nil
}

// warnMissingAssets logs image items whose name has no asset mapping. A miss
// is not fatal: the layer is simply skipped at render time.
func (c *Catalogue) warnMissingAssets() {
	for _, i := range c.byRemark[RemarkBackgroundImage] {
		if _, ok := c.assets.Background[c.items[i].Name]; !ok {
			slog.Warn("catalogue: background item has no asset", "id", c.items[i].ID, "name", c.items[i].Name)
		}
	}
	for _, i := range c.byRemark[RemarkTextImage] {
		if _, ok := c.assets.Text[c.items[i].Name]; !ok {
			slog.Warn("catalogue: text item has no asset", "id", c.items[i].ID, "name", c.items[i].Name)
		}
	}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ///////////////////////////////////////////////
// Queries
// ///////////////////////////////////////////////

// Len returns the number of items.
func (c *Catalogue) Len() int { return len(c.items) }

// Items returns a copy of all items in declaration order.
func (c *Catalogue) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Children returns the children of the item with the given ID in declaration
// order. The result is a fresh slice.
func (c *Catalogue) Children(id string) []Item {
	return c.collect(c.children[id])
}

// WithRemark returns every item tagged r, in declaration order.
func (c *Catalogue) WithRemark(r Remark) []Item {
	return c.collect(c.byRemark[r])
}

func (c *Catalogue) collect(idx []int) []Item {
	out := make([]Item, len(idx))
	for i, j := range idx {
		out[i] = c.items[j]
	}
	return out
}

// BackgroundAsset returns the decoration file for a background item name, or
// "" when none is mapped.
func (c *Catalogue) BackgroundAsset(name string) string { return c.assets.Background[name] }

// TextAsset returns the overlay file for a text-image item name, or "" when
// none is mapped.
func (c *Catalogue) TextAsset(name string) string { return c.assets.Text[name] }

// Assets returns a copy of the asset maps.
func (c *Catalogue) Assets() AssetMaps {
	return AssetMaps{Background: copyMap(c.assets.Background), Text: copyMap(c.assets.Text)}
}
