package catalogue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
assets:
  background:
    晨岛: bg_dawn.png
  text:
    大吉: text_great.png
items:
  - {id: b1, name: 晨岛, weight: 2, remark: background-image}
  - {id: t1, parent: b1, name: 大吉, weight: 1, remark: text-image}
  - {id: d1, parent: t1, name: 今日, weight: 1, remark: dordas}
  - {id: d2, parent: t1, name: 此刻, weight: 3, remark: dordas}
  - {id: g1, parent: d1, name: 转折, weight: 1, remark: none}
`

// ///////////////////////////////////////////////
// Load Tests
// ///////////////////////////////////////////////

func TestLoad(t *testing.T) {
	c, err := Load([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}

	kids := c.Children("t1")
	if len(kids) != 2 || kids[0].ID != "d1" || kids[1].ID != "d2" {
		t.Errorf("Children(t1) = %+v, want [d1 d2] in declaration order", kids)
	}
	if got := c.Children("g1"); len(got) != 0 {
		t.Errorf("Children(g1) = %+v, want none", got)
	}

	bgs := c.WithRemark(RemarkBackgroundImage)
	if len(bgs) != 1 || bgs[0].Name != "晨岛" {
		t.Errorf("WithRemark(background-image) = %+v", bgs)
	}

	if got := c.BackgroundAsset("晨岛"); got != "bg_dawn.png" {
		t.Errorf("BackgroundAsset = %q, want bg_dawn.png", got)
	}
	if got := c.TextAsset("大吉"); got != "text_great.png" {
		t.Errorf("TextAsset = %q, want text_great.png", got)
	}
	if got := c.TextAsset("missing"); got != "" {
		t.Errorf("TextAsset(missing) = %q, want empty", got)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{"zero weight", []Item{{ID: "a", Name: "a", Weight: 0}}},
		{"negative weight", []Item{{ID: "a", Name: "a", Weight: -2}}},
		{"empty id", []Item{{ID: "", Name: "a", Weight: 1}}},
		{"duplicate id", []Item{{ID: "a", Weight: 1}, {ID: "a", Weight: 1}}},
		{"unknown parent", []Item{{ID: "a", ParentID: "zz", Weight: 1}}},
		{"self parent", []Item{{ID: "a", ParentID: "a", Weight: 1}}},
		{"two-node cycle", []Item{{ID: "a", ParentID: "b", Weight: 1}, {ID: "b", ParentID: "a", Weight: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items, AssetMaps{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v does not wrap ErrInvalid", err)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load([]byte("items: [unterminated")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5", c.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNew_CopiesInput(t *testing.T) {
	items := []Item{{ID: "a", Name: "a", Weight: 1, Remark: RemarkBackgroundImage}}
	bg := map[string]string{"a": "a.png"}
	c, err := New(items, AssetMaps{Background: bg})
	if err != nil {
		t.Fatal(err)
	}
	items[0].Name = "mutated"
	bg["a"] = "other.png"

	if got := c.Items()[0].Name; got != "a" {
		t.Errorf("item name changed through caller slice: %q", got)
	}
	if got := c.BackgroundAsset("a"); got != "a.png" {
		t.Errorf("asset changed through caller map: %q", got)
	}
}

// ///////////////////////////////////////////////
// Default Catalogue
// ///////////////////////////////////////////////

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	again, _ := Default()
	if c != again {
		t.Error("Default should return the same instance")
	}

	bgs := c.WithRemark(RemarkBackgroundImage)
	if len(bgs) == 0 {
		t.Fatal("default catalogue has no background items")
	}
	for _, bg := range bgs {
		if c.BackgroundAsset(bg.Name) == "" {
			t.Errorf("background %q has no asset", bg.Name)
		}
		var texts int
		for _, k := range c.Children(bg.ID) {
			if k.Remark == RemarkTextImage {
				texts++
				if c.TextAsset(k.Name) == "" {
					t.Errorf("text item %q has no asset", k.Name)
				}
			}
		}
		if texts == 0 {
			t.Errorf("background %q has no text-image children", bg.ID)
		}
	}

	for _, it := range c.WithRemark(RemarkDordasColor) {
		if ExtractColor(it.Name) == "" {
			t.Errorf("color item %q carries no color token", it.Name)
		}
	}
}

// ///////////////////////////////////////////////
// Remark
// ///////////////////////////////////////////////

func TestRemarkKnown(t *testing.T) {
	for _, r := range []Remark{RemarkBackgroundImage, RemarkTextImage, RemarkDordas, RemarkDordasColor, RemarkBlessing, RemarkEntry} {
		if !r.Known() {
			t.Errorf("%q should be known", r)
		}
	}
	for _, r := range []Remark{RemarkNone, "", "group"} {
		if r.Known() {
			t.Errorf("%q should not be known", r)
		}
	}
}
