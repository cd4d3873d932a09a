// genassets renders placeholder art for every asset the catalogue names.
//
// It writes image/background.png (the tint stencil), one decoration per
// background asset and one overlay per text asset into an assets directory,
// so a fresh checkout renders complete cards before real art exists.
// Existing files are kept unless -force is given.
//
// Usage:
//
//	go run ./cmd/genassets -out ~/.blessing/assets
//	go run ./cmd/genassets -catalogue my.yaml -font font/Some.woff2 -force
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"tools.zach/dev/blessing/internal/atomicfile"
	"tools.zach/dev/blessing/internal/catalogue"
	"tools.zach/dev/blessing/internal/paths"
	"tools.zach/dev/blessing/internal/render"
)

func main() {
	outDir := flag.String("out", paths.AssetsDir, "asset root; files go to <out>/image")
	catFile := flag.String("catalogue", "", "catalogue YAML (default: built-in)")
	fontFile := flag.String("font", "", "font for the initials (default: Go Regular)")
	width := flag.Int("width", 1240, "card width")
	height := flag.Int("height", 620, "card height")
	force := flag.Bool("force", false, "overwrite existing files")
	flag.Parse()

	n, err := generate(options{
		out:       *outDir,
		catalogue: *catFile,
		font:      *fontFile,
		width:     *width,
		height:    *height,
		force:     *force,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Done. Generated %d assets.\n", n)
}

type options struct {
	out, catalogue, font string
	width, height        int
	force                bool
}

// generate writes every missing asset and returns how many were written.
func generate(o options) (int, error) {
	var cat *catalogue.Catalogue
	var err error
	if o.catalogue != "" {
		cat, err = catalogue.LoadFile(o.catalogue)
	} else {
		cat, err = catalogue.Default()
	}
	if err != nil {
		return 0, fmt.Errorf("load catalogue: %w", err)
	}

	fonts := render.NewFontCache(o.font)
	defer fonts.Close()
	assets := paths.Assets{Root: o.out}
	written := 0

	write := func(path string, data []byte) error {
		if !o.force {
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("  %s (exists, skipped)\n", path)
				return nil
			}
		}
		if err := atomicfile.WriteInDir(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("  %s\n", path)
		written++
		return nil
	}

	mask, err := encode(RenderMask(o.width, o.height, o.height/20, o.height/12))
	if err != nil {
		return written, err
	}
	if err := write(assets.Mask(), mask); err != nil {
		return written, err
	}

	maps := cat.Assets()
	for _, file := range sortedValues(maps.Background) {
		data, err := RenderDecoration(o.width, o.height, file, fonts.Face(o.height/3))
		if err != nil {
			return written, fmt.Errorf("render %s: %w", file, err)
		}
		if err := write(assets.Image(file), data); err != nil {
			return written, err
		}
	}
	for _, file := range sortedValues(maps.Text) {
		data, err := RenderOverlay(file, fonts.Face(overlayHeight*2/3))
		if err != nil {
			return written, fmt.Errorf("render %s: %w", file, err)
		}
		if err := write(assets.Image(file), data); err != nil {
			return written, err
		}
	}
	return written, nil
}

// sortedValues returns the distinct values of m in sorted order.
func sortedValues(m map[string]string) []string {
	seen := make(map[string]bool, len(m))
	var out []string
	for _, v := range m {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
