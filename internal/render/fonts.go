package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sfnt "github.com/tdewolff/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontCache lazily builds one face per point size from a single font file.
//
// A size whose load fails caches the Go Regular face instead and is not
// retried. Faces are not safe for concurrent drawing; callers serialize use.
type FontCache struct {
	path string

	mu    sync.Mutex
	faces map[int]font.Face
}

// NewFontCache returns a cache for the font at path. The file is not read
// until the first Face call.
func NewFontCache(path string) *FontCache {
	return &FontCache{path: path, faces: make(map[int]font.Face)}
}

// Face returns the face for size, loading it on first use.
func (c *FontCache) Face(size int) font.Face {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.faces[size]; ok {
		return f
	}
	f, err := loadFace(c.path, size)
	if err != nil {
		slog.Warn("font load failed, using fallback", "path", c.path, "size", size, "error", err)
		f = fallbackFace(size)
	}
	c.faces[size] = f
	return f
}

// Len returns the number of cached sizes.
func (c *FontCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.faces)
}

// Close releases every cached face.
func (c *FontCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for size, f := range c.faces {
		f.Close()
		delete(c.faces, size)
	}
	return nil
}

func loadFace(path string, size int) (font.Face, error) {
	if path == "" {
		return nil, fmt.Errorf("no font file configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err = maybeConvertWOFF2(path, data)
	if err != nil {
		return nil, err
	}
	f, err := parseFont(path, data)
	if err != nil {
		return nil, err
	}
	return newFace(f, size)
}

// parseFont parses a single font, taking the first face of a collection.
func parseFont(path string, data []byte) (*opentype.Font, error) {
	if strings.EqualFold(filepath.Ext(path), ".ttc") || isCollection(data) {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse font collection: %w", err)
		}
		if coll.NumFonts() == 0 {
			return nil, fmt.Errorf("font collection %s is empty", path)
		}
		return coll.Font(0)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

func newFace(f *opentype.Font, size int) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// fallbackFace returns Go Regular at size, or the fixed 7x13 bitmap face
// if even that cannot be built.
func fallbackFace(size int) font.Face {
	f, err := opentype.Parse(goregular.TTF)
	if err == nil {
		if face, err := newFace(f, size); err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// maybeConvertWOFF2 converts WOFF2 font data to SFNT if needed.
func maybeConvertWOFF2(path string, data []byte) ([]byte, error) {
	if !isWOFF2(path, data) {
		return data, nil
	}
	out, err := sfnt.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
	}
	return out, nil
}

// isWOFF2 checks the extension or the "wOF2" magic.
func isWOFF2(path string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".woff2") {
		return true
	}
	return len(data) >= 4 && string(data[:4]) == "wOF2"
}

func isCollection(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "ttcf"
}
