package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"tools.zach/dev/blessing/internal/cache"
	"tools.zach/dev/blessing/internal/card"
	"tools.zach/dev/blessing/internal/catalogue"
	"tools.zach/dev/blessing/internal/config"
	"tools.zach/dev/blessing/internal/draw"
	"tools.zach/dev/blessing/internal/logger"
	"tools.zach/dev/blessing/internal/render"
)

// app is the state every command shares: paths, config and the log file.
type app struct {
	paths    DataPaths
	cfg      *config.Config
	logClose io.Closer
}

// setupApp prepares the data directory, seeds and loads the config and
// installs the default logger. console mirrors log lines when non-nil.
func setupApp(dataDir string, console io.Writer) (*app, error) {
	p := DataPaths{Root: dataDir}
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if _, err := config.EnsureDefault(p.Root); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg, err := config.Load(p.Root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, closer := logger.New(logger.Options{
		Path:      p.Log(),
		Level:     logger.ParseLevel(cfg.Log.Level),
		MaxSizeMB: cfg.Log.MaxSizeMB,
		Console:   console,
	})
	slog.SetDefault(log)

	return &app{paths: p, cfg: cfg, logClose: closer}, nil
}

func (a *app) Close() error {
	if a.logClose == nil {
		return nil
	}
	return a.logClose.Close()
}

// loadCatalogue returns the configured catalogue or the built-in one.
func (a *app) loadCatalogue() (*catalogue.Catalogue, error) {
	if path := a.cfg.CataloguePath(a.paths.Root); path != "" {
		return catalogue.LoadFile(path)
	}
	return catalogue.Default()
}

func (a *app) compositor() *render.Compositor {
	img := a.cfg.Image
	return render.NewCompositor(render.Config{
		Width:        img.Width,
		Height:       img.Height,
		FontSize:     img.FontSize,
		BoldFontSize: img.BoldFontSize,
		AssetsDir:    a.cfg.AssetsPath(a.paths.Root),
		FontFile:     img.FontFile,
	})
}

func (a *app) renderOptions() render.Options {
	return render.Options{Debug: a.cfg.Image.Debug, TextStroke: a.cfg.Image.TextStroke}
}

// generator builds a Generator. The caller closes the returned Compositor.
func (a *app) generator(src draw.Source, opts render.Options) (*card.Generator, *render.Compositor, error) {
	cat, err := a.loadCatalogue()
	if err != nil {
		return nil, nil, err
	}
	comp := a.compositor()
	return card.NewGenerator(cat, src, comp, opts), comp, nil
}

func (a *app) store() *cache.Store {
	return cache.NewStore(a.paths.Cards(), a.cfg.Location())
}

// manager builds the daily-cache Manager over a global-source Generator.
func (a *app) manager() (*card.Manager, *render.Compositor, error) {
	gen, comp, err := a.generator(nil, a.renderOptions())
	if err != nil {
		return nil, nil, err
	}
	return card.NewManager(a.store(), gen), comp, nil
}

// sweep runs one retention pass over the cards directory.
func (a *app) sweep(now time.Time) (cache.SweepResult, error) {
	res, err := cache.Sweep(a.paths.Cards(), a.cfg.Cache.Pattern, a.cfg.Retention(), now)
	if err != nil {
		return res, err
	}
	if res.Deleted > 0 || res.Failed > 0 {
		slog.Info("card sweep finished", "deleted", res.Deleted, "failed", res.Failed)
	}
	return res, nil
}
