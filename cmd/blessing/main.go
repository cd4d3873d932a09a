// Package main implements the blessing CLI, which draws and renders daily
// fortune cards and serves them to the chat bot through a request spool.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime/debug"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"tools.zach/dev/blessing/internal/atomicfile"
	"tools.zach/dev/blessing/internal/cache"
	"tools.zach/dev/blessing/internal/draw"
	"tools.zach/dev/blessing/internal/spool"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time with -X main.version=...; bare builds fall
// back to the VCS revision embedded by the toolchain.
var version = "dev"

func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// errReported marks an error already shown to the user.
var errReported = errors.New("reported")

// ///////////////////////////////////////////////
// Commands
// ///////////////////////////////////////////////

// rootOptions holds the persistent flags and the app built from them.
type rootOptions struct {
	dataDir string
	verbose bool
	app     *app
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "blessing",
		Short: "Draw and render daily Sky blessing cards",
		Long: `blessing draws one fortune card (祈福签) per user per day from a weighted
catalogue and renders it to a PNG.

Cards are cached under <data-dir>/cards and expire after the configured
retention. 'blessing serve' answers requests dropped into <data-dir>/requests
by the chat bot.`,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var console io.Writer
			if opts.verbose {
				console = cmd.ErrOrStderr()
			}
			a, err := setupApp(opts.dataDir, console)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return opts.app.Close()
		},
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", defaultDataDir(), "data directory for config, cards, requests and logs")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "also write log lines to stderr")

	root.AddCommand(
		newDrawCmd(opts),
		newPreviewCmd(opts),
		newRenderCmd(opts),
		newCleanupCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func newDrawCmd(opts *rootOptions) *cobra.Command {
	var user, date string
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Draw today's card for a user and print its path",
		Example: `  blessing draw --user 10001
  blessing draw --user 10001 --date 2026-10-14`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.app
			now, err := drawTime(date, a.cfg.Location())
			if err != nil {
				return err
			}
			mgr, comp, err := a.manager()
			if err != nil {
				slog.Error("build generator failed", "error", err)
				fmt.Fprintln(cmd.ErrOrStderr(), spool.FailureMessage)
				return errReported
			}
			defer comp.Close()

			c, err := mgr.Draw(user, now)
			if err != nil {
				slog.Error("draw failed", "user", user, "error", err)
				fmt.Fprintln(cmd.ErrOrStderr(), spool.FailureMessage)
				return errReported
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id")
	cmd.Flags().StringVar(&date, "date", "", "draw for this day (YYYY-MM-DD) instead of today")
	cmd.MarkFlagRequired("user")
	return cmd
}

// drawTime returns now, or noon of date in loc.
func drawTime(date string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Now(), nil
	}
	d, err := time.ParseInLocation(cache.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
	}
	return d.Add(12 * time.Hour), nil
}

// seededSource returns a PCG source for seed when set, or nil for the
// global generator.
func seededSource(cmd *cobra.Command, seed uint64) draw.Source {
	if !cmd.Flags().Changed("seed") {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var seed uint64
	var count int
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Perform draws without rendering and print the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be >= 1, got %d", count)
			}
			cat, err := opts.app.loadCatalogue()
			if err != nil {
				return err
			}
			engine := draw.NewEngine(cat, seededSource(cmd, seed))
			out := cmd.OutOrStdout()
			for i := range count {
				res, err := engine.Perform()
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "#%d\n", i+1)
				printResult(out, res)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed the draw for reproducible output")
	cmd.Flags().IntVar(&count, "count", 1, "number of draws")
	return cmd
}

// previewLabelWidth is the display width labels are padded to.
const previewLabelWidth = 8

func printResult(w io.Writer, res draw.Result) {
	rows := []struct{ label, value string }{
		{"背景", res.BackgroundImage},
		{"签图", res.TextImage},
		{"签", res.TextLabel},
		{"前缀", res.Dordas},
		{"颜色", res.DordasColor + colorSuffix(res.ColorHex)},
		{"祝福", res.Blessing},
		{"词条", res.Entry},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %s\n", runewidth.FillRight(r.label, previewLabelWidth), r.value)
	}
}

func colorSuffix(hex string) string {
	if hex == "" {
		return ""
	}
	return " #" + hex
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var out string
	var seed uint64
	var stroke, debugLayout bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one uncached card to a file",
		Example: `  blessing render --out card.png
  blessing render --out card.png --seed 7 --stroke`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := opts.app
			ro := a.renderOptions()
			if cmd.Flags().Changed("stroke") {
				ro.TextStroke = stroke
			}
			if cmd.Flags().Changed("debug") {
				ro.Debug = debugLayout
			}
			gen, comp, err := a.generator(seededSource(cmd, seed), ro)
			if err != nil {
				return err
			}
			defer comp.Close()

			data, err := gen.Generate()
			if err != nil {
				return err
			}
			if err := atomicfile.WriteInDir(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output PNG path")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed the draw for reproducible output")
	cmd.Flags().BoolVar(&stroke, "stroke", false, "outline text (overrides image.text_stroke)")
	cmd.Flags().BoolVar(&debugLayout, "debug", false, "log the draw and text layout (overrides image.debug)")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newCleanupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete cards older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.app.sweep(time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d card(s)\n", res.Deleted)
			if res.Failed > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d card(s) could not be deleted, see %s\n", res.Failed, opts.app.paths.Log())
			}
			return nil
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Answer card requests from the chat bot until stopped",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return serve(opts.app, signalChannel())
		},
	}
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
