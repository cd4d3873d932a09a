// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	PIDFile     = "blessing.pid"
	ConfigFile  = "config.toml"
	LogFile     = "blessing.log"
	CardsDir    = "cards"
	RequestsDir = "requests"
	AssetsDir   = "assets"
)

// Asset tree layout under the assets root.
const (
	FontDir        = "font"
	ImageDir       = "image"
	BackgroundMask = "background.png"
)

// Request spool file extensions.
const (
	RequestExt  = ".req"
	ResponseExt = ".out"
	FailureExt  = ".err"
)

// CardExt is the extension of rendered cards.
const CardExt = ".png"

// BinaryName is the CLI executable name; DataDirRel is the default data
// directory relative to $HOME.
const (
	BinaryName = "blessing"
	DataDirRel = ".blessing"
)

// CardFileName returns the cache file name for a user's card on a date
// formatted as YYYY-MM-DD, e.g. "10001_2026-10-14.png".
func CardFileName(user, date string) string {
	return user + "_" + date + CardExt
}

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Cards returns the full path to the rendered card cache.
func (d DataDir) Cards() string { return filepath.Join(d.Root, CardsDir) }

// Requests returns the full path to the request spool directory.
func (d DataDir) Requests() string { return filepath.Join(d.Root, RequestsDir) }

// Resolve joins p onto Root unless p is already absolute.
func (d DataDir) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Root, p)
}

// ///////////////////////////////////////////////
// Assets
// ///////////////////////////////////////////////

// Assets provides path construction methods rooted at an asset tree.
type Assets struct {
	Root string
}

// Font returns the path of a font file under font/.
func (a Assets) Font(name string) string { return filepath.Join(a.Root, FontDir, name) }

// Image returns the path of an image file under image/.
func (a Assets) Image(name string) string { return filepath.Join(a.Root, ImageDir, name) }

// Mask returns the path of the background stencil.
func (a Assets) Mask() string { return a.Image(BackgroundMask) }
