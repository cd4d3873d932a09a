package main

import (
	"os"
	"path/filepath"

	"tools.zach/dev/blessing/internal/paths"
)

// DataPaths aliases [paths.DataDir] for the daemon and command code.
type DataPaths = paths.DataDir

// defaultDataDir returns ~/.blessing, or ./.blessing when the home directory
// is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}
