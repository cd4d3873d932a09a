// Package blessing provides embedded data files for the blessing card tool.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML] and the default catalogue via [DefaultCatalogueYAML].
package blessing

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml. The CLI copies
// it into the data directory on first run.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte

// DefaultCatalogueYAML holds the built-in weighted draw catalogue and asset
// maps. It is used whenever catalogue.file is left empty in the config.
//
//go:embed catalogue.yaml
var DefaultCatalogueYAML []byte
