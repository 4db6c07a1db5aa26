package cellar

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version returns the library version, as recorded in the VERSION file.
func Version() string {
	return strings.TrimSpace(rawVersion)
}
