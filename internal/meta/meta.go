// Where: internal/meta/meta.go
// What: CLI identity and layout constants.
// Why: Keep names, prefixes and default paths in one place.
package meta

const (
	// Project Identity
	AppName   = "edgeman"
	EnvPrefix = "EDGEMAN"

	// Directory Layout
	HomeDir      = ".edgeman"
	OutputDir    = ".edge"
	ManifestFile = "manifest.json"
	EnvFile      = ".env"
)
