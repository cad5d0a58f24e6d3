// Package lindos provides the version information for lindos-go.
package lindos

// Version is the current version of lindos-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
