// Package paths provides cross-platform path resolution for coffer's
// configuration, persistent state, and staging directories.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/state, ~/.cache).
//
//	paths.ConfigFile() // ~/.config/coffer/config.yaml
//	paths.StateFile()  // ~/.local/state/coffer/state.json
//	paths.StagingDir() // ~/.cache/coffer/staging
package paths
