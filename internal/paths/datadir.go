// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// RedirectFile is the name of the file that points a data directory at
// another one.
const RedirectFile = ".evencheck-redirect"

// ResolveDataDir resolves the data directory from user input.
//
// Input normalization:
//   - "" -> "."
//   - "~/attendance" -> "$HOME/attendance"
//
// Redirect handling:
//   - If <dir>/.evencheck-redirect exists, its trimmed content names the
//     real directory, relative to <dir> unless absolute. One hop only.
func ResolveDataDir(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(ExpandHome(path))
	return followRedirect(path)
}

// ExpandHome replaces a leading "~" with the user's home directory.
// The path is returned unchanged if the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func followRedirect(dir string) string {
	content, err := os.ReadFile(filepath.Join(dir, RedirectFile)) //nolint:gosec // redirect lives inside the data dir
	if err != nil {
		return dir
	}

	target := strings.TrimSpace(string(content))
	if target == "" {
		return dir
	}
	target = ExpandHome(target)
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(dir, target))
}

// ConfigCandidates returns the config files consulted when --config is not
// given, in lookup order.
func ConfigCandidates() []string {
	candidates := []string{filepath.Join(".evencheck", "config.yaml")}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "evencheck", "config.yaml"))
	}
	return candidates
}
