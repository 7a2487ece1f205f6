package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultExportDir returns the default report directory under the user's
// home, or a relative directory when the home cannot be determined.
func DefaultExportDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".contourai", "exports")
	}
	return filepath.Join(homeDir, ".contourai", "exports")
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}
