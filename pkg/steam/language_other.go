//go:build !windows

package steam

import (
	"fmt"
	"os"
	"path/filepath"
)

// Language returns the Steam client language from ~/.steam/registry.vdf
func Language() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	candidates := []string{
		filepath.Join(home, ".steam", "registry.vdf"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".steam", "registry.vdf"),
	}

	var lastErr error
	for _, path := range candidates {
		lang, err := languageFromFile(path)
		if err == nil {
			return lang, nil
		}
		lastErr = err
	}
	return "", lastErr
}
