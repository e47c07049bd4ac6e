//go:build windows

package steam

import (
	"fmt"
	"strings"

	"golang.org/x/sys/windows/registry"
)

// Language returns the Steam client language from the user registry
func Language() (string, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, `Software\Valve\Steam`, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("failed to open steam registry key: %w", err)
	}
	defer key.Close()

	lang, _, err := key.GetStringValue("Language")
	if err != nil {
		return "", fmt.Errorf("failed to read steam language: %w", err)
	}
	return strings.ToLower(lang), nil
}
