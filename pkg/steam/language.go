package steam

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var vdfLanguageLine = regexp.MustCompile(`^\s*"language"\s+"([^"]*)"`)

// ParseRegistryLanguage extracts the language value from a Steam registry.vdf file
func ParseRegistryLanguage(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := vdfLanguageLine.FindStringSubmatch(scanner.Text())
		if m != nil && m[1] != "" {
			return strings.ToLower(m[1]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read steam registry: %w", err)
	}
	return "", fmt.Errorf("language not found in steam registry")
}

func languageFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return ParseRegistryLanguage(f)
}

// LanguageOrDefault returns the Steam language, or DefaultLanguage when it cannot be read
func LanguageOrDefault() string {
	lang, err := Language()
	if err != nil || lang == "" {
		return DefaultLanguage
	}
	return lang
}
