package window

import (
	"context"
	"strings"
)

// Lister is implemented by platform window enumerators
type Lister interface {
	// Titles returns the titles of all visible top-level windows
	Titles(ctx context.Context) ([]string, error)

	// IsAvailable checks if this lister can run on the current system
	IsAvailable() bool

	// Close cleans up any resources used by the lister
	Close() error
}

// ContainsAny reports whether one of the wanted titles is present.
// Titles are compared exactly after trimming surrounding whitespace.
func ContainsAny(titles []string, wanted ...string) bool {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		set[strings.TrimSpace(t)] = struct{}{}
	}
	for _, w := range wanted {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

// IsPresent lists the current windows and checks for any wanted title
func IsPresent(ctx context.Context, l Lister, wanted ...string) (bool, error) {
	titles, err := l.Titles(ctx)
	if err != nil {
		return false, err
	}
	return ContainsAny(titles, wanted...), nil
}
