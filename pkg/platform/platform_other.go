//go:build !linux && !windows

package platform

import (
	"fmt"
	"runtime"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// New fails on systems without an adapter
func New(opts Options) (*Platform, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, effects.ErrUnsupported)
}
