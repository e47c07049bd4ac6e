//go:build windows

package win32

import (
	"context"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const maxTitle = 512

// Lister implements window.Lister with EnumWindows
type Lister struct{}

// NewLister creates a new Windows window lister
func NewLister() *Lister {
	return &Lister{}
}

var (
	enumMu     sync.Mutex
	enumTitles []string
	enumProc   = syscall.NewCallback(enumWindowsProc)
)

// enumWindowsProc collects the titles of visible top-level windows.
// Callbacks are a limited resource, so a single one is shared behind enumMu.
func enumWindowsProc(hwnd windows.HWND, _ uintptr) uintptr {
	if !windows.IsWindowVisible(hwnd) {
		return 1
	}
	buf := make([]uint16, maxTitle)
	n, err := windows.GetWindowText(hwnd, &buf[0], int32(len(buf)))
	if err != nil || n == 0 {
		return 1
	}
	enumTitles = append(enumTitles, windows.UTF16ToString(buf[:n]))
	return 1
}

// Titles returns the titles of all visible top-level windows
func (l *Lister) Titles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enumMu.Lock()
	defer enumMu.Unlock()

	enumTitles = nil
	if err := windows.EnumWindows(enumProc, unsafe.Pointer(nil)); err != nil {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}

	titles := enumTitles
	enumTitles = nil
	return titles, nil
}

// IsAvailable always returns true on Windows
func (l *Lister) IsAvailable() bool {
	return true
}

// Close is a no-op
func (l *Lister) Close() error {
	return nil
}
