// Package x11 lists top-level window titles on X11 (and XWayland) sessions.
package x11

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/bigpicturetv/bigpicturetv/pkg/runner"
)

// maxClients bounds the _NET_CLIENT_LIST read
const maxClients = 4096

var atomNames = []string{
	"_NET_CLIENT_LIST",
	"_NET_WM_NAME",
	"WM_NAME",
	"UTF8_STRING",
}

// Lister implements window.Lister for X11.
// It talks to the X server with xgb and falls back to wmctrl.
type Lister struct {
	mu     sync.Mutex
	conn   *xgb.Conn
	root   xproto.Window
	atoms  map[string]xproto.Atom
	runner *runner.Runner

	hasWmctrl bool
}

// NewLister creates a new X11 window lister
func NewLister(r *runner.Runner) *Lister {
	if r == nil {
		r = runner.New(runner.DefaultTimeout)
	}
	return &Lister{
		runner:    r,
		hasWmctrl: runner.Exists("wmctrl"),
	}
}

// IsAvailable reports whether an X display is reachable
func (l *Lister) IsAvailable() bool {
	if os.Getenv("DISPLAY") == "" {
		return false
	}
	if l.hasWmctrl {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connect() == nil
}

// Titles returns the titles of every window managed by the window manager
func (l *Lister) Titles(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	titles, err := l.clientTitles()
	l.mu.Unlock()
	if err == nil {
		return titles, nil
	}

	if !l.hasWmctrl {
		return nil, err
	}

	out, werr := l.runner.Output(ctx, "wmctrl", "-l")
	if werr != nil {
		return nil, fmt.Errorf("failed to list x11 windows: %v (wmctrl: %w)", err, werr)
	}
	return parseWmctrl(string(out)), nil
}

// Close releases the X connection
func (l *Lister) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	return nil
}

func (l *Lister) connect() error {
	if l.conn != nil {
		return nil
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("failed to connect to X server: %w", err)
	}

	atoms := make(map[string]xproto.Atom, len(atomNames))
	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		atoms[name] = reply.Atom
	}

	l.conn = conn
	l.root = xproto.Setup(conn).DefaultScreen(conn).Root
	l.atoms = atoms
	return nil
}

func (l *Lister) clientTitles() ([]string, error) {
	if err := l.connect(); err != nil {
		return nil, err
	}

	reply, err := xproto.GetProperty(l.conn, false, l.root, l.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 0, maxClients).Reply()
	if err != nil {
		// the connection is likely dead; reconnect on the next call
		l.conn.Close()
		l.conn = nil
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}

	windows := decodeWindows(reply.Value)
	titles := make([]string, 0, len(windows))
	for _, w := range windows {
		if title := l.windowName(w); title != "" {
			titles = append(titles, title)
		}
	}
	return titles, nil
}

func (l *Lister) windowName(w xproto.Window) string {
	if data := l.property(w, l.atoms["_NET_WM_NAME"], l.atoms["UTF8_STRING"]); len(data) > 0 {
		return trimNull(data)
	}
	return trimNull(l.property(w, l.atoms["WM_NAME"], xproto.AtomString))
}

func (l *Lister) property(w xproto.Window, atom, atomType xproto.Atom) []byte {
	reply, err := xproto.GetProperty(l.conn, false, w, atom, atomType, 0, 256).Reply()
	if err != nil {
		return nil
	}
	return reply.Value
}

func decodeWindows(data []byte) []xproto.Window {
	windows := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		windows = append(windows, xproto.Window(xgb.Get32(data[i:])))
	}
	return windows
}

func trimNull(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

// parseWmctrl extracts titles from `wmctrl -l` output:
// <id> <desktop> <host> <title...>
func parseWmctrl(output string) []string {
	var titles []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		// title keeps its inner spacing
		rest := line
		for i := 0; i < 3; i++ {
			rest = strings.TrimLeft(rest, " \t")
			idx := strings.IndexAny(rest, " \t")
			if idx < 0 {
				rest = ""
				break
			}
			rest = rest[idx:]
		}
		if title := strings.TrimSpace(rest); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}
