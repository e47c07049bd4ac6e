// Package process answers process-level questions for the effect adapters:
// whether Discord is running, stopping it, and whether Sunshine is streaming.
package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Sunshine streaming ports (video, control, audio, ..., RTSP)
const (
	streamPortFirst = 47998
	streamPortLast  = 48010
)

// SunshineNames are the process names of the Sunshine game-stream host
var SunshineNames = []string{"sunshine"}

// Detector inspects running processes
type Detector struct {
	// listConnections is swapped out in tests
	listConnections func(ctx context.Context, pid int32) ([]net.ConnectionStat, error)
}

// NewDetector creates a process detector
func NewDetector() *Detector {
	return &Detector{
		listConnections: func(ctx context.Context, pid int32) ([]net.ConnectionStat, error) {
			return net.ConnectionsPidWithContext(ctx, "inet", pid)
		},
	}
}

// Find returns the running processes whose executable name matches one of names
func (d *Detector) Find(ctx context.Context, names ...string) ([]*process.Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var matched []*process.Process
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if MatchName(name, names...) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// IsRunning reports whether any process matches one of names
func (d *Detector) IsRunning(ctx context.Context, names ...string) (bool, error) {
	procs, err := d.Find(ctx, names...)
	if err != nil {
		return false, err
	}
	return len(procs) > 0, nil
}

// Kill terminates every process matching one of names and returns how many were killed
func (d *Detector) Kill(ctx context.Context, names ...string) (int, error) {
	procs, err := d.Find(ctx, names...)
	if err != nil {
		return 0, err
	}

	killed := 0
	var firstErr error
	for _, p := range procs {
		if err := p.KillWithContext(ctx); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to kill pid %d: %w", p.Pid, err)
			}
			continue
		}
		killed++
	}
	return killed, firstErr
}

// IsStreaming reports whether Sunshine has a peer connected on its streaming ports
func (d *Detector) IsStreaming(ctx context.Context) (bool, error) {
	procs, err := d.Find(ctx, SunshineNames...)
	if err != nil {
		return false, err
	}

	for _, p := range procs {
		conns, err := d.listConnections(ctx, p.Pid)
		if err != nil {
			return false, fmt.Errorf("failed to list sunshine connections: %w", err)
		}
		for _, c := range conns {
			if IsStreamConnection(c) {
				return true, nil
			}
		}
	}
	return false, nil
}

// MatchName compares process names case-insensitively, ignoring an .exe suffix
func MatchName(procName string, names ...string) bool {
	procName = normalize(procName)
	for _, n := range names {
		if procName == normalize(n) {
			return true
		}
	}
	return false
}

// IsStreamConnection reports whether a socket belongs to an active stream
func IsStreamConnection(c net.ConnectionStat) bool {
	if c.Laddr.Port < streamPortFirst || c.Laddr.Port > streamPortLast {
		return false
	}
	if c.Raddr.Port == 0 || c.Raddr.IP == "" {
		return false
	}
	return c.Status == "" || c.Status == "NONE" || c.Status == "ESTABLISHED"
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}
