package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchName(t *testing.T) {
	tests := []struct {
		proc  string
		names []string
		want  bool
	}{
		{"Discord.exe", []string{"discord"}, true},
		{"discord", []string{"Discord.exe"}, true},
		{"DiscordPTB.exe", []string{"discord"}, false},
		{"sunshine", SunshineNames, true},
		{"bash", []string{"discord", "sunshine"}, false},
		{"anything", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.proc, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchName(tt.proc, tt.names...))
		})
	}
}

func TestIsStreamConnection(t *testing.T) {
	tests := []struct {
		name string
		conn net.ConnectionStat
		want bool
	}{
		{
			name: "udp video peer",
			conn: net.ConnectionStat{Laddr: net.Addr{IP: "0.0.0.0", Port: 47998}, Raddr: net.Addr{IP: "192.168.1.20", Port: 53211}},
			want: true,
		},
		{
			name: "rtsp established",
			conn: net.ConnectionStat{Laddr: net.Addr{Port: 48010}, Raddr: net.Addr{IP: "192.168.1.20", Port: 40000}, Status: "ESTABLISHED"},
			want: true,
		},
		{
			name: "listening socket",
			conn: net.ConnectionStat{Laddr: net.Addr{Port: 48010}, Status: "LISTEN"},
			want: false,
		},
		{
			name: "rtsp closing",
			conn: net.ConnectionStat{Laddr: net.Addr{Port: 48010}, Raddr: net.Addr{IP: "192.168.1.20", Port: 40000}, Status: "TIME_WAIT"},
			want: false,
		},
		{
			name: "web ui port",
			conn: net.ConnectionStat{Laddr: net.Addr{Port: 47990}, Raddr: net.Addr{IP: "127.0.0.1", Port: 50000}, Status: "ESTABLISHED"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStreamConnection(tt.conn))
		})
	}
}

func TestIsRunningFindsCurrentProcess(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	d := NewDetector()
	running, err := d.IsRunning(context.Background(), filepath.Base(exe))
	if err != nil {
		t.Skipf("process listing unavailable: %v", err)
	}
	assert.True(t, running)

	running, err = d.IsRunning(context.Background(), "nonexistent_process_xyz")
	require.NoError(t, err)
	assert.False(t, running)
}

func TestIsStreamingWithoutSunshine(t *testing.T) {
	d := NewDetector()
	d.listConnections = func(context.Context, int32) ([]net.ConnectionStat, error) {
		t.Fatal("connections must not be listed without a sunshine process")
		return nil, nil
	}

	streaming, err := d.IsStreaming(context.Background())
	if err != nil {
		t.Skipf("process listing unavailable: %v", err)
	}
	assert.False(t, streaming)
}
