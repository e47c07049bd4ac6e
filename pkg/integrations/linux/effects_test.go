//go:build linux

package linux

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilities(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pactl"), []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir)

	e := New(Options{DiscordLauncher: "missing-discord", SteamLanguage: "english", Logger: zerolog.Nop()})
	caps := e.Capabilities(context.Background())
	assert.True(t, caps.AudioSwitch)
	assert.False(t, caps.Discord)

	t.Setenv("PATH", t.TempDir())
	e = New(Options{DiscordLauncher: filepath.Join(dir, "pactl") + " --flag", SteamLanguage: "english", Logger: zerolog.Nop()})
	caps = e.Capabilities(context.Background())
	assert.False(t, caps.AudioSwitch)
	assert.True(t, caps.Discord)
}
