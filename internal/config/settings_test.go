package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigpicturetv/bigpicturetv/internal/gamemode"
	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSettingsStoreCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewSettingsStore(path, 2*time.Second, zerolog.Nop())

	require.NoError(t, store.Load())
	assert.FileExists(t, path)

	got := store.Current()
	assert.Equal(t, gamemode.DefaultSettings().DesktopAudioDevice, got.DesktopAudioDevice)
	assert.Equal(t, "TV", got.GamemodeAudioDevice)
	assert.Equal(t, effects.TargetBigPicture, got.TargetWindow.Kind)
	assert.Equal(t, 1000, got.PollIntervalMs)
	assert.False(t, got.CustomTitleEditing)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"checkrate": 1000`)
	assert.Contains(t, string(data), `"desktop_audio": "Headset"`)
}

func TestSettingsStoreReadsKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeJSON(t, path, `{
		"desktop_audio": "Speakers",
		"gamemode_audio": "LG TV",
		"disable_audio_switch": true,
		"disable_monitor_switch": false,
		"desktop_monitor": 1,
		"gamemode_monitor": 1,
		"close_discord_action": true,
		"gamemode_powerplan": true,
		"disable_nightlight": true,
		"gamemode_pause_media": true,
		"target_window": 1,
		"custom_window": "Playnite",
		"checkrate": 2500
	}`)

	store := NewSettingsStore(path, 2*time.Second, zerolog.Nop())
	require.NoError(t, store.Load())

	got := store.Current()
	assert.Equal(t, "Speakers", got.DesktopAudioDevice)
	assert.Equal(t, "LG TV", got.GamemodeAudioDevice)
	assert.True(t, got.AudioSwitchDisabled)
	assert.False(t, got.MonitorSwitchDisabled)
	assert.Equal(t, gamemode.DesktopMonitorExtend, got.DesktopMonitorMode)
	assert.Equal(t, gamemode.GamemodeMonitorClone, got.GamemodeMonitorMode)
	assert.True(t, got.CloseDiscord)
	assert.True(t, got.EnablePerformancePowerPlan)
	assert.True(t, got.DisableNightLight)
	assert.True(t, got.PauseMedia)
	assert.Equal(t, effects.Custom("Playnite"), got.TargetWindow)
	assert.Equal(t, 2500*time.Millisecond, got.PollInterval())
}

func TestSettingsStoreMissingKeysUseDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeJSON(t, path, `{"gamemode_audio": "Receiver"}`)

	store := NewSettingsStore(path, 0, zerolog.Nop())
	require.NoError(t, store.Load())

	got := store.Current()
	assert.Equal(t, "Headset", got.DesktopAudioDevice)
	assert.Equal(t, "Receiver", got.GamemodeAudioDevice)
	assert.Equal(t, 1000, got.PollIntervalMs)
}

func TestSettingsStoreClampsCheckrate(t *testing.T) {
	for _, rate := range []string{"0", "50", "600000", "-5"} {
		t.Run(rate, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			writeJSON(t, path, `{"checkrate": `+rate+`}`)

			store := NewSettingsStore(path, 0, zerolog.Nop())
			require.NoError(t, store.Load())
			assert.Equal(t, 1000, store.Current().PollIntervalMs)
		})
	}
}

func TestSettingsStoreUnknownTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeJSON(t, path, `{"target_window": 7, "custom_window": "Kodi"}`)

	store := NewSettingsStore(path, 0, zerolog.Nop())
	require.NoError(t, store.Load())
	assert.Equal(t, effects.TargetBigPicture, store.Current().TargetWindow.Kind)
}

func TestSettingsStoreKeepsSnapshotOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeJSON(t, path, `{"gamemode_audio": "TV"}`)

	store := NewSettingsStore(path, 0, zerolog.Nop())
	require.NoError(t, store.Load())

	writeJSON(t, path, `{"gamemode_audio": `)
	assert.Error(t, store.Reload())
	assert.Equal(t, "TV", store.Current().GamemodeAudioDevice)
}

func TestSettingsStoreCustomTitleEditing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeJSON(t, path, `{"target_window": 1, "custom_window": "Play"}`)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSettingsStore(path, 2*time.Second, zerolog.Nop())
	store.now = func() time.Time { return now }

	require.NoError(t, store.Load())
	assert.False(t, store.Current().CustomTitleEditing, "initial load is not an edit")

	writeJSON(t, path, `{"target_window": 1, "custom_window": "Playnite"}`)
	require.NoError(t, store.Reload())
	assert.True(t, store.Current().CustomTitleEditing)

	now = now.Add(1500 * time.Millisecond)
	assert.True(t, store.Current().CustomTitleEditing)

	now = now.Add(time.Second)
	assert.False(t, store.Current().CustomTitleEditing)

	// unrelated changes do not restart the settle delay
	writeJSON(t, path, `{"target_window": 1, "custom_window": "Playnite", "checkrate": 500}`)
	require.NoError(t, store.Reload())
	assert.False(t, store.Current().CustomTitleEditing)
	assert.Equal(t, 500, store.Current().PollIntervalMs)
}

func TestSettingsStoreWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeJSON(t, path, `{"checkrate": 1000}`)

	store := NewSettingsStore(path, 0, zerolog.Nop())
	require.NoError(t, store.Load())

	var notified atomic.Int32
	store.OnChange(func(s gamemode.Settings) {
		if s.PollIntervalMs == 3000 {
			notified.Add(1)
		}
	})
	require.NoError(t, store.Watch())
	require.NoError(t, store.Watch(), "second Watch is a no-op")

	writeJSON(t, path, `{"checkrate": 3000}`)

	require.Eventually(t, func() bool {
		return store.Current().PollIntervalMs == 3000 && notified.Load() > 0
	}, 5*time.Second, 20*time.Millisecond)
}
