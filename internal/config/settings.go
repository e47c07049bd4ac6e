package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/bigpicturetv/bigpicturetv/internal/gamemode"
	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// Accepted checkrate range in milliseconds
const (
	MinCheckrate = 100
	MaxCheckrate = 60000
)

// settingsFile mirrors settings.json
type settingsFile struct {
	DesktopAudio         string `mapstructure:"desktop_audio" json:"desktop_audio"`
	GamemodeAudio        string `mapstructure:"gamemode_audio" json:"gamemode_audio"`
	DisableAudioSwitch   bool   `mapstructure:"disable_audio_switch" json:"disable_audio_switch"`
	DisableMonitorSwitch bool   `mapstructure:"disable_monitor_switch" json:"disable_monitor_switch"`
	DesktopMonitor       int    `mapstructure:"desktop_monitor" json:"desktop_monitor"`
	GamemodeMonitor      int    `mapstructure:"gamemode_monitor" json:"gamemode_monitor"`
	CloseDiscordAction   bool   `mapstructure:"close_discord_action" json:"close_discord_action"`
	GamemodePowerplan    bool   `mapstructure:"gamemode_powerplan" json:"gamemode_powerplan"`
	DisableNightlight    bool   `mapstructure:"disable_nightlight" json:"disable_nightlight"`
	GamemodePauseMedia   bool   `mapstructure:"gamemode_pause_media" json:"gamemode_pause_media"`
	TargetWindow         int    `mapstructure:"target_window" json:"target_window"`
	CustomWindow         string `mapstructure:"custom_window" json:"custom_window"`
	Checkrate            int    `mapstructure:"checkrate" json:"checkrate"`
}

func defaultSettingsFile() settingsFile {
	d := gamemode.DefaultSettings()
	return settingsFile{
		DesktopAudio:    d.DesktopAudioDevice,
		GamemodeAudio:   d.GamemodeAudioDevice,
		DesktopMonitor:  d.DesktopMonitorMode,
		GamemodeMonitor: d.GamemodeMonitorMode,
		TargetWindow:    int(effects.TargetBigPicture),
		Checkrate:       d.PollIntervalMs,
	}
}

// SettingsStore owns the settings.json snapshot and reloads it on change
type SettingsStore struct {
	path   string
	settle time.Duration
	viper  *viper.Viper
	logger zerolog.Logger
	now    func() time.Time

	mu             sync.RWMutex
	current        gamemode.Settings
	loaded         bool
	titleChangedAt time.Time
	callbacks      []func(gamemode.Settings)
	watching       bool
}

// NewSettingsStore creates a store for the settings file at path.
// settle is how long a custom title edit keeps detection paused.
func NewSettingsStore(path string, settle time.Duration, logger zerolog.Logger) *SettingsStore {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	def := defaultSettingsFile()
	v.SetDefault("desktop_audio", def.DesktopAudio)
	v.SetDefault("gamemode_audio", def.GamemodeAudio)
	v.SetDefault("disable_audio_switch", def.DisableAudioSwitch)
	v.SetDefault("disable_monitor_switch", def.DisableMonitorSwitch)
	v.SetDefault("desktop_monitor", def.DesktopMonitor)
	v.SetDefault("gamemode_monitor", def.GamemodeMonitor)
	v.SetDefault("close_discord_action", def.CloseDiscordAction)
	v.SetDefault("gamemode_powerplan", def.GamemodePowerplan)
	v.SetDefault("disable_nightlight", def.DisableNightlight)
	v.SetDefault("gamemode_pause_media", def.GamemodePauseMedia)
	v.SetDefault("target_window", def.TargetWindow)
	v.SetDefault("custom_window", def.CustomWindow)
	v.SetDefault("checkrate", def.Checkrate)

	return &SettingsStore{
		path:    path,
		settle:  settle,
		viper:   v,
		logger:  logger.With().Str("component", "settings").Logger(),
		now:     time.Now,
		current: gamemode.DefaultSettings(),
	}
}

// Path returns the settings file location
func (s *SettingsStore) Path() string {
	return s.path
}

// Load reads the settings file, creating it with defaults when missing
func (s *SettingsStore) Load() error {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if err := writeSettingsFile(s.path, defaultSettingsFile()); err != nil {
			return fmt.Errorf("failed to create default settings at %s: %w", s.path, err)
		}
		s.logger.Info().Str("path", s.path).Msg("created default settings file")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked()
}

// Reload re-reads the file. On failure the previous snapshot stays in effect.
func (s *SettingsStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked()
}

func (s *SettingsStore) reloadLocked() error {
	if err := s.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read settings file at %s: %w", s.path, err)
	}

	var file settingsFile
	if err := s.viper.Unmarshal(&file); err != nil {
		return fmt.Errorf("failed to parse settings file at %s: %w", s.path, err)
	}

	next := s.toSettings(file)
	if s.loaded && next.TargetWindow.Title != s.current.TargetWindow.Title {
		s.titleChangedAt = s.now()
	}
	s.current = next
	s.loaded = true
	return nil
}

func (s *SettingsStore) toSettings(file settingsFile) gamemode.Settings {
	checkrate := file.Checkrate
	if checkrate < MinCheckrate || checkrate > MaxCheckrate {
		s.logger.Warn().Int("checkrate", checkrate).Msg("checkrate out of range, using default")
		checkrate = gamemode.DefaultSettings().PollIntervalMs
	}

	target := effects.BigPicture()
	switch effects.TargetKind(file.TargetWindow) {
	case effects.TargetBigPicture:
	case effects.TargetCustom:
		target = effects.Custom(file.CustomWindow)
	default:
		s.logger.Warn().Int("target_window", file.TargetWindow).Msg("unknown target window, using Big Picture")
	}
	// the title is kept for BigPicture too so switching back and forth is not an edit
	target.Title = file.CustomWindow

	return gamemode.Settings{
		DesktopAudioDevice:         file.DesktopAudio,
		GamemodeAudioDevice:        file.GamemodeAudio,
		AudioSwitchDisabled:        file.DisableAudioSwitch,
		MonitorSwitchDisabled:      file.DisableMonitorSwitch,
		DesktopMonitorMode:         file.DesktopMonitor,
		GamemodeMonitorMode:        file.GamemodeMonitor,
		CloseDiscord:               file.CloseDiscordAction,
		EnablePerformancePowerPlan: file.GamemodePowerplan,
		DisableNightLight:          file.DisableNightlight,
		PauseMedia:                 file.GamemodePauseMedia,
		TargetWindow:               target,
		PollIntervalMs:             checkrate,
	}
}

// Current returns the latest snapshot. CustomTitleEditing is true until the
// custom title has been stable for the settle delay.
func (s *SettingsStore) Current() gamemode.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := s.current
	if !s.titleChangedAt.IsZero() && s.now().Sub(s.titleChangedAt) < s.settle {
		settings.CustomTitleEditing = true
	}
	return settings
}

// Watch starts watching the settings file and reloads it on change
func (s *SettingsStore) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watching {
		return nil
	}

	s.viper.OnConfigChange(func(e fsnotify.Event) {
		s.logger.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("settings file changed")

		s.mu.Lock()
		if err := s.reloadLocked(); err != nil {
			s.mu.Unlock()
			s.logger.Warn().Err(err).Msg("failed to reload settings, keeping previous values")
			return
		}
		s.notifyCallbacksLocked()
	})
	s.viper.WatchConfig()

	s.watching = true
	return nil
}

// notifyCallbacksLocked must be called with s.mu held. It releases the lock
// before running the callbacks.
func (s *SettingsStore) notifyCallbacksLocked() {
	settings := s.current
	callbacks := make([]func(gamemode.Settings), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(settings)
	}
}

// OnChange registers a callback run after every successful reload
func (s *SettingsStore) OnChange(cb func(gamemode.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, cb)
}

func writeSettingsFile(path string, file settingsFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
