// Package watcher drives the gamemode controller on a timer and records
// every transition it makes.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/bigpicturetv/bigpicturetv/internal/config"
	"github.com/bigpicturetv/bigpicturetv/internal/gamemode"
	"github.com/bigpicturetv/bigpicturetv/internal/models"
	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// SettingsSource provides the settings snapshot for each poll
type SettingsSource interface {
	Current() gamemode.Settings
}

// Recorder persists transitions and effect failures
type Recorder interface {
	CreateTransition(t *models.Transition) error
	CreateErrorLog(errorLog *models.ErrorLog) error
}

// Status is a point-in-time view of the service
type Status struct {
	Running      bool          `json:"running"`
	Active       bool          `json:"gamemode_active"`
	Polls        int64         `json:"polls"`
	LastPoll     time.Time     `json:"last_poll"`
	LastOutcome  string        `json:"last_outcome"`
	PollInterval time.Duration `json:"poll_interval"`
	Target       string        `json:"target"`
	AudioSwitch  bool          `json:"audio_switch_available"`
	Discord      bool          `json:"discord_installed"`
}

type Service struct {
	config     *config.Config
	settings   SettingsSource
	controller *gamemode.Controller
	port       effects.Port
	recorder   Recorder
	logger     zerolog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wake     chan struct{}
	caps     effects.Capabilities

	polls       atomic.Int64
	lastPoll    atomic.Int64 // unix nanoseconds
	lastOutcome atomic.Value // string
}

// NewService creates a watcher. recorder may be nil.
func NewService(cfg *config.Config, settings SettingsSource, controller *gamemode.Controller, port effects.Port, recorder Recorder, logger zerolog.Logger) *Service {
	s := &Service{
		config:     cfg,
		settings:   settings,
		controller: controller,
		port:       port,
		recorder:   recorder,
		logger:     logger.With().Str("component", "watcher").Logger(),
		wake:       make(chan struct{}, 1),
		caps:       effects.AllCapabilities(),
	}
	s.lastOutcome.Store("")
	return s
}

// Start polls immediately, then again each time the interval from the current
// settings elapses after the previous poll finished. It blocks until ctx is
// done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("watcher is already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	settings := s.settings.Current()
	s.logger.Info().
		Dur("interval", settings.PollInterval()).
		Str("target", settings.TargetWindow.String()).
		Msg("starting watcher")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("watcher stopped by context")
			return ctx.Err()

		case <-stop:
			s.logger.Info().Msg("watcher stopped")
			return nil

		case <-s.wake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.settings.Current().PollInterval())

		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.settings.Current().PollInterval())
		}
	}
}

// Stop ends a running Start loop
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running && s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
}

// IsRunning reports whether the loop is running
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Reschedule re-arms the pending timer with the current interval
func (s *Service) Reschedule() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// SetCapabilities turns off, for later polls, the actions whose tooling is missing
func (s *Service) SetCapabilities(caps effects.Capabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps = caps
}

func (s *Service) capabilities() effects.Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps
}

// current returns the settings snapshot restricted to what the host supports
func (s *Service) current() gamemode.Settings {
	return s.settings.Current().Restrict(s.capabilities())
}

// Status returns a snapshot safe to call from any goroutine
func (s *Service) Status() Status {
	settings := s.settings.Current()
	caps := s.capabilities()

	var last time.Time
	if ns := s.lastPoll.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}

	return Status{
		Running:      s.IsRunning(),
		Active:       s.controller.Active(),
		Polls:        s.polls.Load(),
		LastPoll:     last,
		LastOutcome:  s.lastOutcome.Load().(string),
		PollInterval: settings.PollInterval(),
		Target:       settings.TargetWindow.String(),
		AudioSwitch:  caps.AudioSwitch,
		Discord:      caps.Discord,
	}
}

// PollOnce runs a single poll and records its transition, if any.
// PollTimeout bounds the detection queries only; each effect call is bounded
// by its own command timeout so a slow one cannot starve the rest.
func (s *Service) PollOnce(ctx context.Context) gamemode.Result {
	settings := s.current()
	port := boundedDetection{Port: s.port, timeout: s.config.Tracker.PollTimeout}

	started := time.Now()
	result := s.controller.Poll(ctx, settings, port)
	elapsed := time.Since(started)

	s.polls.Add(1)
	s.lastPoll.Store(started.UnixNano())
	s.lastOutcome.Store(result.Outcome.String())

	switch {
	case result.Outcome == gamemode.OutcomeSkipped:
		s.logger.Debug().Str("reason", result.SkipReason).Msg("poll skipped")
	case result.Transitioned():
		s.logger.Info().
			Str("outcome", result.Outcome.String()).
			Int("failures", len(result.Failures)).
			Dur("took", elapsed).
			Msg("transition applied")
		s.record(settings, result, started, elapsed)
	}

	return result
}

func (s *Service) record(settings gamemode.Settings, result gamemode.Result, at time.Time, took time.Duration) {
	if s.recorder == nil {
		return
	}

	direction := models.DirectionEnter
	if result.Outcome == gamemode.OutcomeExited {
		direction = models.DirectionExit
	}

	transition := &models.Transition{
		Timestamp:  at,
		Direction:  direction,
		Target:     settings.TargetWindow.String(),
		Failures:   len(result.Failures),
		DurationMs: took.Milliseconds(),
	}

	var transitionID *uint
	if err := s.recorder.CreateTransition(transition); err != nil {
		s.logger.Error().Err(err).Msg("failed to store transition")
	} else {
		transitionID = &transition.ID
	}

	for _, f := range result.Failures {
		errorLog := &models.ErrorLog{
			Timestamp:    at,
			Action:       f.Action,
			ErrorMsg:     f.Err.Error(),
			TransitionID: transitionID,
		}
		if err := s.recorder.CreateErrorLog(errorLog); err != nil {
			s.logger.Error().Err(err).Str("action", f.Action).Msg("failed to store error log")
		}
	}
}

// boundedDetection applies a deadline to the presence and streaming queries
type boundedDetection struct {
	effects.Port
	timeout time.Duration
}

func (p boundedDetection) IsTargetWindowPresent(ctx context.Context, target effects.Target) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Port.IsTargetWindowPresent(ctx, target)
}

func (p boundedDetection) IsStreamingActive(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.Port.IsStreamingActive(ctx)
}
