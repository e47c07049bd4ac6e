package watcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigpicturetv/bigpicturetv/internal/config"
	"github.com/bigpicturetv/bigpicturetv/internal/gamemode"
	"github.com/bigpicturetv/bigpicturetv/internal/models"
	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// stubPort reports the target as present when present is set and fails audio switches
type stubPort struct {
	present  atomic.Bool
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	polls    atomic.Int32
}

func (p *stubPort) IsTargetWindowPresent(ctx context.Context, _ effects.Target) (bool, error) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		seen := p.maxSeen.Load()
		if n <= seen || p.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	p.polls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.present.Load(), nil
}

func (p *stubPort) IsStreamingActive(context.Context) (bool, error) { return false, nil }
func (p *stubPort) SetAudioDevice(context.Context, string) error {
	return effects.ErrAudioDevice
}
func (p *stubPort) SwitchDisplayMode(context.Context, effects.DisplayMode) error { return nil }
func (p *stubPort) IsDiscordRunning(context.Context) (bool, error)              { return false, nil }
func (p *stubPort) StartDiscord(context.Context) error                          { return nil }
func (p *stubPort) CloseDiscord(context.Context) error                          { return nil }
func (p *stubPort) IsNightLightEnabled(context.Context) (bool, error)           { return false, nil }
func (p *stubPort) EnableNightLight(context.Context) error                      { return nil }
func (p *stubPort) DisableNightLight(context.Context) error                     { return nil }
func (p *stubPort) ActivePowerPlan(context.Context) (string, error)             { return "", nil }
func (p *stubPort) SetPowerPlan(context.Context, string) error                  { return nil }
func (p *stubPort) SendMediaStopKey(context.Context) error                      { return nil }

type stubSettings struct {
	mu       sync.Mutex
	settings gamemode.Settings
}

func (s *stubSettings) Current() gamemode.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *stubSettings) setInterval(ms int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.PollIntervalMs = ms
}

type memoryRecorder struct {
	mu          sync.Mutex
	transitions []*models.Transition
	errors      []*models.ErrorLog
	failStore   bool
}

func (r *memoryRecorder) CreateTransition(t *models.Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStore {
		return errors.New("disk full")
	}
	t.ID = uint(len(r.transitions) + 1)
	r.transitions = append(r.transitions, t)
	return nil
}

func (r *memoryRecorder) CreateErrorLog(e *models.ErrorLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, e)
	return nil
}

func newTestService(port *stubPort, settings *stubSettings, rec Recorder) *Service {
	cfg := config.Default()
	return NewService(cfg, settings, gamemode.NewController(zerolog.Nop()), port, rec, zerolog.Nop())
}

func defaultStubSettings(intervalMs int) *stubSettings {
	s := gamemode.DefaultSettings()
	s.PollIntervalMs = intervalMs
	return &stubSettings{settings: s}
}

func runService(t *testing.T, svc *Service) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Start(ctx) }()
	require.Eventually(t, svc.IsRunning, time.Second, time.Millisecond)
	return cancel, done
}

func TestPollOnceRecordsTransitions(t *testing.T) {
	port := &stubPort{}
	rec := &memoryRecorder{}
	svc := newTestService(port, defaultStubSettings(1000), rec)

	port.present.Store(true)
	result := svc.PollOnce(context.Background())
	assert.Equal(t, gamemode.OutcomeEntered, result.Outcome)

	port.present.Store(false)
	result = svc.PollOnce(context.Background())
	assert.Equal(t, gamemode.OutcomeExited, result.Outcome)

	result = svc.PollOnce(context.Background())
	assert.Equal(t, gamemode.OutcomeSteady, result.Outcome)

	require.Len(t, rec.transitions, 2)
	assert.Equal(t, models.DirectionEnter, rec.transitions[0].Direction)
	assert.Equal(t, models.DirectionExit, rec.transitions[1].Direction)
	assert.Equal(t, "bigpicture", rec.transitions[0].Target)
	assert.Equal(t, 1, rec.transitions[0].Failures)

	require.Len(t, rec.errors, 2)
	assert.Equal(t, gamemode.ActionAudioSet, rec.errors[0].Action)
	require.NotNil(t, rec.errors[0].TransitionID)
	assert.Equal(t, uint(1), *rec.errors[0].TransitionID)

	status := svc.Status()
	assert.Equal(t, int64(3), status.Polls)
	assert.Equal(t, "steady", status.LastOutcome)
	assert.False(t, status.Active)
}

func TestPollOnceStoresErrorsWhenTransitionFails(t *testing.T) {
	port := &stubPort{}
	rec := &memoryRecorder{failStore: true}
	svc := newTestService(port, defaultStubSettings(1000), rec)

	port.present.Store(true)
	svc.PollOnce(context.Background())

	require.Len(t, rec.errors, 1)
	assert.Nil(t, rec.errors[0].TransitionID)
	assert.True(t, svc.Status().Active)
}

func TestPollOnceWithoutRecorder(t *testing.T) {
	port := &stubPort{}
	svc := newTestService(port, defaultStubSettings(1000), nil)

	port.present.Store(true)
	assert.Equal(t, gamemode.OutcomeEntered, svc.PollOnce(context.Background()).Outcome)
}

func TestStartPollsImmediately(t *testing.T) {
	port := &stubPort{}
	svc := newTestService(port, defaultStubSettings(60000), nil)

	cancel, done := runService(t, svc)
	defer cancel()

	require.Eventually(t, func() bool { return port.polls.Load() == 1 }, time.Second, time.Millisecond)

	svc.Stop()
	require.NoError(t, <-done)
	assert.False(t, svc.IsRunning())
}

func TestStartRejectsSecondRun(t *testing.T) {
	svc := newTestService(&stubPort{}, defaultStubSettings(60000), nil)

	cancel, done := runService(t, svc)
	assert.Error(t, svc.Start(context.Background()))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPollsNeverOverlap(t *testing.T) {
	port := &stubPort{delay: 15 * time.Millisecond}
	svc := newTestService(port, defaultStubSettings(1), nil)

	cancel, done := runService(t, svc)
	require.Eventually(t, func() bool { return port.polls.Load() >= 5 }, 2*time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, int32(1), port.maxSeen.Load())
}

func TestRescheduleAppliesNewInterval(t *testing.T) {
	port := &stubPort{}
	settings := defaultStubSettings(60000)
	svc := newTestService(port, settings, nil)

	cancel, done := runService(t, svc)
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return port.polls.Load() == 1 }, time.Second, time.Millisecond)

	settings.setInterval(5)
	svc.Reschedule()

	require.Eventually(t, func() bool { return port.polls.Load() >= 4 }, 2*time.Second, time.Millisecond)
}

func TestStopWhenNotRunning(t *testing.T) {
	svc := newTestService(&stubPort{}, defaultStubSettings(1000), nil)
	svc.Stop()
	assert.False(t, svc.IsRunning())
}

func TestCapabilitiesRestrictPolls(t *testing.T) {
	port := &stubPort{}
	rec := &memoryRecorder{}
	svc := newTestService(port, defaultStubSettings(1000), rec)

	status := svc.Status()
	assert.True(t, status.AudioSwitch)
	assert.True(t, status.Discord)

	svc.SetCapabilities(effects.Capabilities{Discord: true})

	port.present.Store(true)
	result := svc.PollOnce(context.Background())
	assert.Equal(t, gamemode.OutcomeEntered, result.Outcome)
	assert.Empty(t, result.Failures)
	assert.Empty(t, rec.errors)

	status = svc.Status()
	assert.False(t, status.AudioSwitch)
	assert.True(t, status.Discord)
}
