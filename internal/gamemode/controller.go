package gamemode

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// Outcome describes what a single poll did
type Outcome int

const (
	OutcomeSteady Outcome = iota
	OutcomeEntered
	OutcomeExited
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSteady:
		return "steady"
	case OutcomeEntered:
		return "entered"
	case OutcomeExited:
		return "exited"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Skip reasons reported in Result.SkipReason
const (
	SkipCustomTitleEmpty   = "custom title empty"
	SkipCustomTitleEditing = "custom title being edited"
	SkipStreaming          = "streaming session active"
	SkipDetectionFailed    = "window detection failed"
)

// Failure is an effect call that returned an error during a transition
type Failure struct {
	Action string
	Err    error
}

// Result summarizes a poll. Polls never fail; effect errors end up in Failures.
type Result struct {
	Outcome    Outcome
	SkipReason string
	Failures   []Failure
}

// Transitioned reports whether the poll entered or exited gamemode
func (r Result) Transitioned() bool {
	return r.Outcome == OutcomeEntered || r.Outcome == OutcomeExited
}

// Controller is the gamemode transition state machine.
// Poll must be called from a single goroutine; Active may be called from any.
type Controller struct {
	state  TransitionState
	active atomic.Bool
	logger zerolog.Logger
}

// NewController creates a controller in desktop mode
func NewController(logger zerolog.Logger) *Controller {
	return &Controller{
		logger: logger.With().Str("component", "gamemode").Logger(),
	}
}

// Active reports whether gamemode is currently active
func (c *Controller) Active() bool {
	return c.active.Load()
}

// State returns a copy of the transition state. Only safe on the poll goroutine.
func (c *Controller) State() TransitionState {
	return c.state
}

// Poll samples the target window and applies at most one transition
func (c *Controller) Poll(ctx context.Context, settings Settings, port effects.Port) Result {
	if settings.TargetWindow.Kind == effects.TargetCustom {
		if settings.TargetWindow.Title == "" {
			return Result{Outcome: OutcomeSkipped, SkipReason: SkipCustomTitleEmpty}
		}
		if settings.CustomTitleEditing {
			return Result{Outcome: OutcomeSkipped, SkipReason: SkipCustomTitleEditing}
		}
	}

	streaming, err := port.IsStreamingActive(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to query streaming state")
	} else if streaming {
		return Result{Outcome: OutcomeSkipped, SkipReason: SkipStreaming}
	}

	isRunning, err := port.IsTargetWindowPresent(ctx, settings.TargetWindow)
	if err != nil {
		c.logger.Warn().Err(err).Str("target", settings.TargetWindow.String()).Msg("failed to detect target window")
		return Result{Outcome: OutcomeSkipped, SkipReason: SkipDetectionFailed}
	}

	switch {
	case isRunning && !c.state.GamemodeActive:
		c.setActive(true)
		c.logger.Info().Str("target", settings.TargetWindow.String()).Msg("entering gamemode")
		failures := c.apply(ctx, settings, port, false)
		return Result{Outcome: OutcomeEntered, Failures: failures}

	case !isRunning && c.state.GamemodeActive:
		c.setActive(false)
		c.logger.Info().Str("target", settings.TargetWindow.String()).Msg("leaving gamemode")
		failures := c.apply(ctx, settings, port, true)
		return Result{Outcome: OutcomeExited, Failures: failures}
	}

	return Result{Outcome: OutcomeSteady}
}

func (c *Controller) setActive(active bool) {
	c.state.GamemodeActive = active
	c.active.Store(active)
}

// apply runs the three effect categories in their fixed order
func (c *Controller) apply(ctx context.Context, settings Settings, port effects.Port, isDesktopMode bool) []Failure {
	t := &transition{ctx: ctx, port: port, logger: c.logger}

	c.handleActions(t, settings, isDesktopMode)
	c.handleMonitorChange(t, settings, isDesktopMode)
	c.handleAudioChange(t, settings, isDesktopMode)

	return t.failures
}

// transition collects failures of the effect calls made during one edge
type transition struct {
	ctx      context.Context
	port     effects.Port
	logger   zerolog.Logger
	failures []Failure
}

// do runs a single effect call, isolating its error (or panic) from the others
func (t *transition) do(action string, fn func(ctx context.Context) error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn(t.ctx)
	}()

	if err != nil {
		t.logger.Error().Err(err).Str("action", action).Msg("effect failed")
		t.failures = append(t.failures, Failure{Action: action, Err: err})
		return
	}
	t.logger.Debug().Str("action", action).Msg("effect applied")
}

// query runs a boolean capture call; failures count as false
func (t *transition) query(action string, fn func(ctx context.Context) (bool, error)) bool {
	var value bool
	t.do(action, func(ctx context.Context) error {
		var err error
		value, err = fn(ctx)
		return err
	})
	return value
}
