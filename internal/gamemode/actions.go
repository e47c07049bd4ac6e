package gamemode

import (
	"context"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// Action names used in logs and failure records
const (
	ActionDiscordQuery    = "discord.query"
	ActionDiscordClose    = "discord.close"
	ActionDiscordStart    = "discord.start"
	ActionNightLightQuery = "nightlight.query"
	ActionNightLightOff   = "nightlight.disable"
	ActionNightLightOn    = "nightlight.enable"
	ActionPowerPlanQuery  = "powerplan.query"
	ActionPowerPlanSet    = "powerplan.set"
	ActionMediaStop       = "media.stop"
	ActionDisplaySwitch   = "display.switch"
	ActionAudioSet        = "audio.set"
)

func (c *Controller) handleActions(t *transition, settings Settings, isDesktopMode bool) {
	if settings.CloseDiscord {
		c.handleDiscordAction(t, isDesktopMode)
	}
	if settings.EnablePerformancePowerPlan {
		c.handleNightLightAction(t, isDesktopMode)
	}
	if settings.DisableNightLight {
		c.handlePowerPlanAction(t, isDesktopMode)
	}
	if settings.PauseMedia {
		c.handleMediaAction(t, isDesktopMode)
	}
}

func (c *Controller) handleDiscordAction(t *transition, isDesktopMode bool) {
	if isDesktopMode {
		if c.state.SavedDiscordWasRunning {
			t.do(ActionDiscordStart, t.port.StartDiscord)
		}
		return
	}

	c.state.SavedDiscordWasRunning = t.query(ActionDiscordQuery, t.port.IsDiscordRunning)
	t.do(ActionDiscordClose, t.port.CloseDiscord)
}

func (c *Controller) handleNightLightAction(t *transition, isDesktopMode bool) {
	if isDesktopMode {
		if c.state.SavedNightLightWasEnabled {
			t.do(ActionNightLightOn, t.port.EnableNightLight)
		}
		return
	}

	c.state.SavedNightLightWasEnabled = t.query(ActionNightLightQuery, t.port.IsNightLightEnabled)
	t.do(ActionNightLightOff, t.port.DisableNightLight)
}

func (c *Controller) handlePowerPlanAction(t *transition, isDesktopMode bool) {
	if isDesktopMode {
		plan := c.state.SavedPriorPowerPlanID
		if plan == "" {
			plan = effects.BalancedPlanGUID
		}
		t.do(ActionPowerPlanSet, func(ctx context.Context) error {
			return t.port.SetPowerPlan(ctx, plan)
		})
		return
	}

	var prior string
	t.do(ActionPowerPlanQuery, func(ctx context.Context) error {
		var err error
		prior, err = t.port.ActivePowerPlan(ctx)
		return err
	})
	c.state.SavedPriorPowerPlanID = prior
	t.do(ActionPowerPlanSet, func(ctx context.Context) error {
		return t.port.SetPowerPlan(ctx, effects.PerformancePlanGUID)
	})
}

func (c *Controller) handleMediaAction(t *transition, isDesktopMode bool) {
	if !isDesktopMode {
		t.do(ActionMediaStop, t.port.SendMediaStopKey)
	}
}

func (c *Controller) handleMonitorChange(t *transition, settings Settings, isDesktopMode bool) {
	if settings.MonitorSwitchDisabled {
		return
	}

	index := settings.GamemodeMonitorMode
	if isDesktopMode {
		index = settings.DesktopMonitorMode
	}

	mode, ok := MonitorMode(isDesktopMode, index)
	if !ok {
		c.logger.Warn().Int("index", index).Bool("desktop", isDesktopMode).Msg("unknown monitor mode, skipping display switch")
		return
	}

	t.do(ActionDisplaySwitch, func(ctx context.Context) error {
		return t.port.SwitchDisplayMode(ctx, mode)
	})
}

func (c *Controller) handleAudioChange(t *transition, settings Settings, isDesktopMode bool) {
	if settings.AudioSwitchDisabled {
		return
	}

	device := settings.GamemodeAudioDevice
	if isDesktopMode {
		device = settings.DesktopAudioDevice
	}

	t.do(ActionAudioSet, func(ctx context.Context) error {
		return t.port.SetAudioDevice(ctx, device)
	})
}
