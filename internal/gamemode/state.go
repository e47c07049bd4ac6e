package gamemode

// TransitionState holds the mode flag and the values captured on entry
// into gamemode. Saved fields are only meaningful while GamemodeActive is true.
type TransitionState struct {
	GamemodeActive bool

	SavedDiscordWasRunning    bool
	SavedNightLightWasEnabled bool
	SavedPriorPowerPlanID     string // Empty until captured
}
