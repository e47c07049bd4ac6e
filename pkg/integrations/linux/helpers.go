// Package linux drives desktop effects on Linux sessions through the usual
// command-line tools: pactl, xrandr, gsettings, powerprofilesctl and playerctl.
package linux

import (
	"fmt"
	"strings"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// Sink is a PulseAudio/PipeWire playback device
type Sink struct {
	Name        string
	Description string
}

// parseSinks reads `pactl list sinks` output
func parseSinks(output string) []Sink {
	var sinks []Sink
	var cur *Sink
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Sink #"):
			sinks = append(sinks, Sink{})
			cur = &sinks[len(sinks)-1]
		case cur == nil:
			continue
		case strings.HasPrefix(trimmed, "Name:"):
			cur.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "Name:"))
		case strings.HasPrefix(trimmed, "Description:"):
			cur.Description = strings.TrimSpace(strings.TrimPrefix(trimmed, "Description:"))
		}
	}
	return sinks
}

// findSink picks the sink for a configured device name. An exact sink name
// wins, then an exact description, then a description containing the name.
func findSink(sinks []Sink, wanted string) (Sink, bool) {
	wanted = strings.TrimSpace(wanted)
	if wanted == "" {
		return Sink{}, false
	}
	for _, s := range sinks {
		if s.Name == wanted {
			return s, true
		}
	}
	for _, s := range sinks {
		if strings.EqualFold(s.Description, wanted) {
			return s, true
		}
	}
	lower := strings.ToLower(wanted)
	for _, s := range sinks {
		if strings.Contains(strings.ToLower(s.Description), lower) {
			return s, true
		}
	}
	return Sink{}, false
}

// Output is a video output reported by xrandr
type Output struct {
	Name      string
	Connected bool
	Primary   bool
}

// Internal reports whether the output is a built-in panel
func (o Output) Internal() bool {
	for _, prefix := range []string{"eDP", "LVDS", "DSI"} {
		if strings.HasPrefix(o.Name, prefix) {
			return true
		}
	}
	return false
}

// parseOutputs reads `xrandr --query` output
func parseOutputs(output string) []Output {
	var outputs []Output
	for _, line := range strings.Split(output, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' || strings.HasPrefix(line, "Screen ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if fields[1] != "connected" && fields[1] != "disconnected" {
			continue
		}
		outputs = append(outputs, Output{
			Name:      fields[0],
			Connected: fields[1] == "connected",
			Primary:   len(fields) > 2 && fields[2] == "primary",
		})
	}
	return outputs
}

// splitOutputs returns the main display (an internal panel, else the current
// primary, else the first connected output) and the other connected outputs.
func splitOutputs(outputs []Output) (Output, []Output, bool) {
	var connected []Output
	for _, o := range outputs {
		if o.Connected {
			connected = append(connected, o)
		}
	}
	if len(connected) == 0 {
		return Output{}, nil, false
	}

	mainIdx := 0
	for i, o := range connected {
		if o.Internal() {
			mainIdx = i
			break
		}
		if o.Primary {
			mainIdx = i
		}
	}

	main := connected[mainIdx]
	others := make([]Output, 0, len(connected)-1)
	others = append(others, connected[:mainIdx]...)
	others = append(others, connected[mainIdx+1:]...)
	return main, others, true
}

// xrandrArgs builds the xrandr arguments that apply a display mode
func xrandrArgs(outputs []Output, mode effects.DisplayMode) ([]string, error) {
	main, others, ok := splitOutputs(outputs)
	if !ok {
		return nil, fmt.Errorf("no connected outputs")
	}

	var args []string
	switch mode {
	case effects.DisplayInternal:
		args = append(args, "--output", main.Name, "--auto", "--primary")
		for _, o := range others {
			args = append(args, "--output", o.Name, "--off")
		}

	case effects.DisplayExternal:
		if len(others) == 0 {
			return nil, fmt.Errorf("no external output connected")
		}
		prev := ""
		for i, o := range others {
			args = append(args, "--output", o.Name, "--auto")
			if i == 0 {
				args = append(args, "--primary")
			} else {
				args = append(args, "--right-of", prev)
			}
			prev = o.Name
		}
		args = append(args, "--output", main.Name, "--off")

	case effects.DisplayExtend:
		args = append(args, "--output", main.Name, "--auto", "--primary")
		prev := main.Name
		for _, o := range others {
			args = append(args, "--output", o.Name, "--auto", "--right-of", prev)
			prev = o.Name
		}

	case effects.DisplayClone:
		args = append(args, "--output", main.Name, "--auto", "--primary")
		for _, o := range others {
			args = append(args, "--output", o.Name, "--auto", "--same-as", main.Name)
		}

	default:
		return nil, fmt.Errorf("unknown display mode %d", mode)
	}
	return args, nil
}

// power-profiles-daemon profile names
const (
	ProfilePerformance = "performance"
	ProfileBalanced    = "balanced"
	ProfilePowerSaver  = "power-saver"
)

var profileByGUID = map[string]string{
	effects.PerformancePlanGUID: ProfilePerformance,
	effects.BalancedPlanGUID:    ProfileBalanced,
	effects.PowerSaverPlanGUID:  ProfilePowerSaver,
}

// profileForGUID maps a power scheme GUID to a power profile
func profileForGUID(guid string) (string, error) {
	profile, ok := profileByGUID[strings.ToLower(strings.TrimSpace(guid))]
	if !ok {
		return "", fmt.Errorf("no power profile for scheme %q", guid)
	}
	return profile, nil
}

// guidForProfile maps a power profile back to its scheme GUID
func guidForProfile(profile string) (string, error) {
	profile = strings.TrimSpace(profile)
	for guid, p := range profileByGUID {
		if p == profile {
			return guid, nil
		}
	}
	return "", fmt.Errorf("unknown power profile %q", profile)
}

// parseGsettingsBool reads a `gsettings get` boolean
func parseGsettingsBool(output string) (bool, error) {
	switch strings.TrimSpace(output) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected gsettings value %q", strings.TrimSpace(output))
	}
}
