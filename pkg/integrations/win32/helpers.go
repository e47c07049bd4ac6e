// Package win32 drives desktop effects on Windows: window enumeration,
// audio and display switching, night light, power schemes and media keys.
package win32

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

var schemeGUID = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// parseActiveScheme extracts the GUID from `powercfg /getactivescheme`
func parseActiveScheme(output string) (string, error) {
	guid := schemeGUID.FindString(output)
	if guid == "" {
		return "", fmt.Errorf("no power scheme GUID in %q", strings.TrimSpace(output))
	}
	return strings.ToLower(guid), nil
}

// displaySwitchArg returns the EnhancedDisplaySwitch flag for a mode
func displaySwitchArg(mode effects.DisplayMode) (string, error) {
	switch mode {
	case effects.DisplayInternal:
		return "/internal", nil
	case effects.DisplayExtend:
		return "/extend", nil
	case effects.DisplayExternal:
		return "/external", nil
	case effects.DisplayClone:
		return "/clone", nil
	default:
		return "", fmt.Errorf("unknown display mode %d", mode)
	}
}

// audioMissingExit is the script exit code for "no matching playback device"
const audioMissingExit = 3

// audioScript builds the PowerShell snippet that selects the first playback
// device whose name contains the given text.
func audioScript(name string) string {
	quoted := "'" + strings.ReplaceAll(name, "'", "''") + "'"
	return fmt.Sprintf(
		"$ErrorActionPreference = 'Stop'; "+
			"$d = Get-AudioDevice -List | Where-Object { $_.Type -eq 'Playback' -and $_.Name.IndexOf(%s, [StringComparison]::OrdinalIgnoreCase) -ge 0 } | Select-Object -First 1; "+
			"if (-not $d) { exit %d }; "+
			"Set-AudioDevice -ID $d.ID | Out-Null",
		quoted, audioMissingExit)
}

// audioModule provides Get-AudioDevice and Set-AudioDevice
const audioModule = "AudioDeviceCmdlets"

// audioModuleScript prints the module name when it is installed for any scope
const audioModuleScript = "Get-Module -ListAvailable -Name " + audioModule + " | Select-Object -First 1 -ExpandProperty Name"

// audioModuleListed reports whether audioModuleScript found the module
func audioModuleListed(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.EqualFold(strings.TrimSpace(line), audioModule) {
			return true
		}
	}
	return false
}

// Night light state blob layout (CloudStore bluelightreductionstate)
const (
	nightLightFlagIndex   = 18
	nightLightOn          = 0x15
	nightLightOff         = 0x13
	nightLightInsertIndex = 23
	stampFirst            = 10
	stampLast             = 14
)

var errNightLightBlob = errors.New("unexpected night light state blob")

// nightLightEnabled reports whether the blob describes an active night light
func nightLightEnabled(data []byte) (bool, error) {
	if len(data) <= nightLightInsertIndex {
		return false, errNightLightBlob
	}
	return data[nightLightFlagIndex] == nightLightOn, nil
}

// enableNightLightBlob returns a copy of data with night light switched on
func enableNightLightBlob(data []byte) ([]byte, error) {
	on, err := nightLightEnabled(data)
	if err != nil {
		return nil, err
	}
	if on {
		return data, nil
	}

	out := make([]byte, 0, len(data)+2)
	out = append(out, data[:nightLightInsertIndex]...)
	out = append(out, 0x10, 0x00)
	out = append(out, data[nightLightInsertIndex:]...)
	out[nightLightFlagIndex] = nightLightOn
	bumpStamp(out)
	return out, nil
}

// disableNightLightBlob returns a copy of data with night light switched off
func disableNightLightBlob(data []byte) ([]byte, error) {
	on, err := nightLightEnabled(data)
	if err != nil {
		return nil, err
	}
	if !on {
		return data, nil
	}
	if len(data) < nightLightInsertIndex+2 {
		return nil, errNightLightBlob
	}

	out := make([]byte, 0, len(data)-2)
	out = append(out, data[:nightLightInsertIndex]...)
	out = append(out, data[nightLightInsertIndex+2:]...)
	out[nightLightFlagIndex] = nightLightOff
	bumpStamp(out)
	return out, nil
}

// bumpStamp increments the change counter so Windows picks up the new state
func bumpStamp(data []byte) {
	for i := stampFirst; i <= stampLast && i < len(data); i++ {
		if data[i] != 0xff {
			data[i]++
			return
		}
	}
}
