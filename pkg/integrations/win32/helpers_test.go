package win32

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

func TestParseActiveScheme(t *testing.T) {
	guid, err := parseActiveScheme("Power Scheme GUID: 381B4222-F694-41F0-9685-FF5BB260DF2E  (Balanced)\r\n")
	require.NoError(t, err)
	assert.Equal(t, effects.BalancedPlanGUID, guid)

	// localized output still carries the GUID
	guid, err = parseActiveScheme("GUID du mode de gestion de l'alimentation : 8c5e7fda-e8bf-4a96-9a85-a6e23a8c635c  (Performances élevées)")
	require.NoError(t, err)
	assert.Equal(t, effects.PerformancePlanGUID, guid)

	_, err = parseActiveScheme("Access denied")
	assert.Error(t, err)
}

func TestDisplaySwitchArg(t *testing.T) {
	tests := map[effects.DisplayMode]string{
		effects.DisplayInternal: "/internal",
		effects.DisplayExtend:   "/extend",
		effects.DisplayExternal: "/external",
		effects.DisplayClone:    "/clone",
	}
	for mode, want := range tests {
		arg, err := displaySwitchArg(mode)
		require.NoError(t, err)
		assert.Equal(t, want, arg)
	}

	_, err := displaySwitchArg(effects.DisplayMode(9))
	assert.Error(t, err)
}

func TestAudioScriptQuotesName(t *testing.T) {
	script := audioScript("Bob's TV")
	assert.Contains(t, script, "'Bob''s TV'")
	assert.Contains(t, script, "exit 3")
	assert.True(t, strings.HasSuffix(script, "Set-AudioDevice -ID $d.ID | Out-Null"))
}

func offBlob() []byte {
	data := make([]byte, 41)
	for i := range data {
		data[i] = byte(0x40 + i)
	}
	data[10] = 0xff
	data[11] = 0x05
	data[nightLightFlagIndex] = nightLightOff
	return data
}

func TestNightLightBlobRoundTrip(t *testing.T) {
	off := offBlob()

	enabled, err := nightLightEnabled(off)
	require.NoError(t, err)
	assert.False(t, enabled)

	on, err := enableNightLightBlob(off)
	require.NoError(t, err)
	assert.Len(t, on, len(off)+2)
	assert.Equal(t, byte(nightLightOn), on[nightLightFlagIndex])
	assert.Equal(t, []byte{0x10, 0x00}, on[nightLightInsertIndex:nightLightInsertIndex+2])
	assert.Equal(t, byte(0xff), on[10])
	assert.Equal(t, byte(0x06), on[11])
	assert.Equal(t, off[nightLightInsertIndex:], on[nightLightInsertIndex+2:])

	enabled, err = nightLightEnabled(on)
	require.NoError(t, err)
	assert.True(t, enabled)

	back, err := disableNightLightBlob(on)
	require.NoError(t, err)
	assert.Len(t, back, len(off))
	assert.Equal(t, byte(nightLightOff), back[nightLightFlagIndex])
	assert.Equal(t, byte(0x07), back[11])
	assert.Equal(t, off[nightLightInsertIndex:], back[nightLightInsertIndex:])
}

func TestNightLightBlobNoop(t *testing.T) {
	off := offBlob()
	same, err := disableNightLightBlob(off)
	require.NoError(t, err)
	assert.Equal(t, off, same)

	on, err := enableNightLightBlob(off)
	require.NoError(t, err)
	again, err := enableNightLightBlob(on)
	require.NoError(t, err)
	assert.Equal(t, on, again)
}

func TestNightLightBlobTooShort(t *testing.T) {
	_, err := nightLightEnabled([]byte{1, 2, 3})
	assert.ErrorIs(t, err, errNightLightBlob)

	_, err = enableNightLightBlob(nil)
	assert.Error(t, err)
}

func TestAudioModuleListed(t *testing.T) {
	assert.True(t, audioModuleListed("AudioDeviceCmdlets\r\n"))
	assert.True(t, audioModuleListed("WARNING: profile not loaded\r\naudiodevicecmdlets\r\n"))
	assert.False(t, audioModuleListed(""))
	assert.False(t, audioModuleListed("AudioDeviceCmdletsLegacy\r\n"))
}
