package steam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigPictureTitles(t *testing.T) {
	assert.Equal(t, []string{"Steam Big Picture Mode"}, BigPictureTitles("english"))
	assert.Equal(t, []string{"Steam Big Picture Mode"}, BigPictureTitles("klingon"))
	assert.Equal(t, []string{"Steam Big Picture Mode"}, BigPictureTitles(""))

	fr := BigPictureTitles(" French ")
	require.Len(t, fr, 2)
	assert.Equal(t, "Steam mode Big Picture", fr[0])
	assert.Equal(t, "Steam Big Picture Mode", fr[1])

	assert.Equal(t, "Steam Big Picture-Modus", BigPictureTitles("german")[0])
}

func TestParseRegistryLanguage(t *testing.T) {
	vdf := `"Registry"
{
	"HKCU"
	{
		"Software"
		{
			"Valve"
			{
				"Steam"
				{
					"AutoLoginUser"		"player"
					"language"		"French"
				}
			}
		}
	}
}`
	lang, err := ParseRegistryLanguage(strings.NewReader(vdf))
	require.NoError(t, err)
	assert.Equal(t, "french", lang)

	_, err = ParseRegistryLanguage(strings.NewReader(`"Registry" {}`))
	assert.Error(t, err)
}
