// Package steam resolves the Big Picture window title for the installed Steam language.
package steam

import (
	"strings"

	"github.com/bigpicturetv/bigpicturetv/pkg/effects"
)

// DefaultLanguage is used when the Steam language cannot be determined
const DefaultLanguage = "english"

// bigPictureTitles maps Steam language identifiers to the Big Picture window title
var bigPictureTitles = map[string]string{
	"english":    "Steam Big Picture Mode",
	"french":     "Steam mode Big Picture",
	"german":     "Steam Big Picture-Modus",
	"spanish":    "Steam modo Big Picture",
	"latam":      "Steam modo Big Picture",
	"italian":    "Steam modalità Big Picture",
	"portuguese": "Steam modo Big Picture",
	"brazilian":  "Steam Modo Big Picture",
	"dutch":      "Steam Big Picture-modus",
	"polish":     "Steam tryb Big Picture",
	"russian":    "Steam режим Big Picture",
	"ukrainian":  "Steam режим Big Picture",
	"czech":      "Steam režim Big Picture",
	"swedish":    "Steam Big Picture-läge",
	"danish":     "Steam Big Picture-tilstand",
	"norwegian":  "Steam Big Picture-modus",
	"finnish":    "Steam Big Picture -tila",
	"turkish":    "Steam Büyük Resim Modu",
	"schinese":   "Steam 大屏幕模式",
	"tchinese":   "Steam Big Picture 模式",
	"japanese":   "Steam Big Picture モード",
	"koreana":    "Steam Big Picture 모드",
}

// BigPictureTitles returns the window titles to look for with the given language.
// The English title is always included since Steam falls back to it for
// partially translated builds.
func BigPictureTitles(language string) []string {
	language = strings.ToLower(strings.TrimSpace(language))
	english := bigPictureTitles[DefaultLanguage]

	title, ok := bigPictureTitles[language]
	if !ok || title == english {
		return []string{english}
	}
	return []string{title, english}
}

// TargetTitles returns the window titles that identify the target.
// Custom targets match their own title only.
func TargetTitles(target effects.Target, language string) []string {
	if target.Kind == effects.TargetCustom {
		return []string{target.Title}
	}
	return BigPictureTitles(language)
}
