package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#4ade80")
	muted   = lipgloss.Color("#909090")
	warning = lipgloss.Color("#fbbf24")
	failure = lipgloss.Color("#f87171")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	labelStyle   = lipgloss.NewStyle().Foreground(muted).Width(18)
	valueStyle   = lipgloss.NewStyle()
	successStyle = lipgloss.NewStyle().Foreground(accent)
	warningStyle = lipgloss.NewStyle().Foreground(warning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(failure)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1)
)

// section is a titled block of label/value rows
type section struct {
	title string
	rows  [][2]string
}

func (s *section) add(label, value string) {
	s.rows = append(s.rows, [2]string{label, value})
}

func (s section) render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.title))
	for _, row := range s.rows {
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), valueStyle.Render(row[1])))
	}
	return boxStyle.Render(b.String())
}

func renderSections(sections ...section) string {
	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		blocks = append(blocks, s.render())
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func yesNo(v bool) string {
	if v {
		return successStyle.Render("yes")
	}
	return "no"
}

func enabled(disabled bool) string {
	if disabled {
		return warningStyle.Render("disabled")
	}
	return successStyle.Render("enabled")
}

func installed(ok bool) string {
	if ok {
		return successStyle.Render("installed")
	}
	return warningStyle.Render("not installed")
}

// errValue renders a probe result, showing the error in place of the value
func errValue(value string, err error) string {
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("error: %v", err))
	}
	return value
}
