package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerArt = `
 ┌─┐┌─┐┬─┐┬┌┐ ┌┐ ┬  ┌─┐
 └─┐│  ├┬┘│├┴┐├┴┐│  ├┤
 └─┘└─┘┴└─┴└─┘└─┘┴─┘└─┘`

const bannerSubtitle = "Notes with an AI co-writer"

// RenderBanner returns the styled banner with its subtitle centered below.
func RenderBanner() string {
	lines := splitLines(bannerArt)

	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}

	var rendered strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		rendered.WriteString(BannerStyle.Render(line) + "\n")
	}

	blockWidth := max(maxWidth, lipgloss.Width(bannerSubtitle))
	subtitle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(bannerSubtitle)

	return rendered.String() + subtitle + "\n"
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimPrefix(s, "\n"), "\n")
}
