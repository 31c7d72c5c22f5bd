package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/scribble/internal/ui/components"
)

func TestSplitLinesDropsLeadingNewline(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitLines("\na\nb\nc"))
}

func TestRenderBannerIncludesSubtitleAndNoOSC(t *testing.T) {
	out := RenderBanner()
	assert.NotContains(t, out, "\x1b]")
	assert.Contains(t, components.SanitizeText(out), "Notes with an AI co-writer")
}
