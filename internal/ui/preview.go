package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/gravitrone/scribble/internal/note"
	"github.com/gravitrone/scribble/internal/ui/components"
)

const (
	previewMinWidth = 40
	previewMaxWidth = 100
)

// markdownRenderer renders markdown for a given wrap width.
type markdownRenderer func(markdown string, width int) (string, error)

func renderGlamour(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}

func previewWidth(termWidth int) int {
	if termWidth <= 0 {
		return previewMinWidth
	}
	return min(max(termWidth-8, previewMinWidth), previewMaxWidth)
}

// noteMarkdown turns a note into a markdown document with its title as the
// heading.
func noteMarkdown(n note.Note) string {
	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = untitledLabel
	}
	body := strings.TrimSpace(n.Content)
	if body == "" {
		body = "_" + emptyContentLabel + "_"
	}
	return "# " + title + "\n\n" + body + "\n"
}

func (a App) renderPreview() string {
	n, ok := a.ctrl.Active()
	if !ok {
		return ""
	}
	width := previewWidth(a.width)
	md := noteMarkdown(n)

	out, err := a.render(md, width-4)
	if err != nil {
		a.logger.Debug("markdown render failed", "err", err)
		out = components.SanitizeText(md)
	}
	out = strings.Trim(out, "\n")
	return components.Panel("Preview", out+"\n\n"+MutedStyle.Render("esc to close"), width, true)
}
