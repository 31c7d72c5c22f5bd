package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorBorder       = lipgloss.Color("#273540")
	colorBorderActive = lipgloss.Color("#7f57b4")
	colorErrorBorder  = lipgloss.Color("#7a2f3a")

	boxBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	panelBorderActive = panelBorder.
				BorderForeground(colorBorderActive)

	boxHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7f57b4")).
			Bold(true)

	panelHeaderMuted = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9ba0bf"))

	errorBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorErrorBorder).
			Padding(0, 2)

	errorHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e06c75")).
				Bold(true)

	errorBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d6b5b5"))
)

func boxWidth(width int) int {
	// Use ~70% of terminal width, capped at 80
	if width <= 0 {
		return 0
	}
	w := width * 70 / 100
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}

func safeBoxWidth(width int) int {
	if width <= 0 {
		return boxWidth(width)
	}
	w := boxWidth(width)
	if w > width {
		return width
	}
	return w
}

// framedWidth sets style's width so the rendered box, border included, is
// the standard box width for the terminal.
func framedWidth(style lipgloss.Style, width int) lipgloss.Style {
	w := safeBoxWidth(width)
	if w <= 0 {
		return style
	}
	return style.Width(max(w-style.GetHorizontalBorderSize(), 1))
}

// ClampTextWidth truncates text to the given visual width (ANSI-aware).
func ClampTextWidth(text string, width int) string {
	cleaned := SanitizeOneLine(text)
	if width <= 0 || lipgloss.Width(cleaned) <= width {
		return cleaned
	}
	if width == 1 {
		return "…"
	}
	return truncateRunes(cleaned, width-1) + "…"
}

// ErrorBox renders a red bordered banner for errors.
func ErrorBox(title, message string, width int) string {
	header := ""
	if title != "" {
		header = errorHeaderStyle.Render(title) + "  "
	}
	body := errorBodyStyle.Render(SanitizeText(message))
	return framedWidth(errorBorder, width).Render(header + body)
}

// TitledBox renders a box with a header title.
func TitledBox(title, content string, width int) string {
	return titledBorder(title, framedWidth(boxBorder, width).Render(content), boxHeaderStyle, colorBorder)
}

// Panel renders a titled box whose outer width is exactly width. Active
// panels get the accent border.
func Panel(title, content string, width int, active bool) string {
	style, header, border := panelBorder, panelHeaderMuted, colorBorder
	if active {
		style, header, border = panelBorderActive, boxHeaderStyle, colorBorderActive
	}
	if width > 0 {
		// Width includes padding but not the border.
		style = style.Width(max(width-style.GetHorizontalBorderSize(), 1))
	}
	return titledBorder(title, style.Render(content), header, border)
}

// titledBorder splices " [ title ] " into the top border line of boxed.
func titledBorder(title, boxed string, headerStyle lipgloss.Style, borderColor lipgloss.Color) string {
	if title == "" {
		return boxed
	}
	lines := strings.Split(boxed, "\n")
	lineWidth := lipgloss.Width(lines[0])
	if lineWidth < 4 {
		return boxed
	}

	border := lipgloss.RoundedBorder()
	middleLen := lineWidth - 2
	titleText := fmt.Sprintf(" [ %s ] ", SanitizeOneLine(title))
	if lipgloss.Width(titleText) > middleLen {
		titleText = truncateRunes(titleText, middleLen)
	}

	titleWidth := lipgloss.Width(titleText)
	left := max((middleLen-titleWidth)/2, 0)
	right := max(middleLen-titleWidth-left, 0)

	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	line := borderStyle.Render(border.TopLeft+strings.Repeat(border.Top, left)) +
		headerStyle.Render(titleText) +
		borderStyle.Render(strings.Repeat(border.Top, right)+border.TopRight)
	if w := lipgloss.Width(line); w < lineWidth {
		line += borderStyle.Render(strings.Repeat(border.Top, lineWidth-w))
	}

	lines[0] = line
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	var b strings.Builder
	b.Grow(max)
	n := 0
	for _, r := range s {
		if n >= max {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// Indent adds left padding to every line of a multi-line string.
func Indent(s string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
