package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/scribble/internal/ai"
)

// --- Key Constants ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

func isQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "q", "ctrl+c")
}

func isForceQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+c")
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "escape", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up", "k")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down", "j")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter", "return")
}

func isFocusNext(msg tea.KeyMsg) bool {
	return isKey(msg, "tab")
}

func isAutoTitle(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+t")
}

// actionForKey maps 1-6 to the AI actions in display order. With global set
// only the alt+ variants match, so plain digits stay typeable in the editor.
func actionForKey(msg tea.KeyMsg, global bool) (ai.Action, bool) {
	key := msg.String()
	if global {
		if len(key) != 5 || key[:4] != "alt+" {
			return "", false
		}
		key = key[4:]
	}
	if len(key) != 1 || key[0] < '1' || key[0] > '6' {
		return "", false
	}
	return ai.Actions()[key[0]-'1'], true
}
