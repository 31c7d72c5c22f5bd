// Package ai turns note content into model prompts and model output into
// text the controller can apply, mapping every failure to a user-facing
// message.
package ai

import (
	"fmt"
	"strings"
)

// Action is one of the fixed content transformations.
type Action string

const (
	Summarize  Action = "summarize"
	Refine     Action = "refine"
	Brainstorm Action = "brainstorm"
	Translate  Action = "translate"
	Shorter    Action = "shorter"
	Longer     Action = "longer"
)

// ApplyMode says how a result combines with the note it was generated from.
type ApplyMode int

const (
	// Replace swaps the note content for the result.
	Replace ApplyMode = iota
	// Append keeps the note content and adds the result below a separator.
	Append
)

// AppendSeparator sits between original content and appended suggestions.
const AppendSeparator = "\n\n---\nAI Suggestions:\n"

// prose is the sampling shared by all content actions.
var prose = Sampling{Temperature: 0.7, TopP: 0.8}

type policy struct {
	label    string
	template string
	apply    ApplyMode
	sampling Sampling
}

var policies = map[Action]policy{
	Summarize: {
		label:    "Summarize",
		template: "Provide a concise summary of the following text in bullet points:",
		apply:    Replace,
		sampling: prose,
	},
	Refine: {
		label:    "Fix & Refine",
		template: "Fix any grammar mistakes and improve the professional tone of the following text while keeping the original meaning:",
		apply:    Replace,
		sampling: prose,
	},
	Brainstorm: {
		label:    "Brainstorm",
		template: "Based on the following notes, suggest 5 creative ideas or next steps:",
		apply:    Append,
		sampling: prose,
	},
	Translate: {
		label:    "To Spanish",
		template: "Translate the following text to Spanish while maintaining a natural tone:",
		apply:    Replace,
		sampling: prose,
	},
	Shorter: {
		label:    "Make Shorter",
		template: "Make this text significantly shorter and more punchy without losing the core message:",
		apply:    Replace,
		sampling: prose,
	},
	Longer: {
		label:    "Expand Info",
		template: "Expand on the following thoughts, adding more detail and context to make it a more comprehensive note:",
		apply:    Replace,
		sampling: prose,
	},
}

var displayOrder = []Action{Summarize, Refine, Brainstorm, Translate, Shorter, Longer}

// Actions returns every action in display order.
func Actions() []Action {
	return append([]Action(nil), displayOrder...)
}

// ParseAction resolves a tag, case-insensitively.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := policies[a]; !ok {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	_, ok := policies[a]
	return ok
}

// Label is the button text for a.
func (a Action) Label() string {
	if p, ok := policies[a]; ok {
		return p.label
	}
	return string(a)
}

// Apply returns how a's result combines with the note.
func (a Action) Apply() ApplyMode {
	return policies[a].apply
}

// Prompt builds the full model prompt for content.
func (a Action) Prompt(content string) string {
	return policies[a].template + "\n\n" + content
}

func (a Action) sampling() Sampling {
	return policies[a].sampling
}

// ApplyResult combines the original content with a model result according
// to a's policy.
func (a Action) ApplyResult(original, result string) string {
	if a.Apply() == Append {
		return original + AppendSeparator + result
	}
	return result
}
