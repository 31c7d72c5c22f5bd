package ai

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"
)

const (
	minActionRunes = 5
	minTitleRunes  = 10

	titlePrompt    = "Suggest a short, 3-5 word title for this note:\n\n"
	titleMaxTokens = 20

	// FallbackTitle is used when there is too little content or the model
	// call fails.
	FallbackTitle = "New Note"
	// UntitledTitle is used when the model answers with nothing usable.
	UntitledTitle = "Untitled Note"
)

var titleQuotes = strings.NewReplacer(`"`, "", "“", "", "”", "")

// Gateway builds prompts for a Model and normalizes its output. It holds no
// per-call state and is safe for concurrent use.
type Gateway struct {
	model     Model
	modelName string
	logger    *slog.Logger
}

// NewGateway wraps model. modelName is sent with every request.
func NewGateway(model Model, modelName string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{model: model, modelName: modelName, logger: logger}
}

// RunAction transforms content with action. Errors are *ValidationError or
// *ServiceError.
func (g *Gateway) RunAction(ctx context.Context, content string, action Action) (string, error) {
	if !action.Valid() {
		return "", &ValidationError{Message: "Unknown AI action: " + string(action)}
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minActionRunes {
		return "", &ValidationError{Message: msgTooShort}
	}

	text, err := g.model.Generate(ctx, Request{
		Model:    g.modelName,
		Prompt:   action.Prompt(content),
		Sampling: action.sampling(),
	})
	if err != nil {
		g.logger.Warn("ai action failed", "action", string(action), "err", err)
		return "", &ServiceError{Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return msgNoResponse, nil
	}
	return text, nil
}

// GenerateTitle suggests a short title for content. It never fails.
func (g *Gateway) GenerateTitle(ctx context.Context, content string) string {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minTitleRunes {
		return FallbackTitle
	}

	text, err := g.model.Generate(ctx, Request{
		Model:    g.modelName,
		Prompt:   titlePrompt + content,
		Sampling: Sampling{MaxOutputTokens: titleMaxTokens},
	})
	if err != nil {
		g.logger.Warn("title generation failed", "err", err)
		return FallbackTitle
	}

	title := strings.TrimSpace(titleQuotes.Replace(text))
	if title == "" {
		return UntitledTitle
	}
	return title
}
