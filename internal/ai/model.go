package ai

import "context"

// Sampling holds generation parameters. Zero values are omitted from the
// outgoing request.
type Sampling struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// Request is a single-turn generation request.
type Request struct {
	Model    string
	Prompt   string
	Sampling Sampling
}

// Model is a text generation backend. An empty string with a nil error
// means the service answered without text.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, req Request) (string, error)

func (f ModelFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
