package ai

import "errors"

const (
	msgTooShort    = "Please write a bit more before using AI features."
	msgNoResponse  = "I couldn't generate a response. Please try again."
	msgUnreachable = "Failed to connect to the AI service. Please check your connection."
)

// UserError is implemented by errors that carry a message safe to show.
type UserError interface {
	error
	UserMessage() string
}

// ValidationError rejects a request before any model call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string       { return e.Message }
func (e *ValidationError) UserMessage() string { return e.Message }

// ServiceError wraps a model transport or API failure. The cause is kept
// for logs and errors.Is, never shown to the user.
type ServiceError struct {
	Cause error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return "ai service: " + msgUnreachable
	}
	return "ai service: " + e.Cause.Error()
}

func (e *ServiceError) UserMessage() string { return msgUnreachable }

func (e *ServiceError) Unwrap() error { return e.Cause }

// UserMessage extracts the displayable message from err. Errors outside
// the taxonomy map to the service failure text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue UserError
	if errors.As(err, &ue) {
		return ue.UserMessage()
	}
	return msgUnreachable
}
