package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error is a non-2xx answer from the AI service.
type Error struct {
	Op      string
	Status  int
	Message string // server-provided text, may be empty
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

// errorBody covers the shapes the service uses for failures.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

// serverMessage extracts a human readable message from an error response body.
func serverMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	for _, s := range []string{eb.Message, eb.Error, eb.Detail} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// UserMessage converts any client error into text that can be shown to a user.
func UserMessage(err error, fallback string) string {
	var aiErr *Error
	switch {
	case errors.As(err, &aiErr) && aiErr.Message != "":
		return aiErr.Message
	case errors.As(err, &aiErr):
		return fmt.Sprintf("%s (status %d)", fallback, aiErr.Status)
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.Is(err, ErrMalformedResponse):
		return fallback + " (unexpected response)"
	default:
		return fallback
	}
}

// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")
