// Package assistant orchestrates a single coding-assistant request:
// validate input, retrieve workspace context, route to a model backend,
// stream the response, and surface tool calls as structured events.
package assistant

import (
	"errors"
	"strings"
)

// EventType classifies the items on a response stream.
type EventType string

const (
	EventToken EventType = "token"
	EventTool  EventType = "tool"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// Event is one item on a response stream. Token events carry a text
// delta, tool events the serialized tool result, error events a non-nil
// Err. A stream ends with exactly one done or error event.
type Event struct {
	Type    EventType
	Content string
	Err     error
}

// FileContext is a workspace file attached to a request.
type FileContext struct {
	Path    string
	Content string
}

// Input is one user request.
type Input struct {
	UserMessage string
	SessionID   string
	Files       []FileContext
}

var ErrInvalidInput = errors.New("empty user message")

func (in Input) Validate() error {
	if strings.TrimSpace(in.UserMessage) == "" {
		return ErrInvalidInput
	}
	return nil
}
