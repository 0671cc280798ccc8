// Package event defines the normalized domain events emitted to the
// transport layer during one agent turn.
package event

import "time"

// Type discriminates domain events.
type Type string

const (
	// TypeReasoning carries the full accumulated reasoning text so far.
	// Consumers replace their displayed reasoning rather than append.
	TypeReasoning Type = "reasoning_update"
	// TypeTool reports a tool invocation lifecycle transition.
	TypeTool Type = "tool_event"
	// TypeText carries one chunk of assistant output text.
	TypeText Type = "text"
	// TypeImage carries a generated image payload for one platform.
	TypeImage Type = "image"
	// TypeDone marks the successful end of a turn.
	TypeDone Type = "done"
	// TypeError carries a user-facing error message. It is the last
	// event emitted on any failure path.
	TypeError Type = "error"
)

// ToolStatus is the lifecycle state reported by a tool event.
type ToolStatus string

const (
	// ToolStatusStarted is emitted exactly once per invocation identity.
	ToolStatusStarted ToolStatus = "started"
	// ToolStatusCompleted is emitted exactly once per invocation identity,
	// always after the corresponding started event.
	ToolStatusCompleted ToolStatus = "completed"
)

// Event is one normalized unit produced by the stream normalizer.
// Only the fields relevant to its Type are populated.
type Event struct {
	Type Type

	// Reasoning is the full accumulated reasoning buffer (TypeReasoning).
	Reasoning string

	// Tool fields (TypeTool).
	Tool      string
	Status    ToolStatus
	Message   string
	Timestamp time.Time

	// Text is one assistant output chunk (TypeText).
	Text string

	// Image fields (TypeImage). ImageBase64 is the raw base64 payload.
	Platform    string
	ImageBase64 string

	// Error is the user-facing message (TypeError).
	Error string
}

// NewReasoningUpdate creates a reasoning update event carrying the full
// accumulated buffer.
func NewReasoningUpdate(reasoning string) Event {
	return Event{Type: TypeReasoning, Reasoning: reasoning}
}

// NewToolEvent creates a tool lifecycle event. The message is optional
// context shown to the consumer (retry notices and the like).
func NewToolEvent(tool string, status ToolStatus, message string) Event {
	return Event{
		Type:      TypeTool,
		Tool:      tool,
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// NewTextChunk creates a text chunk event.
func NewTextChunk(text string) Event {
	return Event{Type: TypeText, Text: text}
}

// NewImageReady creates an image event for one platform.
func NewImageReady(platform, imageBase64 string) Event {
	return Event{Type: TypeImage, Platform: platform, ImageBase64: imageBase64}
}

// NewDone creates the terminal success event.
func NewDone() Event {
	return Event{Type: TypeDone}
}

// NewError creates the terminal error event with a user-facing message.
func NewError(message string) Event {
	return Event{Type: TypeError, Error: message}
}
