package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationEventType represents the type of a streaming generation event.
type GenerationEventType string

const (
	EventStart    GenerationEventType = "start"
	EventChunk    GenerationEventType = "chunk"
	EventComplete GenerationEventType = "complete"
	EventQuality  GenerationEventType = "quality"
	EventError    GenerationEventType = "error"
)

// GenerationEvent is one discrete event on the outbound stream. Every event
// carries a millisecond timestamp.
type GenerationEvent struct {
	Type      GenerationEventType `json:"type"`
	Timestamp int64               `json:"timestamp"`
	Content   string              `json:"content,omitempty"`
	Data      any                 `json:"data,omitempty"`
}

// CompletePayload is the data carried by a complete event.
type CompletePayload struct {
	GenerationID  uuid.UUID `json:"generation_id"`
	Code          string    `json:"code"`
	QualityPassed bool      `json:"quality_passed"`
	ContextUsed   bool      `json:"context_used"`
}

// StartPayload is the data carried by a start event.
type StartPayload struct {
	GenerationID uuid.UUID `json:"generation_id"`
	Provider     Provider  `json:"provider"`
	Model        string    `json:"model"`
}

func eventNow() int64 {
	return time.Now().UnixMilli()
}

// NewStartEvent creates a stream-opening event.
func NewStartEvent(p StartPayload) GenerationEvent {
	return GenerationEvent{Type: EventStart, Timestamp: eventNow(), Data: p}
}

// NewChunkEvent creates an incremental content event.
func NewChunkEvent(content string) GenerationEvent {
	return GenerationEvent{Type: EventChunk, Timestamp: eventNow(), Content: content}
}

// NewQualityEvent creates an event carrying the quality report.
func NewQualityEvent(report *QualityReport) GenerationEvent {
	return GenerationEvent{Type: EventQuality, Timestamp: eventNow(), Data: report}
}

// NewCompleteEvent creates the terminal success event.
func NewCompleteEvent(p CompletePayload) GenerationEvent {
	return GenerationEvent{Type: EventComplete, Timestamp: eventNow(), Data: p}
}

// NewErrorEvent creates the terminal error event.
func NewErrorEvent(message string) GenerationEvent {
	return GenerationEvent{Type: EventError, Timestamp: eventNow(), Content: message}
}

// IsTerminal reports whether no further events follow this one.
func (e GenerationEvent) IsTerminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}
