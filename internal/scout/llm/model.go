package llm

import (
	"context"
	"errors"
)

// ConversationRole is the role for a message in a conversation.
type ConversationRole string

const (
	ConversationRoleSystem    ConversationRole = "system"
	ConversationRoleUser      ConversationRole = "user"
	ConversationRoleAssistant ConversationRole = "assistant"
)

// ModelClass names a model family (default or high-reasoning) carried on a
// Request; no adapter in this package maps it to a model. Callers that need
// a specific model, such as scoutctl's high-reasoning extractor, pin it
// with WithModel.
type ModelClass string

const (
	ModelClassDefault       ModelClass = "default"
	ModelClassHighReasoning ModelClass = "high-reasoning"
)

// Part is a marker interface for message content blocks. Scout's completions
// are text-only: no tool use, citations, documents, or thinking blocks, so
// TextPart is the only implementation.
type Part interface{ isPart() }

// TextPart is a plain text content block.
type TextPart struct{ Text string }

func (TextPart) isPart() {}

// Message is a single chat message.
type Message struct {
	Role  ConversationRole
	Parts []Part
}

// TokenUsage tracks token counts for a model call.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Request captures inputs for a single-shot model invocation.
type Request struct {
	Model       string
	ModelClass  ModelClass
	Messages    []*Message
	Temperature float32
	MaxTokens   int
	Stream      bool
}

// Response is the result of a non-streaming invocation.
type Response struct {
	Content    []Message
	Usage      TokenUsage
	StopReason string
}

// Chunk is a streaming event from the model. Scout never drains a Streamer
// in production (extraction/synthesis/lint are single-shot), but Client
// still declares Stream so a provider adapter satisfies one interface
// whether or not a caller uses it.
type Chunk struct {
	Type    string
	Message *Message
}

// Streamer delivers incremental model output.
type Streamer interface {
	Recv() (Chunk, error)
	Close() error
}

// Client is the provider-agnostic completion client every Scout component
// depends on: one Complete call in, one Response out.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Stream(ctx context.Context, req *Request) (Streamer, error)
}

// ErrStreamingUnsupported indicates the provider does not support streaming.
var ErrStreamingUnsupported = errors.New("llm: streaming not supported")
