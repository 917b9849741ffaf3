// Package llm is the LLM I/O boundary (section 6.6): a provider-agnostic
// completion Client plus a single-shot, schema-validated JSON extractor
// built on top of it, used by extraction, synthesis, and lint. Every call
// in this package is one request, one JSON response, no tool loop.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrSchemaValidation indicates the model's JSON output failed schema
// validation even after one corrective retry.
var ErrSchemaValidation = errors.New("llm: response failed schema validation")

// Extractor issues single-shot, JSON-schema-constrained completions.
type Extractor struct {
	client      Client
	model       string
	modelClass  ModelClass
	maxTokens   int
	temperature float32
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel pins a concrete provider model identifier.
func WithModel(id string) Option { return func(e *Extractor) { e.model = id } }

// WithModelClass sets the model family (default/high-reasoning) carried on
// every Request the Extractor sends. The adapters in this package do not
// read it; the model they call is the WithModel identifier or their own
// default.
func WithModelClass(class ModelClass) Option {
	return func(e *Extractor) { e.modelClass = class }
}

// WithMaxTokens caps completion length.
func WithMaxTokens(n int) Option { return func(e *Extractor) { e.maxTokens = n } }

// WithTemperature sets sampling temperature.
func WithTemperature(t float32) Option { return func(e *Extractor) { e.temperature = t } }

// NewExtractor builds an Extractor over any Client — the OpenAI adapter in
// this package, or any other Client implementation a caller supplies.
func NewExtractor(client Client, opts ...Option) *Extractor {
	e := &Extractor{client: client, maxTokens: 4096, modelClass: ModelClassDefault}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractJSON sends systemPrompt + userContent to the model and returns the
// assistant's text parsed and validated against schema. On a schema
// validation failure, it retries once with a corrective follow-up message
// quoting the validation error, per the repair pattern extraction and lint
// both rely on (section 4.6/4.9).
func (e *Extractor) ExtractJSON(ctx context.Context, systemPrompt, userContent string, schema *jsonschema.Schema) (json.RawMessage, error) {
	messages := []*Message{
		{Role: ConversationRoleSystem, Parts: []Part{TextPart{Text: systemPrompt}}},
		{Role: ConversationRoleUser, Parts: []Part{TextPart{Text: userContent}}},
	}

	raw, err := e.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	verr := validate(schema, raw)
	if verr == nil {
		return raw, nil
	}

	messages = append(messages,
		&Message{Role: ConversationRoleAssistant, Parts: []Part{TextPart{Text: string(raw)}}},
		&Message{Role: ConversationRoleUser, Parts: []Part{TextPart{
			Text: fmt.Sprintf("Your previous response did not satisfy the required schema: %v. Respond again with JSON only, corrected.", verr),
		}}},
	)
	raw, err = e.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	if err := validate(schema, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return raw, nil
}

func (e *Extractor) complete(ctx context.Context, messages []*Message) (json.RawMessage, error) {
	req := &Request{
		Model:       e.model,
		ModelClass:  e.modelClass,
		Messages:    messages,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	}
	resp, err := e.client.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("llm: complete: %w", err)
	}
	var text bytes.Buffer
	for _, msg := range resp.Content {
		for _, part := range msg.Parts {
			if tp, ok := part.(TextPart); ok {
				text.WriteString(tp.Text)
			}
		}
	}
	return extractJSONObject(text.Bytes())
}

// extractJSONObject trims surrounding prose/fencing a model sometimes adds
// around a JSON object despite instructions, taking the outermost {...} or
// [...] span.
func extractJSONObject(raw []byte) (json.RawMessage, error) {
	start := bytes.IndexAny(raw, "{[")
	if start < 0 {
		return nil, errors.New("llm: no JSON object found in response")
	}
	open, close := raw[start], byte('}')
	if open == '[' {
		close = ']'
	}
	end := bytes.LastIndexByte(raw, close)
	if end < start {
		return nil, errors.New("llm: unterminated JSON object in response")
	}
	candidate := raw[start : end+1]
	if !json.Valid(candidate) {
		return nil, errors.New("llm: response is not valid JSON")
	}
	return json.RawMessage(candidate), nil
}

func validate(schema *jsonschema.Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}
