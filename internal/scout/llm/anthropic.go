package llm

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// MessagesClient captures the subset of the Anthropic SDK used by this
// adapter, so tests can substitute a fake the same way the OpenAI adapter's
// ChatClient does.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicOptions configures the Anthropic adapter.
type AnthropicOptions struct {
	DefaultModel string
	MaxTokens    int
	Temperature  float64
}

// AnthropicClient implements Client on top of the Anthropic Messages API.
// Like OpenAIClient, it is text in/text out only — no streaming, no tool
// use — since every call site in this module is a single-shot JSON
// extraction (see Extractor.ExtractJSON).
type AnthropicClient struct {
	messages     MessagesClient
	defaultModel string
	maxTokens    int
	temperature  float64
}

// NewAnthropicClient builds a client from the given messages surface.
func NewAnthropicClient(messages MessagesClient, opts AnthropicOptions) (*AnthropicClient, error) {
	if messages == nil {
		return nil, errors.New("anthropic client is required")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("default model identifier is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &AnthropicClient{messages: messages, defaultModel: opts.DefaultModel, maxTokens: maxTokens, temperature: opts.Temperature}, nil
}

// NewAnthropicFromAPIKey constructs a client using the default Anthropic
// HTTP client, reading ANTHROPIC_API_KEY defaults via option.WithAPIKey.
func NewAnthropicFromAPIKey(apiKey, defaultModel string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewAnthropicClient(&c.Messages, AnthropicOptions{DefaultModel: defaultModel})
}

// Complete issues a non-streaming messages call and translates the
// response back into the shared Response shape.
func (c *AnthropicClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	params, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.messages.New(ctx, *params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages.new: %w", err)
	}
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, errors.New("anthropic: empty content in response")
	}
	return &Response{
		Content: []Message{{
			Role:  ConversationRoleAssistant,
			Parts: []Part{TextPart{Text: text}},
		}},
		Usage: TokenUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
		StopReason: string(resp.StopReason),
	}, nil
}

// Stream is unimplemented: Scout never streams model output, it only
// issues single-shot JSON extraction requests (see Extractor).
func (c *AnthropicClient) Stream(ctx context.Context, req *Request) (Streamer, error) {
	return nil, ErrStreamingUnsupported
}

func (c *AnthropicClient) prepareRequest(req *Request) (*sdk.MessageNewParams, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("anthropic: messages are required")
	}
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}

	var system []sdk.TextBlockParam
	messages := make([]sdk.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m == nil {
			continue
		}
		text := textOf(m)
		switch m.Role {
		case ConversationRoleSystem:
			system = append(system, sdk.TextBlockParam{Text: text})
		case ConversationRoleAssistant:
			messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(text)))
		default:
			messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(text)))
		}
	}

	params := &sdk.MessageNewParams{
		Model:     sdk.Model(modelID),
		Messages:  messages,
		System:    system,
		MaxTokens: int64(c.effectiveMaxTokens(req.MaxTokens)),
	}
	if t := c.effectiveTemperature(req.Temperature); t > 0 {
		params.Temperature = sdk.Float(t)
	}
	return params, nil
}

func (c *AnthropicClient) effectiveMaxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	return c.maxTokens
}

func (c *AnthropicClient) effectiveTemperature(requested float32) float64 {
	if requested > 0 {
		return float64(requested)
	}
	return c.temperature
}
