package llm

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ChatClient captures the subset of the OpenAI SDK used by this adapter, so
// tests can substitute a fake the same way the Anthropic adapter's
// MessagesClient does.
type ChatClient interface {
	New(ctx context.Context, body sdk.ChatCompletionNewParams, opts ...option.RequestOption) (*sdk.ChatCompletion, error)
}

// OpenAIOptions configures the OpenAI adapter.
type OpenAIOptions struct {
	DefaultModel string
	MaxTokens    int
	Temperature  float64
}

// OpenAIClient implements Client on top of the OpenAI Chat
// Completions API. It supports text in/text out only — no streaming, no
// tool use — since every call site in this module is a single-shot JSON
// extraction (see Extractor.ExtractJSON).
type OpenAIClient struct {
	chat         ChatClient
	defaultModel string
	maxTokens    int
	temperature  float64
}

// NewOpenAIClient builds a client from the given chat-completions surface.
func NewOpenAIClient(chat ChatClient, opts OpenAIOptions) (*OpenAIClient, error) {
	if chat == nil {
		return nil, errors.New("openai client is required")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("default model identifier is required")
	}
	return &OpenAIClient{chat: chat, defaultModel: opts.DefaultModel, maxTokens: opts.MaxTokens, temperature: opts.Temperature}, nil
}

// NewOpenAIFromAPIKey constructs a client using the default OpenAI HTTP
// client, reading OPENAI_API_KEY defaults via option.WithAPIKey.
func NewOpenAIFromAPIKey(apiKey, defaultModel string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewOpenAIClient(&c.Chat.Completions, OpenAIOptions{DefaultModel: defaultModel})
}

// Complete issues a non-streaming chat completion and translates the
// response back into the shared Response shape.
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	params, err := c.prepareRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.chat.New(ctx, *params)
	if err != nil {
		return nil, fmt.Errorf("openai chat.completions.new: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices in response")
	}
	choice := resp.Choices[0]
	return &Response{
		Content: []Message{{
			Role:  ConversationRoleAssistant,
			Parts: []Part{TextPart{Text: choice.Message.Content}},
		}},
		Usage: TokenUsage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
		StopReason: string(choice.FinishReason),
	}, nil
}

// Stream is unimplemented: Scout never streams model output, it only
// issues single-shot JSON extraction requests (see Extractor).
func (c *OpenAIClient) Stream(ctx context.Context, req *Request) (Streamer, error) {
	return nil, ErrStreamingUnsupported
}

func (c *OpenAIClient) prepareRequest(req *Request) (*sdk.ChatCompletionNewParams, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("openai: messages are required")
	}
	modelID := req.Model
	if modelID == "" {
		modelID = c.defaultModel
	}
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m == nil {
			continue
		}
		text := textOf(m)
		switch m.Role {
		case ConversationRoleSystem:
			messages = append(messages, sdk.SystemMessage(text))
		case ConversationRoleAssistant:
			messages = append(messages, sdk.AssistantMessage(text))
		default:
			messages = append(messages, sdk.UserMessage(text))
		}
	}

	params := &sdk.ChatCompletionNewParams{
		Model:          modelID,
		Messages:       messages,
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &sdk.ResponseFormatJSONObjectParam{}},
	}
	if maxTokens := c.effectiveMaxTokens(req.MaxTokens); maxTokens > 0 {
		params.MaxTokens = sdk.Int(int64(maxTokens))
	}
	if t := c.effectiveTemperature(req.Temperature); t > 0 {
		params.Temperature = sdk.Float(t)
	}
	return params, nil
}

func (c *OpenAIClient) effectiveMaxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	return c.maxTokens
}

func (c *OpenAIClient) effectiveTemperature(requested float32) float64 {
	if requested > 0 {
		return float64(requested)
	}
	return c.temperature
}

func textOf(m *Message) string {
	var out string
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}
