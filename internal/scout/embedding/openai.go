package embedding

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// EmbeddingClient captures the subset of the OpenAI SDK this adapter
// calls, mirroring the narrow ChatClient seam in internal/scout/llm so
// both adapters can be faked the same way in tests.
type EmbeddingClient interface {
	New(ctx context.Context, body sdk.EmbeddingNewParams, opts ...option.RequestOption) (*sdk.CreateEmbeddingResponse, error)
}

// OpenAIEmbedder implements TextEmbedder against the OpenAI embeddings
// API.
type OpenAIEmbedder struct {
	client EmbeddingClient
	model  string
}

// NewOpenAIEmbedder builds an embedder from the given embeddings surface.
func NewOpenAIEmbedder(client EmbeddingClient, model string) (*OpenAIEmbedder, error) {
	if client == nil {
		return nil, errors.New("embedding client is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEmbedder{client: client, model: model}, nil
}

// NewOpenAIEmbedderFromAPIKey constructs an embedder using the default
// OpenAI HTTP client.
func NewOpenAIEmbedderFromAPIKey(apiKey, model string) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return NewOpenAIEmbedder(&c.Embeddings, model)
}

// Embed requests a single embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.New(ctx, sdk.EmbeddingNewParams{
		Input: sdk.EmbeddingNewParamsInputUnion{OfString: sdk.String(text)},
		Model: sdk.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings.new: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai: empty embedding data in response")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
