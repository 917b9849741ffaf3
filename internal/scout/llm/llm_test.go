package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns a scripted sequence of responses, one per Complete
// call, so tests can exercise the one-retry repair loop deterministically.
type fakeClient struct {
	responses []string
	calls     int
}

func (f *fakeClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	text := f.responses[f.calls]
	f.calls++
	return &Response{Content: []Message{{
		Role: ConversationRoleAssistant, Parts: []Part{TextPart{Text: text}},
	}}}, nil
}

func (f *fakeClient) Stream(ctx context.Context, req *Request) (Streamer, error) {
	return nil, ErrStreamingUnsupported
}

func mustSchema(t *testing.T, src string) *jsonschema.Schema {
	t.Helper()
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource("schema.json", mustUnmarshalSchema(t, src)))
	s, err := c.Compile("schema.json")
	require.NoError(t, err)
	return s
}

func mustUnmarshalSchema(t *testing.T, src string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(src), &v))
	return v
}

func TestExtractJSON_ValidOnFirstTry(t *testing.T) {
	client := &fakeClient{responses: []string{`{"title": "Block Party"}`}}
	extractor := NewExtractor(client)
	schema := mustSchema(t, `{"type":"object","required":["title"],"properties":{"title":{"type":"string"}}}`)

	raw, err := extractor.ExtractJSON(context.Background(), "system", "user", schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Block Party"}`, string(raw))
	assert.Equal(t, 1, client.calls)
}

func TestExtractJSON_StripsSurroundingProseAndFences(t *testing.T) {
	client := &fakeClient{responses: []string{"Here is the JSON:\n```json\n{\"title\": \"Block Party\"}\n```"}}
	extractor := NewExtractor(client)

	raw, err := extractor.ExtractJSON(context.Background(), "system", "user", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "Block Party"}`, string(raw))
}

func TestExtractJSON_RetriesOnceOnSchemaViolationThenSucceeds(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"title": 5}`,
		`{"title": "corrected"}`,
	}}
	extractor := NewExtractor(client)
	schema := mustSchema(t, `{"type":"object","required":["title"],"properties":{"title":{"type":"string"}}}`)

	raw, err := extractor.ExtractJSON(context.Background(), "system", "user", schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title": "corrected"}`, string(raw))
	assert.Equal(t, 2, client.calls)
}

func TestExtractJSON_FailsAfterSecondInvalidAttempt(t *testing.T) {
	client := &fakeClient{responses: []string{
		`{"title": 5}`,
		`{"title": 6}`,
	}}
	extractor := NewExtractor(client)
	schema := mustSchema(t, `{"type":"object","required":["title"],"properties":{"title":{"type":"string"}}}`)

	_, err := extractor.ExtractJSON(context.Background(), "system", "user", schema)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaValidation)
}
