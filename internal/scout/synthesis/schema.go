package synthesis

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const causalLinkSchemaJSON = `{
  "type": "object",
  "properties": {
    "tension_id": {"type": "string"},
    "linked": {"type": "boolean"},
    "explanation": {"type": "string"}
  },
  "required": ["linked"]
}`

const dispatchSchemaJSON = `{
  "type": "object",
  "properties": {
    "text": {"type": "string"},
    "cited_signal_ids": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["text", "cited_signal_ids"]
}`

func compileSchema(name, raw string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("synthesis: unmarshal %s schema: %w", name, err)
	}
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("synthesis: add %s schema: %w", name, err)
	}
	schema, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("synthesis: compile %s schema: %w", name, err)
	}
	return schema, nil
}

func compileCausalLinkSchema() (*jsonschema.Schema, error) {
	return compileSchema("causal-link.json", causalLinkSchemaJSON)
}

func compileDispatchSchema() (*jsonschema.Schema, error) {
	return compileSchema("dispatch.json", dispatchSchemaJSON)
}
