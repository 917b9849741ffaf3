package lint

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const signalVerdictSchemaJSON = `{
  "type": "object",
  "properties": {
    "verdict": {"type": "string", "enum": ["pass", "correct", "quarantine", "reject"]},
    "reason": {"type": "string"},
    "changes": {"type": "object"}
  },
  "required": ["verdict"]
}`

const situationVerdictSchemaJSON = `{
  "type": "object",
  "properties": {
    "verdict": {"type": "string", "enum": ["pass", "correct", "quarantine", "reject"]},
    "reason": {"type": "string"},
    "changes": {"type": "object"}
  },
  "required": ["verdict"]
}`

func compileSchema(name, raw string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("lint: unmarshal %s schema: %w", name, err)
	}
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("lint: add %s schema: %w", name, err)
	}
	schema, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("lint: compile %s schema: %w", name, err)
	}
	return schema, nil
}

func compileSignalVerdictSchema() (*jsonschema.Schema, error) {
	return compileSchema("signal-verdict.json", signalVerdictSchemaJSON)
}

func compileSituationVerdictSchema() (*jsonschema.Schema, error) {
	return compileSchema("situation-verdict.json", situationVerdictSchemaJSON)
}
