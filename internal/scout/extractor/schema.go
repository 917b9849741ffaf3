package extractor

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// responseSchemaJSON is the JSON Schema the extraction prompt's structured
// output is validated against, per section 4.6's output shape. It is
// deliberately loose on title/summary/implied_queries/signal_tags (section
// 4.6's "quality assertions: loose") and strict on the fields that gate
// dedup and the no-date drop rule.
const responseSchemaJSON = `{
  "type": "object",
  "required": ["signals"],
  "properties": {
    "signals": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["node_type", "title", "summary", "is_firsthand"],
        "properties": {
          "node_type": {"type": "string", "enum": ["Gathering", "Aid", "Need", "Notice", "Tension"]},
          "title": {"type": "string", "minLength": 1},
          "summary": {"type": "string", "minLength": 1},
          "about_location": {
            "type": ["object", "null"],
            "properties": {
              "lat": {"type": "number"},
              "lng": {"type": "number"},
              "precision": {"type": "string", "enum": ["exact", "neighborhood", "city", "approximate"]}
            }
          },
          "about_location_name": {"type": "string"},
          "mentioned_actors": {"type": "array", "items": {"type": "string"}},
          "author_actor": {"type": "string"},
          "source_links": {"type": "array", "items": {"type": "string"}},
          "starts_at": {"type": ["string", "null"]},
          "ends_at": {"type": ["string", "null"]},
          "schedule": {"type": "string"},
          "is_firsthand": {"type": "boolean"},
          "resources_required": {"type": "array", "items": {"$ref": "#/$defs/resourceRef"}},
          "resources_offered": {"type": "array", "items": {"$ref": "#/$defs/resourceRef"}},
          "signal_tags": {"type": "array", "items": {"type": "string"}},
          "implied_queries": {"type": "array", "items": {"type": "string"}},
          "self_explanatory": {"type": "boolean"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "gathering_type": {"type": "string"},
          "severity": {"type": "string"},
          "source_authority": {"type": "string"},
          "category": {"type": "string"},
          "cause_heat": {"type": "number"}
        }
      }
    }
  },
  "$defs": {
    "resourceRef": {
      "type": "object",
      "required": ["slug", "label"],
      "properties": {
        "slug": {"type": "string"},
        "label": {"type": "string"},
        "confidence": {"type": "number"},
        "quantity": {"type": "string"},
        "context": {"type": "string"}
      }
    }
  }
}`

func compileResponseSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	var doc any
	if err := json.Unmarshal([]byte(responseSchemaJSON), &doc); err != nil {
		return nil, fmt.Errorf("extractor: unmarshal response schema: %w", err)
	}
	if err := c.AddResource("extraction-response.json", doc); err != nil {
		return nil, fmt.Errorf("extractor: add response schema: %w", err)
	}
	schema, err := c.Compile("extraction-response.json")
	if err != nil {
		return nil, fmt.Errorf("extractor: compile response schema: %w", err)
	}
	return schema, nil
}
