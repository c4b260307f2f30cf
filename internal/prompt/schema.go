package prompt

// JSONSchema is the draft 2020-12 schema the model's response must validate
// against. It is embedded verbatim in the rendered prompt so the model can
// see exactly what shape is required. internal/score does not parse this
// constant; its Validate function checks the same rules in code.
const JSONSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": [
    "tool_name", "homepage", "publication_ids", "bio_subscores",
    "documentation_subscores", "confidence_score", "concise_description",
    "rationale"
  ],
  "properties": {
    "tool_name": {"type": "string"},
    "homepage": {"type": "string"},
    "publication_ids": {"type": "array", "items": {"type": "string"}},
    "bio_subscores": {
      "type": "object",
      "properties": {
        "A1": {"type": "number"}, "A2": {"type": "number"},
        "A3": {"type": "number"}, "A4": {"type": "number"},
        "A5": {"type": "number"}
      },
      "additionalProperties": {"type": "number"}
    },
    "documentation_subscores": {
      "type": "object",
      "properties": {
        "B1": {"type": "number"}, "B2": {"type": "number"},
        "B3": {"type": "number"}, "B4": {"type": "number"},
        "B5": {"type": "number"}
      },
      "additionalProperties": {"type": "number"}
    },
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 1},
    "concise_description": {"type": "string"},
    "rationale": {"type": "string"}
  },
  "additionalProperties": false
}`

// BioKeys and DocKeys are the canonical, ordered criterion codes for each
// rubric group.
var BioKeys = [...]string{"A1", "A2", "A3", "A4", "A5"}
var DocKeys = [...]string{"B1", "B2", "B3", "B4", "B5"}
