// pkg/catalog/schema.go
package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema constrains external catalog files: every entry must carry a
// valid complexity tier, capability level, and a positive token estimate.
const catalogSchema = `{
  "type": "object",
  "minProperties": 1,
  "patternProperties": {
    "^[a-z][a-z0-9_]*$": {
      "type": "object",
      "required": ["complexity", "capability", "tokenEstimate"],
      "properties": {
        "complexity": {"type": "string", "enum": ["simple", "complex"]},
        "capability": {"type": "string", "enum": ["low", "medium", "high"]},
        "tokenEstimate": {"type": "integer", "minimum": 1},
        "locallyCapable": {"type": "boolean"}
      },
      "additionalProperties": false
    }
  },
  "additionalProperties": false
}`

// ValidateSchema checks raw catalog JSON against the embedded schema.
func ValidateSchema(raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("catalog schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("catalog failed schema validation: %s", strings.Join(msgs, "; "))
	}

	return nil
}
