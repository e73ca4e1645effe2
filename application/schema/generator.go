// Package schema generates JSON schemas for the dsd project config.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/Ndymario/dsd-ghidra/domain/entities"
)

// Option configures the reflector used by GenerateSchema.
type Option func(*jsonschema.Reflector)

// AllowAdditionalProperties leaves objects open to keys the Go type does not
// declare. dsd configs carry settings the bridge never reads.
func AllowAdditionalProperties() Option {
	return func(r *jsonschema.Reflector) {
		r.AllowAdditionalProperties = true
	}
}

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}, opts ...Option) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	for _, opt := range opts {
		opt(&reflector)
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ConfigSchema returns the schema a dsd config.yaml must satisfy.
func ConfigSchema() ([]byte, error) {
	return GenerateSchema(&entities.DsdConfig{}, AllowAdditionalProperties())
}
