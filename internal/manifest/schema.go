// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Drillbit Contributors

package manifest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/pelletier/go-toml/v2"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaID is the $id of the generated manifest schema.
const SchemaID = "https://drillbit.dev/schemas/drillbit.schema.json"

var (
	schemaOnce     sync.Once
	schemaCompiled *jschema.Schema
	schemaErr      error
)

// GenerateSchema generates a JSON Schema from the Manifest struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Manifest{})

	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "drillbit manifest"
	schema.Description = "Schema for drillbit.toml plugin manifests"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateSchema validates TOML data against the manifest JSON Schema.
func ValidateSchema(data []byte) error {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("invalid TOML: %w", err)
	}
	return validateTree(tree)
}

func validateTree(tree map[string]any) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	if tree == nil {
		tree = map[string]any{}
	}
	if err := sch.Validate(toJSONTypes(tree)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaCompiled, schemaErr = compileSchema()
	})
	return schemaCompiled, schemaErr
}

func compileSchema() (*jschema.Schema, error) {
	schemaBytes, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("drillbit.schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return c.Compile("drillbit.schema.json")
}

// toJSONTypes converts TOML-decoded values into the types the schema
// validator understands. TOML integers arrive as int64 and are passed on
// as json.Number so large asset ids keep their precision.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = toJSONTypes(v)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v := range val {
			result[i] = toJSONTypes(v)
		}
		return result
	case int64:
		return json.Number(strconv.FormatInt(val, 10))
	case uint64:
		return json.Number(strconv.FormatUint(val, 10))
	case float64, string, bool, nil:
		return val
	default:
		// Dates and times round-trip through JSON as strings.
		if b, err := json.Marshal(val); err == nil {
			var result any
			if err := json.Unmarshal(b, &result); err == nil {
				return result
			}
		}
		return val
	}
}

// FormatSchemaError strips the validation prefix from a schema error.
func FormatSchemaError(err error) string {
	if err == nil {
		return ""
	}
	return strings.TrimPrefix(err.Error(), "schema validation failed: ")
}
