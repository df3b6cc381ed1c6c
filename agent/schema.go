package agent

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ParametersFor reflects a JSON-Schema parameter map from the struct type T.
//
// Supported tags follow invopop/jsonschema:
//
//	type Args struct {
//	    Query string `json:"query" jsonschema:"required,description=Search query"`
//	    Limit int    `json:"limit,omitempty" jsonschema:"description=Max results,minimum=1"`
//	}
func ParametersFor[T any]() (map[string]any, error) {
	reflector := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
	}

	data, err := json.Marshal(reflector.Reflect(new(T)))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	delete(schema, "$schema")
	delete(schema, "$id")

	return schema, nil
}

// MustParametersFor is like ParametersFor but panics on error.
func MustParametersFor[T any]() map[string]any {
	schema, err := ParametersFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}
