package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/semdash/errors"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the JSON Schema configuration files are checked against.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)
	return out
}

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// validateSchema checks one raw configuration layer against the schema.
func validateSchema(raw map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return errors.WrapInvalid(err, "Loader", "validateSchema", "run schema validation")
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errors.WrapInvalid(errors.ErrInvalidConfig, "Loader", "validateSchema",
		"schema validation failed: "+strings.Join(msgs, "; "))
}
