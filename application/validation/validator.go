// Package validation checks dsd configs: the raw document against the
// generated JSON schema, and the decoded struct against its validate tags.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Ndymario/dsd-ghidra/application/schema"
	"github.com/Ndymario/dsd-ghidra/domain/entities"
	domainerrors "github.com/Ndymario/dsd-ghidra/domain/errors"
	"github.com/Ndymario/dsd-ghidra/domain/ports"
)

const configSchemaURL = "dsd_config.json"

// ConfigSchemaValidator implements ports.ConfigValidator using the JSON
// schema generated from entities.DsdConfig.
type ConfigSchemaValidator struct {
	schema *jsonschema.Schema
}

// NewConfigValidator compiles the config schema.
func NewConfigValidator() (ports.ConfigValidator, error) {
	raw, err := schema.ConfigSchema()
	if err != nil {
		return nil, &domainerrors.SchemaError{Type: "DsdConfig", Err: err}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, &domainerrors.SchemaError{Type: "DsdConfig", Err: fmt.Errorf("failed to add schema resource: %w", err)}
	}
	sch, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return nil, &domainerrors.SchemaError{Type: "DsdConfig", Err: fmt.Errorf("invalid schema: %w", err)}
	}
	return &ConfigSchemaValidator{schema: sch}, nil
}

// Validate checks doc against the schema. doc is anything that marshals to
// JSON, typically the map a YAML decoder produced. Schema violations are
// reported in the result; the error is for documents that cannot be
// prepared at all.
func (v *ConfigSchemaValidator) Validate(doc any) (*entities.ValidationResult, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	result := &entities.ValidationResult{Valid: true}
	if err := v.schema.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			result.Errors = leafErrors(ve, result.Errors)
		} else {
			result.Errors = append(result.Errors, entities.ValidationError{Message: err.Error()})
		}
	}
	return result, nil
}

// leafErrors flattens the cause tree to the errors that name a concrete
// violation.
func leafErrors(ve *jsonschema.ValidationError, out []entities.ValidationError) []entities.ValidationError {
	if len(ve.Causes) == 0 {
		return append(out, entities.ValidationError{
			Field:   ve.InstanceLocation,
			Message: ve.Message,
		})
	}
	for _, cause := range ve.Causes {
		out = leafErrors(cause, out)
	}
	return out
}

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their config.yaml key.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct runs the validate tags of v. The first failing field is
// returned as a *errors.ConfigError.
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &domainerrors.ConfigError{Field: fieldErrs[0].Namespace(), Err: err}
	}
	return &domainerrors.ConfigError{Err: err}
}
