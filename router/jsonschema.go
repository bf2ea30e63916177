package router

import (
	"errors"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/GoCodeAlone/nimbus/nimbuserr"
)

// JSONSchemaValidator backs SchemaValidator with
// github.com/santhosh-tekuri/jsonschema/v6, the same library the teacher's
// modules/jsonschema wraps (jsonschema.NewCompiler / compiler.Compile /
// schema.Validate). This generalizes that wrapper from a file/URL schema
// source into an in-memory document supplied at registration time, since
// the router validates data payloads registered programmatically rather
// than schema files loaded from disk.
type JSONSchemaValidator struct {
	schema *jsonschema.Schema
}

// CompileJSONSchema compiles a JSON Schema document — decoded JSON values
// (map[string]any, []any, string, float64, bool, nil), such as the result
// of jsonschema.UnmarshalJSON — into a reusable validator addressed
// internally by resourceID.
func CompileJSONSchema(resourceID string, doc any) (*JSONSchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resourceID, doc); err != nil {
		return nil, nimbuserr.FromError(nimbuserr.InvalidInput, err)
	}
	schema, err := compiler.Compile(resourceID)
	if err != nil {
		return nil, nimbuserr.FromError(nimbuserr.InvalidInput, err)
	}
	return &JSONSchemaValidator{schema: schema}, nil
}

// Validate implements SchemaValidator, flattening the library's nested
// ValidationError tree into the taxonomy's flat Issue list.
func (v *JSONSchemaValidator) Validate(data any) []nimbuserr.Issue {
	err := v.schema.Validate(data)
	if err == nil {
		return nil
	}
	return issuesFromError(err)
}

func issuesFromError(err error) []nimbuserr.Issue {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []nimbuserr.Issue{{Code: "validation_error", Message: err.Error()}}
	}

	var issues []nimbuserr.Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, issueFromLeaf(e))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return issues
}

func issueFromLeaf(e *jsonschema.ValidationError) nimbuserr.Issue {
	path := append([]string{"data"}, e.InstanceLocation...)
	code := "validation_error"
	if n := len(e.KeywordLocation); n > 0 {
		code = keywordCode(e.KeywordLocation[n-1])
	}
	return nimbuserr.Issue{
		Path:    path,
		Code:    code,
		Message: e.Error(),
	}
}

// keywordCode maps a JSON Schema keyword to the taxonomy's machine-readable
// issue code, matching the naming spec.md's S3 scenario expects for a type
// mismatch ("invalid_type").
func keywordCode(keyword string) string {
	switch keyword {
	case "type":
		return "invalid_type"
	case "required":
		return "missing_required"
	case "enum":
		return "invalid_enum"
	default:
		return keyword
	}
}
