package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// PayloadValidationError surfaces validation issues with location context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// NewIssues builds a PayloadValidationError from issues; nil when empty.
func NewIssues(issues ...ValidationIssue) error {
	if len(issues) == 0 {
		return nil
	}
	return &PayloadValidationError{Issues: issues}
}

// Issues extracts validation issues from an error. It understands payload
// errors, JSON schema errors, ozzo field errors and go-errors validation errors.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) && schemaErr != nil {
		return collectValidationIssues(schemaErr)
	}
	if fieldErrs, ok := goerrors.GetValidationErrors(err); ok {
		issues := make([]ValidationIssue, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			issues = append(issues, ValidationIssue{Location: fe.Field, Message: fe.Message})
		}
		sortIssues(issues)
		return issues
	}
	var ozzoErrs ozzo.Errors
	if errors.As(err, &ozzoErrs) {
		issues := []ValidationIssue{}
		flattenOzzo(&issues, "", ozzoErrs)
		sortIssues(issues)
		return issues
	}
	return []ValidationIssue{{Message: err.Error()}}
}

func flattenOzzo(out *[]ValidationIssue, prefix string, errs ozzo.Errors) {
	for field, fieldErr := range errs {
		location := field
		if prefix != "" {
			location = prefix + "." + field
		}
		if nested, ok := fieldErr.(ozzo.Errors); ok {
			flattenOzzo(out, location, nested)
			continue
		}
		*out = append(*out, ValidationIssue{Location: location, Message: strings.TrimSpace(fieldErr.Error())})
	}
}

func sortIssues(issues []ValidationIssue) {
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Location < issues[j].Location })
}

// CompileSchema compiles a draft 2020-12 JSON schema document.
func CompileSchema(name string, schema []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return compiled, nil
}

// ValidateJSON decodes raw and validates it against schema.
func ValidateJSON(schema *jsonschema.Schema, raw []byte) error {
	if schema == nil {
		return nil
	}
	var payload any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&payload); err != nil {
		return &PayloadValidationError{
			Issues: []ValidationIssue{{Message: "invalid JSON: " + err.Error()}},
			Cause:  err,
		}
	}
	if err := schema.Validate(payload); err != nil {
		return &PayloadValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
