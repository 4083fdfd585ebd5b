package validation

import (
	"errors"
	"fmt"
	"testing"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const personSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "age": {"type": "integer", "minimum": 0}
  },
  "additionalProperties": false
}`

func TestValidateJSONReportsLocations(t *testing.T) {
	schema, err := CompileSchema("person.json", []byte(personSchema))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := ValidateJSON(schema, []byte(`{"name":"Lina","age":3}`)); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	err = ValidateJSON(schema, []byte(`{"age":-1}`))
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	issues := Issues(err)
	if len(issues) < 2 {
		t.Fatalf("expected issues for name and age, got %+v", issues)
	}

	if err := ValidateJSON(schema, []byte(`{`)); !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected malformed JSON to be a validation error, got %v", err)
	}
}

func TestCompileSchemaRejectsInvalidSchema(t *testing.T) {
	if _, err := CompileSchema("bad.json", []byte(`{"type": 12}`)); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestIssuesFromOzzoAndGoErrors(t *testing.T) {
	ozzoErr := ozzo.Errors{
		"title": ozzo.NewError("validation_required", "cannot be blank"),
		"translations": ozzo.Errors{
			"0": ozzo.Errors{"locale": ozzo.NewError("validation_required", "cannot be blank")},
		},
	}
	issues := Issues(fmt.Errorf("wrapped: %w", ozzoErr))
	if len(issues) != 2 || issues[0].Location != "title" || issues[1].Location != "translations.0.locale" {
		t.Fatalf("unexpected ozzo issues %+v", issues)
	}

	wrapped := goerrors.FromOzzoValidation(ozzo.Errors{"email": ozzo.NewError("x", "must be a valid email address")}, "invalid")
	issues = Issues(wrapped)
	if len(issues) != 1 || issues[0].Location != "email" {
		t.Fatalf("unexpected go-errors issues %+v", issues)
	}

	plain := Issues(errors.New("boom"))
	if len(plain) != 1 || plain[0].Message != "boom" {
		t.Fatalf("unexpected fallback issues %+v", plain)
	}
}
