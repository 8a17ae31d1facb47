package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const maxRequestBodySize = 1 << 20

// RequestSchemas holds the compiled schema of every JSON endpoint.
type RequestSchemas struct {
	VerifyDocument  *jsonschema.Schema
	VerifyWithForm  *jsonschema.Schema
	ValidateAadhaar *jsonschema.Schema
}

func LoadRequestSchemas() (*RequestSchemas, error) {
	compiler := jsonschema.NewCompiler()

	compile := func(name string) (*jsonschema.Schema, error) {
		raw, err := schemaFiles.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to load schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		return schema, nil
	}

	var (
		schemas RequestSchemas
		err     error
	)
	if schemas.VerifyDocument, err = compile("verify_document.json"); err != nil {
		return nil, err
	}
	if schemas.VerifyWithForm, err = compile("verify_with_form.json"); err != nil {
		return nil, err
	}
	if schemas.ValidateAadhaar, err = compile("validate_aadhaar.json"); err != nil {
		return nil, err
	}
	return &schemas, nil
}

// RequestError is a client mistake; Message is safe to send back.
type RequestError struct {
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// decodeRequest reads a JSON body, checks it against schema and decodes it
// into v. Every failure is a *RequestError.
func decodeRequest(r *http.Request, schema *jsonschema.Schema, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize+1))
	if err != nil {
		return &RequestError{Message: "failed to read request body", Err: err}
	}
	if len(body) > maxRequestBodySize {
		return &RequestError{Message: "request body too large"}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return &RequestError{Message: "request body is not valid JSON", Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return &RequestError{Message: firstValidationMessage(err), Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &RequestError{Message: "request body does not match the expected shape", Err: err}
	}
	return nil
}

// firstValidationMessage follows the first chain of causes down to the
// innermost violation, which names the offending property.
func firstValidationMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}
