// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/z5labs/blogs/concurrent"

	jsv "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

func reflectSchema[T any]() (jsonschema.Schema, error) {
	var t T
	var reflector jsonschema.Reflector

	return reflector.Reflect(t, jsonschema.InlineRefs)
}

func openapiSchema[T any]() (*openapi3.SchemaOrRef, error) {
	jsonSchema, err := reflectSchema[T]()
	if err != nil {
		return nil, err
	}

	var schemaOrRef openapi3.SchemaOrRef
	schemaOrRef.FromJSONSchema(jsonSchema.ToSchemaOrBool())
	return &schemaOrRef, nil
}

var compiledSchemas = concurrent.NewCache[reflect.Type, *jsv.Schema]()

// compiledSchema compiles the reflected schema of T once and reuses it
// for every later request body of the same type.
func compiledSchema[T any]() (*jsv.Schema, error) {
	return compiledSchemas.GetOr(reflect.TypeFor[T](), func() (*jsv.Schema, error) {
		jsonSchema, err := reflectSchema[T]()
		if err != nil {
			return nil, err
		}

		b, err := json.Marshal(jsonSchema)
		if err != nil {
			return nil, err
		}

		compiler := jsv.NewCompiler()
		compiler.Draft = jsv.Draft7
		err = compiler.AddResource("schema.json", bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		return compiler.Compile("schema.json")
	})
}

// validateJson checks the raw JSON body b against the schema of T.
func validateJson[T any](b []byte) error {
	schema, err := compiledSchema[T]()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var doc any
	err = dec.Decode(&doc)
	if err != nil {
		return BadRequestError{
			Cause: MalformedJsonError{Cause: err},
		}
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsv.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	return BadRequestError{
		Cause: SchemaViolationError{
			Violations: violations(verr, nil),
		},
	}
}

func violations(err *jsv.ValidationError, acc []string) []string {
	if len(err.Causes) == 0 {
		return append(acc, "body"+err.InstanceLocation+": "+err.Message)
	}
	for _, cause := range err.Causes {
		acc = violations(cause, acc)
	}
	return acc
}
