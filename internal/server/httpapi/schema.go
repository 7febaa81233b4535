package httpapi

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaTaskCreate  = "task_create.json"
	schemaTaskUpdate  = "task_update.json"
	schemaCredentials = "credentials.json"
)

// bodySchemas holds the compiled request body schemas keyed by file name.
type bodySchemas map[string]*jsonschema.Schema

func compileSchemas() (bodySchemas, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	names := []string{schemaTaskCreate, schemaTaskUpdate, schemaCredentials}
	for _, name := range names {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	out := make(bodySchemas, len(names))
	for _, name := range names {
		s, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}

// validate checks body against the named schema. Malformed JSON and schema
// violations both come back as a *common.ValidationError.
func (s bodySchemas) validate(name string, body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return common.NewValidationError("", msgInvalidRequestBody)
	}

	sch, ok := s[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	if err := sch.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		return common.NewValidationError("", "Invalid request body: "+strings.Join(collectSchemaErrors(ve, nil), "; "))
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, acc []string) []string {
	if len(err.Causes) == 0 {
		field := strings.TrimPrefix(err.InstanceLocation, "/")
		if field == "" {
			return append(acc, err.Message)
		}
		return append(acc, field+": "+err.Message)
	}
	for _, cause := range err.Causes {
		acc = collectSchemaErrors(cause, acc)
	}
	return acc
}
