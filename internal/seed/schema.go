// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package seed

import (
	"bytes"
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the seed file schema.
const SchemaID = "https://holomush.dev/schemas/accounts-roles.schema.json"

var compiled = sync.OnceValues(compileSchema)

// GenerateSchema generates the JSON Schema for seed files from File.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&File{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Accounts role seeds"
	schema.Description = "Schema for roles.yaml seed files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the seed schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("SEED_INVALID").Errorf("seed data is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("SEED_INVALID").With("operation", "parse yaml").Wrap(err)
	}

	sch, err := compiled()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code("SEED_INVALID").With("operation", "validate schema").Wrap(err)
	}
	return nil
}

func compileSchema() (*jschema.Schema, error) {
	raw, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").With("operation", "parse schema").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("roles.schema.json", doc); err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").With("operation", "add schema").Wrap(err)
	}
	sch, err := c.Compile("roles.schema.json")
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_FAILED").With("operation", "compile schema").Wrap(err)
	}
	return sch, nil
}
