package catalog

import (
	"bytes"
	"embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed catalog.schema.json
var schemaFS embed.FS

const schemaResourceName = "catalog.schema.json"

var compiledSchema *jsonschema.Schema

func init() {
	data, err := schemaFS.ReadFile(schemaResourceName)
	if err != nil {
		panic("catalog: embedded schema missing: " + err.Error())
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResourceName, bytes.NewReader(data)); err != nil {
		panic("catalog: embedded schema invalid: " + err.Error())
	}
	compiledSchema = compiler.MustCompile(schemaResourceName)
}
